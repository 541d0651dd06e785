package jailbreak

import (
	"fmt"
	"strings"

	"github.com/af-corp/vigil/internal/types"
)

// DefaultThreshold is the verdict cutoff used when none is configured.
const DefaultThreshold = 0.7

const noJailbreakExplanation = "No jailbreak patterns detected"

// Config controls detector construction. The zero value selects defaults.
type Config struct {
	// Threshold is the confidence cutoff for the jailbreak verdict,
	// inclusive. Values <= 0 select DefaultThreshold.
	Threshold float64
}

// Match records one catalog pattern that fired.
type Match struct {
	Category Category `json:"category"`
	Pattern  string   `json:"pattern"`
}

// String renders the canonical match descriptor, "<category>: <pattern>".
func (m Match) String() string {
	return string(m.Category) + ": " + m.Pattern
}

// Outcome is the result of scoring one text. It is never mutated after
// being returned.
type Outcome struct {
	Jailbreak   bool       `json:"is_jailbreak"`
	Confidence  float64    `json:"confidence"`
	Tier        types.Tier `json:"risk_tier"`
	Matches     []Match    `json:"matched_patterns,omitempty"`
	Explanation string     `json:"explanation"`
}

// Detector scores text against the built-in jailbreak pattern catalog.
// It holds no mutable state after construction and is safe for concurrent
// use from any number of goroutines.
type Detector struct {
	threshold float64
	catalog   []categoryRules
	weights   map[Category]float64
}

// NewDetector builds a detector with the built-in catalog and weight table.
// The threshold is read once here; a running detector never changes it.
func NewDetector(cfg Config) *Detector {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		threshold: threshold,
		catalog:   defaultCatalog(),
		weights:   defaultWeights(),
	}
}

// Threshold returns the configured verdict cutoff.
func (d *Detector) Threshold() float64 { return d.threshold }

// weightFor returns the category's severity weight, or fallbackWeight for
// categories missing from the weight table.
func (d *Detector) weightFor(c Category) float64 {
	if w, ok := d.weights[c]; ok {
		return w
	}
	return fallbackWeight
}

// Detect scores a single text. Matching is case-insensitive and unanchored:
// the input is lower-cased once and every pattern in the catalog is tested
// against it, with no early exit. Confidence is the maximum weight among
// matched categories, not a sum, so repeated hits in one category score the
// same as a single hit.
func (d *Detector) Detect(text string) Outcome {
	lowered := strings.ToLower(text)

	var matches []Match
	confidence := 0.0
	for _, group := range d.catalog {
		for _, r := range group.rules {
			if !r.re.MatchString(lowered) {
				continue
			}
			matches = append(matches, Match{Category: group.category, Pattern: r.raw})
			if w := d.weightFor(group.category); w > confidence {
				confidence = w
			}
		}
	}
	return d.outcome(confidence, matches)
}

// DetectAll scores every input and combines the results: matches concatenate
// in input order and confidence is the maximum across inputs, so one hot
// input dominates any number of clean ones.
func (d *Detector) DetectAll(inputs []types.Input) Outcome {
	var matches []Match
	confidence := 0.0
	for _, in := range inputs {
		o := d.Detect(in.Content)
		matches = append(matches, o.Matches...)
		if o.Confidence > confidence {
			confidence = o.Confidence
		}
	}
	return d.outcome(confidence, matches)
}

// outcome derives the verdict, tier, and explanation from a confidence and
// match list. The tier follows the fixed 0.8/0.5 boundaries regardless of
// the verdict threshold.
func (d *Detector) outcome(confidence float64, matches []Match) Outcome {
	verdict := confidence >= d.threshold
	explanation := noJailbreakExplanation
	if verdict {
		explanation = fmt.Sprintf("Jailbreak detected (confidence: %.2f)", confidence)
	}
	return Outcome{
		Jailbreak:   verdict,
		Confidence:  confidence,
		Tier:        types.TierFor(confidence),
		Matches:     matches,
		Explanation: explanation,
	}
}
