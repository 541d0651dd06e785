package secrets

import (
	"context"
	"fmt"

	"github.com/af-corp/vigil/internal/guard"
	"github.com/af-corp/vigil/internal/types"
)

// Detection represents a detected secret in text. Only the pattern name and
// byte offsets are recorded, never the matched value.
type Detection struct {
	PatternName string // e.g. "AWS Access Key"
	Start       int    // byte offset
	End         int    // byte offset
}

// Scanner scans text for secrets using pre-compiled regex patterns.
type Scanner struct {
	patterns []Pattern
}

// NewScanner creates a scanner with the default secret patterns.
func NewScanner() *Scanner {
	return &Scanner{patterns: DefaultPatterns()}
}

func (s *Scanner) Name() string { return "secrets" }

// Scan checks a single text string for secrets and returns all detections.
func (s *Scanner) Scan(text string) []Detection {
	var detections []Detection
	for _, p := range s.patterns {
		locs := p.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				PatternName: p.Name,
				Start:       loc[0],
				End:         loc[1],
			})
		}
	}
	return detections
}

// ScanAll scans every input and collects detections across all of them.
func (s *Scanner) ScanAll(inputs []types.Input) []Detection {
	var detections []Detection
	for _, in := range inputs {
		detections = append(detections, s.Scan(in.Content)...)
	}
	return detections
}

// ScanInputs implements guard.Guardrail. Any detection blocks: secret
// material must never reach a model.
func (s *Scanner) ScanInputs(_ context.Context, inputs []types.Input) guard.Result {
	detections := s.ScanAll(inputs)
	if len(detections) > 0 {
		return guard.Result{
			Action:     guard.ActionBlock,
			Guardrail:  "secrets",
			Message:    fmt.Sprintf("Input blocked: secret material detected (%d finding(s))", len(detections)),
			Detections: len(detections),
		}
	}
	return guard.Result{Action: guard.ActionPass, Guardrail: "secrets"}
}
