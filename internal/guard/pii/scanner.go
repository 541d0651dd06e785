package pii

import (
	"context"
	"fmt"

	"github.com/af-corp/vigil/internal/config"
	"github.com/af-corp/vigil/internal/guard"
	"github.com/af-corp/vigil/internal/types"
)

// Detection represents detected PII in text.
type Detection struct {
	Kind  string // e.g. "email"
	Start int    // byte offset
	End   int    // byte offset
}

// Scanner scans text for PII using pre-compiled regex patterns. Which kinds
// it looks for and whether a hit blocks are fixed at construction.
type Scanner struct {
	patterns []Pattern
	block    bool
}

// NewScanner creates a scanner from the PII config snapshot.
func NewScanner(cfg config.PIIConfig) *Scanner {
	return &Scanner{
		patterns: enabledPatterns(cfg.Patterns),
		block:    cfg.Block,
	}
}

func (s *Scanner) Name() string { return "pii" }

// Scan checks a single text string and returns all detections.
func (s *Scanner) Scan(text string) []Detection {
	var detections []Detection
	for _, p := range s.patterns {
		locs := p.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				Kind:  p.Kind,
				Start: loc[0],
				End:   loc[1],
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

// ScanInputs implements guard.Guardrail. PII flags by default; it only
// blocks when configured to.
func (s *Scanner) ScanInputs(_ context.Context, inputs []types.Input) guard.Result {
	detections := s.ScanAll(inputs)
	if len(detections) == 0 {
		return guard.Result{Action: guard.ActionPass, Guardrail: "pii"}
	}
	if s.block {
		return guard.Result{
			Action:     guard.ActionBlock,
			Guardrail:  "pii",
			Message:    fmt.Sprintf("Input blocked: personally identifiable information detected (%d finding(s))", len(detections)),
			Detections: len(detections),
		}
	}
	return guard.Result{
		Action:     guard.ActionFlag,
		Guardrail:  "pii",
		Detections: len(detections),
	}
}
