package guard

import (
	"context"

	"github.com/af-corp/vigil/internal/types"
)

// Action represents the guardrail decision.
type Action string

const (
	ActionPass  Action = "pass"
	ActionFlag  Action = "flag"
	ActionBlock Action = "block"
)

// Result is returned by each guardrail.
type Result struct {
	Guardrail  string  `json:"guardrail"`
	Action     Action  `json:"action"`
	Message    string  `json:"message,omitempty"`
	Detections int     `json:"detections,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// Guardrail is the interface all input screens implement. Enablement is
// resolved when the engine is built from config; disabled screens are never
// constructed, so every Guardrail in a chain runs.
type Guardrail interface {
	Name() string
	ScanInputs(ctx context.Context, inputs []types.Input) Result
}

// Chain runs guardrails in order, stopping on the first Block.
type Chain struct {
	rails []Guardrail
}

// NewChain creates a guardrail chain from the given screens.
func NewChain(rails ...Guardrail) *Chain {
	return &Chain{rails: rails}
}

// Run executes all guardrails in order. Returns all results and a pointer
// to the first blocking result (nil if nothing blocked).
func (c *Chain) Run(ctx context.Context, inputs []types.Input) ([]Result, *Result) {
	var results []Result
	for _, g := range c.rails {
		r := g.ScanInputs(ctx, inputs)
		results = append(results, r)
		if r.Action == ActionBlock {
			return results, &r
		}
	}
	return results, nil
}
