package guard

import (
	"context"
	"testing"

	"github.com/af-corp/vigil/internal/types"
)

// stubRail returns a fixed result and records whether it ran.
type stubRail struct {
	name   string
	action Action
	ran    bool
}

func (s *stubRail) Name() string { return s.name }

func (s *stubRail) ScanInputs(_ context.Context, _ []types.Input) Result {
	s.ran = true
	return Result{Guardrail: s.name, Action: s.action}
}

func TestChain_AllPass(t *testing.T) {
	a := &stubRail{name: "a", action: ActionPass}
	b := &stubRail{name: "b", action: ActionFlag}
	c := NewChain(a, b)

	results, blocked := c.Run(context.Background(), []types.Input{{Source: types.SourceUser, Content: "hi"}})
	if blocked != nil {
		t.Fatalf("expected no block, got %s", blocked.Guardrail)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if !a.ran || !b.ran {
		t.Error("expected both rails to run")
	}
}

func TestChain_FirstBlockShortCircuits(t *testing.T) {
	a := &stubRail{name: "a", action: ActionBlock}
	b := &stubRail{name: "b", action: ActionPass}
	c := NewChain(a, b)

	results, blocked := c.Run(context.Background(), nil)
	if blocked == nil {
		t.Fatal("expected a block")
	}
	if blocked.Guardrail != "a" {
		t.Errorf("expected block from a, got %s", blocked.Guardrail)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
	if b.ran {
		t.Error("expected b to be skipped after block")
	}
}

func TestChain_Empty(t *testing.T) {
	c := NewChain()
	results, blocked := c.Run(context.Background(), []types.Input{{Content: "anything"}})
	if blocked != nil {
		t.Error("expected no block from empty chain")
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestChain_Order(t *testing.T) {
	a := &stubRail{name: "a", action: ActionPass}
	b := &stubRail{name: "b", action: ActionPass}
	c := NewChain(a, b)

	results, _ := c.Run(context.Background(), nil)
	if results[0].Guardrail != "a" || results[1].Guardrail != "b" {
		t.Errorf("expected results in chain order, got %s then %s", results[0].Guardrail, results[1].Guardrail)
	}
}
