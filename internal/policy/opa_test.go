package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/af-corp/vigil/internal/config"
)

func testCfg() config.PolicyConfig {
	return config.PolicyConfig{
		Enabled:           true,
		EvaluationTimeout: 100 * time.Millisecond,
	}
}

const defaultPolicy = `
package vigil.policy

import rego.v1

default allow := true
default reason := ""

deny contains msg if {
	input.scan.tier == "medium"
	"tool" in input.sources
	msg := "tool-sourced input at medium risk requires review"
}

allow := false if {
	count(deny) > 0
}

reason := concat("; ", deny) if {
	count(deny) > 0
}
`

func loadTestEvaluator(t *testing.T, policy string) *Evaluator {
	t.Helper()
	e := NewEvaluator(testCfg())
	if err := e.LoadFromModules(map[string]string{"test.rego": policy}); err != nil {
		t.Fatalf("failed to load policy: %v", err)
	}
	return e
}

func TestEvaluator_AllowByDefault(t *testing.T) {
	e := loadTestEvaluator(t, defaultPolicy)

	allowed, reason, err := e.Evaluate(context.Background(), Input{
		Sources: []string{"user"},
		Scan:    ScanInfo{Verdict: false, Confidence: 0.0, Tier: "low"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Errorf("expected allowed, got denied: %s", reason)
	}
}

func TestEvaluator_DenyToolSourcedMediumTier(t *testing.T) {
	e := loadTestEvaluator(t, defaultPolicy)

	allowed, reason, err := e.Evaluate(context.Background(), Input{
		Sources: []string{"user", "tool"},
		Scan:    ScanInfo{Verdict: false, Confidence: 0.6, Tier: "medium"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected denied for tool-sourced medium tier")
	}
	if reason == "" {
		t.Error("expected non-empty reason")
	}
}

func TestEvaluator_AllowUserSourcedMediumTier(t *testing.T) {
	e := loadTestEvaluator(t, defaultPolicy)

	allowed, _, err := e.Evaluate(context.Background(), Input{
		Sources: []string{"user"},
		Scan:    ScanInfo{Verdict: false, Confidence: 0.6, Tier: "medium"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected allowed for user-sourced medium tier")
	}
}

func TestEvaluator_ConfidencePolicy(t *testing.T) {
	confidenceCap := `
package vigil.policy

import rego.v1

default allow := true
default reason := ""

allow := false if {
	input.scan.confidence >= 0.5
}

reason := "confidence above policy cap" if {
	input.scan.confidence >= 0.5
}
`
	e := loadTestEvaluator(t, confidenceCap)

	allowed, _, err := e.Evaluate(context.Background(), Input{
		Sources: []string{"user"},
		Scan:    ScanInfo{Confidence: 0.6, Tier: "medium"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected denied at confidence 0.6")
	}

	allowed, _, err = e.Evaluate(context.Background(), Input{
		Sources: []string{"user"},
		Scan:    ScanInfo{Confidence: 0.4, Tier: "low"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected allowed at confidence 0.4")
	}
}

func TestEvaluator_NoPoliciesLoaded_FailClosed(t *testing.T) {
	e := NewEvaluator(testCfg())
	// Don't load any policies

	allowed, _, _ := e.Evaluate(context.Background(), Input{})
	if allowed {
		t.Error("expected denied when no policies loaded (fail closed)")
	}
}

func TestEvaluator_CustomDenyAllPolicy(t *testing.T) {
	denyAll := `
package vigil.policy

import rego.v1

allow := false
reason := "all inputs denied"
`
	e := loadTestEvaluator(t, denyAll)

	allowed, reason, err := e.Evaluate(context.Background(), Input{
		Sources: []string{"user"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected denied by deny-all policy")
	}
	if reason != "all inputs denied" {
		t.Errorf("expected 'all inputs denied', got %s", reason)
	}
}

func TestEvaluator_LoadFromBundleDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vigil.rego"), []byte(defaultPolicy), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-rego files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a policy"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testCfg()
	cfg.BundlePath = dir
	e := NewEvaluator(cfg)
	if err := e.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	allowed, _, err := e.Evaluate(context.Background(), Input{
		Sources: []string{"user"},
		Scan:    ScanInfo{Tier: "low"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected allowed from bundle-loaded policy")
	}
}

func TestEvaluator_EmptyBundleDir_FailClosed(t *testing.T) {
	cfg := testCfg()
	cfg.BundlePath = t.TempDir()
	e := NewEvaluator(cfg)
	if err := e.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Nothing was prepared, so evaluation fails closed.
	allowed, reason, _ := e.Evaluate(context.Background(), Input{})
	if allowed {
		t.Error("expected denied with empty bundle dir")
	}
	if reason != "no policies loaded" {
		t.Errorf("expected 'no policies loaded', got %q", reason)
	}
}
