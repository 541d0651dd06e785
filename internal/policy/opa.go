package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/open-policy-agent/opa/rego"

	"github.com/af-corp/vigil/internal/config"
)

// Input is the document handed to OPA for evaluation. Policies see where
// the text came from and what the scan concluded, never the text itself.
type Input struct {
	Sources []string `json:"sources"`
	Scan    ScanInfo `json:"scan"`
	Time    TimeInfo `json:"time"`
}

// ScanInfo summarizes the guardrail results and the detector outcome.
type ScanInfo struct {
	Verdict    bool       `json:"verdict"`
	Confidence float64    `json:"confidence"`
	Tier       string     `json:"tier"`
	Categories []string   `json:"categories"`
	Guardrails []RailInfo `json:"guardrails"`
}

type RailInfo struct {
	Name       string `json:"name"`
	Action     string `json:"action"`
	Detections int    `json:"detections"`
}

type TimeInfo struct {
	Hour int    `json:"hour"`
	Day  string `json:"day"`
}

// Evaluator runs scan summaries through compiled Rego policies. It can only
// restrict: a deny turns a pass or flag into a block, never the reverse.
type Evaluator struct {
	mu       sync.RWMutex
	prepared *rego.PreparedEvalQuery
	cfg      config.PolicyConfig
}

// NewEvaluator creates a policy evaluator. Call Load() to compile policies.
func NewEvaluator(cfg config.PolicyConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Load compiles Rego modules from the bundle path.
func (e *Evaluator) Load() error {
	modules, err := loadRegoFiles(e.cfg.BundlePath)
	if err != nil {
		return fmt.Errorf("load rego files: %w", err)
	}
	if len(modules) == 0 {
		slog.Warn("no rego files found", "path", e.cfg.BundlePath)
		return nil
	}
	if err := e.prepare(modules); err != nil {
		return err
	}
	slog.Info("opa policies loaded", "modules", len(modules))
	return nil
}

// LoadFromModules compiles policies from provided module sources (useful for testing).
func (e *Evaluator) LoadFromModules(modules map[string]string) error {
	return e.prepare(modules)
}

func (e *Evaluator) prepare(modules map[string]string) error {
	opts := []func(*rego.Rego){
		rego.Query("[data.vigil.policy.allow, data.vigil.policy.reason]"),
	}
	for name, src := range modules {
		opts = append(opts, rego.Module(name, src))
	}

	prepared, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("prepare rego: %w", err)
	}

	e.mu.Lock()
	e.prepared = &prepared
	e.mu.Unlock()
	return nil
}

// Evaluate runs the policy against the given input.
func (e *Evaluator) Evaluate(ctx context.Context, input Input) (bool, string, error) {
	e.mu.RLock()
	prepared := e.prepared
	e.mu.RUnlock()

	if prepared == nil {
		// No policies loaded; fail closed
		return false, "no policies loaded", nil
	}

	timeout := e.cfg.EvaluationTimeout
	if timeout == 0 {
		timeout = 100 * time.Millisecond
	}

	evalCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := prepared.Eval(evalCtx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Sprintf("policy evaluation error: %v", err), err
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, "no policy result", nil
	}

	// Result is [allow, reason]
	arr, ok := results[0].Expressions[0].Value.([]interface{})
	if !ok || len(arr) < 2 {
		return false, "unexpected policy result format", nil
	}

	allowed, _ := arr[0].(bool)
	reason, _ := arr[1].(string)

	return allowed, reason, nil
}

// loadRegoFiles reads all .rego files from the given directory.
func loadRegoFiles(dir string) (map[string]string, error) {
	modules := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".rego" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		modules[entry.Name()] = string(data)
	}
	return modules, nil
}
