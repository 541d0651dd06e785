package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/af-corp/vigil/internal/config"
	"github.com/af-corp/vigil/internal/guard"
	"github.com/af-corp/vigil/internal/guard/jailbreak"
	"github.com/af-corp/vigil/internal/guard/pii"
	"github.com/af-corp/vigil/internal/guard/secrets"
	"github.com/af-corp/vigil/internal/policy"
	"github.com/af-corp/vigil/internal/telemetry"
	"github.com/af-corp/vigil/internal/types"
)

// Engine orchestrates a scan: screening guardrails first, then the jailbreak
// detector, then the policy overlay. All parts are fixed at construction;
// config reloads take effect by building a new engine.
type Engine struct {
	screens  *guard.Chain
	detector *jailbreak.Detector
	policy   *policy.Evaluator
	metrics  *telemetry.Metrics
}

// Decision is the combined result of one scan.
type Decision struct {
	Action    guard.Action       `json:"action"`
	Reason    string             `json:"reason,omitempty"`
	Jailbreak *jailbreak.Outcome `json:"jailbreak,omitempty"`
	Results   []guard.Result     `json:"guardrails"`
}

// New assembles an engine. The policy evaluator and metrics may be nil.
func New(screens *guard.Chain, detector *jailbreak.Detector, evaluator *policy.Evaluator, metrics *telemetry.Metrics) *Engine {
	if screens == nil {
		screens = guard.NewChain()
	}
	return &Engine{
		screens:  screens,
		detector: detector,
		policy:   evaluator,
		metrics:  metrics,
	}
}

// BuildFromConfig constructs the enabled screens, the detector, and the
// policy evaluator from a config snapshot. A policy bundle that fails to
// compile is a startup error.
func BuildFromConfig(cfg *config.Config, metrics *telemetry.Metrics) (*Engine, error) {
	var rails []guard.Guardrail
	if cfg.Guard.Secrets.Enabled {
		rails = append(rails, secrets.NewScanner())
	}
	if cfg.Guard.PII.Enabled {
		rails = append(rails, pii.NewScanner(cfg.Guard.PII))
	}

	var detector *jailbreak.Detector
	if cfg.Guard.Jailbreak.Enabled {
		detector = jailbreak.NewDetector(jailbreak.Config{Threshold: cfg.Guard.Jailbreak.Threshold})
	}

	var evaluator *policy.Evaluator
	if cfg.Guard.Policy.Enabled {
		evaluator = policy.NewEvaluator(cfg.Guard.Policy)
		if err := evaluator.Load(); err != nil {
			return nil, fmt.Errorf("load policies: %w", err)
		}
	}

	return New(guard.NewChain(rails...), detector, evaluator, metrics), nil
}

// Scan runs all inputs through the engine and returns one decision.
// Screen blocks win over the detector verdict, which wins over policy
// denial; the policy overlay can only restrict, never un-block.
func (e *Engine) Scan(ctx context.Context, inputs []types.Input) Decision {
	start := time.Now()

	results, blocked := e.screens.Run(ctx, inputs)
	if blocked != nil {
		slog.Warn("input blocked by guardrail",
			"guardrail", blocked.Guardrail,
			"detections", blocked.Detections,
			"score", blocked.Score,
		)
		return e.finish(start, Decision{
			Action:  guard.ActionBlock,
			Reason:  blocked.Message,
			Results: results,
		})
	}

	var outcome *jailbreak.Outcome
	if e.detector != nil {
		o := e.detector.DetectAll(inputs)
		outcome = &o
		r := detectionResult(o)
		results = append(results, r)
		if r.Action == guard.ActionBlock {
			slog.Warn("jailbreak detected",
				"confidence", o.Confidence,
				"tier", o.Tier,
				"matches", len(o.Matches),
			)
			return e.finish(start, Decision{
				Action:    guard.ActionBlock,
				Reason:    o.Explanation,
				Jailbreak: outcome,
				Results:   results,
			})
		}
	}

	if e.policy != nil {
		allowed, reason, err := e.policy.Evaluate(ctx, policyInput(inputs, outcome, results))
		if err != nil {
			slog.Error("policy evaluation failed", "error", err)
			// Fail closed
			return e.finish(start, Decision{
				Action:    guard.ActionBlock,
				Reason:    "Policy evaluation failed: " + err.Error(),
				Jailbreak: outcome,
				Results:   results,
			})
		}
		if !allowed {
			slog.Warn("input denied by policy", "reason", reason)
			return e.finish(start, Decision{
				Action:    guard.ActionBlock,
				Reason:    "Input denied by policy: " + reason,
				Jailbreak: outcome,
				Results:   results,
			})
		}
	}

	action := guard.ActionPass
	for _, r := range results {
		if r.Action == guard.ActionFlag {
			action = guard.ActionFlag
			break
		}
	}
	return e.finish(start, Decision{
		Action:    action,
		Jailbreak: outcome,
		Results:   results,
	})
}

// finish records metrics for a completed scan.
func (e *Engine) finish(start time.Time, d Decision) Decision {
	if e.metrics == nil {
		return d
	}
	for _, r := range d.Results {
		e.metrics.RecordGuardrailAction(r.Guardrail, string(r.Action))
	}
	if d.Jailbreak != nil {
		seen := map[jailbreak.Category]bool{}
		for _, m := range d.Jailbreak.Matches {
			if seen[m.Category] {
				continue
			}
			seen[m.Category] = true
			e.metrics.RecordDetection(string(m.Category), string(d.Jailbreak.Tier))
		}
	}
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	e.metrics.RecordScan(string(d.Action), durationMs)
	return d
}

// detectionResult renders the detector outcome as a guardrail result so one
// report covers the whole chain. A verdict blocks; a medium or higher tier
// without a verdict flags.
func detectionResult(o jailbreak.Outcome) guard.Result {
	r := guard.Result{
		Guardrail:  "jailbreak",
		Action:     guard.ActionPass,
		Detections: len(o.Matches),
		Score:      o.Confidence,
	}
	switch {
	case o.Jailbreak:
		r.Action = guard.ActionBlock
		r.Message = o.Explanation
	case o.Tier.AtLeast(types.TierMedium):
		r.Action = guard.ActionFlag
	}
	return r
}

// policyInput assembles the OPA document from the scan so far.
func policyInput(inputs []types.Input, outcome *jailbreak.Outcome, results []guard.Result) policy.Input {
	var sources []string
	seen := map[string]bool{}
	for _, in := range inputs {
		if seen[in.Source] {
			continue
		}
		seen[in.Source] = true
		sources = append(sources, in.Source)
	}

	scan := policy.ScanInfo{}
	if outcome != nil {
		scan.Verdict = outcome.Jailbreak
		scan.Confidence = outcome.Confidence
		scan.Tier = string(outcome.Tier)
		catSeen := map[jailbreak.Category]bool{}
		for _, m := range outcome.Matches {
			if catSeen[m.Category] {
				continue
			}
			catSeen[m.Category] = true
			scan.Categories = append(scan.Categories, string(m.Category))
		}
	}
	for _, r := range results {
		scan.Guardrails = append(scan.Guardrails, policy.RailInfo{
			Name:       r.Guardrail,
			Action:     string(r.Action),
			Detections: r.Detections,
		})
	}

	now := time.Now().UTC()
	return policy.Input{
		Sources: sources,
		Scan:    scan,
		Time: policy.TimeInfo{
			Hour: now.Hour(),
			Day:  now.Weekday().String(),
		},
	}
}
