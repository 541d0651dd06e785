package config

import (
	"fmt"
	"time"
)

type Config struct {
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Guard     GuardConfig     `yaml:"guard"`
}

type TelemetryConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type GuardConfig struct {
	Secrets   SecretsConfig   `yaml:"secrets"`
	Jailbreak JailbreakConfig `yaml:"jailbreak"`
	PII       PIIConfig       `yaml:"pii"`
	Policy    PolicyConfig    `yaml:"policy"`
}

type SecretsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type JailbreakConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
}

type PIIConfig struct {
	Enabled  bool        `yaml:"enabled"`
	Block    bool        `yaml:"block"`
	Patterns PIIPatterns `yaml:"patterns"`
}

// PIIPatterns toggles individual PII kinds. All default to on.
type PIIPatterns struct {
	Email      bool `yaml:"email"`
	Phone      bool `yaml:"phone"`
	SSN        bool `yaml:"ssn"`
	CreditCard bool `yaml:"credit_card"`
	IPAddress  bool `yaml:"ip_address"`
}

type PolicyConfig struct {
	Enabled           bool          `yaml:"enabled"`
	BundlePath        string        `yaml:"bundle_path"`
	EvaluationTimeout time.Duration `yaml:"evaluation_timeout"`
}

// Validate rejects configurations the engine cannot run with. A zero
// threshold is fine; it means unset and the detector applies its default.
func (c *Config) Validate() error {
	if t := c.Guard.Jailbreak.Threshold; t < 0 || t > 1 {
		return fmt.Errorf("jailbreak threshold %v outside [0, 1]", t)
	}
	if c.Guard.Policy.Enabled && c.Guard.Policy.BundlePath == "" {
		return fmt.Errorf("policy enabled without a bundle path")
	}
	if c.Guard.Policy.EvaluationTimeout < 0 {
		return fmt.Errorf("negative policy evaluation timeout %v", c.Guard.Policy.EvaluationTimeout)
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Telemetry: TelemetryConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		Guard: GuardConfig{
			Secrets: SecretsConfig{Enabled: true},
			Jailbreak: JailbreakConfig{
				Enabled:   true,
				Threshold: 0.7,
			},
			PII: PIIConfig{
				Enabled: true,
				Block:   false,
				Patterns: PIIPatterns{
					Email:      true,
					Phone:      true,
					SSN:        true,
					CreditCard: true,
					IPAddress:  true,
				},
			},
			Policy: PolicyConfig{
				Enabled:           false,
				BundlePath:        "/etc/vigil/policies",
				EvaluationTimeout: 100 * time.Millisecond,
			},
		},
	}
}
