package pii

import (
	"regexp"

	"github.com/af-corp/vigil/internal/config"
)

// Detection kinds. These are the only values reported; matched text never
// leaves the scanner.
const (
	KindEmail      = "email"
	KindPhone      = "phone"
	KindSSN        = "ssn"
	KindCreditCard = "credit_card"
	KindIPAddress  = "ip_address"
)

// Pattern defines a PII detection pattern for one kind.
type Pattern struct {
	Kind  string
	Regex *regexp.Regexp
}

// DefaultPatterns returns the built-in PII patterns.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Kind:  KindEmail,
			Regex: regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
		},
		{
			Kind:  KindPhone,
			Regex: regexp.MustCompile(`\+?[0-9][0-9\s\-()]{7,}[0-9]`),
		},
		{
			Kind:  KindSSN,
			Regex: regexp.MustCompile(`\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`),
		},
		{
			Kind:  KindCreditCard,
			Regex: regexp.MustCompile(`\b(?:[0-9]{4}[ \-]?){3}[0-9]{4}\b`),
		},
		{
			Kind:  KindIPAddress,
			Regex: regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
		},
	}
}

// enabledPatterns filters the default set by the per-kind config toggles.
func enabledPatterns(cfg config.PIIPatterns) []Pattern {
	enabled := map[string]bool{
		KindEmail:      cfg.Email,
		KindPhone:      cfg.Phone,
		KindSSN:        cfg.SSN,
		KindCreditCard: cfg.CreditCard,
		KindIPAddress:  cfg.IPAddress,
	}
	var patterns []Pattern
	for _, p := range DefaultPatterns() {
		if enabled[p.Kind] {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
