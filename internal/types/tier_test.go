package types

import "testing"

func TestTierLevel(t *testing.T) {
	tests := []struct {
		tier  Tier
		level int
	}{
		{TierLow, 0},
		{TierMedium, 1},
		{TierHigh, 2},
		{Tier("invalid"), -1},
	}

	for _, tt := range tests {
		if got := tt.tier.Level(); got != tt.level {
			t.Errorf("%s.Level() = %d, want %d", tt.tier, got, tt.level)
		}
	}
}

func TestTierAtLeast(t *testing.T) {
	tests := []struct {
		tier    Tier
		other   Tier
		atLeast bool
	}{
		{TierHigh, TierLow, true},
		{TierHigh, TierHigh, true},
		{TierMedium, TierHigh, false},
		{TierLow, TierMedium, false},
		{TierMedium, TierMedium, true},
	}

	for _, tt := range tests {
		if got := tt.tier.AtLeast(tt.other); got != tt.atLeast {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.tier, tt.other, got, tt.atLeast)
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		confidence float64
		tier       Tier
	}{
		{0.0, TierLow},
		{0.4, TierLow},
		{0.49, TierLow},
		{0.5, TierMedium},
		{0.6, TierMedium},
		{0.79, TierMedium},
		{0.8, TierHigh},
		{0.85, TierHigh},
		{1.0, TierHigh},
	}

	for _, tt := range tests {
		if got := TierFor(tt.confidence); got != tt.tier {
			t.Errorf("TierFor(%v) = %s, want %s", tt.confidence, got, tt.tier)
		}
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"low", true},
		{"medium", true},
		{"high", true},
		{"HIGH", false},
		{"critical", false},
		{"", false},
	}

	for _, tt := range tests {
		_, ok := ParseTier(tt.input)
		if ok != tt.valid {
			t.Errorf("ParseTier(%q) valid = %v, want %v", tt.input, ok, tt.valid)
		}
	}
}
