package types

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Tier boundaries are fixed. They do not follow the verdict threshold.
const (
	tierHighMin   = 0.8
	tierMediumMin = 0.5
)

// Level returns a numeric level for comparison.
// Higher values mean higher risk.
func (t Tier) Level() int {
	switch t {
	case TierLow:
		return 0
	case TierMedium:
		return 1
	case TierHigh:
		return 2
	default:
		return -1
	}
}

// AtLeast returns true if this tier is at or above the given tier.
func (t Tier) AtLeast(other Tier) bool {
	return t.Level() >= other.Level()
}

// TierFor maps a confidence score to its risk tier. Boundaries are inclusive:
// 0.8 is high, 0.5 is medium.
func TierFor(confidence float64) Tier {
	switch {
	case confidence >= tierHighMin:
		return TierHigh
	case confidence >= tierMediumMin:
		return TierMedium
	default:
		return TierLow
	}
}

func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierLow, TierMedium, TierHigh:
		return Tier(s), true
	default:
		return "", false
	}
}
