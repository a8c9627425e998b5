package pronounce

import (
	"fmt"
	"strings"
)

// Tier is a difficulty level. Lower tiers allow a higher cost.
type Tier string

// Tiers.
const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// ParseTier parses a tier name, case-insensitively.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TierA, TierB, TierC:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTier, s)
}

// Thresholds maps each tier to the cost below which an attempt passes.
type Thresholds map[Tier]float64

// DefaultThresholds returns A=130, B=120, C=110.
func DefaultThresholds() Thresholds {
	return Thresholds{TierA: 130, TierB: 120, TierC: 110}
}

// Lookup returns the threshold of t.
func (th Thresholds) Lookup(t Tier) (float64, error) {
	v, ok := th[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTier, t)
	}
	return v, nil
}

// Aggregation reduces the costs against every reference of a word to one.
type Aggregation string

// Aggregations.
const (
	AggregateMin  Aggregation = "min"
	AggregateMean Aggregation = "mean"
)

// Valid reports whether a is a known aggregation.
func (a Aggregation) Valid() bool {
	return a == AggregateMin || a == AggregateMean
}

// apply returns the aggregated cost and the position of the lowest cost.
// costs must not be empty.
func (a Aggregation) apply(costs []float64) (float64, int) {
	best := 0
	var sum float64
	for i, c := range costs {
		sum += c
		if c < costs[best] {
			best = i
		}
	}
	if a == AggregateMean {
		return sum / float64(len(costs)), best
	}
	return costs[best], best
}

// Points awarded per attempt.
type Points struct {
	Pass int `yaml:"pass" json:"pass"`
	Fail int `yaml:"fail" json:"fail"`
}

// DefaultPoints returns 3 for a pass and 0 for a fail.
func DefaultPoints() Points {
	return Points{Pass: 3, Fail: 0}
}
