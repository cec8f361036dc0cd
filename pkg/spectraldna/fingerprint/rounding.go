package fingerprint

import (
	"math"
	"strconv"
	"strings"
)

// RoundingRule selects how a raw peak is quantized to an integer. The rule is
// part of the fingerprint contract: two parties using different rules will
// disagree on peaks that sit exactly on a half.
type RoundingRule string

const (
	// RoundHalfEven rounds ties to the nearest even integer (324.5 -> 324).
	// It is the default and matches the reference hasher.
	RoundHalfEven RoundingRule = "half-even"
	// RoundHalfAwayFromZero rounds ties away from zero (2.5 -> 3, -2.5 -> -3).
	RoundHalfAwayFromZero RoundingRule = "half-away"
)

// DefaultRounding is used when no rule is configured.
const DefaultRounding = RoundHalfEven

// ParseRoundingRule accepts the canonical names plus a few common aliases.
func ParseRoundingRule(s string) (RoundingRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half-even", "half_even", "even", "bankers":
		return RoundHalfEven, nil
	case "half-away", "half_away", "half-away-from-zero", "away":
		return RoundHalfAwayFromZero, nil
	default:
		return "", invalidInput("rounding", "unknown rounding rule "+strconv.Quote(s))
	}
}

func (r RoundingRule) String() string { return string(r) }

// Quantize rounds v to an integer using the rule. v must be finite and within
// MaxAbsPeak; RawMeasurement.Validate guarantees both.
func (r RoundingRule) Quantize(v float64) int64 {
	switch r {
	case RoundHalfAwayFromZero:
		return int64(math.Round(v))
	default:
		return int64(math.RoundToEven(v))
	}
}

func (r RoundingRule) valid() bool {
	return r == RoundHalfEven || r == RoundHalfAwayFromZero
}
