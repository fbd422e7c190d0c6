package utils

import (
	"fmt"
	"strings"
)

// ValidateProbability checks that p lies in [0,1], the invariant every
// cached_yes_price / implied_probability / fair value must satisfy.
func ValidateProbability(p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("probability out of range [0,1]: %f", p)
	}
	return nil
}

// ValidateVolume checks that a market's reported volume is non-negative.
func ValidateVolume(v float64) error {
	if v < 0 {
		return fmt.Errorf("volume must be >= 0, got %f", v)
	}
	return nil
}

// ValidateConditionID checks that a condition_id is a non-empty opaque
// identifier (no internal whitespace, which would indicate a parsing bug
// upstream rather than a real identifier).
func ValidateConditionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("condition_id must not be empty")
	}
	if strings.ContainsAny(id, " \t\n") {
		return fmt.Errorf("condition_id must not contain whitespace: %q", id)
	}
	return nil
}

// ValidateAPIKey does a minimal sanity check on an externally supplied API
// key before it is encrypted and stored.
func ValidateAPIKey(key string) error {
	if len(strings.TrimSpace(key)) < 8 {
		return fmt.Errorf("api key too short to be valid")
	}
	return nil
}

// ValidateFairProbabilityPair checks the YES/NO invariant from §4.5:
// |yes_fair + no_fair - 1| <= 0.05.
func ValidateFairProbabilityPair(yesFair, noFair float64) error {
	sum := yesFair + noFair
	delta := sum - 1
	if delta < 0 {
		delta = -delta
	}
	if delta > 0.05 {
		return fmt.Errorf("probability mismatch: yes_fair=%f no_fair=%f sum=%f", yesFair, noFair, sum)
	}
	return nil
}
