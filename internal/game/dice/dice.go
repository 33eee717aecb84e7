// Package dice provides the randomness abstraction and dice-expression
// evaluation used by the Chimera battle, encounter, and loot systems.
package dice

import "fmt"

// Source is the randomness provider for all probabilistic engine code.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RollResult holds the audit trail for a single dice-expression evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string, e.g. "2d6+3 → [4 5] +3 = 12".
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Percent reports whether a roll against a percent chance succeeds.
// A chance of 0 never succeeds; 100 always succeeds.
//
// Precondition: src must be non-nil; chance must be in [0, 100].
func Percent(src Source, chance int) bool {
	if chance <= 0 {
		return false
	}
	if chance >= 100 {
		return true
	}
	return src.Intn(100) < chance
}

// Fraction reports whether a roll against a probability in [0, 1] succeeds.
// The roll has a resolution of 1/10000.
//
// Precondition: src must be non-nil.
func Fraction(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return float64(src.Intn(10000)) < p*10000
}

// IntBetween returns a uniformly distributed int in [min, max].
//
// Precondition: src must be non-nil; min <= max.
func IntBetween(src Source, min, max int) int {
	if min >= max {
		return min
	}
	return min + src.Intn(max-min+1)
}
