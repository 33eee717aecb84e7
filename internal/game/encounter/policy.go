// Package encounter implements the random-encounter step policy: a
// re-randomized step threshold combined with per-zone probability rolls.
package encounter

import (
	"fmt"

	"github.com/evergloam/chimera/internal/game/dice"
	"github.com/evergloam/chimera/internal/game/worldmap"
)

// Policy tracks steps taken since the last encounter and decides when the
// next one fires. Not safe for concurrent use; the store serialises access.
type Policy struct {
	minSteps int
	maxSteps int
	src      dice.Source

	stepsSinceLast int
	threshold      int
	paused         bool
}

// NewPolicy creates a policy whose step threshold is re-randomized within
// [minSteps, maxSteps] after every encounter and on every map load.
//
// Precondition:  1 <= minSteps <= maxSteps; src must not be nil.
// Postcondition: The policy is unpaused with a fresh threshold.
func NewPolicy(minSteps, maxSteps int, src dice.Source) (*Policy, error) {
	if minSteps < 1 || maxSteps < minSteps {
		return nil, fmt.Errorf("encounter: invalid step range [%d, %d]", minSteps, maxSteps)
	}
	p := &Policy{minSteps: minSteps, maxSteps: maxSteps, src: src}
	p.Reset()
	return p, nil
}

// Reset zeroes the step counter and draws a new threshold. Called when a map
// loads and after every fired encounter.
//
// Postcondition: StepsSinceLast() == 0 and minSteps <= Threshold() <= maxSteps.
func (p *Policy) Reset() {
	p.stepsSinceLast = 0
	p.threshold = dice.IntBetween(p.src, p.minSteps, p.maxSteps)
}

// SetPaused toggles the global encounter switch. While paused, Step
// short-circuits before counting or rolling.
func (p *Policy) SetPaused(paused bool) {
	p.paused = paused
}

// Paused reports whether encounters are globally disabled.
func (p *Policy) Paused() bool {
	return p.paused
}

// StepsSinceLast returns the current step count.
func (p *Policy) StepsSinceLast() int {
	return p.stepsSinceLast
}

// Threshold returns the current step threshold.
func (p *Policy) Threshold() int {
	return p.threshold
}

// Step records one accepted move inside zones and decides whether an
// encounter fires. Both the step gate and the fired zone's probability roll
// must pass independently. On a fire, the counter resets and the threshold is
// re-randomized.
//
// Precondition:  zones are the encounter zones containing the player's cell;
// pass nil when the cell lies in none.
// Postcondition: Returns (zone, true) exactly when an encounter fired.
func (p *Policy) Step(zones []worldmap.EncounterZone) (worldmap.EncounterZone, bool) {
	if p.paused {
		return worldmap.EncounterZone{}, false
	}

	p.stepsSinceLast++
	if len(zones) == 0 || p.stepsSinceLast < p.threshold {
		return worldmap.EncounterZone{}, false
	}

	for _, zone := range zones {
		if dice.Fraction(p.src, zone.Chance) {
			p.Reset()
			return zone, true
		}
	}
	return worldmap.EncounterZone{}, false
}

// DrawRoster draws one to three enemies from a zone's pool, duplicates
// allowed.
//
// Precondition:  zone.Enemies must not be empty; src must not be nil.
// Postcondition: Every returned id comes from zone.Enemies.
func DrawRoster(src dice.Source, zone worldmap.EncounterZone) []string {
	count := dice.IntBetween(src, 1, 3)
	roster := make([]string, 0, count)
	for i := 0; i < count; i++ {
		roster = append(roster, zone.Enemies[src.Intn(len(zone.Enemies))])
	}
	return roster
}
