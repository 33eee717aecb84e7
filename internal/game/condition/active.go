package condition

import (
	"fmt"
	"sort"
)

// ActiveCondition tracks one applied condition on a combatant.
type ActiveCondition struct {
	Def               *ConditionDef
	Stacks            int
	DurationRemaining int // -1 for battle-long conditions
}

// ActiveSet tracks all conditions currently applied to one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	conditions map[string]*ActiveCondition
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{conditions: make(map[string]*ActiveCondition)}
}

// Apply adds or refreshes a condition. Re-applying a stackable condition
// increments stacks (capped at MaxStacks); an unstackable one stays at 1.
// duration is rounds remaining; pass 0 to use the definition's default, which
// is -1 for battle-long conditions.
//
// Precondition:  def must not be nil.
// Postcondition: Has(def.ID) is true; DurationRemaining is extended, never
// shortened, on re-apply.
func (s *ActiveSet) Apply(def *ConditionDef, duration int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if duration == 0 {
		if def.DurationType == DurationBattle {
			duration = -1
		} else {
			duration = def.DefaultDuration
		}
	}

	if existing, ok := s.conditions[def.ID]; ok {
		if def.MaxStacks > 0 && existing.Stacks < def.MaxStacks {
			existing.Stacks++
		}
		if duration == -1 || duration > existing.DurationRemaining {
			existing.DurationRemaining = duration
		}
		return nil
	}

	s.conditions[def.ID] = &ActiveCondition{
		Def:               def,
		Stacks:            1,
		DurationRemaining: duration,
	}
	return nil
}

// Remove deletes the condition with the given ID. Absent ids are a no-op.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	delete(s.conditions, id)
}

// Clear removes every active condition. Called when a battle ends.
func (s *ActiveSet) Clear() {
	s.conditions = make(map[string]*ActiveCondition)
}

// Tick decrements DurationRemaining on rounds-type conditions and removes
// the ones that expire. Battle-long conditions (DurationRemaining == -1) are
// untouched.
//
// Postcondition: For every id in the returned slice, Has(id) is false.
func (s *ActiveSet) Tick() []string {
	var expired []string
	for id, ac := range s.conditions {
		if ac.Def.DurationType != DurationRounds || ac.DurationRemaining < 0 {
			continue
		}
		ac.DurationRemaining--
		if ac.DurationRemaining <= 0 {
			expired = append(expired, id)
			delete(s.conditions, id)
		}
	}
	sort.Strings(expired)
	return expired
}

// RoundDamage sums the per-round damage of all active conditions, stacks
// included.
func (s *ActiveSet) RoundDamage() int {
	total := 0
	for _, ac := range s.conditions {
		total += ac.Def.DamagePerRound * ac.Stacks
	}
	return total
}

// SkipsTurn reports whether any active condition forces the combatant to
// lose its action.
func (s *ActiveSet) SkipsTurn() bool {
	for _, ac := range s.conditions {
		if ac.Def.SkipTurn {
			return true
		}
	}
	return false
}

// Penalties returns the summed attack, defense, and speed penalties of all
// active conditions, stacks included.
func (s *ActiveSet) Penalties() (attack, defense, speed int) {
	for _, ac := range s.conditions {
		attack += ac.Def.AttackPenalty * ac.Stacks
		defense += ac.Def.DefensePenalty * ac.Stacks
		speed += ac.Def.SpeedPenalty * ac.Stacks
	}
	return attack, defense, speed
}

// Has reports whether the condition with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Stacks returns the current stack count for condition id, or 0 if absent.
func (s *ActiveSet) Stacks(id string) int {
	if ac, ok := s.conditions[id]; ok {
		return ac.Stacks
	}
	return 0
}

// IDs returns the active condition ids in sorted order.
func (s *ActiveSet) IDs() []string {
	out := make([]string, 0, len(s.conditions))
	for id := range s.conditions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
