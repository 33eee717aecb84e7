package battle

import "sort"

// Outcome is the battle's resolution state.
type Outcome int

// Battle outcomes.
const (
	OutcomeOngoing Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeFled
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeFled:
		return "fled"
	default:
		return "ongoing"
	}
}

// ItemReward is one rolled item drop.
type ItemReward struct {
	ItemID   string
	Quantity int
}

// Rewards is the finalized yield of a won battle.
type Rewards struct {
	Experience int
	Gold       int
	Items      []ItemReward
}

// State is the transient state of one battle. Created when an encounter
// confirms, destroyed when the battle ends; never persisted.
type State struct {
	// ID identifies this battle instance.
	ID string
	// Combatants holds the party copies followed by the enemy instances.
	Combatants []*Combatant
	// Round counts from 1.
	Round int
	// Unfleeable blocks the flee action for scripted battles.
	Unfleeable bool

	// turnOrder is the speed-sorted id list for the current round.
	turnOrder []string
	turnIndex int

	// rewards is set exactly once by FinalizeRewards.
	rewards   *Rewards
	finalized bool

	fled bool
}

// Combatant returns the combatant with the given id, if present.
//
// Postcondition: Returns (combatant, true) if found, or (nil, false) otherwise.
func (s *State) Combatant(id string) (*Combatant, bool) {
	for _, c := range s.Combatants {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Party returns the party-side combatants in roster order.
func (s *State) Party() []*Combatant {
	var out []*Combatant
	for _, c := range s.Combatants {
		if !c.IsEnemy() {
			out = append(out, c)
		}
	}
	return out
}

// Enemies returns the enemy instances in roster order.
func (s *State) Enemies() []*Combatant {
	var out []*Combatant
	for _, c := range s.Combatants {
		if c.IsEnemy() {
			out = append(out, c)
		}
	}
	return out
}

// TurnOrder returns the current round's id order.
func (s *State) TurnOrder() []string {
	out := make([]string, len(s.turnOrder))
	copy(out, s.turnOrder)
	return out
}

// CurrentActor returns the combatant whose turn it is, skipping combatants
// that went down or fled earlier in the round.
//
// Postcondition: Returns (nil, false) when the round is exhausted or the
// battle has resolved.
func (s *State) CurrentActor() (*Combatant, bool) {
	if s.Outcome() != OutcomeOngoing {
		return nil, false
	}
	for s.turnIndex < len(s.turnOrder) {
		c, ok := s.Combatant(s.turnOrder[s.turnIndex])
		if ok && c.IsActive() {
			return c, true
		}
		s.turnIndex++
	}
	return nil, false
}

// AdvanceTurn moves to the next actor in the round.
func (s *State) AdvanceTurn() {
	s.turnIndex++
}

// RoundExhausted reports whether every actor in the order has acted.
func (s *State) RoundExhausted() bool {
	_, ok := s.CurrentActor()
	return !ok
}

// sortTurnOrder rebuilds turnOrder for a new round: active combatants by
// descending effective speed, ties broken by roster order.
func (s *State) sortTurnOrder() {
	type entry struct {
		id    string
		speed int
		index int
	}
	entries := make([]entry, 0, len(s.Combatants))
	for i, c := range s.Combatants {
		if !c.IsActive() {
			continue
		}
		entries = append(entries, entry{id: c.ID, speed: c.effectiveSpeed(), index: i})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].speed != entries[b].speed {
			return entries[a].speed > entries[b].speed
		}
		return entries[a].index < entries[b].index
	})
	s.turnOrder = make([]string, len(entries))
	for i, e := range entries {
		s.turnOrder[i] = e.id
	}
	s.turnIndex = 0
}

// Outcome derives the battle's resolution from combatant state. Victory and
// defeat cannot hold simultaneously: a battle with every combatant down
// resolves as defeat.
func (s *State) Outcome() Outcome {
	if s.fled {
		return OutcomeFled
	}
	partyDown := true
	for _, c := range s.Party() {
		if c.IsActive() {
			partyDown = false
			break
		}
	}
	if partyDown {
		return OutcomeDefeat
	}
	enemiesDown := true
	for _, c := range s.Enemies() {
		if !c.IsDown() {
			enemiesDown = false
			break
		}
	}
	if enemiesDown {
		return OutcomeVictory
	}
	return OutcomeOngoing
}

// Finalized reports whether rewards have been computed.
func (s *State) Finalized() bool { return s.finalized }

// Rewards returns the finalized rewards, if any.
func (s *State) Rewards() (*Rewards, bool) {
	return s.rewards, s.finalized
}
