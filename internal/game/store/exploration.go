package store

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/game/encounter"
	"github.com/evergloam/chimera/internal/game/movement"
	"github.com/evergloam/chimera/internal/game/worldmap"
)

// MoveOutcome reports what one movement request did.
type MoveOutcome struct {
	// Moved is false when the step was rejected and only facing changed.
	Moved bool
	// EncounterArmed is set when a random or scripted battle is waiting for
	// confirmation.
	EncounterArmed bool
	// MapTransitionArmed is set when a teleport or connection is waiting for
	// confirmation.
	MapTransitionArmed bool
	// Messages are narration lines produced by fired triggers.
	Messages []string
}

// Move resolves one unit step while exploring. Accepted steps count toward
// the encounter policy; landing on teleports, connections, triggers, or
// battle events arms or fires them.
//
// Precondition:  exactly one of dx, dy is nonzero and both lie in {-1, 0, 1}.
// Postcondition: Facing always reflects the requested direction.
func (s *Store) Move(dx, dy int) (MoveOutcome, error) {
	if s.phase != PhaseExplore {
		return MoveOutcome{}, fmt.Errorf("store: cannot move in phase %s", s.phase)
	}
	if s.inputBlocked() {
		return MoveOutcome{}, nil
	}

	res, err := movement.Resolve(s.pos, dx, dy, s.currentMap, movement.Blockers{
		Consumed:    s.EventConsumed,
		QuestActive: s.quests.IsActive,
		NPCOccupied: s.npcOccupied,
	})
	if err != nil {
		return MoveOutcome{}, err
	}

	s.pos = res.Position
	out := MoveOutcome{Moved: res.Moved}
	if !res.Moved {
		return out, nil
	}

	if res.Connection != nil {
		dest := s.connectionEntry(*res.Connection)
		if err := s.pendingMap.Arm(dest); err != nil {
			return MoveOutcome{}, err
		}
		out.MapTransitionArmed = true
		return out, nil
	}
	if res.Teleport != nil {
		dest := MapPending{
			ToMap:  res.Teleport.ToMap,
			ToX:    res.Teleport.ToX,
			ToY:    res.Teleport.ToY,
			Facing: res.Teleport.Facing,
		}
		if err := s.pendingMap.Arm(dest); err != nil {
			return MoveOutcome{}, err
		}
		out.MapTransitionArmed = true
		return out, nil
	}

	if res.Event != nil {
		switch res.Event.Type {
		case worldmap.EventTrigger:
			out.Messages = append(out.Messages, s.fireTrigger(res.Event)...)
		case worldmap.EventBattle:
			if err := s.pendingEncounter.Arm(EncounterPending{
				Enemies:    res.Event.Battle.Enemies,
				Unfleeable: res.Event.Battle.Unfleeable,
				EventID:    res.Event.ID,
			}); err != nil {
				return MoveOutcome{}, err
			}
			out.EncounterArmed = true
			return out, nil
		}
	}

	zone, fired := s.deps.Encounters.Step(s.currentMap.ZonesAt(s.pos.X, s.pos.Y))
	if fired {
		roster := encounter.DrawRoster(s.deps.Source, zone)
		if err := s.pendingEncounter.Arm(EncounterPending{Enemies: roster}); err != nil {
			return MoveOutcome{}, err
		}
		out.EncounterArmed = true
		s.logger.Debug("random encounter armed",
			zap.String("map_id", s.currentMap.ID),
			zap.Strings("roster", roster))
	}
	s.advanceNPCs()
	return out, nil
}

// connectionEntry computes where the player appears on the destination map of
// an edge connection: the opposite edge, with the along-edge coordinate
// preserved and clamped to the destination's bounds.
func (s *Store) connectionEntry(conn worldmap.Connection) MapPending {
	dest := MapPending{ToMap: conn.ToMap, ToX: s.pos.X, ToY: s.pos.Y, Facing: s.pos.Facing}
	m, ok := s.deps.Maps.Get(conn.ToMap)
	if !ok {
		return dest
	}
	switch conn.Direction {
	case "north":
		dest.ToY = m.Height - 1
	case "south":
		dest.ToY = 0
	case "west":
		dest.ToX = m.Width - 1
	case "east":
		dest.ToX = 0
	}
	dest.ToX = clamp(dest.ToX, 0, m.Width-1)
	dest.ToY = clamp(dest.ToY, 0, m.Height-1)
	return dest
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fireTrigger runs a trigger event's Lua hook and consumes once-only
// triggers. A string return from the hook becomes a narration line.
func (s *Store) fireTrigger(ev *worldmap.MapEvent) []string {
	if ev.Trigger.Once {
		s.consumeEvent(ev.ID)
	}
	if s.deps.Scripts == nil {
		return nil
	}
	ret, err := s.deps.Scripts.CallHook(s.currentMap.ID, ev.Trigger.Hook, lua.LString(ev.ID))
	if err != nil {
		s.logger.Warn("trigger hook failed",
			zap.String("event_id", ev.ID),
			zap.String("hook", ev.Trigger.Hook),
			zap.Error(err))
		return nil
	}
	if msg, ok := ret.(lua.LString); ok && msg != "" {
		return []string{string(msg)}
	}
	return nil
}

// EncounterArmed reports whether a battle is waiting for confirmation and
// returns its payload.
func (s *Store) EncounterArmed() (EncounterPending, bool) {
	if !s.pendingEncounter.Armed() {
		return EncounterPending{}, false
	}
	return s.pendingEncounter.Payload()
}

// MapTransitionArmed reports whether a map change is waiting for confirmation
// and returns its payload.
func (s *Store) MapTransitionArmed() (MapPending, bool) {
	if !s.pendingMap.Armed() {
		return MapPending{}, false
	}
	return s.pendingMap.Payload()
}

// ConfirmMapTransition completes an armed map change after the fade finishes.
//
// Postcondition: The player stands on the destination map with a reset
// encounter policy, or an error is returned and nothing changes.
func (s *Store) ConfirmMapTransition() error {
	if s.phase != PhaseExplore {
		return fmt.Errorf("store: cannot change maps in phase %s", s.phase)
	}
	dest, err := s.pendingMap.Confirm()
	if err != nil {
		return err
	}
	pos := worldmap.Position{MapID: dest.ToMap, X: dest.ToX, Y: dest.ToY, Facing: dest.Facing}
	if err := s.enterMap(pos); err != nil {
		// Authored content referenced a missing map. Drop the transition so
		// the player is not stuck with a permanently armed machine.
		s.pendingMap.Clear()
		return err
	}
	s.pendingMap.Clear()
	s.logger.Info("map transition",
		zap.String("map_id", dest.ToMap),
		zap.Int("x", dest.ToX),
		zap.Int("y", dest.ToY))
	return nil
}

// CancelMapTransition drops an armed map change. Used by full resets.
func (s *Store) CancelMapTransition() {
	s.pendingMap.Clear()
}

// ConfirmEncounter starts the armed battle after the intro animation.
//
// Postcondition: Phase() == PhaseCombat with a live battle state, or an error
// is returned and the encounter stays armed.
func (s *Store) ConfirmEncounter() error {
	if s.phase != PhaseExplore {
		return fmt.Errorf("store: cannot start a battle in phase %s", s.phase)
	}
	pending, ok := s.pendingEncounter.Payload()
	if !ok || !s.pendingEncounter.Armed() {
		return fmt.Errorf("store: no armed encounter")
	}

	st, err := s.deps.Engine.Start(s.party, pending.Enemies, pending.Unfleeable)
	if err != nil {
		// An all-unknown roster is authored-content breakage; drop the
		// encounter instead of wedging exploration.
		s.pendingEncounter.Clear()
		return err
	}
	if _, err := s.pendingEncounter.Confirm(); err != nil {
		return err
	}
	s.battleState = st
	s.phase = PhaseCombat
	return nil
}

// EncounterPaused reports the global random-encounter switch.
func (s *Store) EncounterPaused() bool {
	return s.deps.Encounters.Paused()
}

// SetEncounterPaused toggles random encounters, e.g. for story sequences.
func (s *Store) SetEncounterPaused(paused bool) {
	s.deps.Encounters.SetPaused(paused)
}
