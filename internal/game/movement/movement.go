// Package movement implements the collision resolver: given a position and
// a unit delta it computes the next position. Blocked moves update facing
// and nothing else.
package movement

import (
	"fmt"

	"github.com/evergloam/chimera/internal/game/worldmap"
)

// Blockers supplies the dynamic state the resolver needs to judge whether a
// map event blocks the target cell.
type Blockers struct {
	// Consumed reports whether an event id has already been opened or
	// collected this playthrough.
	Consumed func(eventID string) bool
	// QuestActive reports whether a quest id is currently active. Used by
	// collectible events that only block while their required quest runs.
	QuestActive func(questID string) bool
	// NPCOccupied overrides the map's authored NPC placements with live
	// positions. Nil falls back to the authored home cells.
	NPCOccupied func(x, y int) bool
}

// Result is the outcome of one movement request.
type Result struct {
	// Position is the updated position. Facing always reflects the requested
	// direction, even when the step itself was rejected.
	Position worldmap.Position
	// Moved is false when the step was rejected and only facing changed.
	Moved bool
	// Teleport is set when the accepted step landed on a teleport event. The
	// caller arms a pending map transition rather than switching maps here.
	Teleport *worldmap.TeleportPayload
	// Connection is set when the step walked off the map edge through an
	// inter-map connection. Armed the same way as a teleport.
	Connection *worldmap.Connection
	// Event is set when the accepted step landed on an unconsumed trigger or
	// battle event the orchestrator should fire.
	Event *worldmap.MapEvent
}

// Resolve computes the next position for a unit move on m.
//
// Precondition:  exactly one of dx, dy is nonzero and both lie in {-1, 0, 1};
// m must be the map pos.MapID names.
// Postcondition: On rejection the returned position differs from pos only in
// facing. On acceptance x/y are updated and at most one of Teleport,
// Connection, or Event is set.
func Resolve(pos worldmap.Position, dx, dy int, m *worldmap.GameMap, b Blockers) (Result, error) {
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0) == (dy == 0) {
		return Result{}, fmt.Errorf("movement: invalid delta (%d,%d)", dx, dy)
	}
	facing := worldmap.FacingFor(dx, dy)

	res := Result{Position: pos}
	res.Position.Facing = facing

	tx, ty := pos.X+dx, pos.Y+dy

	if !m.InBounds(tx, ty) {
		// Walking off the edge through a connection arms a map transition;
		// otherwise the edge is a wall.
		if conn, ok := m.ConnectionFor(edgeFor(facing)); ok {
			res.Moved = true
			res.Connection = &conn
		}
		return res, nil
	}

	if !m.Passable(tx, ty) {
		return res, nil
	}
	if b.NPCOccupied != nil {
		if b.NPCOccupied(tx, ty) {
			return res, nil
		}
	} else if _, occupied := m.NPCAt(tx, ty); occupied {
		return res, nil
	}

	event, hasEvent := m.EventAt(tx, ty)
	if hasEvent {
		consumed := b.Consumed != nil && b.Consumed(event.ID)
		questActive := func(id string) bool {
			return b.QuestActive != nil && b.QuestActive(id)
		}
		if event.BlocksMovement(consumed, questActive) {
			return res, nil
		}
	}

	res.Position.X = tx
	res.Position.Y = ty
	res.Moved = true

	if hasEvent {
		consumed := b.Consumed != nil && b.Consumed(event.ID)
		switch event.Type {
		case worldmap.EventTeleport:
			res.Teleport = event.Teleport
		case worldmap.EventTrigger:
			if !(event.Trigger.Once && consumed) {
				res.Event = event
			}
		case worldmap.EventBattle:
			if !consumed {
				res.Event = event
			}
		}
	}

	return res, nil
}

// edgeFor maps a facing to the map-edge direction connections are keyed by.
func edgeFor(f worldmap.Facing) string {
	switch f {
	case worldmap.FaceUp:
		return "north"
	case worldmap.FaceDown:
		return "south"
	case worldmap.FaceLeft:
		return "west"
	default:
		return "east"
	}
}
