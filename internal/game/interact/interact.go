// Package interact implements the interaction resolver: given position,
// facing, and a map it finds the single interactable target, if any.
package interact

import (
	"github.com/evergloam/chimera/internal/game/worldmap"
)

// Kind classifies what an interaction resolved to.
type Kind string

// Interaction kinds.
const (
	KindShop  Kind = "shop"
	KindNPC   Kind = "npc"
	KindEvent Kind = "event"
)

// Target is what the player can interact with right now. Exactly one of NPC
// or Event is set; a shop door resolves with Kind == KindShop and the shop
// event in Event.
type Target struct {
	Kind   Kind
	NPC    *worldmap.NPC
	Event  *worldmap.MapEvent
	Prompt string
}

// State supplies the dynamic predicates the resolver needs.
type State struct {
	// Consumed reports whether an event id has already been opened or
	// collected this playthrough.
	Consumed func(eventID string) bool
	// QuestActive reports whether a quest id is currently active.
	QuestActive func(questID string) bool
	// NPCAt overrides the map's authored NPC placements with live positions.
	// Nil falls back to the authored home cells.
	NPCAt func(x, y int) (*worldmap.NPC, bool)
}

// Resolve finds the interactable target for the player's current cell and
// facing. Priority: a shop event at the player's own cell, then an NPC in the
// faced cell, then an unconsumed facing-event.
//
// Postcondition: Returns (target, true) with a non-empty prompt, or
// (Target{}, false) when nothing is interactable.
func Resolve(pos worldmap.Position, m *worldmap.GameMap, s State) (Target, bool) {
	consumed := func(id string) bool {
		return s.Consumed != nil && s.Consumed(id)
	}

	// Standing on a shop door beats anything in front.
	if event, ok := m.EventAt(pos.X, pos.Y); ok && event.Type == worldmap.EventShop {
		return Target{Kind: KindShop, Event: event, Prompt: "Enter shop"}, true
	}

	dx, dy := pos.Facing.Delta()
	fx, fy := pos.X+dx, pos.Y+dy

	npcAt := s.NPCAt
	if npcAt == nil {
		npcAt = m.NPCAt
	}
	if npc, ok := npcAt(fx, fy); ok {
		return Target{Kind: KindNPC, NPC: npc, Prompt: "Talk"}, true
	}

	event, ok := m.EventAt(fx, fy)
	if !ok || consumed(event.ID) {
		return Target{}, false
	}

	switch event.Type {
	case worldmap.EventTreasure:
		return Target{Kind: KindEvent, Event: event, Prompt: "Open chest"}, true
	case worldmap.EventCollectible:
		if event.Collectible.RequiredQuest != "" {
			if s.QuestActive == nil || !s.QuestActive(event.Collectible.RequiredQuest) {
				return Target{}, false
			}
		}
		return Target{Kind: KindEvent, Event: event, Prompt: "Pick up"}, true
	case worldmap.EventSavePoint:
		return Target{Kind: KindEvent, Event: event, Prompt: "Save"}, true
	case worldmap.EventInn:
		return Target{Kind: KindEvent, Event: event, Prompt: "Rest at the inn"}, true
	case worldmap.EventTrigger:
		return Target{Kind: KindEvent, Event: event, Prompt: "Examine"}, true
	}
	return Target{}, false
}
