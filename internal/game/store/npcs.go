package store

import (
	"github.com/evergloam/chimera/internal/game/worldmap"
)

// initNPCs seeds live NPC positions from the authored home cells. Leaving and
// re-entering a map sends its NPCs back home.
func (s *Store) initNPCs() {
	s.npcPos = make(map[string]worldmap.Cell, len(s.currentMap.NPCs))
	s.npcPatrol = make(map[string]int, len(s.currentMap.NPCs))
	for _, npc := range s.currentMap.NPCs {
		s.npcPos[npc.ID] = worldmap.Cell{X: npc.X, Y: npc.Y}
	}
}

// NPCPosition returns the live cell of an NPC on the current map.
func (s *Store) NPCPosition(id string) (worldmap.Cell, bool) {
	cell, ok := s.npcPos[id]
	return cell, ok
}

// npcOccupied reports whether any NPC currently stands on (x, y).
func (s *Store) npcOccupied(x, y int) bool {
	_, ok := s.npcLookup(x, y)
	return ok
}

// npcLookup finds the NPC currently standing on (x, y), by live position
// rather than authored home cell.
func (s *Store) npcLookup(x, y int) (*worldmap.NPC, bool) {
	if s.currentMap == nil {
		return nil, false
	}
	for i := range s.currentMap.NPCs {
		npc := &s.currentMap.NPCs[i]
		if cell, ok := s.npcPos[npc.ID]; ok && cell.X == x && cell.Y == y {
			return npc, true
		}
	}
	return nil, false
}

// advanceNPCs moves wander and patrol NPCs one cell after each accepted
// player step. Blocked NPCs wait where they are and retry on the next step.
func (s *Store) advanceNPCs() {
	for i := range s.currentMap.NPCs {
		npc := &s.currentMap.NPCs[i]
		switch npc.Behavior {
		case worldmap.BehaviorWander:
			s.wanderStep(npc)
		case worldmap.BehaviorPatrol:
			s.patrolStep(npc)
		}
	}
}

// wanderStep rolls a random direction and takes it when the cell is free.
func (s *Store) wanderStep(npc *worldmap.NPC) {
	d := wanderDeltas[s.deps.Source.Intn(len(wanderDeltas))]
	cur := s.npcPos[npc.ID]
	if s.npcCellFree(cur.X+d.X, cur.Y+d.Y) {
		s.npcPos[npc.ID] = worldmap.Cell{X: cur.X + d.X, Y: cur.Y + d.Y}
	}
}

var wanderDeltas = []worldmap.Cell{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

// patrolStep walks the authored patrol cycle: the NPC heads for the waypoint
// at its current index and advances the index once it arrives.
func (s *Store) patrolStep(npc *worldmap.NPC) {
	if len(npc.PatrolPath) == 0 {
		return
	}
	idx := s.npcPatrol[npc.ID]
	target := npc.PatrolPath[idx%len(npc.PatrolPath)]
	if !s.npcCellFree(target.X, target.Y) {
		return
	}
	s.npcPos[npc.ID] = target
	s.npcPatrol[npc.ID] = (idx + 1) % len(npc.PatrolPath)
}

// npcCellFree reports whether an NPC may step onto (x, y): walkable terrain,
// no player, no other NPC, and no map event underfoot.
func (s *Store) npcCellFree(x, y int) bool {
	if !s.currentMap.Passable(x, y) {
		return false
	}
	if s.pos.X == x && s.pos.Y == y {
		return false
	}
	if s.npcOccupied(x, y) {
		return false
	}
	if _, ok := s.currentMap.EventAt(x, y); ok {
		return false
	}
	return true
}
