package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergloam/chimera/internal/game/battle"
	"github.com/evergloam/chimera/internal/game/character"
	"github.com/evergloam/chimera/internal/game/condition"
	"github.com/evergloam/chimera/internal/game/encounter"
	"github.com/evergloam/chimera/internal/game/store"
	"github.com/evergloam/chimera/internal/game/worldmap"
	"github.com/evergloam/chimera/internal/storage/savefile"
)

// npcTestStore builds a store over two event-free maps: a yard with a patrol
// guard cycling between two cells, and a field with a wandering cat.
func npcTestStore(t *testing.T, src *scriptedSource) *store.Store {
	t.Helper()
	reg := testRegistry(t)

	yard := openMap("castle_yard", "Castle Yard", 8, 8)
	yard.NPCs = []worldmap.NPC{
		{ID: "gate_guard", X: 5, Y: 1, Facing: worldmap.FaceDown,
			DialogueID: "elder_rowan_intro",
			Behavior:   worldmap.BehaviorPatrol,
			PatrolPath: []worldmap.Cell{{X: 5, Y: 2}, {X: 5, Y: 1}}},
	}
	require.NoError(t, yard.Validate())

	field := openMap("open_field", "Open Field", 8, 8)
	field.NPCs = []worldmap.NPC{
		{ID: "stray_cat", X: 4, Y: 4, Facing: worldmap.FaceDown,
			Behavior: worldmap.BehaviorWander},
	}
	require.NoError(t, field.Validate())

	maps := worldmap.NewRegistry()
	require.NoError(t, maps.Register(yard))
	require.NoError(t, maps.Register(field))

	policy, err := encounter.NewPolicy(2, 2, src)
	require.NoError(t, err)
	saves, err := savefile.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	s, err := store.New(store.Deps{
		Registry:   reg,
		Maps:       maps,
		Engine:     battle.NewEngine(reg, condition.NewRegistry(), src, 50, 60, nil),
		Encounters: policy,
		Saves:      saves,
		Source:     src,
	})
	require.NoError(t, err)
	return s
}

func startGameOn(t *testing.T, s *store.Store, mapID string, x, y int) {
	t.Helper()
	reg := testRegistry(t)
	def, ok := reg.Class("sentinel")
	require.True(t, ok)
	hero := character.NewFromClass("hero", "Aster", def)
	require.NoError(t, s.NewGame([]*character.Character{hero}, worldmap.Position{
		MapID: mapID, X: x, Y: y, Facing: worldmap.FaceDown,
	}))
	require.NoError(t, s.CompleteBoot())
}

func npcCell(t *testing.T, s *store.Store, id string) worldmap.Cell {
	t.Helper()
	cell, ok := s.NPCPosition(id)
	require.True(t, ok, "NPC %s not placed", id)
	return cell
}

func TestStore_NPCs_PatrolCyclesWaypoints(t *testing.T) {
	s := npcTestStore(t, &scriptedSource{})
	startGameOn(t, s, "castle_yard", 1, 1)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 1}, npcCell(t, s, "gate_guard"))

	mustMove(t, s, 0, 1)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 2}, npcCell(t, s, "gate_guard"))

	mustMove(t, s, 0, -1)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 1}, npcCell(t, s, "gate_guard"))
}

func TestStore_NPCs_BlockAtLiveCell(t *testing.T) {
	s := npcTestStore(t, &scriptedSource{})
	startGameOn(t, s, "castle_yard", 3, 2)

	// The guard starts at (5,1) and steps to its first waypoint (5,2) once
	// the player has moved.
	mustMove(t, s, 1, 0)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 2}, npcCell(t, s, "gate_guard"))

	// (5,2) is occupied now even though the authored home cell is (5,1).
	out, err := s.Move(1, 0)
	require.NoError(t, err)
	assert.False(t, out.Moved)
	assert.Equal(t, 4, s.Position().X)
	assert.Equal(t, 2, s.Position().Y)
}

func TestStore_NPCs_WaitWhenPlayerOccupiesWaypoint(t *testing.T) {
	s := npcTestStore(t, &scriptedSource{})
	startGameOn(t, s, "castle_yard", 4, 2)

	// The player reaches (5,2) before the guard does, so the guard waits at
	// home rather than stepping onto the player.
	mustMove(t, s, 1, 0)
	assert.Equal(t, 5, s.Position().X)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 1}, npcCell(t, s, "gate_guard"))

	// Once the player vacates the waypoint the guard takes it.
	mustMove(t, s, 1, 0)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 2}, npcCell(t, s, "gate_guard"))
}

func TestStore_NPCs_InteractUsesLivePosition(t *testing.T) {
	s := npcTestStore(t, &scriptedSource{})
	startGameOn(t, s, "castle_yard", 3, 2)

	mustMove(t, s, 1, 0) // guard moves to (5,2), player at (4,2) facing right

	out, err := s.Interact()
	require.NoError(t, err)
	assert.True(t, out.Acted)
	assert.Equal(t, store.PhaseDialogue, s.Phase())
}

func TestStore_NPCs_WanderFollowsRolls(t *testing.T) {
	// Wander delta order: up, down, left, right.
	s := npcTestStore(t, &scriptedSource{values: []int{3, 0}})
	startGameOn(t, s, "open_field", 1, 1)

	mustMove(t, s, 0, 1)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 4}, npcCell(t, s, "stray_cat"))

	mustMove(t, s, 0, 1)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 3}, npcCell(t, s, "stray_cat"))
}

func TestStore_NPCs_WanderStaysInBounds(t *testing.T) {
	// Every roll points up; the cat stops at the map edge.
	s := npcTestStore(t, &scriptedSource{values: []int{0, 0, 0, 0, 0, 0}})
	startGameOn(t, s, "open_field", 1, 1)

	// The player zig-zags below while the cat climbs; the cat reaches (4,0)
	// after four steps and holds the edge for the remaining two.
	for i := 0; i < 6; i++ {
		if i%2 == 0 {
			mustMove(t, s, 1, 0)
		} else {
			mustMove(t, s, -1, 0)
		}
	}
	assert.Equal(t, worldmap.Cell{X: 4, Y: 0}, npcCell(t, s, "stray_cat"))
}

func TestStore_NPCs_ResetOnMapReentry(t *testing.T) {
	s := npcTestStore(t, &scriptedSource{})
	startGameOn(t, s, "castle_yard", 1, 1)

	mustMove(t, s, 0, 1)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 2}, npcCell(t, s, "gate_guard"))

	// Re-entering the map snaps NPCs back to their authored home cells.
	s.ReturnToTitle()
	startGameOn(t, s, "castle_yard", 1, 1)
	assert.Equal(t, worldmap.Cell{X: 5, Y: 1}, npcCell(t, s, "gate_guard"))
}
