// Package worldmap provides the tile map model: layered grids, static objects,
// NPC placements, typed map events, encounter zones, and inter-map connections.
package worldmap

import "fmt"

// Facing is the direction a player or NPC faces.
type Facing string

// The four cardinal facings.
const (
	FaceUp    Facing = "up"
	FaceDown  Facing = "down"
	FaceLeft  Facing = "left"
	FaceRight Facing = "right"
)

// IsValid reports whether f is one of the four cardinal facings.
func (f Facing) IsValid() bool {
	switch f {
	case FaceUp, FaceDown, FaceLeft, FaceRight:
		return true
	}
	return false
}

// Delta returns the unit (dx, dy) step for this facing. Up decreases y.
func (f Facing) Delta() (int, int) {
	switch f {
	case FaceUp:
		return 0, -1
	case FaceDown:
		return 0, 1
	case FaceLeft:
		return -1, 0
	case FaceRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// FacingFor returns the facing that corresponds to a unit step.
// A zero or diagonal step returns FaceDown.
func FacingFor(dx, dy int) Facing {
	switch {
	case dx > 0:
		return FaceRight
	case dx < 0:
		return FaceLeft
	case dy < 0:
		return FaceUp
	case dy > 0:
		return FaceDown
	default:
		return FaceDown
	}
}

// Position is a player location: a cell on a map plus a facing.
type Position struct {
	X      int
	Y      int
	MapID  string
	Facing Facing
}

// Cell is a single grid coordinate, used for collision offsets and patrol paths.
type Cell struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// StaticObject is a decorative map fixture with an optional collision footprint.
type StaticObject struct {
	// X, Y anchor the object's top-left cell.
	X int
	Y int
	// Width and Height give the footprint size in cells.
	Width  int
	Height int
	// Sprite is the renderer's asset reference. Opaque to the engine.
	Sprite string
	// CollisionOffsets lists footprint cells (relative to the anchor) that block
	// movement. Empty = the object is walk-through.
	CollisionOffsets []Cell
}

// Behavior describes how an NPC moves on the map.
type Behavior string

// NPC movement behaviors.
const (
	BehaviorStatic Behavior = "static"
	BehaviorWander Behavior = "wander"
	BehaviorPatrol Behavior = "patrol"
)

// NPC is a non-player character placed on a map.
type NPC struct {
	// ID uniquely identifies this NPC within the map.
	ID string
	// X, Y is the NPC's home cell.
	X int
	Y int
	// Facing is the initial facing.
	Facing Facing
	// DialogueID references the dialogue graph opened on interaction.
	DialogueID string
	// Behavior is static, wander, or patrol.
	Behavior Behavior
	// PatrolPath is the ordered cell cycle for patrol behavior.
	PatrolPath []Cell
}

// EncounterZone is a rectangular region with an enemy pool and a per-step
// trigger probability.
type EncounterZone struct {
	X      int
	Y      int
	Width  int
	Height int
	// Enemies is the pool of enemy ids encounters draw from.
	Enemies []string
	// Chance is the per-step trigger probability in (0, 1].
	Chance float64
}

// Contains reports whether the cell (x, y) lies inside the zone rectangle.
//
// Postcondition: Returns true iff x in [z.X, z.X+z.Width) and y in [z.Y, z.Y+z.Height).
func (z EncounterZone) Contains(x, y int) bool {
	return x >= z.X && x < z.X+z.Width && y >= z.Y && y < z.Y+z.Height
}

// Connection links the edge of one map to another map.
type Connection struct {
	// Direction is the map edge: "north", "south", "east", "west".
	Direction string
	// ToMap is the id of the destination map.
	ToMap string
}

// GameMap is a single authored location. It is static data, created at load
// time and never mutated at runtime; per-event triggered state is tracked
// externally by the game store.
type GameMap struct {
	// ID uniquely identifies this map.
	ID string
	// Name is the display name of the location.
	Name string
	// Width and Height are the grid dimensions in cells.
	Width  int
	Height int
	// Ground is the base tile-index layer, indexed [y][x].
	Ground [][]int
	// Collision marks passable cells, indexed [y][x]. True = walkable.
	Collision [][]bool
	// Overhead is the above-player tile-index layer, indexed [y][x].
	Overhead [][]int
	// Objects are decorative fixtures with optional collision footprints.
	Objects []StaticObject
	// NPCs are the characters placed on this map.
	NPCs []NPC
	// Events are the positioned typed triggers on this map.
	Events []MapEvent
	// Zones are the random-encounter regions.
	Zones []EncounterZone
	// Connections link this map's edges to neighboring maps.
	Connections []Connection
}

// InBounds reports whether (x, y) lies within the map grid.
func (m *GameMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Passable reports whether the cell (x, y) is walkable terrain. Out-of-bounds
// cells and cells covered by a blocking object footprint are not passable.
//
// Postcondition: Returns false whenever InBounds(x, y) is false.
func (m *GameMap) Passable(x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	if !m.Collision[y][x] {
		return false
	}
	for _, obj := range m.Objects {
		for _, off := range obj.CollisionOffsets {
			if obj.X+off.X == x && obj.Y+off.Y == y {
				return false
			}
		}
	}
	return true
}

// EventAt returns the event occupying (x, y), if any.
//
// Postcondition: Returns (event, true) if found, or (nil, false) otherwise.
func (m *GameMap) EventAt(x, y int) (*MapEvent, bool) {
	for i := range m.Events {
		if m.Events[i].X == x && m.Events[i].Y == y {
			return &m.Events[i], true
		}
	}
	return nil, false
}

// NPCAt returns the NPC occupying (x, y), if any.
//
// Postcondition: Returns (npc, true) if found, or (nil, false) otherwise.
func (m *GameMap) NPCAt(x, y int) (*NPC, bool) {
	for i := range m.NPCs {
		if m.NPCs[i].X == x && m.NPCs[i].Y == y {
			return &m.NPCs[i], true
		}
	}
	return nil, false
}

// ZonesAt returns all encounter zones containing the cell (x, y).
func (m *GameMap) ZonesAt(x, y int) []EncounterZone {
	var zones []EncounterZone
	for _, z := range m.Zones {
		if z.Contains(x, y) {
			zones = append(zones, z)
		}
	}
	return zones
}

// ConnectionFor returns the connection leaving via the given edge direction.
//
// Postcondition: Returns (conn, true) if found, or (Connection{}, false) otherwise.
func (m *GameMap) ConnectionFor(direction string) (Connection, bool) {
	for _, c := range m.Connections {
		if c.Direction == direction {
			return c, true
		}
	}
	return Connection{}, false
}

// Validate checks map invariants: layer dimensions match Width x Height, all
// event/NPC/object/zone coordinates lie within bounds, event ids are unique,
// and every event carries exactly the payload its type requires.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (m *GameMap) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("map ID must not be empty")
	}
	if m.Width < 1 || m.Height < 1 {
		return fmt.Errorf("map %q: dimensions must be >= 1, got %dx%d", m.ID, m.Width, m.Height)
	}
	if err := m.validateLayer("ground", len(m.Ground), func(y int) int { return len(m.Ground[y]) }); err != nil {
		return err
	}
	if err := m.validateLayer("collision", len(m.Collision), func(y int) int { return len(m.Collision[y]) }); err != nil {
		return err
	}
	if err := m.validateLayer("overhead", len(m.Overhead), func(y int) int { return len(m.Overhead[y]) }); err != nil {
		return err
	}
	for i, obj := range m.Objects {
		if !m.InBounds(obj.X, obj.Y) {
			return fmt.Errorf("map %q: object[%d] anchor (%d,%d) out of bounds", m.ID, i, obj.X, obj.Y)
		}
	}
	for _, npc := range m.NPCs {
		if npc.ID == "" {
			return fmt.Errorf("map %q: NPC at (%d,%d) must have an id", m.ID, npc.X, npc.Y)
		}
		if !m.InBounds(npc.X, npc.Y) {
			return fmt.Errorf("map %q: NPC %q at (%d,%d) out of bounds", m.ID, npc.ID, npc.X, npc.Y)
		}
		if npc.Behavior == BehaviorPatrol && len(npc.PatrolPath) == 0 {
			return fmt.Errorf("map %q: NPC %q has patrol behavior but no patrol path", m.ID, npc.ID)
		}
	}
	seen := make(map[string]bool, len(m.Events))
	for _, ev := range m.Events {
		if ev.ID == "" {
			return fmt.Errorf("map %q: event at (%d,%d) must have an id", m.ID, ev.X, ev.Y)
		}
		if seen[ev.ID] {
			return fmt.Errorf("map %q: duplicate event id %q", m.ID, ev.ID)
		}
		seen[ev.ID] = true
		if !m.InBounds(ev.X, ev.Y) {
			return fmt.Errorf("map %q: event %q at (%d,%d) out of bounds", m.ID, ev.ID, ev.X, ev.Y)
		}
		if err := ev.validatePayload(); err != nil {
			return fmt.Errorf("map %q: event %q: %w", m.ID, ev.ID, err)
		}
	}
	for i, z := range m.Zones {
		if z.Width < 1 || z.Height < 1 {
			return fmt.Errorf("map %q: zone[%d] must have positive size", m.ID, i)
		}
		if !m.InBounds(z.X, z.Y) || !m.InBounds(z.X+z.Width-1, z.Y+z.Height-1) {
			return fmt.Errorf("map %q: zone[%d] rectangle exceeds map bounds", m.ID, i)
		}
		if z.Chance <= 0 || z.Chance > 1 {
			return fmt.Errorf("map %q: zone[%d] chance must be in (0, 1], got %f", m.ID, i, z.Chance)
		}
		if len(z.Enemies) == 0 {
			return fmt.Errorf("map %q: zone[%d] must have a non-empty enemy pool", m.ID, i)
		}
	}
	for i, c := range m.Connections {
		if c.ToMap == "" {
			return fmt.Errorf("map %q: connection[%d] has empty target map", m.ID, i)
		}
	}
	return nil
}

func (m *GameMap) validateLayer(name string, rows int, rowLen func(y int) int) error {
	if rows != m.Height {
		return fmt.Errorf("map %q: %s layer has %d rows, want %d", m.ID, name, rows, m.Height)
	}
	for y := 0; y < rows; y++ {
		if rowLen(y) != m.Width {
			return fmt.Errorf("map %q: %s layer row %d has %d cells, want %d", m.ID, name, y, rowLen(y), m.Width)
		}
	}
	return nil
}
