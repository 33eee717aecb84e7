package worldmap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlMapFile is the top-level YAML structure for map files.
type yamlMapFile struct {
	Map yamlMap `yaml:"map"`
}

// yamlMap is the YAML representation of a GameMap.
type yamlMap struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Width       int              `yaml:"width"`
	Height      int              `yaml:"height"`
	Ground      [][]int          `yaml:"ground"`
	Collision   [][]int          `yaml:"collision"` // 1 = walkable, 0 = blocked
	Overhead    [][]int          `yaml:"overhead"`
	Objects     []yamlObject     `yaml:"objects"`
	NPCs        []yamlNPC        `yaml:"npcs"`
	Events      []yamlEvent      `yaml:"events"`
	Zones       []yamlZone       `yaml:"zones"`
	Connections []yamlConnection `yaml:"connections"`
}

type yamlObject struct {
	X                int    `yaml:"x"`
	Y                int    `yaml:"y"`
	Width            int    `yaml:"width"`
	Height           int    `yaml:"height"`
	Sprite           string `yaml:"sprite"`
	CollisionOffsets []Cell `yaml:"collision_offsets"`
}

type yamlNPC struct {
	ID         string `yaml:"id"`
	X          int    `yaml:"x"`
	Y          int    `yaml:"y"`
	Facing     string `yaml:"facing"`
	Dialogue   string `yaml:"dialogue"`
	Behavior   string `yaml:"behavior"`
	PatrolPath []Cell `yaml:"patrol_path"`
}

type yamlEvent struct {
	ID   string `yaml:"id"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Type string `yaml:"type"`

	Treasure    *TreasurePayload    `yaml:"treasure"`
	Collectible *CollectiblePayload `yaml:"collectible"`
	Teleport    *TeleportPayload    `yaml:"teleport"`
	Trigger     *TriggerPayload     `yaml:"trigger"`
	Battle      *BattlePayload      `yaml:"battle"`
	Shop        *ShopPayload        `yaml:"shop"`
	Inn         *InnPayload         `yaml:"inn"`
}

type yamlZone struct {
	X       int      `yaml:"x"`
	Y       int      `yaml:"y"`
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Chance  float64  `yaml:"chance"`
	Enemies []string `yaml:"enemies"`
}

type yamlConnection struct {
	Direction string `yaml:"direction"`
	To        string `yaml:"to"`
}

// LoadMapFromFile reads and validates a single map YAML file.
//
// Precondition: path must point to a valid YAML map file.
// Postcondition: Returns a validated GameMap or a non-nil error.
func LoadMapFromFile(path string) (*GameMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file %s: %w", path, err)
	}
	return LoadMapFromBytes(data)
}

// LoadMapFromBytes parses and validates a map from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the map schema.
// Postcondition: Returns a validated GameMap or a non-nil error.
func LoadMapFromBytes(data []byte) (*GameMap, error) {
	var file yamlMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing map YAML: %w", err)
	}

	m := convertYAMLMap(file.Map)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validating map: %w", err)
	}

	return m, nil
}

// LoadMapsFromDir loads all YAML files in a directory as maps.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated maps or the first error encountered.
func LoadMapsFromDir(dir string) ([]*GameMap, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading map directory %s: %w", dir, err)
	}

	var maps []*GameMap
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		m, err := LoadMapFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading map from %s: %w", name, err)
		}
		maps = append(maps, m)
	}

	if len(maps) == 0 {
		return nil, fmt.Errorf("no map files found in %s", dir)
	}

	return maps, nil
}

// convertYAMLMap converts the parsed YAML structures into domain types.
func convertYAMLMap(ym yamlMap) *GameMap {
	m := &GameMap{
		ID:       ym.ID,
		Name:     ym.Name,
		Width:    ym.Width,
		Height:   ym.Height,
		Ground:   ym.Ground,
		Overhead: ym.Overhead,
	}

	m.Collision = make([][]bool, len(ym.Collision))
	for y, row := range ym.Collision {
		m.Collision[y] = make([]bool, len(row))
		for x, v := range row {
			m.Collision[y][x] = v != 0
		}
	}

	for _, yo := range ym.Objects {
		m.Objects = append(m.Objects, StaticObject{
			X:                yo.X,
			Y:                yo.Y,
			Width:            yo.Width,
			Height:           yo.Height,
			Sprite:           yo.Sprite,
			CollisionOffsets: yo.CollisionOffsets,
		})
	}

	for _, yn := range ym.NPCs {
		facing := Facing(yn.Facing)
		if !facing.IsValid() {
			facing = FaceDown
		}
		behavior := Behavior(yn.Behavior)
		if behavior == "" {
			behavior = BehaviorStatic
		}
		m.NPCs = append(m.NPCs, NPC{
			ID:         yn.ID,
			X:          yn.X,
			Y:          yn.Y,
			Facing:     facing,
			DialogueID: yn.Dialogue,
			Behavior:   behavior,
			PatrolPath: yn.PatrolPath,
		})
	}

	for _, ye := range ym.Events {
		m.Events = append(m.Events, MapEvent{
			ID:          ye.ID,
			X:           ye.X,
			Y:           ye.Y,
			Type:        EventType(ye.Type),
			Treasure:    ye.Treasure,
			Collectible: ye.Collectible,
			Teleport:    ye.Teleport,
			Trigger:     ye.Trigger,
			Battle:      ye.Battle,
			Shop:        ye.Shop,
			Inn:         ye.Inn,
		})
	}

	for _, yz := range ym.Zones {
		m.Zones = append(m.Zones, EncounterZone{
			X:       yz.X,
			Y:       yz.Y,
			Width:   yz.Width,
			Height:  yz.Height,
			Chance:  yz.Chance,
			Enemies: yz.Enemies,
		})
	}

	for _, yc := range ym.Connections {
		m.Connections = append(m.Connections, Connection{
			Direction: yc.Direction,
			ToMap:     yc.To,
		})
	}

	return m
}
