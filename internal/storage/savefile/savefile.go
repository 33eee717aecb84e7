// Package savefile persists game state as JSON files on disk. Numbered slots
// hold full saves written from save points; a separate autosave file holds a
// reduced subset written on a timer.
package savefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/game/character"
	"github.com/evergloam/chimera/internal/game/inventory"
	"github.com/evergloam/chimera/internal/game/quest"
)

// Version is written into every save file. Loads migrate older versions
// forward; files newer than this are rejected.
const Version = 1

const autosaveName = "autosave.json"

// Position is the player's saved location.
type Position struct {
	MapID  string `json:"mapId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Facing string `json:"facing"`
}

// SaveData is the full persisted state of one save slot.
type SaveData struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	// PlayTime is total elapsed play time in seconds.
	PlayTime int64 `json:"playTime"`
	// Location is a display name for the save-slot list.
	Location       string                 `json:"location"`
	CurrentChapter int                    `json:"currentChapter"`
	Party          []*character.Character `json:"party"`
	Inventory      *inventory.Inventory   `json:"inventory"`
	PlayerPosition Position               `json:"playerPosition"`
	Quests         quest.Snapshot         `json:"quests"`
	// StoryFlags, OpenedChests, and VisitedMaps are sets, serialized as
	// sorted arrays.
	StoryFlags   []string `json:"storyFlags,omitempty"`
	OpenedChests []string `json:"openedChests,omitempty"`
	VisitedMaps  []string `json:"visitedMaps,omitempty"`
}

// AutosaveData is the reduced subset written by the autosave timer.
type AutosaveData struct {
	Version        int                    `json:"version"`
	Timestamp      time.Time              `json:"timestamp"`
	Party          []*character.Character `json:"party"`
	Inventory      *inventory.Inventory   `json:"inventory"`
	PlayerPosition Position               `json:"playerPosition"`
	StoryFlags     []string               `json:"storyFlags,omitempty"`
}

// SlotInfo summarizes one occupied save slot for the load screen.
type SlotInfo struct {
	Slot      int       `json:"slot"`
	Timestamp time.Time `json:"timestamp"`
	PlayTime  int64     `json:"playTime"`
	Location  string    `json:"location"`
}

// Store reads and writes save files under a single directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates the save directory if needed.
//
// Precondition:  dir must be non-empty; logger may be nil.
// Postcondition: The directory exists and the store is ready for use.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("savefile: dir must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("savefile: creating save dir %q: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// SlotPath returns the file path of a numbered slot.
func (s *Store) SlotPath(slot int) string {
	return filepath.Join(s.dir, fmt.Sprintf("slot_%d.json", slot))
}

// SaveSlot writes a full save to a numbered slot. The write is atomic: data
// lands in a temp file first and replaces the slot with a rename, so a crash
// mid-write never corrupts an existing save.
//
// Precondition:  slot must be >= 1; data must not be nil.
// Postcondition: Version and Timestamp are stamped before writing.
func (s *Store) SaveSlot(slot int, data *SaveData) error {
	if slot < 1 {
		return fmt.Errorf("savefile: slot must be >= 1, got %d", slot)
	}
	data.Version = Version
	data.Timestamp = time.Now().UTC()
	if err := s.writeJSON(s.SlotPath(slot), data); err != nil {
		return err
	}
	s.logger.Info("wrote save slot",
		zap.Int("slot", slot),
		zap.String("location", data.Location),
		zap.Int64("play_time", data.PlayTime),
	)
	return nil
}

// LoadSlot reads a numbered slot. A missing, unreadable, or corrupt file
// returns (nil, false) and leaves no side effects; corruption is logged at
// Warn level.
//
// Postcondition: On success the returned data has been migrated to the
// current version and its collections are non-nil.
func (s *Store) LoadSlot(slot int) (*SaveData, bool) {
	raw, err := os.ReadFile(s.SlotPath(slot))
	if err != nil {
		return nil, false
	}
	var data SaveData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("corrupt save slot",
			zap.Int("slot", slot),
			zap.Error(err),
		)
		return nil, false
	}
	if data.Version > Version {
		s.logger.Warn("save slot from a newer version",
			zap.Int("slot", slot),
			zap.Int("file_version", data.Version),
		)
		return nil, false
	}
	migrate(&data)
	return &data, true
}

// DeleteSlot removes a slot. Deleting an empty slot is not an error.
func (s *Store) DeleteSlot(slot int) error {
	err := os.Remove(s.SlotPath(slot))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("savefile: deleting slot %d: %w", slot, err)
	}
	return nil
}

// ListSlots returns a summary of every occupied slot, ordered by slot number.
// Corrupt files are skipped.
func (s *Store) ListSlots() []SlotInfo {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var infos []SlotInfo
	for _, e := range entries {
		var slot int
		if n, _ := fmt.Sscanf(e.Name(), "slot_%d.json", &slot); n != 1 {
			continue
		}
		data, ok := s.LoadSlot(slot)
		if !ok {
			continue
		}
		infos = append(infos, SlotInfo{
			Slot:      slot,
			Timestamp: data.Timestamp,
			PlayTime:  data.PlayTime,
			Location:  data.Location,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Slot < infos[j].Slot })
	return infos
}

// SaveAuto writes the autosave subset. Like SaveSlot, the write is atomic.
//
// Precondition: data must not be nil.
func (s *Store) SaveAuto(data *AutosaveData) error {
	data.Version = Version
	data.Timestamp = time.Now().UTC()
	if err := s.writeJSON(filepath.Join(s.dir, autosaveName), data); err != nil {
		return err
	}
	s.logger.Debug("wrote autosave")
	return nil
}

// LoadAuto reads the autosave. Missing or corrupt files return (nil, false).
func (s *Store) LoadAuto() (*AutosaveData, bool) {
	raw, err := os.ReadFile(filepath.Join(s.dir, autosaveName))
	if err != nil {
		return nil, false
	}
	var data AutosaveData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("corrupt autosave", zap.Error(err))
		return nil, false
	}
	if data.Version > Version {
		return nil, false
	}
	if data.Inventory != nil {
		migrateInventory(data.Inventory)
	}
	for _, c := range data.Party {
		migrateCharacter(c)
	}
	return &data, true
}

func (s *Store) writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("savefile: encoding %q: %w", path, err)
	}
	tmp, err := os.CreateTemp(s.dir, ".save-*.tmp")
	if err != nil {
		return fmt.Errorf("savefile: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("savefile: writing %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("savefile: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("savefile: replacing %q: %w", path, err)
	}
	return nil
}

// migrate back-fills fields that older save versions did not carry so the
// rest of the engine never sees nil collections.
func migrate(data *SaveData) {
	if data.Inventory == nil {
		data.Inventory = inventory.New(inventory.DefaultCapacity)
	} else {
		migrateInventory(data.Inventory)
	}
	for _, c := range data.Party {
		migrateCharacter(c)
	}
	data.Version = Version
}

func migrateInventory(inv *inventory.Inventory) {
	if inv.Items == nil {
		inv.Items = make(map[string]int)
	}
	if inv.Capacity <= 0 {
		inv.Capacity = inventory.DefaultCapacity
	}
}

func migrateCharacter(c *character.Character) {
	if c == nil {
		return
	}
	if c.Equipment == nil {
		c.Equipment = make(map[character.EquipSlot]*character.Equipped)
	}
	if c.Level < 1 {
		c.Level = 1
	}
}

// SortedSet converts a membership set to its serialized array form.
func SortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ToSet reconstitutes a membership set from its serialized array form.
func ToSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, k := range list {
		set[k] = true
	}
	return set
}
