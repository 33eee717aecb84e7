package store

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/game/worldmap"
	"github.com/evergloam/chimera/internal/storage/savefile"
)

// SaveToSlot writes a full save. Saving is only offered at save points, so
// the store must be exploring with the save screen up.
//
// Postcondition: On success the save screen closes and the slot holds the
// current state.
func (s *Store) SaveToSlot(slot int) error {
	if s.phase != PhaseExplore {
		return fmt.Errorf("store: cannot save in phase %s", s.phase)
	}
	if !s.saveScreenOpen {
		return fmt.Errorf("store: saving requires a save point")
	}
	if err := s.deps.Saves.SaveSlot(slot, s.buildSaveData()); err != nil {
		return err
	}
	s.saveScreenOpen = false
	return nil
}

// SaveSlots lists occupied slots for the save/load screens.
func (s *Store) SaveSlots() []savefile.SlotInfo {
	return s.deps.Saves.ListSlots()
}

// LoadFromSlot replaces the running state with a saved one. Available from
// the title screen and from the game-over screen.
//
// Postcondition: On success the store is exploring at the saved position; a
// missing or corrupt slot leaves the current state untouched.
func (s *Store) LoadFromSlot(slot int) error {
	if s.phase != PhaseTitle && s.phase != PhaseGameOver {
		return fmt.Errorf("store: cannot load a save in phase %s", s.phase)
	}
	data, ok := s.deps.Saves.LoadSlot(slot)
	if !ok {
		return fmt.Errorf("store: slot %d holds no usable save", slot)
	}

	s.resetRuntime()
	s.chapter = data.CurrentChapter
	if s.chapter < 1 {
		s.chapter = 1
	}
	s.party = data.Party
	s.inv = data.Inventory
	s.quests.Restore(data.Quests)
	s.flags = savefile.ToSet(data.StoryFlags)
	s.openedChests = savefile.ToSet(data.OpenedChests)
	s.visitedMaps = savefile.ToSet(data.VisitedMaps)
	s.playTime = time.Duration(data.PlayTime) * time.Second

	pos := worldmap.Position{
		MapID:  data.PlayerPosition.MapID,
		X:      data.PlayerPosition.X,
		Y:      data.PlayerPosition.Y,
		Facing: worldmap.Facing(data.PlayerPosition.Facing),
	}
	if err := s.enterMap(pos); err != nil {
		s.ReturnToTitle()
		return fmt.Errorf("store: save references unknown map: %w", err)
	}
	s.phase = PhaseExplore
	s.logger.Info("save loaded",
		zap.Int("slot", slot),
		zap.String("map_id", pos.MapID))
	return nil
}

// Autosave writes the reduced autosave subset. Driven by the server
// lifecycle timer; a no-op outside a running game.
func (s *Store) Autosave() error {
	if s.phase == PhaseTitle || s.phase == PhaseGameOver {
		return nil
	}
	data := &savefile.AutosaveData{
		Party:          s.party,
		Inventory:      s.inv,
		PlayerPosition: s.savedPosition(),
		StoryFlags:     savefile.SortedSet(s.flags),
	}
	return s.deps.Saves.SaveAuto(data)
}

// RestoreAutosave resumes from the autosave subset at the title screen.
// Fields the autosave does not carry (quests, chapter, consumed events)
// start fresh.
func (s *Store) RestoreAutosave() error {
	if s.phase != PhaseTitle {
		return fmt.Errorf("store: cannot restore the autosave in phase %s", s.phase)
	}
	data, ok := s.deps.Saves.LoadAuto()
	if !ok {
		return fmt.Errorf("store: no usable autosave")
	}

	s.resetRuntime()
	s.party = data.Party
	s.inv = data.Inventory
	s.flags = savefile.ToSet(data.StoryFlags)

	pos := worldmap.Position{
		MapID:  data.PlayerPosition.MapID,
		X:      data.PlayerPosition.X,
		Y:      data.PlayerPosition.Y,
		Facing: worldmap.Facing(data.PlayerPosition.Facing),
	}
	if err := s.enterMap(pos); err != nil {
		s.ReturnToTitle()
		return fmt.Errorf("store: autosave references unknown map: %w", err)
	}
	s.phase = PhaseExplore
	s.logger.Info("autosave restored", zap.String("map_id", pos.MapID))
	return nil
}

func (s *Store) buildSaveData() *savefile.SaveData {
	return &savefile.SaveData{
		PlayTime:       int64(s.playTime / time.Second),
		Location:       s.Location(),
		CurrentChapter: s.chapter,
		Party:          s.party,
		Inventory:      s.inv,
		PlayerPosition: s.savedPosition(),
		Quests:         s.quests.Snapshot(),
		StoryFlags:     savefile.SortedSet(s.flags),
		OpenedChests:   savefile.SortedSet(s.openedChests),
		VisitedMaps:    savefile.SortedSet(s.visitedMaps),
	}
}

func (s *Store) savedPosition() savefile.Position {
	return savefile.Position{
		MapID:  s.pos.MapID,
		X:      s.pos.X,
		Y:      s.pos.Y,
		Facing: string(s.pos.Facing),
	}
}
