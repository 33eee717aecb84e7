// Package store is the single orchestrator of a running game. It owns the
// authoritative mutable state (party, inventory, quests, flags, position,
// phase) and drives the stateless resolvers: movement, interaction,
// encounters, battles, dialogue, and shops. All access is single-threaded;
// the server lifecycle serialises input and autosave ticks.
package store

import (
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/game/battle"
	"github.com/evergloam/chimera/internal/game/character"
	"github.com/evergloam/chimera/internal/game/content"
	"github.com/evergloam/chimera/internal/game/dialogue"
	"github.com/evergloam/chimera/internal/game/dice"
	"github.com/evergloam/chimera/internal/game/encounter"
	"github.com/evergloam/chimera/internal/game/inventory"
	"github.com/evergloam/chimera/internal/game/quest"
	"github.com/evergloam/chimera/internal/game/shop"
	"github.com/evergloam/chimera/internal/game/transition"
	"github.com/evergloam/chimera/internal/game/worldmap"
	"github.com/evergloam/chimera/internal/scripting"
	"github.com/evergloam/chimera/internal/storage/savefile"
)

// Phase is the store's top-level mode. Exactly one phase is current at a
// time; overlays (menu, save screen) sit on top of exploring without
// changing it.
type Phase string

// Game phases.
const (
	PhaseTitle Phase = "title"
	// PhaseSystemBoot covers the intro sequence between confirming a new
	// game and taking control; CompleteBoot moves on to exploring.
	PhaseSystemBoot Phase = "system_boot"
	PhaseExplore    Phase = "exploring"
	PhaseCombat   Phase = "combat"
	PhaseDialogue Phase = "dialogue"
	PhaseShop     Phase = "shop"
	PhaseGameOver Phase = "game_over"
)

// EncounterPending is the payload armed when an encounter fires and confirmed
// when the battle intro animation finishes.
type EncounterPending struct {
	// Enemies is the drawn roster of enemy ids.
	Enemies []string
	// Unfleeable is set for scripted battle events.
	Unfleeable bool
	// EventID names the battle event that armed this encounter; empty for
	// random encounters. Won event battles are consumed by this id.
	EventID string
}

// MapPending is the payload armed when the player hits a teleport or map
// connection and confirmed when the fade-out finishes.
type MapPending struct {
	ToMap  string
	ToX    int
	ToY    int
	Facing worldmap.Facing
}

// Deps are the collaborators the store drives. All fields except Scripts and
// Logger are required.
type Deps struct {
	Registry   *content.Registry
	Maps       *worldmap.Registry
	Engine     *battle.Engine
	Encounters *encounter.Policy
	Saves      *savefile.Store
	Source     dice.Source
	// Scripts runs map trigger hooks; nil disables scripting.
	Scripts *scripting.Manager
	Logger  *zap.Logger
}

func (d Deps) validate() error {
	switch {
	case d.Registry == nil:
		return errors.New("store: Registry is required")
	case d.Maps == nil:
		return errors.New("store: Maps is required")
	case d.Engine == nil:
		return errors.New("store: Engine is required")
	case d.Encounters == nil:
		return errors.New("store: Encounters is required")
	case d.Saves == nil:
		return errors.New("store: Saves is required")
	case d.Source == nil:
		return errors.New("store: Source is required")
	}
	return nil
}

// Store is the game's single source of truth.
type Store struct {
	deps   Deps
	logger *zap.Logger

	phase   Phase
	chapter int

	party  []*character.Character
	inv    *inventory.Inventory
	quests *quest.Tracker
	flags  map[string]bool

	pos        worldmap.Position
	currentMap *worldmap.GameMap
	// openedChests tracks consumed map events, keyed "mapID/eventID".
	openedChests map[string]bool
	visitedMaps  map[string]bool
	// npcPos holds live NPC cells on the current map; npcPatrol the next
	// patrol waypoint index per NPC.
	npcPos    map[string]worldmap.Cell
	npcPatrol map[string]int

	pendingEncounter *transition.Machine[EncounterPending]
	pendingMap       *transition.Machine[MapPending]

	battleState  *battle.State
	dialogueSess *dialogue.Session
	dialogueNPC  string
	shopSess     *shop.Session
	// queuedShop is a shop id a dialogue effect asked to open once the
	// dialogue finishes.
	queuedShop string

	menuOpen       bool
	saveScreenOpen bool

	playTime time.Duration
}

// New creates a store at the title phase.
//
// Postcondition: Phase() == PhaseTitle with no loaded game.
func New(deps Deps) (*Store, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		deps:   deps,
		logger: logger,
		phase:  PhaseTitle,
	}
	s.resetRuntime()
	return s, nil
}

// resetRuntime clears every per-playthrough field.
func (s *Store) resetRuntime() {
	s.chapter = 1
	s.party = nil
	s.inv = inventory.New(inventory.DefaultCapacity)
	s.quests = quest.NewTracker(s.deps.Registry, s.logger)
	s.flags = make(map[string]bool)
	s.pos = worldmap.Position{}
	s.currentMap = nil
	s.openedChests = make(map[string]bool)
	s.visitedMaps = make(map[string]bool)
	s.npcPos = make(map[string]worldmap.Cell)
	s.npcPatrol = make(map[string]int)
	s.pendingEncounter = transition.New[EncounterPending]()
	s.pendingMap = transition.New[MapPending]()
	s.battleState = nil
	s.dialogueSess = nil
	s.dialogueNPC = ""
	s.shopSess = nil
	s.queuedShop = ""
	s.menuOpen = false
	s.saveScreenOpen = false
	s.playTime = 0
}

// NewGame starts a fresh playthrough with the given party at a starting
// position. The store sits in the boot phase until CompleteBoot, so the
// intro sequence can play before input opens up.
//
// Precondition:  party must not be empty; start.MapID must be registered.
// Postcondition: Phase() == PhaseSystemBoot on the starting map.
func (s *Store) NewGame(party []*character.Character, start worldmap.Position) error {
	if s.phase != PhaseTitle {
		return fmt.Errorf("store: cannot start a new game from phase %s", s.phase)
	}
	if len(party) == 0 {
		return errors.New("store: party must not be empty")
	}
	s.resetRuntime()
	s.party = party
	if err := s.enterMap(start); err != nil {
		return err
	}
	s.phase = PhaseSystemBoot
	s.logger.Info("new game started",
		zap.String("map_id", start.MapID),
		zap.Int("party", len(party)))
	return nil
}

// CompleteBoot finishes the intro sequence and hands control to the player.
//
// Postcondition: Phase() == PhaseExplore, or an error when no boot sequence
// is in progress.
func (s *Store) CompleteBoot() error {
	if s.phase != PhaseSystemBoot {
		return fmt.Errorf("store: no boot sequence in progress in phase %s", s.phase)
	}
	s.phase = PhaseExplore
	return nil
}

// ReturnToTitle abandons the running game unconditionally.
//
// Postcondition: Phase() == PhaseTitle with all runtime state cleared.
func (s *Store) ReturnToTitle() {
	s.resetRuntime()
	s.phase = PhaseTitle
	s.logger.Info("returned to title")
}

// enterMap switches the current map, resets the encounter policy, and records
// the visit.
func (s *Store) enterMap(pos worldmap.Position) error {
	m, ok := s.deps.Maps.Get(pos.MapID)
	if !ok {
		return fmt.Errorf("store: unknown map %q", pos.MapID)
	}
	if pos.Facing == "" {
		pos.Facing = worldmap.FaceDown
	}
	s.currentMap = m
	s.pos = pos
	s.initNPCs()
	s.deps.Encounters.Reset()

	if !s.visitedMaps[m.ID] {
		s.visitedMaps[m.ID] = true
		s.quests.OnMapVisited(m.ID)
	}
	s.callHook("on_map_enter", lua.LString(m.ID))
	return nil
}

// Phase returns the current phase.
func (s *Store) Phase() Phase { return s.phase }

// Chapter returns the current story chapter.
func (s *Store) Chapter() int { return s.chapter }

// SetChapter advances the story chapter.
func (s *Store) SetChapter(n int) {
	if n > 0 {
		s.chapter = n
	}
}

// Party returns the authoritative party records.
func (s *Store) Party() []*character.Character { return s.party }

// Inventory returns the shared party inventory.
func (s *Store) Inventory() *inventory.Inventory { return s.inv }

// Quests returns the quest tracker.
func (s *Store) Quests() *quest.Tracker { return s.quests }

// Position returns the player's current position.
func (s *Store) Position() worldmap.Position { return s.pos }

// CurrentMap returns the loaded map, or nil before a game starts.
func (s *Store) CurrentMap() *worldmap.GameMap { return s.currentMap }

// Flag reports whether a story flag is set.
func (s *Store) Flag(name string) bool { return s.flags[name] }

// SetFlag sets a story flag. Flags are never unset.
func (s *Store) SetFlag(name string) {
	if name == "" {
		return
	}
	if !s.flags[name] {
		s.flags[name] = true
		s.logger.Debug("story flag set", zap.String("flag", name))
	}
}

// GainItem adds items to the party inventory and advances matching collect
// objectives. Every item acquisition flows through here so an active quest
// never misses a pickup, whatever the source.
//
// Postcondition: On success the inventory holds the items and collect
// objectives advanced; a full inventory returns an error and changes nothing.
func (s *Store) GainItem(itemID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if err := s.inv.AddItem(itemID, quantity); err != nil {
		return err
	}
	s.quests.OnItemCollected(itemID, quantity)
	return nil
}

// EventConsumed reports whether a map event on the current map has already
// been opened or collected.
func (s *Store) EventConsumed(eventID string) bool {
	if s.currentMap == nil {
		return false
	}
	return s.openedChests[s.eventKey(eventID)]
}

func (s *Store) eventKey(eventID string) string {
	return s.currentMap.ID + "/" + eventID
}

func (s *Store) consumeEvent(eventID string) {
	s.openedChests[s.eventKey(eventID)] = true
}

// Tick advances the play-time clock. Driven by the server lifecycle; time at
// the title screen does not count.
func (s *Store) Tick(d time.Duration) {
	if s.phase == PhaseTitle || d <= 0 {
		return
	}
	s.playTime += d
}

// PlayTime returns total elapsed play time.
func (s *Store) PlayTime() time.Duration { return s.playTime }

// MenuOpen reports whether the pause menu overlay is up.
func (s *Store) MenuOpen() bool { return s.menuOpen }

// OpenMenu raises the pause menu overlay. Only available while exploring.
func (s *Store) OpenMenu() error {
	if s.phase != PhaseExplore {
		return fmt.Errorf("store: cannot open the menu from phase %s", s.phase)
	}
	s.menuOpen = true
	return nil
}

// CloseMenu lowers the pause menu overlay.
func (s *Store) CloseMenu() { s.menuOpen = false }

// SaveScreenOpen reports whether the save-slot overlay is up.
func (s *Store) SaveScreenOpen() bool { return s.saveScreenOpen }

// CloseSaveScreen lowers the save-slot overlay without saving.
func (s *Store) CloseSaveScreen() { s.saveScreenOpen = false }

// partyMaxLevel is the quest admission level gate input.
func (s *Store) partyMaxLevel() int {
	max := 0
	for _, ch := range s.party {
		if ch.Level > max {
			max = ch.Level
		}
	}
	return max
}

// callHook runs a Lua hook on the current map's VM when scripting is enabled.
func (s *Store) callHook(hook string, args ...lua.LValue) {
	if s.deps.Scripts == nil || s.currentMap == nil {
		return
	}
	if _, err := s.deps.Scripts.CallHook(s.currentMap.ID, hook, args...); err != nil {
		s.logger.Warn("map hook failed",
			zap.String("map_id", s.currentMap.ID),
			zap.String("hook", hook),
			zap.Error(err))
	}
}

// inputBlocked reports whether exploration input is suppressed by an overlay
// or an armed transition.
func (s *Store) inputBlocked() bool {
	return s.menuOpen || s.saveScreenOpen ||
		s.pendingEncounter.State() != transition.StateIdle ||
		s.pendingMap.State() != transition.StateIdle
}

// Location returns the display name of the current map for save summaries.
func (s *Store) Location() string {
	if s.currentMap == nil {
		return ""
	}
	return s.currentMap.Name
}
