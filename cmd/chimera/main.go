// Package main provides the chimera binary: it loads the authored content,
// assembles the game store and its collaborators, and runs the engine under
// lifecycle management.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/config"
	"github.com/evergloam/chimera/internal/game/battle"
	"github.com/evergloam/chimera/internal/game/condition"
	"github.com/evergloam/chimera/internal/game/content"
	"github.com/evergloam/chimera/internal/game/dice"
	"github.com/evergloam/chimera/internal/game/encounter"
	"github.com/evergloam/chimera/internal/game/quest"
	"github.com/evergloam/chimera/internal/game/store"
	"github.com/evergloam/chimera/internal/game/worldmap"
	"github.com/evergloam/chimera/internal/observability"
	"github.com/evergloam/chimera/internal/scripting"
	"github.com/evergloam/chimera/internal/server"
	"github.com/evergloam/chimera/internal/storage/savefile"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	mapsDir := flag.String("maps-dir", "", "override the configured maps directory")
	catalogsDir := flag.String("catalogs-dir", "", "override the configured catalogs directory")
	scriptsDir := flag.String("scripts-dir", "", "override the configured scripts directory")
	saveDir := flag.String("save-dir", "", "override the configured save directory")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *mapsDir != "" {
		cfg.Content.MapsDir = *mapsDir
	}
	if *catalogsDir != "" {
		cfg.Content.CatalogsDir = *catalogsDir
	}
	if *scriptsDir != "" {
		cfg.Content.ScriptsDir = *scriptsDir
	}
	if *saveDir != "" {
		cfg.Save.Dir = *saveDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := dice.NewCryptoSource()

	// Load content catalogs.
	catalogStart := time.Now()
	registry, err := content.LoadCatalogsFromDir(cfg.Content.CatalogsDir)
	if err != nil {
		logger.Fatal("loading content catalogs", zap.Error(err))
	}
	counts := registry.Counts()
	logger.Info("content catalogs loaded",
		zap.Int("items", counts["items"]),
		zap.Int("enemies", counts["enemies"]),
		zap.Int("quests", counts["quests"]),
		zap.Duration("elapsed", time.Since(catalogStart)),
	)

	// Load maps.
	mapStart := time.Now()
	gameMaps, err := worldmap.LoadMapsFromDir(cfg.Content.MapsDir)
	if err != nil {
		logger.Fatal("loading maps", zap.Error(err))
	}
	maps := worldmap.NewRegistry()
	for _, m := range gameMaps {
		if err := maps.Register(m); err != nil {
			logger.Fatal("registering map", zap.String("map_id", m.ID), zap.Error(err))
		}
	}
	logger.Info("maps loaded",
		zap.Int("count", maps.Count()),
		zap.Duration("elapsed", time.Since(mapStart)),
	)

	// Load battle condition definitions.
	conditions, err := condition.LoadDirectory(cfg.Content.ConditionsDir)
	if err != nil {
		logger.Fatal("loading condition definitions", zap.Error(err))
	}

	// Initialise scripting.
	var scriptMgr *scripting.Manager
	if cfg.Content.ScriptsDir != "" {
		scriptStart := time.Now()
		scriptMgr = scripting.NewManager(logger)

		globalDir := filepath.Join(cfg.Content.ScriptsDir, "global")
		if info, statErr := os.Stat(globalDir); statErr == nil && info.IsDir() {
			if err := scriptMgr.LoadGlobal(globalDir, scripting.DefaultInstructionLimit); err != nil {
				logger.Fatal("loading global scripts", zap.String("dir", globalDir), zap.Error(err))
			}
		}
		for _, m := range maps.All() {
			mapDir := filepath.Join(cfg.Content.ScriptsDir, "maps", m.ID)
			info, statErr := os.Stat(mapDir)
			if statErr != nil || !info.IsDir() {
				continue
			}
			if err := scriptMgr.LoadMap(m.ID, mapDir, scripting.DefaultInstructionLimit); err != nil {
				logger.Fatal("loading map scripts", zap.String("map_id", m.ID), zap.Error(err))
			}
		}
		defer scriptMgr.Close()
		logger.Info("scripting initialized", zap.Duration("elapsed", time.Since(scriptStart)))
	}

	saves, err := savefile.NewStore(cfg.Save.Dir, logger)
	if err != nil {
		logger.Fatal("opening save directory", zap.String("dir", cfg.Save.Dir), zap.Error(err))
	}

	policy, err := encounter.NewPolicy(cfg.Encounter.MinSteps, cfg.Encounter.MaxSteps, src)
	if err != nil {
		logger.Fatal("building encounter policy", zap.Error(err))
	}

	engine := battle.NewEngine(registry, conditions, src,
		cfg.Battle.DefendModifier, cfg.Battle.FleeBaseChance, logger)

	st, err := store.New(store.Deps{
		Registry:   registry,
		Maps:       maps,
		Engine:     engine,
		Encounters: policy,
		Saves:      saves,
		Source:     src,
		Scripts:    scriptMgr,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("creating game store", zap.Error(err))
	}

	// Give the scripting sandbox its callbacks into the store.
	if scriptMgr != nil {
		scriptMgr.SetFlag = st.SetFlag
		scriptMgr.GetFlag = st.Flag
		scriptMgr.GiveItem = st.GainItem
		scriptMgr.GiveGold = func(amount int) {
			_ = st.Inventory().AddGold(amount)
		}
		scriptMgr.StartQuest = func(questID string) {
			maxLevel := 0
			for _, ch := range st.Party() {
				if ch.Level > maxLevel {
					maxLevel = ch.Level
				}
			}
			st.Quests().Start(questID, quest.StartContext{
				FlagSet:       st.Flag,
				PartyMaxLevel: maxLevel,
			})
		}
		scriptMgr.ShowMessage = func(msg string) {
			logger.Info("script message", zap.String("text", msg))
		}
	}

	// Resume from the autosave when one exists; otherwise stay at the title.
	if err := st.RestoreAutosave(); err != nil {
		logger.Info("starting at the title screen", zap.Error(err))
	}

	// Wire lifecycle.
	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("clock", server.NewClock(cfg.Save.AutosaveInterval, st.Tick, st.Autosave, logger))

	logger.Info("engine initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("save_dir", cfg.Save.Dir),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("engine error", zap.Error(err))
	}
}
