// Package config provides Viper-based configuration loading for the Chimera engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig holds the paths of the authored game content directories.
type ContentConfig struct {
	// MapsDir is the directory of map YAML files.
	MapsDir string `mapstructure:"maps_dir"`
	// CatalogsDir is the directory of item/shard/enemy/class/shop/quest/dialogue YAML files.
	CatalogsDir string `mapstructure:"catalogs_dir"`
	// ConditionsDir is the directory of battle condition YAML definitions.
	ConditionsDir string `mapstructure:"conditions_dir"`
	// ScriptsDir is the root directory for Lua trigger scripts. Empty = scripting disabled.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// SaveConfig holds save-file settings.
type SaveConfig struct {
	// Dir is the directory where save slots and the autosave are written.
	Dir string `mapstructure:"dir"`
	// AutosaveInterval is how often the lifecycle writes the autosave subset.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
}

// EncounterConfig tunes the random-encounter step policy.
type EncounterConfig struct {
	// MinSteps is the lower bound of the randomized step threshold.
	MinSteps int `mapstructure:"min_steps"`
	// MaxSteps is the upper bound of the randomized step threshold.
	MaxSteps int `mapstructure:"max_steps"`
}

// BattleConfig tunes combat resolution.
type BattleConfig struct {
	// DefendModifier scales incoming damage while a combatant defends, in percent.
	// 50 means defenders take half damage.
	DefendModifier int `mapstructure:"defend_modifier"`
	// FleeBaseChance is the base flee success chance, in percent.
	FleeBaseChance int `mapstructure:"flee_base_chance"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Content   ContentConfig   `mapstructure:"content"`
	Save      SaveConfig      `mapstructure:"save"`
	Encounter EncounterConfig `mapstructure:"encounter"`
	Battle    BattleConfig    `mapstructure:"battle"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSave(c.Save); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEncounter(c.Encounter); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(cc ContentConfig) error {
	var errs []string
	if cc.MapsDir == "" {
		errs = append(errs, "content.maps_dir must not be empty")
	}
	if cc.CatalogsDir == "" {
		errs = append(errs, "content.catalogs_dir must not be empty")
	}
	if cc.ConditionsDir == "" {
		errs = append(errs, "content.conditions_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSave(s SaveConfig) error {
	var errs []string
	if s.Dir == "" {
		errs = append(errs, "save.dir must not be empty")
	}
	if s.AutosaveInterval < 0 {
		errs = append(errs, "save.autosave_interval must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEncounter(e EncounterConfig) error {
	var errs []string
	if e.MinSteps < 1 {
		errs = append(errs, fmt.Sprintf("encounter.min_steps must be >= 1, got %d", e.MinSteps))
	}
	if e.MaxSteps < e.MinSteps {
		errs = append(errs, fmt.Sprintf("encounter.max_steps (%d) must be >= encounter.min_steps (%d)", e.MaxSteps, e.MinSteps))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.DefendModifier < 0 || b.DefendModifier > 100 {
		errs = append(errs, fmt.Sprintf("battle.defend_modifier must be 0-100, got %d", b.DefendModifier))
	}
	if b.FleeBaseChance < 0 || b.FleeBaseChance > 100 {
		errs = append(errs, fmt.Sprintf("battle.flee_base_chance must be 0-100, got %d", b.FleeBaseChance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with CHIMERA_ prefix
	v.SetEnvPrefix("CHIMERA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.maps_dir", "content/maps")
	v.SetDefault("content.catalogs_dir", "content/catalogs")
	v.SetDefault("content.conditions_dir", "content/conditions")
	v.SetDefault("content.scripts_dir", "content/scripts")

	v.SetDefault("save.dir", "saves")
	v.SetDefault("save.autosave_interval", "30s")

	v.SetDefault("encounter.min_steps", 8)
	v.SetDefault("encounter.max_steps", 24)

	v.SetDefault("battle.defend_modifier", 50)
	v.SetDefault("battle.flee_base_chance", 60)
}
