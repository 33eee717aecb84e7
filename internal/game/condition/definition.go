// Package condition implements battle status effects: static definitions
// loaded from YAML and per-combatant active sets.
package condition

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Duration types.
const (
	DurationRounds = "rounds"
	DurationBattle = "battle"
)

// ConditionDef is the static definition of a status effect, loaded from YAML.
type ConditionDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// DurationType is "rounds" (ticks down each round) or "battle" (lasts
	// until the battle ends).
	DurationType string `yaml:"duration_type"`
	// DefaultDuration is the rounds applied when the inflictor names none.
	DefaultDuration int `yaml:"default_duration"`
	// MaxStacks caps stacking; 0 means unstackable.
	MaxStacks int `yaml:"max_stacks"`
	// DamagePerRound is dealt to the afflicted combatant at end of round,
	// multiplied by the stack count.
	DamagePerRound int `yaml:"damage_per_round"`
	// SkipTurn makes the afflicted combatant lose its action.
	SkipTurn bool `yaml:"skip_turn"`
	// Stat penalties applied while active, multiplied by stacks.
	AttackPenalty  int `yaml:"attack_penalty"`
	DefensePenalty int `yaml:"defense_penalty"`
	SpeedPenalty   int `yaml:"speed_penalty"`
}

// Validate checks definition invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (d *ConditionDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("condition must have an id")
	}
	if d.Name == "" {
		return fmt.Errorf("condition %q: name must not be empty", d.ID)
	}
	switch d.DurationType {
	case DurationRounds, DurationBattle:
	default:
		return fmt.Errorf("condition %q: unknown duration_type %q", d.ID, d.DurationType)
	}
	if d.DurationType == DurationRounds && d.DefaultDuration < 1 {
		return fmt.Errorf("condition %q: default_duration must be >= 1 for rounds duration", d.ID)
	}
	if d.MaxStacks < 0 {
		return fmt.Errorf("condition %q: max_stacks must be >= 0", d.ID)
	}
	if d.DamagePerRound < 0 {
		return fmt.Errorf("condition %q: damage_per_round must be >= 0", d.ID)
	}
	return nil
}

// Registry holds all known ConditionDefs keyed by ID.
type Registry struct {
	defs map[string]*ConditionDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ConditionDef)}
}

// Register adds def to the registry.
//
// Precondition:  def must not be nil and must have passed Validate.
// Postcondition: Get(def.ID) returns (def, true); returns error if def.ID already registered.
func (r *Registry) Register(def *ConditionDef) error {
	if _, exists := r.defs[def.ID]; exists {
		return fmt.Errorf("condition: Registry.Register: condition ID %q already registered", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the ConditionDef for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*ConditionDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Count returns the number of registered definitions.
func (r *Registry) Count() int {
	return len(r.defs)
}

// LoadDirectory reads every *.yaml file in dir. Each file may hold one or
// more condition documents.
//
// Precondition:  dir must be a readable directory.
// Postcondition: Returns a populated Registry, or an error naming the first
// file that fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := loadBytes(data, reg); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}

func loadBytes(data []byte, reg *Registry) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var def ConditionDef
		if err := dec.Decode(&def); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("parsing condition YAML: %w", err)
		}
		if err := def.Validate(); err != nil {
			return err
		}
		if err := reg.Register(&def); err != nil {
			return err
		}
	}
}
