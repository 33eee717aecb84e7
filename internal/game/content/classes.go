package content

import "fmt"

// StatGrowth is the per-level stat increase for a class.
type StatGrowth struct {
	MaxHP        int `yaml:"max_hp"`
	MaxMP        int `yaml:"max_mp"`
	Strength     int `yaml:"strength"`
	Magic        int `yaml:"magic"`
	Defense      int `yaml:"defense"`
	MagicDefense int `yaml:"magic_defense"`
	Speed        int `yaml:"speed"`
	Luck         int `yaml:"luck"`
}

// Passive is a passive skill unlocked at a specific level or bought on the
// lattice with optimization points.
type Passive struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Level is the character level at which the passive unlocks; 0 means the
	// passive is lattice-only.
	Level int `yaml:"level"`
	// LatticeCost is the optimization point cost to buy the passive on the
	// lattice; 0 means level-gated only.
	LatticeCost int `yaml:"lattice_cost"`
}

// ClassDef defines a playable character class.
type ClassDef struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	BaseStats   EnemyStats `yaml:"base_stats"`
	Growth      StatGrowth `yaml:"growth"`
	// ExpBase scales the experience curve: the total experience required to
	// reach level L is ExpBase * (L-1) * L / 2 — non-decreasing in L.
	ExpBase int `yaml:"exp_base"`
	// Passives unlockable by this class.
	Passives []Passive `yaml:"passives"`
}

// Validate checks class invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (d *ClassDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("class must have an id")
	}
	if d.Name == "" {
		return fmt.Errorf("class %q: name must not be empty", d.ID)
	}
	if d.BaseStats.MaxHP < 1 {
		return fmt.Errorf("class %q: base max_hp must be >= 1, got %d", d.ID, d.BaseStats.MaxHP)
	}
	if d.ExpBase < 1 {
		return fmt.Errorf("class %q: exp_base must be >= 1, got %d", d.ID, d.ExpBase)
	}
	seen := make(map[string]bool, len(d.Passives))
	for i, p := range d.Passives {
		if p.ID == "" {
			return fmt.Errorf("class %q: passive[%d] must have an id", d.ID, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("class %q: duplicate passive id %q", d.ID, p.ID)
		}
		seen[p.ID] = true
		if p.Level < 0 {
			return fmt.Errorf("class %q: passive %q level must be >= 0", d.ID, p.ID)
		}
		if p.LatticeCost < 0 {
			return fmt.Errorf("class %q: passive %q lattice_cost must be >= 0", d.ID, p.ID)
		}
	}
	return nil
}

// PassivesAtLevel returns the passives that unlock exactly at the given level,
// in authored order.
func (d *ClassDef) PassivesAtLevel(level int) []Passive {
	var out []Passive
	for _, p := range d.Passives {
		if p.Level == level && p.Level > 0 {
			out = append(out, p)
		}
	}
	return out
}
