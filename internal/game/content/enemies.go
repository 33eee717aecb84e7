package content

import "fmt"

// EnemyStats is the stat block for an enemy definition.
type EnemyStats struct {
	MaxHP        int `yaml:"max_hp"`
	MaxMP        int `yaml:"max_mp"`
	Strength     int `yaml:"strength"`
	Magic        int `yaml:"magic"`
	Defense      int `yaml:"defense"`
	MagicDefense int `yaml:"magic_defense"`
	Speed        int `yaml:"speed"`
	Luck         int `yaml:"luck"`
}

// EnemyAction is one entry in an enemy's weighted action list.
type EnemyAction struct {
	Name string `yaml:"name"`
	// Weight is the relative pick weight. All-zero weights fall back to the
	// first action.
	Weight int `yaml:"weight"`
	// DamageDice is the action's damage expression, e.g. "1d8+2".
	DamageDice string `yaml:"damage_dice"`
	// Magical actions are resisted by magic defense instead of defense.
	Magical bool `yaml:"magical"`
	// Inflicts optionally applies a condition on hit with InflictChance percent.
	Inflicts      string `yaml:"inflicts"`
	InflictChance int    `yaml:"inflict_chance"`
}

// EnemyDrop defines a single item entry in an enemy's drop table.
type EnemyDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// EnemyDef is the static definition of an enemy kind.
type EnemyDef struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Level int        `yaml:"level"`
	Stats EnemyStats `yaml:"stats"`
	// Actions is the weighted list the battle engine picks from each turn.
	Actions []EnemyAction `yaml:"actions"`
	// Experience and Gold are awarded per defeated instance.
	Experience int `yaml:"experience"`
	Gold       int `yaml:"gold"`
	// Drops is the per-kill drop table; each entry rolls independently.
	Drops []EnemyDrop `yaml:"drops"`
}

// Validate checks enemy invariants.
//
// Postcondition: Returns nil iff all stat, action, and drop constraints hold.
func (d *EnemyDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("enemy must have an id")
	}
	if d.Name == "" {
		return fmt.Errorf("enemy %q: name must not be empty", d.ID)
	}
	if d.Level < 1 {
		return fmt.Errorf("enemy %q: level must be >= 1, got %d", d.ID, d.Level)
	}
	if d.Stats.MaxHP < 1 {
		return fmt.Errorf("enemy %q: max_hp must be >= 1, got %d", d.ID, d.Stats.MaxHP)
	}
	if len(d.Actions) == 0 {
		return fmt.Errorf("enemy %q: must have at least one action", d.ID)
	}
	for i, a := range d.Actions {
		if a.Name == "" {
			return fmt.Errorf("enemy %q: action[%d] must have a name", d.ID, i)
		}
		if a.Weight < 0 {
			return fmt.Errorf("enemy %q: action[%d] weight must be >= 0, got %d", d.ID, i, a.Weight)
		}
		if a.InflictChance < 0 || a.InflictChance > 100 {
			return fmt.Errorf("enemy %q: action[%d] inflict_chance must be 0-100, got %d", d.ID, i, a.InflictChance)
		}
	}
	if d.Experience < 0 {
		return fmt.Errorf("enemy %q: experience must be >= 0, got %d", d.ID, d.Experience)
	}
	if d.Gold < 0 {
		return fmt.Errorf("enemy %q: gold must be >= 0, got %d", d.ID, d.Gold)
	}
	for i, drop := range d.Drops {
		if drop.ItemID == "" {
			return fmt.Errorf("enemy %q: drop[%d] must name an item", d.ID, i)
		}
		if drop.Chance <= 0 || drop.Chance > 1.0 {
			return fmt.Errorf("enemy %q: drop[%d] chance must be in (0, 1.0], got %f", d.ID, i, drop.Chance)
		}
		if drop.MinQty < 1 {
			return fmt.Errorf("enemy %q: drop[%d] min_qty must be >= 1, got %d", d.ID, i, drop.MinQty)
		}
		if drop.MinQty > drop.MaxQty {
			return fmt.Errorf("enemy %q: drop[%d] min_qty (%d) must be <= max_qty (%d)", d.ID, i, drop.MinQty, drop.MaxQty)
		}
	}
	return nil
}
