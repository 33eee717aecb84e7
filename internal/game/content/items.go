// Package content provides the read-only catalogs of authored game data:
// items, shards, enemies, classes, shops, quests, and dialogues. The engine
// queries these definitions but never mutates them.
package content

import "fmt"

// StatMods is a set of additive stat modifiers contributed by equipment,
// shards, or consumables.
type StatMods struct {
	MaxHP        int `yaml:"max_hp"`
	MaxMP        int `yaml:"max_mp"`
	Strength     int `yaml:"strength"`
	Magic        int `yaml:"magic"`
	Defense      int `yaml:"defense"`
	MagicDefense int `yaml:"magic_defense"`
	Speed        int `yaml:"speed"`
	Luck         int `yaml:"luck"`
}

// Add returns the field-wise sum of two modifier sets.
func (s StatMods) Add(o StatMods) StatMods {
	return StatMods{
		MaxHP:        s.MaxHP + o.MaxHP,
		MaxMP:        s.MaxMP + o.MaxMP,
		Strength:     s.Strength + o.Strength,
		Magic:        s.Magic + o.Magic,
		Defense:      s.Defense + o.Defense,
		MagicDefense: s.MagicDefense + o.MagicDefense,
		Speed:        s.Speed + o.Speed,
		Luck:         s.Luck + o.Luck,
	}
}

// ItemCategory classifies an item.
type ItemCategory string

// Item categories.
const (
	CategoryWeapon     ItemCategory = "weapon"
	CategoryArmor      ItemCategory = "armor"
	CategoryAccessory  ItemCategory = "accessory"
	CategoryConsumable ItemCategory = "consumable"
	CategoryKey        ItemCategory = "key"
)

// RestoreEffect is what a consumable restores when used.
type RestoreEffect struct {
	HP int `yaml:"hp"`
	MP int `yaml:"mp"`
	// Revive brings an incapacitated character back at the restored HP.
	Revive bool `yaml:"revive"`
}

// ItemDef is the static definition of an item.
type ItemDef struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Category    ItemCategory `yaml:"category"`
	// Price is the catalog price in gold; shops apply their multipliers to it.
	Price int `yaml:"price"`
	// Mods apply while the item is equipped (weapon/armor/accessory only).
	Mods StatMods `yaml:"mods"`
	// DamageDice is the weapon's damage expression, e.g. "2d6" (weapons only).
	DamageDice string `yaml:"damage_dice"`
	// Restore is the consumable effect (consumables only).
	Restore RestoreEffect `yaml:"restore"`
	// ShardSlots is the number of shard sockets (equipment only).
	ShardSlots int `yaml:"shard_slots"`
}

// IsEquipment reports whether the item occupies an equipment slot.
func (d *ItemDef) IsEquipment() bool {
	switch d.Category {
	case CategoryWeapon, CategoryArmor, CategoryAccessory:
		return true
	}
	return false
}

// Validate checks item invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (d *ItemDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("item must have an id")
	}
	if d.Name == "" {
		return fmt.Errorf("item %q: name must not be empty", d.ID)
	}
	switch d.Category {
	case CategoryWeapon, CategoryArmor, CategoryAccessory, CategoryConsumable, CategoryKey:
	default:
		return fmt.Errorf("item %q: unknown category %q", d.ID, d.Category)
	}
	if d.Price < 0 {
		return fmt.Errorf("item %q: price must be >= 0, got %d", d.ID, d.Price)
	}
	if d.ShardSlots < 0 {
		return fmt.Errorf("item %q: shard_slots must be >= 0, got %d", d.ID, d.ShardSlots)
	}
	if d.ShardSlots > 0 && !d.IsEquipment() {
		return fmt.Errorf("item %q: only equipment may have shard slots", d.ID)
	}
	if d.DamageDice != "" && d.Category != CategoryWeapon {
		return fmt.Errorf("item %q: only weapons may have damage dice", d.ID)
	}
	return nil
}

// ShardDef is a socketable equipment modifier.
type ShardDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       int      `yaml:"price"`
	Mods        StatMods `yaml:"mods"`
}

// Validate checks shard invariants.
func (d *ShardDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("shard must have an id")
	}
	if d.Name == "" {
		return fmt.Errorf("shard %q: name must not be empty", d.ID)
	}
	if d.Price < 0 {
		return fmt.Errorf("shard %q: price must be >= 0, got %d", d.ID, d.Price)
	}
	return nil
}
