// Package character defines the party member domain model: stats, equipment
// with socketed shards, and lattice progression.
package character

import (
	"fmt"

	"github.com/evergloam/chimera/internal/game/content"
)

// Stats is a character's full stat block. HP and MP are current values; the
// Max fields are the base caps before equipment modifiers.
type Stats struct {
	HP           int `json:"hp"`
	MaxHP        int `json:"maxHp"`
	MP           int `json:"mp"`
	MaxMP        int `json:"maxMp"`
	Strength     int `json:"strength"`
	Magic        int `json:"magic"`
	Defense      int `json:"defense"`
	MagicDefense int `json:"magicDefense"`
	Speed        int `json:"speed"`
	Luck         int `json:"luck"`
}

// EquipSlot identifies one of the three equipment slots.
type EquipSlot string

// Equipment slots.
const (
	SlotWeapon    EquipSlot = "weapon"
	SlotArmor     EquipSlot = "armor"
	SlotAccessory EquipSlot = "accessory"
)

// AllSlots lists the equipment slots in display order.
var AllSlots = []EquipSlot{SlotWeapon, SlotArmor, SlotAccessory}

// SlotFor returns the equipment slot an item category occupies.
//
// Postcondition: Returns (slot, true) for equipment categories, ("", false) otherwise.
func SlotFor(cat content.ItemCategory) (EquipSlot, bool) {
	switch cat {
	case content.CategoryWeapon:
		return SlotWeapon, true
	case content.CategoryArmor:
		return SlotArmor, true
	case content.CategoryAccessory:
		return SlotAccessory, true
	}
	return "", false
}

// Equipped is one occupied equipment slot: the item plus its socketed shards.
type Equipped struct {
	ItemID string   `json:"itemId"`
	Shards []string `json:"shards,omitempty"`
}

// Character is one party member's persistent state. Characters are owned
// exclusively by the game store; the battle engine works on combatant copies
// and merges HP/MP back when the battle ends.
type Character struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
	Stats      Stats  `json:"stats"`
	// Equipment maps occupied slots; an absent key is an empty slot.
	Equipment map[EquipSlot]*Equipped `json:"equipment"`
	// OptimizationPoints are spent on the lattice to unlock passives.
	OptimizationPoints int `json:"optimizationPoints"`
	// Passives are unlocked passive skill ids, in unlock order.
	Passives []string `json:"passives,omitempty"`
}

// NewFromClass creates a fresh level-1 character from a class definition.
//
// Precondition:  def must not be nil.
// Postcondition: HP == MaxHP, MP == MaxMP, Level == 1, Experience == 0.
func NewFromClass(id, name string, def *content.ClassDef) *Character {
	return &Character{
		ID:    id,
		Name:  name,
		Class: def.ID,
		Level: 1,
		Stats: Stats{
			HP:           def.BaseStats.MaxHP,
			MaxHP:        def.BaseStats.MaxHP,
			MP:           def.BaseStats.MaxMP,
			MaxMP:        def.BaseStats.MaxMP,
			Strength:     def.BaseStats.Strength,
			Magic:        def.BaseStats.Magic,
			Defense:      def.BaseStats.Defense,
			MagicDefense: def.BaseStats.MagicDefense,
			Speed:        def.BaseStats.Speed,
			Luck:         def.BaseStats.Luck,
		},
		Equipment: make(map[EquipSlot]*Equipped),
	}
}

// IsIncapacitated reports whether the character is at 0 HP.
func (c *Character) IsIncapacitated() bool {
	return c.Stats.HP <= 0
}

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition:  amount must be >= 0.
// Postcondition: HP >= 0.
func (c *Character) ApplyDamage(amount int) {
	c.Stats.HP -= amount
	if c.Stats.HP < 0 {
		c.Stats.HP = 0
	}
}

// Heal restores HP by amount, capped at the effective maximum given by mods.
//
// Precondition:  amount must be >= 0.
// Postcondition: HP <= MaxHP + mods.MaxHP.
func (c *Character) Heal(amount int, mods content.StatMods) {
	limit := c.Stats.MaxHP + mods.MaxHP
	c.Stats.HP += amount
	if c.Stats.HP > limit {
		c.Stats.HP = limit
	}
}

// RestoreMP restores MP by amount, capped at the effective maximum.
func (c *Character) RestoreMP(amount int, mods content.StatMods) {
	limit := c.Stats.MaxMP + mods.MaxMP
	c.Stats.MP += amount
	if c.Stats.MP > limit {
		c.Stats.MP = limit
	}
}

// RestoreAll refills HP and MP to their effective maxima.
func (c *Character) RestoreAll(mods content.StatMods) {
	c.Stats.HP = c.Stats.MaxHP + mods.MaxHP
	c.Stats.MP = c.Stats.MaxMP + mods.MaxMP
}

// EquipmentMods folds the stat modifiers of all equipped items and their
// socketed shards. Unknown item or shard ids contribute nothing.
func (c *Character) EquipmentMods(reg *content.Registry) content.StatMods {
	var mods content.StatMods
	for _, slot := range AllSlots {
		eq, ok := c.Equipment[slot]
		if !ok || eq == nil {
			continue
		}
		if item, ok := reg.Item(eq.ItemID); ok {
			mods = mods.Add(item.Mods)
		}
		for _, shardID := range eq.Shards {
			if shard, ok := reg.Shard(shardID); ok {
				mods = mods.Add(shard.Mods)
			}
		}
	}
	return mods
}

// EffectiveStats returns the character's stats with equipment and shard
// modifiers folded in. Current HP and MP pass through unmodified.
func (c *Character) EffectiveStats(reg *content.Registry) Stats {
	mods := c.EquipmentMods(reg)
	return Stats{
		HP:           c.Stats.HP,
		MaxHP:        c.Stats.MaxHP + mods.MaxHP,
		MP:           c.Stats.MP,
		MaxMP:        c.Stats.MaxMP + mods.MaxMP,
		Strength:     c.Stats.Strength + mods.Strength,
		Magic:        c.Stats.Magic + mods.Magic,
		Defense:      c.Stats.Defense + mods.Defense,
		MagicDefense: c.Stats.MagicDefense + mods.MagicDefense,
		Speed:        c.Stats.Speed + mods.Speed,
		Luck:         c.Stats.Luck + mods.Luck,
	}
}

// Equip places an item into its slot and returns the previously equipped
// item id, if any. Socketed shards on the displaced item are discarded with
// it; callers return the displaced item to the inventory.
//
// Precondition:  reg must not be nil.
// Postcondition: Equipment[slot].ItemID == itemID on success.
func (c *Character) Equip(itemID string, reg *content.Registry) (string, error) {
	item, ok := reg.Item(itemID)
	if !ok {
		return "", fmt.Errorf("character %q: unknown item %q", c.ID, itemID)
	}
	slot, ok := SlotFor(item.Category)
	if !ok {
		return "", fmt.Errorf("character %q: item %q is not equippable", c.ID, itemID)
	}
	var previous string
	if prev, occupied := c.Equipment[slot]; occupied && prev != nil {
		previous = prev.ItemID
	}
	c.Equipment[slot] = &Equipped{ItemID: itemID}
	return previous, nil
}

// Unequip empties a slot and returns the removed item id.
//
// Postcondition: Returns ("", error) if the slot was already empty.
func (c *Character) Unequip(slot EquipSlot) (string, error) {
	eq, ok := c.Equipment[slot]
	if !ok || eq == nil {
		return "", fmt.Errorf("character %q: %s slot is empty", c.ID, slot)
	}
	delete(c.Equipment, slot)
	return eq.ItemID, nil
}

// SocketShard sockets a shard into the item equipped in slot.
//
// Precondition:  reg must not be nil.
// Postcondition: Returns an error if the slot is empty, the shard is unknown,
// or the item's sockets are full; otherwise the shard is appended.
func (c *Character) SocketShard(slot EquipSlot, shardID string, reg *content.Registry) error {
	eq, ok := c.Equipment[slot]
	if !ok || eq == nil {
		return fmt.Errorf("character %q: no item equipped in %s slot", c.ID, slot)
	}
	if _, ok := reg.Shard(shardID); !ok {
		return fmt.Errorf("character %q: unknown shard %q", c.ID, shardID)
	}
	item, ok := reg.Item(eq.ItemID)
	if !ok {
		return fmt.Errorf("character %q: unknown equipped item %q", c.ID, eq.ItemID)
	}
	if len(eq.Shards) >= item.ShardSlots {
		return fmt.Errorf("character %q: %s has no free shard slots", c.ID, item.Name)
	}
	eq.Shards = append(eq.Shards, shardID)
	return nil
}

// UnsocketShard removes the shard at index from the item equipped in slot and
// returns its id.
func (c *Character) UnsocketShard(slot EquipSlot, index int) (string, error) {
	eq, ok := c.Equipment[slot]
	if !ok || eq == nil {
		return "", fmt.Errorf("character %q: no item equipped in %s slot", c.ID, slot)
	}
	if index < 0 || index >= len(eq.Shards) {
		return "", fmt.Errorf("character %q: shard index %d out of range", c.ID, index)
	}
	shardID := eq.Shards[index]
	eq.Shards = append(eq.Shards[:index], eq.Shards[index+1:]...)
	return shardID, nil
}

// UnlockPassive records a passive as unlocked. Re-unlocking is a no-op.
//
// Postcondition: HasPassive(id) is true.
func (c *Character) UnlockPassive(id string) {
	if c.HasPassive(id) {
		return
	}
	c.Passives = append(c.Passives, id)
}

// HasPassive reports whether the passive with id is unlocked.
func (c *Character) HasPassive(id string) bool {
	for _, p := range c.Passives {
		if p == id {
			return true
		}
	}
	return false
}
