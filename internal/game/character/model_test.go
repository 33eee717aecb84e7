package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/evergloam/chimera/internal/game/character"
	"github.com/evergloam/chimera/internal/game/content"
)

func testRegistry(t *testing.T) *content.Registry {
	t.Helper()
	reg := content.NewRegistry()
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID:         "iron_blade",
		Name:       "Iron Blade",
		Category:   content.CategoryWeapon,
		Price:      120,
		DamageDice: "1d8",
		ShardSlots: 1,
		Mods:       content.StatMods{Strength: 3},
	}))
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID:       "quilted_vest",
		Name:     "Quilted Vest",
		Category: content.CategoryArmor,
		Price:    80,
		Mods:     content.StatMods{Defense: 2, MaxHP: 10},
	}))
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID:       "healing_draught",
		Name:     "Healing Draught",
		Category: content.CategoryConsumable,
		Price:    30,
		Restore:  content.RestoreEffect{HP: 50},
	}))
	require.NoError(t, reg.RegisterShard(&content.ShardDef{
		ID:   "ember_shard",
		Name: "Ember Shard",
		Mods: content.StatMods{Magic: 3},
	}))
	return reg
}

func testClass() *content.ClassDef {
	return &content.ClassDef{
		ID:   "sentinel",
		Name: "Sentinel",
		BaseStats: content.EnemyStats{
			MaxHP: 40, MaxMP: 10, Strength: 8, Magic: 2,
			Defense: 7, MagicDefense: 4, Speed: 5, Luck: 3,
		},
		ExpBase: 100,
	}
}

func TestNewFromClass(t *testing.T) {
	c := character.NewFromClass("hero", "Wren", testClass())

	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.Experience)
	assert.Equal(t, 40, c.Stats.HP)
	assert.Equal(t, 40, c.Stats.MaxHP)
	assert.Equal(t, 10, c.Stats.MP)
	assert.False(t, c.IsIncapacitated())
}

func TestCharacter_ApplyDamageClampsAtZero(t *testing.T) {
	c := character.NewFromClass("hero", "Wren", testClass())

	c.ApplyDamage(15)
	assert.Equal(t, 25, c.Stats.HP)

	c.ApplyDamage(9999)
	assert.Equal(t, 0, c.Stats.HP)
	assert.True(t, c.IsIncapacitated())
}

func TestCharacter_HealClampsAtEffectiveMax(t *testing.T) {
	reg := testRegistry(t)
	c := character.NewFromClass("hero", "Wren", testClass())
	_, err := c.Equip("quilted_vest", reg)
	require.NoError(t, err)

	c.ApplyDamage(30)
	c.Heal(9999, c.EquipmentMods(reg))

	// Vest grants +10 max HP, so the cap is 50.
	assert.Equal(t, 50, c.Stats.HP)
}

func TestCharacter_EquipAndEffectiveStats(t *testing.T) {
	reg := testRegistry(t)
	c := character.NewFromClass("hero", "Wren", testClass())

	prev, err := c.Equip("iron_blade", reg)
	require.NoError(t, err)
	assert.Empty(t, prev)

	eff := c.EffectiveStats(reg)
	assert.Equal(t, 11, eff.Strength)
	assert.Equal(t, 40, eff.MaxHP)

	_, err = c.Equip("quilted_vest", reg)
	require.NoError(t, err)
	eff = c.EffectiveStats(reg)
	assert.Equal(t, 50, eff.MaxHP)
	assert.Equal(t, 9, eff.Defense)
}

func TestCharacter_EquipReplacesAndReturnsPrevious(t *testing.T) {
	reg := testRegistry(t)
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID:       "steel_blade",
		Name:     "Steel Blade",
		Category: content.CategoryWeapon,
		Price:    300,
		Mods:     content.StatMods{Strength: 5},
	}))
	c := character.NewFromClass("hero", "Wren", testClass())

	_, err := c.Equip("iron_blade", reg)
	require.NoError(t, err)
	prev, err := c.Equip("steel_blade", reg)
	require.NoError(t, err)
	assert.Equal(t, "iron_blade", prev)
	assert.Equal(t, 13, c.EffectiveStats(reg).Strength)
}

func TestCharacter_EquipRejectsNonEquipment(t *testing.T) {
	reg := testRegistry(t)
	c := character.NewFromClass("hero", "Wren", testClass())

	_, err := c.Equip("healing_draught", reg)
	assert.Error(t, err)
	_, err = c.Equip("nonexistent", reg)
	assert.Error(t, err)
}

func TestCharacter_Unequip(t *testing.T) {
	reg := testRegistry(t)
	c := character.NewFromClass("hero", "Wren", testClass())
	_, err := c.Equip("iron_blade", reg)
	require.NoError(t, err)

	itemID, err := c.Unequip(character.SlotWeapon)
	require.NoError(t, err)
	assert.Equal(t, "iron_blade", itemID)

	_, err = c.Unequip(character.SlotWeapon)
	assert.Error(t, err)
}

func TestCharacter_SocketShard(t *testing.T) {
	reg := testRegistry(t)
	c := character.NewFromClass("hero", "Wren", testClass())
	_, err := c.Equip("iron_blade", reg)
	require.NoError(t, err)

	require.NoError(t, c.SocketShard(character.SlotWeapon, "ember_shard", reg))
	assert.Equal(t, 5, c.EffectiveStats(reg).Magic)

	// The blade has a single socket.
	err = c.SocketShard(character.SlotWeapon, "ember_shard", reg)
	assert.Error(t, err)

	err = c.SocketShard(character.SlotArmor, "ember_shard", reg)
	assert.Error(t, err)

	shardID, err := c.UnsocketShard(character.SlotWeapon, 0)
	require.NoError(t, err)
	assert.Equal(t, "ember_shard", shardID)
	assert.Equal(t, 2, c.EffectiveStats(reg).Magic)
}

func TestCharacter_PurchasePassive(t *testing.T) {
	c := character.NewFromClass("hero", "Wren", testClass())
	c.Level = 3
	c.OptimizationPoints = 5
	stalwart := content.Passive{ID: "stalwart", Name: "Stalwart", Level: 3, LatticeCost: 4}

	require.NoError(t, c.PurchasePassive(stalwart))
	assert.True(t, c.HasPassive("stalwart"))
	assert.Equal(t, 1, c.OptimizationPoints)

	assert.Error(t, c.PurchasePassive(stalwart), "already unlocked")

	bulwark := content.Passive{ID: "bulwark", Level: 6, LatticeCost: 1}
	assert.Error(t, c.PurchasePassive(bulwark), "level gated")

	cheap := content.Passive{ID: "focus", Level: 1, LatticeCost: 2}
	assert.Error(t, c.PurchasePassive(cheap), "insufficient points")
}

func TestCharacter_HPNeverNegativeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := character.NewFromClass("hero", "Wren", testClass())
		n := rapid.IntRange(1, 40).Draw(t, "hits")
		for i := 0; i < n; i++ {
			c.ApplyDamage(rapid.IntRange(0, 60).Draw(t, "damage"))
			if c.Stats.HP < 0 {
				t.Fatalf("HP went negative: %d", c.Stats.HP)
			}
		}
	})
}
