package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergloam/chimera/internal/game/content"
)

const catalogYAML = `
items:
  - id: steel_longsword
    name: Steel Longsword
    category: weapon
    price: 450
    damage_dice: 2d6
    shard_slots: 2
    mods:
      strength: 4
  - id: healing_draught
    name: Healing Draught
    category: consumable
    price: 30
    restore:
      hp: 50
shards:
  - id: ember_shard
    name: Ember Shard
    price: 120
    mods:
      magic: 3
enemies:
  - id: slime
    name: Slime
    level: 1
    stats:
      max_hp: 20
      strength: 4
      defense: 2
      speed: 3
    actions:
      - name: Tackle
        weight: 3
        damage_dice: 1d4
      - name: Acid Spit
        weight: 1
        damage_dice: 1d6
        magical: true
    experience: 12
    gold: 5
    drops:
      - item: slime_jelly
        chance: 0.4
        min_qty: 1
        max_qty: 2
classes:
  - id: sentinel
    name: Sentinel
    base_stats:
      max_hp: 40
      max_mp: 10
      strength: 8
      magic: 2
      defense: 7
      magic_defense: 4
      speed: 5
      luck: 3
    growth:
      max_hp: 6
      max_mp: 2
      strength: 2
      defense: 2
      speed: 1
    exp_base: 100
    passives:
      - id: stalwart
        name: Stalwart
        level: 3
shops:
  - id: rivermouth_smith
    name: Rivermouth Smithy
    buy_multiplier: 1.0
    sell_multiplier: 0.5
    stock:
      - item: steel_longsword
        stock: 1
      - item: healing_draught
        stock: -1
quests:
  - id: herbalists_request
    name: The Herbalist's Request
    objectives:
      - id: gather_moonpetals
        type: collect
        target: moonpetal_flower
        target_quantity: 3
        required: true
    rewards:
      gold: 150
      flags: [helped_herbalist]
    turn_in_costs:
      - item: moonpetal_flower
        quantity: 3
dialogues:
  - id: elder_rowan_intro
    start: greet
    nodes:
      - id: greet
        speaker: Elder Rowan
        text: The meadow grows restless, traveler.
        choices:
          - text: What troubles you?
            next: explain
          - text: Farewell.
            next: bye
      - id: explain
        speaker: Elder Rowan
        text: Moonpetals have all but vanished.
        effects:
          - type: start_quest
            quest: herbalists_request
        next: bye
      - id: bye
        speaker: Elder Rowan
        text: Walk safely.
`

func TestLoadCatalogBytes(t *testing.T) {
	reg := content.NewRegistry()
	require.NoError(t, content.LoadCatalogBytes([]byte(catalogYAML), reg))

	item, ok := reg.Item("steel_longsword")
	require.True(t, ok)
	assert.Equal(t, content.CategoryWeapon, item.Category)
	assert.Equal(t, "2d6", item.DamageDice)
	assert.Equal(t, 2, item.ShardSlots)
	assert.Equal(t, 4, item.Mods.Strength)

	draught, ok := reg.Item("healing_draught")
	require.True(t, ok)
	assert.Equal(t, 50, draught.Restore.HP)

	shard, ok := reg.Shard("ember_shard")
	require.True(t, ok)
	assert.Equal(t, 3, shard.Mods.Magic)

	slime, ok := reg.Enemy("slime")
	require.True(t, ok)
	assert.Equal(t, 20, slime.Stats.MaxHP)
	require.Len(t, slime.Actions, 2)
	assert.True(t, slime.Actions[1].Magical)
	require.Len(t, slime.Drops, 1)
	assert.InDelta(t, 0.4, slime.Drops[0].Chance, 1e-9)

	class, ok := reg.Class("sentinel")
	require.True(t, ok)
	assert.Equal(t, 6, class.Growth.MaxHP)
	assert.Len(t, class.PassivesAtLevel(3), 1)
	assert.Empty(t, class.PassivesAtLevel(2))

	shop, ok := reg.Shop("rivermouth_smith")
	require.True(t, ok)
	assert.Equal(t, -1, shop.Stock[1].Stock)

	quest, ok := reg.Quest("herbalists_request")
	require.True(t, ok)
	obj, ok := quest.Objective("gather_moonpetals")
	require.True(t, ok)
	assert.Equal(t, content.ObjectiveCollect, obj.Type)
	assert.Equal(t, 3, obj.TargetQuantity)

	dlg, ok := reg.Dialogue("elder_rowan_intro")
	require.True(t, ok)
	greet, ok := dlg.Node("greet")
	require.True(t, ok)
	assert.Len(t, greet.Choices, 2)
	explain, _ := dlg.Node("explain")
	require.Len(t, explain.Effects, 1)
	assert.Equal(t, content.EffectStartQuest, explain.Effects[0].Type)
	bye, _ := dlg.Node("bye")
	assert.True(t, bye.IsTerminal())
}

func TestLoadCatalogBytes_UnknownLookupsReturnFalse(t *testing.T) {
	reg := content.NewRegistry()
	require.NoError(t, content.LoadCatalogBytes([]byte(catalogYAML), reg))

	_, ok := reg.Item("nonexistent")
	assert.False(t, ok)
	_, ok = reg.Enemy("dragon_emperor")
	assert.False(t, ok)
	_, ok = reg.Dialogue("missing")
	assert.False(t, ok)
}

func TestLoadCatalogBytes_DuplicateID(t *testing.T) {
	reg := content.NewRegistry()
	require.NoError(t, content.LoadCatalogBytes([]byte(catalogYAML), reg))
	err := content.LoadCatalogBytes([]byte(catalogYAML), reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestLoadCatalogBytes_InvalidDefinition(t *testing.T) {
	bad := `
items:
  - id: cursed_blade
    name: Cursed Blade
    category: weapon
    price: -5
`
	reg := content.NewRegistry()
	err := content.LoadCatalogBytes([]byte(bad), reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestLoadCatalogBytes_DialogueBrokenLink(t *testing.T) {
	bad := `
dialogues:
  - id: broken
    start: a
    nodes:
      - id: a
        text: hello
        next: missing_node
`
	reg := content.NewRegistry()
	err := content.LoadCatalogBytes([]byte(bad), reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node")
}

func TestLoadCatalogsFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core.yaml"), []byte(catalogYAML), 0o644))

	reg, err := content.LoadCatalogsFromDir(dir)
	require.NoError(t, err)
	counts := reg.Counts()
	assert.Equal(t, 2, counts["items"])
	assert.Equal(t, 1, counts["quests"])
}

func TestLoadCatalogsFromDir_Empty(t *testing.T) {
	_, err := content.LoadCatalogsFromDir(t.TempDir())
	assert.Error(t, err)
}

func TestEffect_Validate(t *testing.T) {
	tests := []struct {
		name    string
		effect  content.Effect
		wantErr bool
	}{
		{"start quest ok", content.Effect{Type: content.EffectStartQuest, Quest: "q"}, false},
		{"start quest missing", content.Effect{Type: content.EffectStartQuest}, true},
		{"set flag ok", content.Effect{Type: content.EffectSetFlag, Flag: "f"}, false},
		{"give item no quantity", content.Effect{Type: content.EffectGiveItem, Item: "i"}, true},
		{"give gold ok", content.Effect{Type: content.EffectGiveGold, Gold: 10}, false},
		{"run script ok", content.Effect{Type: content.EffectRunScript, Hook: "on_gate"}, false},
		{"open shop missing", content.Effect{Type: content.EffectOpenShop}, true},
		{"unknown type", content.Effect{Type: "teleport_party"}, true},
	}
	for _, tc := range tests {
		err := tc.effect.Validate()
		if tc.wantErr {
			assert.Error(t, err, tc.name)
		} else {
			assert.NoError(t, err, tc.name)
		}
	}
}
