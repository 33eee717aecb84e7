package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergloam/chimera/internal/game/battle"
	"github.com/evergloam/chimera/internal/game/character"
	"github.com/evergloam/chimera/internal/game/condition"
	"github.com/evergloam/chimera/internal/game/content"
	"github.com/evergloam/chimera/internal/game/encounter"
	"github.com/evergloam/chimera/internal/game/quest"
	"github.com/evergloam/chimera/internal/game/store"
	"github.com/evergloam/chimera/internal/game/worldmap"
	"github.com/evergloam/chimera/internal/storage/savefile"
)

// scriptedSource returns queued values in order, clamped into range, and 0
// once drained.
type scriptedSource struct {
	values []int
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[0]
	s.values = s.values[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

func testRegistry(t *testing.T) *content.Registry {
	t.Helper()
	reg := content.NewRegistry()

	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID: "steel_longsword", Name: "Steel Longsword",
		Category: content.CategoryWeapon, Price: 450, DamageDice: "2d6",
	}))
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID: "healing_draught", Name: "Healing Draught",
		Category: content.CategoryConsumable, Price: 30,
		Restore: content.RestoreEffect{HP: 50},
	}))
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID: "moonpetal_flower", Name: "Moonpetal Flower",
		Category: content.CategoryKey,
	}))
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID: "slime_jelly", Name: "Slime Jelly",
		Category: content.CategoryConsumable, Price: 5,
	}))

	require.NoError(t, reg.RegisterEnemy(&content.EnemyDef{
		ID: "slime", Name: "Slime", Level: 1,
		Stats:   content.EnemyStats{MaxHP: 1, Strength: 1, Speed: 1},
		Actions: []content.EnemyAction{{Name: "Tackle", Weight: 1, DamageDice: "1d4"}},
		Drops: []content.EnemyDrop{
			{ItemID: "slime_jelly", Chance: 1.0, MinQty: 1, MaxQty: 1},
		},
		Experience: 12, Gold: 5,
	}))

	require.NoError(t, reg.RegisterClass(&content.ClassDef{
		ID: "sentinel", Name: "Sentinel",
		BaseStats: content.EnemyStats{MaxHP: 40, MaxMP: 10, Strength: 10, Defense: 5, Speed: 6},
		Growth:    content.StatGrowth{MaxHP: 6, Strength: 2},
		ExpBase:   100,
	}))

	require.NoError(t, reg.RegisterShop(&content.ShopDef{
		ID: "rivermouth_smith", Name: "Rivermouth Smithy",
		Stock: []content.ShopStock{
			{ItemID: "healing_draught", Stock: -1},
			{ItemID: "moonpetal_flower", Price: 10, Stock: 3},
		},
	}))

	require.NoError(t, reg.RegisterQuest(&content.QuestDef{
		ID: "herbalists_request", Name: "The Herbalist's Request",
		Objectives: []content.QuestObjective{
			{ID: "gather_moonpetals", Type: content.ObjectiveCollect,
				Target: "moonpetal_flower", TargetQuantity: 3, Required: true},
		},
		Rewards: content.QuestRewards{Gold: 150},
	}))

	require.NoError(t, reg.RegisterQuest(&content.QuestDef{
		ID: "jelly_harvest", Name: "Jelly Harvest",
		Objectives: []content.QuestObjective{
			{ID: "gather_jelly", Type: content.ObjectiveCollect,
				Target: "slime_jelly", TargetQuantity: 2, Required: true},
		},
		Rewards: content.QuestRewards{Gold: 40},
	}))

	require.NoError(t, reg.RegisterDialogue(&content.DialogueDef{
		ID:    "elder_rowan_intro",
		Start: "greet",
		Nodes: map[string]*content.DialogueNode{
			"greet": {
				ID: "greet", Speaker: "Elder Rowan",
				Text: "The meadow grows restless, traveler.",
				Choices: []content.Choice{
					{Text: "What troubles you?", Next: "explain"},
					{Text: "Farewell.", Next: "bye"},
				},
			},
			"explain": {
				ID: "explain", Speaker: "Elder Rowan",
				Text: "Moonpetals have all but vanished.",
				Effects: []content.Effect{
					{Type: content.EffectStartQuest, Quest: "herbalists_request"},
					{Type: content.EffectSetFlag, Flag: "met_elder_rowan"},
				},
				Next: "bye",
			},
			"bye": {ID: "bye", Speaker: "Elder Rowan", Text: "Walk safely."},
		},
	}))

	return reg
}

func openMap(id, name string, w, h int) *worldmap.GameMap {
	m := &worldmap.GameMap{ID: id, Name: name, Width: w, Height: h}
	for y := 0; y < h; y++ {
		m.Ground = append(m.Ground, make([]int, w))
		m.Overhead = append(m.Overhead, make([]int, w))
		row := make([]bool, w)
		for x := range row {
			row[x] = true
		}
		m.Collision = append(m.Collision, row)
	}
	return m
}

func testMaps(t *testing.T) *worldmap.Registry {
	t.Helper()

	meadow := openMap("verdant_meadow", "Verdant Meadow", 20, 20)
	meadow.Collision[1][2] = false // wall at (2,1)
	meadow.NPCs = []worldmap.NPC{
		{ID: "elder_rowan", X: 2, Y: 3, Facing: worldmap.FaceDown,
			DialogueID: "elder_rowan_intro", Behavior: worldmap.BehaviorStatic},
	}
	meadow.Events = []worldmap.MapEvent{
		{ID: "chest_weapon", X: 3, Y: 2, Type: worldmap.EventTreasure,
			Treasure: &worldmap.TreasurePayload{
				Gold:  100,
				Items: []worldmap.ItemGrant{{ItemID: "steel_longsword", Quantity: 1}},
			}},
		{ID: "meadow_shrine", X: 1, Y: 3, Type: worldmap.EventSavePoint},
		{ID: "meadow_inn", X: 4, Y: 4, Type: worldmap.EventInn,
			Inn: &worldmap.InnPayload{Price: 30}},
		{ID: "meadow_exit", X: 5, Y: 5, Type: worldmap.EventTeleport,
			Teleport: &worldmap.TeleportPayload{ToMap: "rivermouth", ToX: 2, ToY: 2, Facing: worldmap.FaceDown}},
		{ID: "ambush", X: 6, Y: 6, Type: worldmap.EventBattle,
			Battle: &worldmap.BattlePayload{Enemies: []string{"slime"}, Unfleeable: true}},
		{ID: "smithy_door", X: 7, Y: 8, Type: worldmap.EventShop,
			Shop: &worldmap.ShopPayload{ShopID: "rivermouth_smith"}},
		{ID: "moonpetal_1", X: 1, Y: 5, Type: worldmap.EventCollectible,
			Collectible: &worldmap.CollectiblePayload{
				ItemID: "moonpetal_flower", RequiredQuest: "herbalists_request",
			}},
	}
	meadow.Zones = []worldmap.EncounterZone{
		{X: 8, Y: 4, Width: 9, Height: 7, Enemies: []string{"slime"}, Chance: 1.0},
	}
	meadow.Connections = []worldmap.Connection{
		{Direction: "north", ToMap: "rivermouth"},
	}
	require.NoError(t, meadow.Validate())

	rivermouth := openMap("rivermouth", "Rivermouth", 10, 10)
	rivermouth.Connections = []worldmap.Connection{
		{Direction: "south", ToMap: "verdant_meadow"},
	}
	require.NoError(t, rivermouth.Validate())

	maps := worldmap.NewRegistry()
	require.NoError(t, maps.Register(meadow))
	require.NoError(t, maps.Register(rivermouth))
	return maps
}

// newTestStore builds a store over the test world. The encounter threshold is
// pinned to exactly 2 steps and the zone chance is 1.0, so the second step
// inside a zone always fires.
func newTestStore(t *testing.T, src *scriptedSource) *store.Store {
	t.Helper()
	reg := testRegistry(t)
	conditions := condition.NewRegistry()
	policy, err := encounter.NewPolicy(2, 2, src)
	require.NoError(t, err)
	saves, err := savefile.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	s, err := store.New(store.Deps{
		Registry:   reg,
		Maps:       testMaps(t),
		Engine:     battle.NewEngine(reg, conditions, src, 50, 60, nil),
		Encounters: policy,
		Saves:      saves,
		Source:     src,
	})
	require.NoError(t, err)
	return s
}

func startGame(t *testing.T, s *store.Store, x, y int) {
	t.Helper()
	reg := testRegistry(t)
	def, ok := reg.Class("sentinel")
	require.True(t, ok)
	hero := character.NewFromClass("hero", "Aster", def)
	require.NoError(t, s.NewGame([]*character.Character{hero}, worldmap.Position{
		MapID: "verdant_meadow", X: x, Y: y, Facing: worldmap.FaceDown,
	}))
	require.NoError(t, s.CompleteBoot())
}

func TestStore_NewGame(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	assert.Equal(t, store.PhaseTitle, s.Phase())

	startGame(t, s, 1, 1)
	assert.Equal(t, store.PhaseExplore, s.Phase())
	assert.Equal(t, "verdant_meadow", s.CurrentMap().ID)
	assert.Equal(t, "Verdant Meadow", s.Location())
	assert.Equal(t, 1, s.Chapter())
}

func TestStore_NewGame_BootPhase(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	reg := testRegistry(t)
	def, ok := reg.Class("sentinel")
	require.True(t, ok)
	hero := character.NewFromClass("hero", "Aster", def)

	require.NoError(t, s.NewGame([]*character.Character{hero}, worldmap.Position{
		MapID: "verdant_meadow", X: 1, Y: 1, Facing: worldmap.FaceDown,
	}))
	assert.Equal(t, store.PhaseSystemBoot, s.Phase())

	_, err := s.Move(0, 1)
	assert.Error(t, err, "no movement during the boot sequence")

	require.NoError(t, s.CompleteBoot())
	assert.Equal(t, store.PhaseExplore, s.Phase())
	assert.Error(t, s.CompleteBoot(), "boot completes only once")
}

func TestStore_Move_WallBlocksFacingOnly(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 1, 1)

	out, err := s.Move(1, 0)
	require.NoError(t, err)
	assert.False(t, out.Moved)
	assert.Equal(t, 1, s.Position().X)
	assert.Equal(t, worldmap.FaceRight, s.Position().Facing)
}

func TestStore_Move_InvalidDelta(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 1, 1)

	_, err := s.Move(1, 1)
	assert.Error(t, err)
	_, err = s.Move(0, 0)
	assert.Error(t, err)
}

func TestStore_Move_WrongPhase(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	_, err := s.Move(0, 1)
	assert.Error(t, err, "cannot move at the title screen")
}

func TestStore_TreasureChest_ExactlyOnce(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 3, 3)

	// The chest blocks the step and only turns the player toward it.
	out, err := s.Move(0, -1)
	require.NoError(t, err)
	assert.False(t, out.Moved)
	assert.Equal(t, worldmap.FaceUp, s.Position().Facing)

	res, err := s.Interact()
	require.NoError(t, err)
	require.True(t, res.Acted)
	assert.Contains(t, res.Messages, "Found 100 gold")
	assert.Contains(t, res.Messages, "Found Steel Longsword x1")
	assert.Equal(t, 100, s.Inventory().Gold)
	assert.Equal(t, 1, s.Inventory().Count("steel_longsword"))
	assert.True(t, s.EventConsumed("chest_weapon"))

	res, err = s.Interact()
	require.NoError(t, err)
	assert.False(t, res.Acted, "an opened chest offers nothing")

	// The consumed chest no longer blocks the cell.
	out, err = s.Move(0, -1)
	require.NoError(t, err)
	assert.True(t, out.Moved)
	assert.Equal(t, 2, s.Position().Y)
}

func TestStore_RandomEncounter_ArmConfirm(t *testing.T) {
	src := &scriptedSource{values: []int{0, 0}} // roster size, enemy pick
	s := newTestStore(t, src)
	startGame(t, s, 9, 5)

	out, err := s.Move(1, 0)
	require.NoError(t, err)
	assert.False(t, out.EncounterArmed, "one step is below the threshold")

	out, err = s.Move(1, 0)
	require.NoError(t, err)
	require.True(t, out.EncounterArmed)

	pending, armed := s.EncounterArmed()
	require.True(t, armed)
	assert.Equal(t, []string{"slime"}, pending.Enemies)
	assert.False(t, pending.Unfleeable)

	// Input is suppressed while the intro animation plays.
	out, err = s.Move(1, 0)
	require.NoError(t, err)
	assert.False(t, out.Moved)

	require.NoError(t, s.ConfirmEncounter())
	assert.Equal(t, store.PhaseCombat, s.Phase())
	st, err := s.Battle()
	require.NoError(t, err)
	assert.Len(t, st.Enemies(), 1)
}

func TestStore_ConfirmEncounter_NothingArmed(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 1, 1)
	assert.Error(t, s.ConfirmEncounter())
}

func TestStore_BattleVictoryFlow(t *testing.T) {
	src := &scriptedSource{values: []int{0, 0, 0}} // roster, pick, attack die
	s := newTestStore(t, src)
	startGame(t, s, 9, 5)

	mustMove(t, s, 1, 0)
	mustMove(t, s, 1, 0)
	require.NoError(t, s.ConfirmEncounter())

	st, err := s.Battle()
	require.NoError(t, err)
	slime := st.Enemies()[0]

	res, err := s.BattleAttack("hero", slime.ID)
	require.NoError(t, err)
	assert.True(t, res.TargetDown, "a slime has 1 HP")
	assert.Equal(t, battle.OutcomeVictory, st.Outcome())

	result, err := s.FinishBattle()
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeVictory, result.Outcome)
	require.NotNil(t, result.Rewards)
	assert.Equal(t, 12, result.Rewards.Experience)
	assert.Equal(t, 5, s.Inventory().Gold)
	assert.Equal(t, 1, s.Inventory().Count("slime_jelly"))
	assert.Equal(t, 12, s.Party()[0].Experience)

	assert.Equal(t, store.PhaseExplore, s.Phase())
	_, err = s.Battle()
	assert.Error(t, err, "battle state is cleared")

	out, err := s.Move(1, 0)
	require.NoError(t, err)
	assert.True(t, out.Moved, "movement resumes after the battle")
}

func TestStore_BattleEvent_UnfleeableAndConsumedOnVictory(t *testing.T) {
	src := &scriptedSource{values: []int{0}} // attack die
	s := newTestStore(t, src)
	startGame(t, s, 6, 7)

	out, err := s.Move(0, -1)
	require.NoError(t, err)
	require.True(t, out.EncounterArmed)
	pending, _ := s.EncounterArmed()
	assert.True(t, pending.Unfleeable)
	assert.Equal(t, "ambush", pending.EventID)

	require.NoError(t, s.ConfirmEncounter())
	st, err := s.Battle()
	require.NoError(t, err)

	flee, err := s.BattleFlee("hero")
	require.NoError(t, err)
	assert.False(t, flee.FleeSuccess, "scripted battles block fleeing")

	_, err = s.BattleAttack("hero", st.Enemies()[0].ID)
	require.NoError(t, err)
	_, err = s.FinishBattle()
	require.NoError(t, err)

	assert.True(t, s.EventConsumed("ambush"), "won event battles never refire")
	mustMove(t, s, 0, 1)
	out, err = s.Move(0, -1)
	require.NoError(t, err)
	assert.True(t, out.Moved)
	assert.False(t, out.EncounterArmed)
}

func TestStore_BattleDefeat_GameOver(t *testing.T) {
	src := &scriptedSource{values: []int{0, 0}}
	s := newTestStore(t, src)
	startGame(t, s, 9, 5)

	mustMove(t, s, 1, 0)
	mustMove(t, s, 1, 0)
	require.NoError(t, s.ConfirmEncounter())

	st, err := s.Battle()
	require.NoError(t, err)
	hero, ok := st.Combatant("hero")
	require.True(t, ok)
	hero.ApplyDamage(1000, 100)
	assert.Equal(t, battle.OutcomeDefeat, st.Outcome())

	result, err := s.FinishBattle()
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeDefeat, result.Outcome)
	assert.Nil(t, result.Rewards, "defeat grants nothing")
	assert.Equal(t, store.PhaseGameOver, s.Phase())

	_, err = s.Move(0, 1)
	assert.Error(t, err)
}

func TestStore_FinishBattle_Ongoing(t *testing.T) {
	src := &scriptedSource{values: []int{0, 0}}
	s := newTestStore(t, src)
	startGame(t, s, 9, 5)

	mustMove(t, s, 1, 0)
	mustMove(t, s, 1, 0)
	require.NoError(t, s.ConfirmEncounter())

	_, err := s.FinishBattle()
	assert.Error(t, err)
}

func TestStore_Teleport_ArmConfirm(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 5, 6)

	out, err := s.Move(0, -1)
	require.NoError(t, err)
	require.True(t, out.MapTransitionArmed)
	assert.Equal(t, "verdant_meadow", s.Position().MapID, "the map does not change until confirmation")

	dest, armed := s.MapTransitionArmed()
	require.True(t, armed)
	assert.Equal(t, "rivermouth", dest.ToMap)

	require.NoError(t, s.ConfirmMapTransition())
	assert.Equal(t, "rivermouth", s.CurrentMap().ID)
	assert.Equal(t, 2, s.Position().X)
	assert.Equal(t, 2, s.Position().Y)
	assert.Equal(t, worldmap.FaceDown, s.Position().Facing)
	assert.Equal(t, store.PhaseExplore, s.Phase())
}

func TestStore_EdgeConnection(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 10, 0)

	out, err := s.Move(0, -1)
	require.NoError(t, err)
	require.True(t, out.MapTransitionArmed)

	require.NoError(t, s.ConfirmMapTransition())
	assert.Equal(t, "rivermouth", s.CurrentMap().ID)
	assert.Equal(t, 9, s.Position().Y, "entering from the north puts the player on the bottom row")
	assert.Equal(t, 9, s.Position().X, "the along-edge coordinate is clamped to the destination width")
}

func TestStore_Dialogue_StartsQuest(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 2, 4)

	mustFace(t, s, 0, -1) // elder_rowan blocks the cell
	res, err := s.Interact()
	require.NoError(t, err)
	require.True(t, res.Acted)
	assert.Equal(t, store.PhaseDialogue, s.Phase())

	node, err := s.DialogueNode()
	require.NoError(t, err)
	assert.Equal(t, "greet", node.ID)

	require.NoError(t, s.DialogueChoose(0))
	assert.True(t, s.Quests().IsActive("herbalists_request"))
	assert.True(t, s.Flag("met_elder_rowan"))

	require.NoError(t, s.DialogueAdvance()) // explain -> bye
	require.NoError(t, s.DialogueAdvance()) // bye -> done
	assert.Equal(t, store.PhaseExplore, s.Phase())
	_, err = s.DialogueNode()
	assert.Error(t, err)
}

func TestStore_Collectible_QuestGated(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 1, 6)

	// Quest inactive: the flower is inert scenery the player walks over.
	out, err := s.Move(0, -1)
	require.NoError(t, err)
	assert.True(t, out.Moved)
	mustMove(t, s, 0, 1)

	res := s.Quests().Start("herbalists_request", quest.StartContext{PartyMaxLevel: 1})
	require.True(t, res.Success)

	// Quest active: the flower blocks and can be picked up.
	out, err = s.Move(0, -1)
	require.NoError(t, err)
	assert.False(t, out.Moved)

	pick, err := s.Interact()
	require.NoError(t, err)
	require.True(t, pick.Acted)
	assert.Equal(t, []string{"Picked up Moonpetal Flower"}, pick.Messages)
	assert.Equal(t, 1, s.Inventory().Count("moonpetal_flower"))
	assert.True(t, s.EventConsumed("moonpetal_1"))

	active := s.Quests().Active()
	require.Len(t, active, 1)
	prog, ok := active[0].Objective("gather_moonpetals")
	require.True(t, ok)
	assert.Equal(t, 1, prog.Current)
}

func TestStore_Shop_OnOwnCell(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 7, 9)
	require.NoError(t, s.Inventory().AddGold(100))

	mustMove(t, s, 0, -1) // step onto the shop door
	res, err := s.Interact()
	require.NoError(t, err)
	require.True(t, res.Acted)
	assert.Equal(t, store.PhaseShop, s.Phase())

	buy, err := s.ShopBuy("healing_draught", 2)
	require.NoError(t, err)
	require.True(t, buy.Success)
	assert.Equal(t, 40, s.Inventory().Gold)
	assert.Equal(t, 2, s.Inventory().Count("healing_draught"))

	s.CloseShop()
	assert.Equal(t, store.PhaseExplore, s.Phase())
	_, err = s.ShopBuy("healing_draught", 1)
	assert.Error(t, err, "no shop open")
}

// questProgress reads a collect objective's current count off the active
// quest list.
func questProgress(t *testing.T, s *store.Store, questID, objectiveID string) int {
	t.Helper()
	for _, q := range s.Quests().Active() {
		if q.QuestID == questID {
			prog, ok := q.Objective(objectiveID)
			require.True(t, ok)
			return prog.Current
		}
	}
	t.Fatalf("quest %s is not active", questID)
	return 0
}

func TestStore_ShopBuy_AdvancesCollectObjectives(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 7, 9)
	require.NoError(t, s.Inventory().AddGold(100))
	require.True(t, s.Quests().Start("herbalists_request",
		quest.StartContext{PartyMaxLevel: 1}).Success)

	mustMove(t, s, 0, -1)
	_, err := s.Interact()
	require.NoError(t, err)
	require.Equal(t, store.PhaseShop, s.Phase())

	buy, err := s.ShopBuy("moonpetal_flower", 3)
	require.NoError(t, err)
	require.True(t, buy.Success)
	assert.Equal(t, 3, s.Inventory().Count("moonpetal_flower"))
	assert.Equal(t, 3, questProgress(t, s, "herbalists_request", "gather_moonpetals"),
		"bought items count as collected")
}

func TestStore_BattleDrops_AdvanceCollectObjectives(t *testing.T) {
	src := &scriptedSource{values: []int{0, 0, 0}} // roster, pick, attack die
	s := newTestStore(t, src)
	startGame(t, s, 9, 5)
	require.True(t, s.Quests().Start("jelly_harvest",
		quest.StartContext{PartyMaxLevel: 1}).Success)

	mustMove(t, s, 1, 0)
	mustMove(t, s, 1, 0)
	require.NoError(t, s.ConfirmEncounter())

	st, err := s.Battle()
	require.NoError(t, err)
	_, err = s.BattleAttack("hero", st.Enemies()[0].ID)
	require.NoError(t, err)

	_, err = s.FinishBattle()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Inventory().Count("slime_jelly"))
	assert.Equal(t, 1, questProgress(t, s, "jelly_harvest", "gather_jelly"),
		"banked drops count as collected")
}

func TestStore_Inn_RestoresParty(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	reg := testRegistry(t)
	def, ok := reg.Class("sentinel")
	require.True(t, ok)
	hero := character.NewFromClass("hero", "Aster", def)
	// Inns do not block movement, so the player stands beside the door
	// already facing it.
	require.NoError(t, s.NewGame([]*character.Character{hero}, worldmap.Position{
		MapID: "verdant_meadow", X: 4, Y: 5, Facing: worldmap.FaceUp,
	}))
	require.NoError(t, s.CompleteBoot())
	hero.ApplyDamage(25)
	require.Equal(t, 15, hero.Stats.HP)

	res, err := s.Interact()
	require.NoError(t, err)
	require.True(t, res.Acted)
	assert.Equal(t, []string{"Not enough gold to rest"}, res.Messages)
	assert.Equal(t, 15, hero.Stats.HP)

	require.NoError(t, s.Inventory().AddGold(30))
	res, err = s.Interact()
	require.NoError(t, err)
	assert.Equal(t, []string{"The party rests and recovers fully"}, res.Messages)
	assert.Equal(t, 0, s.Inventory().Gold)
	assert.Equal(t, 40, hero.Stats.HP)
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 3, 3)

	// Open the chest so consumed-event state has something to carry.
	mustFace(t, s, 0, -1)
	_, err := s.Interact()
	require.NoError(t, err)
	s.SetFlag("met_elder_rowan")
	require.True(t, s.Quests().Start("herbalists_request", quest.StartContext{
		FlagSet: s.Flag, PartyMaxLevel: 1,
	}).Success)

	// Saving requires a save point.
	assert.Error(t, s.SaveToSlot(1))

	mustMove(t, s, 0, 1)  // the NPC at (2,3) blocks the direct route
	mustMove(t, s, -1, 0)
	mustMove(t, s, -1, 0) // (1,4)
	mustFace(t, s, 0, -1) // face the shrine at (1,3)
	res, err := s.Interact()
	require.NoError(t, err)
	require.True(t, res.Acted)
	require.True(t, s.SaveScreenOpen())

	require.NoError(t, s.SaveToSlot(1))
	assert.False(t, s.SaveScreenOpen())

	s.ReturnToTitle()
	assert.Equal(t, store.PhaseTitle, s.Phase())

	require.NoError(t, s.LoadFromSlot(1))
	assert.Equal(t, store.PhaseExplore, s.Phase())
	assert.Equal(t, "verdant_meadow", s.Position().MapID)
	assert.Equal(t, 1, s.Position().X)
	assert.Equal(t, 4, s.Position().Y)
	assert.Equal(t, 100, s.Inventory().Gold)
	assert.Equal(t, 1, s.Inventory().Count("steel_longsword"))
	assert.True(t, s.Flag("met_elder_rowan"))
	assert.True(t, s.Quests().IsActive("herbalists_request"))
	assert.True(t, s.EventConsumed("chest_weapon"), "opened chests stay open across loads")
}

func TestStore_LoadFromSlot_EmptySlot(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	assert.Error(t, s.LoadFromSlot(7))
	assert.Equal(t, store.PhaseTitle, s.Phase())
}

func TestStore_Autosave_Restore(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})

	// No game running: the autosave tick is a no-op.
	require.NoError(t, s.Autosave())

	startGame(t, s, 1, 1)
	require.NoError(t, s.Inventory().AddGold(55))
	s.SetFlag("met_elder_rowan")
	require.NoError(t, s.Autosave())

	s.ReturnToTitle()
	require.NoError(t, s.RestoreAutosave())
	assert.Equal(t, store.PhaseExplore, s.Phase())
	assert.Equal(t, 55, s.Inventory().Gold)
	assert.True(t, s.Flag("met_elder_rowan"))
	assert.Equal(t, 1, s.Position().X)
}

func TestStore_Menu_SuppressesMovement(t *testing.T) {
	s := newTestStore(t, &scriptedSource{})
	startGame(t, s, 1, 1)

	require.NoError(t, s.OpenMenu())
	out, err := s.Move(0, 1)
	require.NoError(t, err)
	assert.False(t, out.Moved)

	s.CloseMenu()
	out, err = s.Move(0, 1)
	require.NoError(t, err)
	assert.True(t, out.Moved)
}

// mustMove asserts an accepted step.
func mustMove(t *testing.T, s *store.Store, dx, dy int) {
	t.Helper()
	out, err := s.Move(dx, dy)
	require.NoError(t, err)
	require.True(t, out.Moved, "expected step (%d,%d) to be accepted", dx, dy)
}

// mustFace issues a step expected to be rejected, leaving only facing changed.
func mustFace(t *testing.T, s *store.Store, dx, dy int) {
	t.Helper()
	out, err := s.Move(dx, dy)
	require.NoError(t, err)
	require.False(t, out.Moved, "expected step (%d,%d) to be blocked", dx, dy)
}
