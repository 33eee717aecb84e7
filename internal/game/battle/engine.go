package battle

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/game/character"
	"github.com/evergloam/chimera/internal/game/condition"
	"github.com/evergloam/chimera/internal/game/content"
	"github.com/evergloam/chimera/internal/game/dice"
	"github.com/evergloam/chimera/internal/game/leveling"
)

// unarmedDice is the attack roll for a party member with no weapon.
const unarmedDice = "1d4"

// castDice and castMPCost parameterise the magic strike action.
const (
	castDice   = "1d8"
	castMPCost = 4
)

// Engine resolves battles. It owns no battle state; every method operates on
// an explicit *State so tests can drive battles step by step.
type Engine struct {
	reg        *content.Registry
	conditions *condition.Registry
	src        dice.Source
	// defendModifier is the percent of damage taken while defending.
	defendModifier int
	// fleeBaseChance is the percent flee chance before speed adjustment.
	fleeBaseChance int
	logger         *zap.Logger
}

// NewEngine creates a battle engine.
//
// Precondition: reg, conditions, and src must not be nil; defendModifier and
// fleeBaseChance are percents in [0, 100]. logger may be nil.
func NewEngine(reg *content.Registry, conditions *condition.Registry, src dice.Source, defendModifier, fleeBaseChance int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		reg:            reg,
		conditions:     conditions,
		src:            src,
		defendModifier: defendModifier,
		fleeBaseChance: fleeBaseChance,
		logger:         logger,
	}
}

// ActionResult describes one resolved action for narration and UI.
type ActionResult struct {
	ActorID    string
	TargetID   string
	Message    string
	Damage     int
	Healed     int
	TargetDown bool
	// Inflicted is the condition id applied by the action, if any.
	Inflicted string
	// FleeSuccess is set by the flee action.
	FleeSuccess bool
}

// Start constructs a battle from the current party and an enemy id list.
// Party combatants copy effective stats; enemy instances get fresh uuids.
// Unknown enemy ids are skipped with a warning.
//
// Precondition:  party must contain at least one member with HP > 0.
// Postcondition: Round == 1 with a speed-sorted turn order, or an error when
// no valid enemies remain.
func (e *Engine) Start(party []*character.Character, enemyIDs []string, unfleeable bool) (*State, error) {
	st := &State{
		ID:         uuid.NewString(),
		Round:      1,
		Unfleeable: unfleeable,
	}

	for _, ch := range party {
		eff := ch.EffectiveStats(e.reg)
		c := &Combatant{
			ID:           ch.ID,
			SourceID:     ch.ID,
			Name:         ch.Name,
			Kind:         KindParty,
			HP:           eff.HP,
			MaxHP:        eff.MaxHP,
			MP:           eff.MP,
			MaxMP:        eff.MaxMP,
			Strength:     eff.Strength,
			Magic:        eff.Magic,
			Defense:      eff.Defense,
			MagicDefense: eff.MagicDefense,
			Speed:        eff.Speed,
			Luck:         eff.Luck,
			DamageDice:   e.weaponDice(ch),
			Conditions:   condition.NewActiveSet(),
		}
		st.Combatants = append(st.Combatants, c)
	}

	for _, id := range enemyIDs {
		def, ok := e.reg.Enemy(id)
		if !ok {
			e.logger.Warn("unknown enemy id in encounter roster", zap.String("enemy_id", id))
			continue
		}
		st.Combatants = append(st.Combatants, e.instanceEnemy(def))
	}

	if len(st.Enemies()) == 0 {
		return nil, fmt.Errorf("battle: no valid enemies in roster %v", enemyIDs)
	}

	st.sortTurnOrder()
	e.logger.Info("battle started",
		zap.String("battle_id", st.ID),
		zap.Int("party", len(st.Party())),
		zap.Int("enemies", len(st.Enemies())))
	return st, nil
}

// weaponDice returns the equipped weapon's damage dice, or the unarmed roll.
func (e *Engine) weaponDice(ch *character.Character) string {
	eq, ok := ch.Equipment[character.SlotWeapon]
	if !ok || eq == nil {
		return unarmedDice
	}
	item, ok := e.reg.Item(eq.ItemID)
	if !ok || item.DamageDice == "" {
		return unarmedDice
	}
	return item.DamageDice
}

func (e *Engine) instanceEnemy(def *content.EnemyDef) *Combatant {
	return &Combatant{
		ID:           uuid.NewString(),
		SourceID:     def.ID,
		Name:         def.Name,
		Kind:         KindEnemy,
		HP:           def.Stats.MaxHP,
		MaxHP:        def.Stats.MaxHP,
		MP:           def.Stats.MaxMP,
		MaxMP:        def.Stats.MaxMP,
		Strength:     def.Stats.Strength,
		Magic:        def.Stats.Magic,
		Defense:      def.Stats.Defense,
		MagicDefense: def.Stats.MagicDefense,
		Speed:        def.Stats.Speed,
		Luck:         def.Stats.Luck,
		Conditions:   condition.NewActiveSet(),
		Actions:      def.Actions,
		Drops:        def.Drops,
		Experience:   def.Experience,
		Gold:         def.Gold,
	}
}

// Attack resolves a physical attack: damage dice + attack power - target
// defense, floored at 1 before the defend reduction.
//
// Precondition:  actor and target must be active combatants in st.
// Postcondition: Target HP ∈ [0, MaxHP].
func (e *Engine) Attack(st *State, actorID, targetID string) (ActionResult, error) {
	actor, target, err := e.pair(st, actorID, targetID)
	if err != nil {
		return ActionResult{}, err
	}

	expr, err := dice.Parse(actor.DamageDice)
	if err != nil {
		expr = dice.MustParse(unarmedDice)
	}
	raw := dice.Roll(expr, e.src).Total() + actor.attackPower() - target.defensePower()
	if raw < 1 {
		raw = 1
	}
	dealt := target.ApplyDamage(raw, e.defendModifier)

	res := ActionResult{
		ActorID:    actorID,
		TargetID:   targetID,
		Damage:     dealt,
		TargetDown: target.IsDown(),
		Message:    fmt.Sprintf("%s attacks %s for %d damage", actor.Name, target.Name, dealt),
	}
	if res.TargetDown {
		res.Message = fmt.Sprintf("%s attacks %s for %d damage, defeating it", actor.Name, target.Name, dealt)
	}
	return res, nil
}

// Cast resolves a magic strike costing MP: cast dice + magic - target magic
// defense, floored at 1.
//
// Postcondition: Actor MP decreases by the cast cost, or an error is returned
// and nothing changes.
func (e *Engine) Cast(st *State, actorID, targetID string) (ActionResult, error) {
	actor, target, err := e.pair(st, actorID, targetID)
	if err != nil {
		return ActionResult{}, err
	}
	if actor.MP < castMPCost {
		return ActionResult{}, fmt.Errorf("battle: %s has %d MP, cast costs %d", actor.Name, actor.MP, castMPCost)
	}
	actor.MP -= castMPCost

	raw := dice.Roll(dice.MustParse(castDice), e.src).Total() + actor.Magic - target.MagicDefense
	if raw < 1 {
		raw = 1
	}
	dealt := target.ApplyDamage(raw, e.defendModifier)

	return ActionResult{
		ActorID:    actorID,
		TargetID:   targetID,
		Damage:     dealt,
		TargetDown: target.IsDown(),
		Message:    fmt.Sprintf("%s casts at %s for %d damage", actor.Name, target.Name, dealt),
	}, nil
}

// Defend halves incoming damage until the combatant's next round.
func (e *Engine) Defend(st *State, actorID string) (ActionResult, error) {
	actor, ok := st.Combatant(actorID)
	if !ok || !actor.IsActive() {
		return ActionResult{}, fmt.Errorf("battle: no active combatant %q", actorID)
	}
	actor.Defending = true
	return ActionResult{
		ActorID: actorID,
		Message: fmt.Sprintf("%s braces for impact", actor.Name),
	}, nil
}

// UseItem applies a consumable's restore effect to the target. Inventory
// bookkeeping is the caller's responsibility.
//
// Precondition:  item must be a consumable with a restore effect.
// Postcondition: Revive items raise a downed target to the restored HP;
// non-revive items fail against downed targets.
func (e *Engine) UseItem(st *State, actorID, targetID string, item *content.ItemDef) (ActionResult, error) {
	actor, ok := st.Combatant(actorID)
	if !ok || !actor.IsActive() {
		return ActionResult{}, fmt.Errorf("battle: no active combatant %q", actorID)
	}
	target, ok := st.Combatant(targetID)
	if !ok {
		return ActionResult{}, fmt.Errorf("battle: no combatant %q", targetID)
	}
	if item.Category != content.CategoryConsumable {
		return ActionResult{}, fmt.Errorf("battle: %s is not usable in battle", item.Name)
	}
	if target.IsDown() && !item.Restore.Revive {
		return ActionResult{}, fmt.Errorf("battle: %s is down and %s cannot revive", target.Name, item.Name)
	}

	healed := target.Heal(item.Restore.HP)
	target.RestoreMP(item.Restore.MP)

	return ActionResult{
		ActorID:  actorID,
		TargetID: targetID,
		Healed:   healed,
		Message:  fmt.Sprintf("%s uses %s on %s", actor.Name, item.Name, target.Name),
	}, nil
}

// Flee attempts to escape. The chance is the base percent adjusted by the
// actor's speed edge over the fastest living enemy, clamped to [5, 95].
//
// Postcondition: On success every party combatant is marked fled and the
// battle outcome becomes OutcomeFled.
func (e *Engine) Flee(st *State, actorID string) (ActionResult, error) {
	actor, ok := st.Combatant(actorID)
	if !ok || !actor.IsActive() || actor.IsEnemy() {
		return ActionResult{}, fmt.Errorf("battle: no active party combatant %q", actorID)
	}
	if st.Unfleeable {
		return ActionResult{
			ActorID: actorID,
			Message: "There is no escape from this battle",
		}, nil
	}

	fastestEnemy := 0
	for _, en := range st.Enemies() {
		if !en.IsDown() && en.Speed > fastestEnemy {
			fastestEnemy = en.Speed
		}
	}
	chance := e.fleeBaseChance + (actor.effectiveSpeed()-fastestEnemy)*5
	if chance < 5 {
		chance = 5
	}
	if chance > 95 {
		chance = 95
	}

	if !dice.Percent(e.src, chance) {
		return ActionResult{
			ActorID: actorID,
			Message: fmt.Sprintf("%s fails to escape", actor.Name),
		}, nil
	}

	for _, c := range st.Party() {
		c.Fled = true
	}
	st.fled = true
	return ActionResult{
		ActorID:     actorID,
		FleeSuccess: true,
		Message:     "The party escapes",
	}, nil
}

// EnemyAct picks and resolves one enemy action by weighted roll. The target
// is a uniformly chosen active party member.
//
// Precondition:  actorID must name a living enemy.
// Postcondition: Target HP ∈ [0, MaxHP]; conditions may be inflicted per the
// action's inflict chance.
func (e *Engine) EnemyAct(st *State, actorID string) (ActionResult, error) {
	actor, ok := st.Combatant(actorID)
	if !ok || !actor.IsEnemy() || !actor.IsActive() {
		return ActionResult{}, fmt.Errorf("battle: no active enemy %q", actorID)
	}

	var targets []*Combatant
	for _, c := range st.Party() {
		if c.IsActive() {
			targets = append(targets, c)
		}
	}
	if len(targets) == 0 {
		return ActionResult{}, fmt.Errorf("battle: no party targets remain")
	}
	target := targets[e.src.Intn(len(targets))]

	action := e.pickAction(actor)

	expr, err := dice.Parse(action.DamageDice)
	if err != nil {
		expr = dice.MustParse(unarmedDice)
	}
	var raw int
	if action.Magical {
		raw = dice.Roll(expr, e.src).Total() + actor.Magic - target.MagicDefense
	} else {
		raw = dice.Roll(expr, e.src).Total() + actor.attackPower() - target.defensePower()
	}
	if raw < 1 {
		raw = 1
	}
	dealt := target.ApplyDamage(raw, e.defendModifier)

	res := ActionResult{
		ActorID:    actorID,
		TargetID:   target.ID,
		Damage:     dealt,
		TargetDown: target.IsDown(),
		Message:    fmt.Sprintf("%s uses %s on %s for %d damage", actor.Name, action.Name, target.Name, dealt),
	}

	if action.Inflicts != "" && dice.Percent(e.src, action.InflictChance) {
		if def, ok := e.conditions.Get(action.Inflicts); ok {
			if err := target.Conditions.Apply(def, 0); err == nil {
				res.Inflicted = def.ID
			}
		} else {
			e.logger.Warn("enemy action inflicts unknown condition",
				zap.String("enemy_id", actor.SourceID),
				zap.String("condition_id", action.Inflicts))
		}
	}
	return res, nil
}

// pickAction draws an enemy action by weight. An enemy with no authored
// actions gets a plain unarmed strike.
func (e *Engine) pickAction(actor *Combatant) content.EnemyAction {
	if len(actor.Actions) == 0 {
		return content.EnemyAction{Name: "Strike", Weight: 1, DamageDice: unarmedDice}
	}
	total := 0
	for _, a := range actor.Actions {
		total += a.Weight
	}
	if total <= 0 {
		return actor.Actions[0]
	}
	roll := e.src.Intn(total)
	for _, a := range actor.Actions {
		roll -= a.Weight
		if roll < 0 {
			return a
		}
	}
	return actor.Actions[len(actor.Actions)-1]
}

// EndRound applies condition round damage, ticks durations, clears defend
// stances, and rebuilds the turn order for the next round.
//
// Postcondition: Round increments; HP stays within [0, MaxHP] for every
// combatant.
func (e *Engine) EndRound(st *State) []ActionResult {
	var results []ActionResult
	for _, c := range st.Combatants {
		if c.IsDown() || c.Fled {
			continue
		}
		if dmg := c.Conditions.RoundDamage(); dmg > 0 {
			dealt := c.ApplyDamage(dmg, 100)
			results = append(results, ActionResult{
				TargetID:   c.ID,
				Damage:     dealt,
				TargetDown: c.IsDown(),
				Message:    fmt.Sprintf("%s suffers %d damage from its afflictions", c.Name, dealt),
			})
		}
		c.Conditions.Tick()
		c.Defending = false
	}
	st.Round++
	st.sortTurnOrder()
	return results
}

// pair fetches an active actor and a living opposing target.
func (e *Engine) pair(st *State, actorID, targetID string) (*Combatant, *Combatant, error) {
	actor, ok := st.Combatant(actorID)
	if !ok || !actor.IsActive() {
		return nil, nil, fmt.Errorf("battle: no active combatant %q", actorID)
	}
	if actor.Conditions.SkipsTurn() {
		return nil, nil, fmt.Errorf("battle: %s cannot act this turn", actor.Name)
	}
	target, ok := st.Combatant(targetID)
	if !ok || target.IsDown() {
		return nil, nil, fmt.Errorf("battle: no living target %q", targetID)
	}
	return actor, target, nil
}

// FinalizeRewards computes the battle's yield exactly once. Repeated calls
// return the already-finalized payload without re-rolling drops.
//
// Precondition:  st.Outcome() must be OutcomeVictory.
// Postcondition: Finalized() is true; experience and gold are never negative.
func (e *Engine) FinalizeRewards(st *State) (*Rewards, error) {
	if st.finalized {
		return st.rewards, nil
	}
	if st.Outcome() != OutcomeVictory {
		return nil, fmt.Errorf("battle: cannot finalize rewards with outcome %s", st.Outcome())
	}

	r := &Rewards{}
	for _, en := range st.Enemies() {
		if en.Experience > 0 {
			r.Experience += en.Experience
		}
		if en.Gold > 0 {
			r.Gold += en.Gold
		}
		for _, drop := range en.Drops {
			if !dice.Fraction(e.src, drop.Chance) {
				continue
			}
			qty := drop.MinQty
			if drop.MaxQty > drop.MinQty {
				qty = dice.IntBetween(e.src, drop.MinQty, drop.MaxQty)
			}
			if qty < 1 {
				continue
			}
			r.Items = append(r.Items, ItemReward{ItemID: drop.ItemID, Quantity: qty})
		}
	}

	st.rewards = r
	st.finalized = true
	e.logger.Info("battle rewards finalized",
		zap.String("battle_id", st.ID),
		zap.Int("experience", r.Experience),
		zap.Int("gold", r.Gold),
		zap.Int("drops", len(r.Items)))
	return r, nil
}

// EndBattle merges battle-local HP/MP back into the authoritative party
// records, applies experience, and runs leveling. A victorious battle must
// have finalized rewards before ending.
//
// Precondition:  st.Outcome() must not be OutcomeOngoing.
// Postcondition: Every surviving character's HP/MP reflect the battle; the
// returned map holds ordered level-up results per character id.
func (e *Engine) EndBattle(st *State, party []*character.Character) (map[string][]leveling.LevelUp, error) {
	outcome := st.Outcome()
	if outcome == OutcomeOngoing {
		return nil, fmt.Errorf("battle: cannot end an ongoing battle")
	}
	if outcome == OutcomeVictory && !st.finalized {
		return nil, fmt.Errorf("battle: rewards must be finalized before ending a won battle")
	}

	levelUps := make(map[string][]leveling.LevelUp)
	for _, ch := range party {
		c, ok := st.Combatant(ch.ID)
		if !ok {
			continue
		}
		mergeBack(ch, c)

		if outcome != OutcomeVictory {
			continue
		}
		ch.Experience += st.rewards.Experience
		def, ok := e.reg.Class(ch.Class)
		if !ok {
			e.logger.Warn("character has unknown class, skipping leveling",
				zap.String("character_id", ch.ID),
				zap.String("class", ch.Class))
			continue
		}
		if ups := leveling.Apply(ch, def); len(ups) > 0 {
			levelUps[ch.ID] = ups
		}
	}
	return levelUps, nil
}

// mergeBack writes battle HP/MP into the character record. Battle maxima
// include equipment mods, so current values are clamped to the battle max.
func mergeBack(ch *character.Character, c *Combatant) {
	hp := c.HP
	if hp > c.MaxHP {
		hp = c.MaxHP
	}
	mp := c.MP
	if mp > c.MaxMP {
		mp = c.MaxMP
	}
	ch.Stats.HP = hp
	ch.Stats.MP = mp
}
