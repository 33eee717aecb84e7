package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/game/battle"
	"github.com/evergloam/chimera/internal/game/leveling"
)

// Battle returns the live battle state.
func (s *Store) Battle() (*battle.State, error) {
	if s.phase != PhaseCombat || s.battleState == nil {
		return nil, fmt.Errorf("store: no battle in progress")
	}
	return s.battleState, nil
}

// BattleAttack resolves a party member's physical attack.
func (s *Store) BattleAttack(actorID, targetID string) (battle.ActionResult, error) {
	st, err := s.Battle()
	if err != nil {
		return battle.ActionResult{}, err
	}
	return s.deps.Engine.Attack(st, actorID, targetID)
}

// BattleCast resolves a party member's magic strike.
func (s *Store) BattleCast(actorID, targetID string) (battle.ActionResult, error) {
	st, err := s.Battle()
	if err != nil {
		return battle.ActionResult{}, err
	}
	return s.deps.Engine.Cast(st, actorID, targetID)
}

// BattleDefend puts a party member into the defend stance.
func (s *Store) BattleDefend(actorID string) (battle.ActionResult, error) {
	st, err := s.Battle()
	if err != nil {
		return battle.ActionResult{}, err
	}
	return s.deps.Engine.Defend(st, actorID)
}

// BattleUseItem consumes one inventory item and applies its restore effect.
// The item leaves the inventory only when the use succeeds.
func (s *Store) BattleUseItem(actorID, targetID, itemID string) (battle.ActionResult, error) {
	st, err := s.Battle()
	if err != nil {
		return battle.ActionResult{}, err
	}
	item, ok := s.deps.Registry.Item(itemID)
	if !ok {
		return battle.ActionResult{}, fmt.Errorf("store: unknown item %q", itemID)
	}
	if !s.inv.Has(itemID, 1) {
		return battle.ActionResult{}, fmt.Errorf("store: no %s left", item.Name)
	}
	res, err := s.deps.Engine.UseItem(st, actorID, targetID, item)
	if err != nil {
		return battle.ActionResult{}, err
	}
	if err := s.inv.RemoveItem(itemID, 1); err != nil {
		s.logger.Error("battle item removal failed after use",
			zap.String("item_id", itemID), zap.Error(err))
	}
	return res, nil
}

// BattleFlee attempts to escape the battle.
func (s *Store) BattleFlee(actorID string) (battle.ActionResult, error) {
	st, err := s.Battle()
	if err != nil {
		return battle.ActionResult{}, err
	}
	return s.deps.Engine.Flee(st, actorID)
}

// BattleEnemyAct resolves one enemy turn.
func (s *Store) BattleEnemyAct(actorID string) (battle.ActionResult, error) {
	st, err := s.Battle()
	if err != nil {
		return battle.ActionResult{}, err
	}
	return s.deps.Engine.EnemyAct(st, actorID)
}

// BattleEndRound applies condition damage and rebuilds the turn order.
func (s *Store) BattleEndRound() ([]battle.ActionResult, error) {
	st, err := s.Battle()
	if err != nil {
		return nil, err
	}
	return s.deps.Engine.EndRound(st), nil
}

// BattleResult summarises a finished battle for the results screen.
type BattleResult struct {
	Outcome battle.Outcome
	Rewards *battle.Rewards
	// LevelUps holds ordered level-up results per character id.
	LevelUps map[string][]leveling.LevelUp
}

// FinishBattle closes out a decided battle. Victories finalize and bank
// rewards, advance defeat objectives, consume the originating battle event,
// and run leveling; defeats end the run; fleeing returns to exploration with
// nothing gained.
//
// Precondition:  The battle outcome must not be ongoing.
// Postcondition: Phase() is PhaseExplore, or PhaseGameOver after a defeat.
func (s *Store) FinishBattle() (BattleResult, error) {
	st, err := s.Battle()
	if err != nil {
		return BattleResult{}, err
	}
	outcome := st.Outcome()
	if outcome == battle.OutcomeOngoing {
		return BattleResult{}, fmt.Errorf("store: battle is still ongoing")
	}

	result := BattleResult{Outcome: outcome}

	if outcome == battle.OutcomeVictory {
		rewards, err := s.deps.Engine.FinalizeRewards(st)
		if err != nil {
			return BattleResult{}, err
		}
		result.Rewards = rewards
		_ = s.inv.AddGold(rewards.Gold)
		for _, item := range rewards.Items {
			if err := s.GainItem(item.ItemID, item.Quantity); err != nil {
				s.logger.Warn("battle drop forfeited, inventory full",
					zap.String("item_id", item.ItemID))
			}
		}
		for _, en := range st.Enemies() {
			s.quests.OnEnemyDefeated(en.SourceID)
		}
	}

	levelUps, err := s.deps.Engine.EndBattle(st, s.party)
	if err != nil {
		return BattleResult{}, err
	}
	result.LevelUps = levelUps

	if pending, ok := s.pendingEncounter.Payload(); ok {
		if outcome == battle.OutcomeVictory && pending.EventID != "" {
			s.consumeEvent(pending.EventID)
		}
	}
	s.pendingEncounter.Clear()
	s.battleState = nil

	switch outcome {
	case battle.OutcomeDefeat:
		s.phase = PhaseGameOver
		s.logger.Info("party defeated", zap.String("battle_id", st.ID))
	default:
		s.phase = PhaseExplore
	}
	return result, nil
}
