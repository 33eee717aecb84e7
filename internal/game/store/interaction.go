package store

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/game/content"
	"github.com/evergloam/chimera/internal/game/dialogue"
	"github.com/evergloam/chimera/internal/game/interact"
	"github.com/evergloam/chimera/internal/game/quest"
	"github.com/evergloam/chimera/internal/game/shop"
	"github.com/evergloam/chimera/internal/game/worldmap"
)

// InteractOutcome reports what one interaction did.
type InteractOutcome struct {
	// Acted is false when nothing was interactable.
	Acted bool
	// Messages are narration lines: loot text, pickup text, trigger output.
	Messages []string
}

// InteractTarget previews what Interact would act on, for the frontend's
// contextual prompt.
func (s *Store) InteractTarget() (interact.Target, bool) {
	if s.phase != PhaseExplore || s.inputBlocked() {
		return interact.Target{}, false
	}
	return interact.Resolve(s.pos, s.currentMap, interact.State{
		Consumed:    s.EventConsumed,
		QuestActive: s.quests.IsActive,
		NPCAt:       s.npcLookup,
	})
}

// Interact acts on the resolved target: opens chests and shops, picks up
// collectibles, talks to NPCs, raises the save screen, rests at inns, and
// examines triggers.
//
// Postcondition: Consumable events are consumed exactly once per playthrough.
func (s *Store) Interact() (InteractOutcome, error) {
	if s.phase != PhaseExplore {
		return InteractOutcome{}, fmt.Errorf("store: cannot interact in phase %s", s.phase)
	}
	if s.inputBlocked() {
		return InteractOutcome{}, nil
	}

	target, ok := interact.Resolve(s.pos, s.currentMap, interact.State{
		Consumed:    s.EventConsumed,
		QuestActive: s.quests.IsActive,
		NPCAt:       s.npcLookup,
	})
	if !ok {
		return InteractOutcome{}, nil
	}

	switch target.Kind {
	case interact.KindShop:
		if err := s.openShop(target.Event.Shop.ShopID); err != nil {
			return InteractOutcome{}, err
		}
		return InteractOutcome{Acted: true}, nil
	case interact.KindNPC:
		if err := s.openDialogue(target.NPC); err != nil {
			return InteractOutcome{}, err
		}
		return InteractOutcome{Acted: true}, nil
	case interact.KindEvent:
		return s.actOnEvent(target.Event)
	}
	return InteractOutcome{}, nil
}

func (s *Store) actOnEvent(ev *worldmap.MapEvent) (InteractOutcome, error) {
	switch ev.Type {
	case worldmap.EventTreasure:
		return InteractOutcome{Acted: true, Messages: s.openTreasure(ev)}, nil
	case worldmap.EventCollectible:
		return InteractOutcome{Acted: true, Messages: s.pickCollectible(ev)}, nil
	case worldmap.EventSavePoint:
		s.saveScreenOpen = true
		return InteractOutcome{Acted: true}, nil
	case worldmap.EventInn:
		return s.restAtInn(ev)
	case worldmap.EventTrigger:
		return InteractOutcome{Acted: true, Messages: s.fireTrigger(ev)}, nil
	}
	return InteractOutcome{}, nil
}

// openTreasure grants a chest's contents and consumes the event. Items that
// do not fit are forfeited with a warning; gold and shards always fit.
func (s *Store) openTreasure(ev *worldmap.MapEvent) []string {
	s.consumeEvent(ev.ID)
	loot := ev.Treasure
	var msgs []string
	if loot.Gold > 0 {
		_ = s.inv.AddGold(loot.Gold)
		msgs = append(msgs, fmt.Sprintf("Found %d gold", loot.Gold))
	}
	for _, grant := range loot.Items {
		qty := grant.Quantity
		if qty < 1 {
			qty = 1
		}
		if err := s.GainItem(grant.ItemID, qty); err != nil {
			s.logger.Warn("treasure item forfeited, inventory full",
				zap.String("event_id", ev.ID),
				zap.String("item_id", grant.ItemID))
			msgs = append(msgs, "Your pack is too full to take everything")
			continue
		}
		msgs = append(msgs, fmt.Sprintf("Found %s x%d", s.itemName(grant.ItemID), qty))
	}
	for _, shard := range loot.Shards {
		_ = s.inv.AddShard(shard)
		msgs = append(msgs, fmt.Sprintf("Found %s", s.shardName(shard)))
	}
	return msgs
}

// pickCollectible adds the item, advances collect objectives, and consumes
// the event.
func (s *Store) pickCollectible(ev *worldmap.MapEvent) []string {
	itemID := ev.Collectible.ItemID
	if err := s.GainItem(itemID, 1); err != nil {
		return []string{"Your pack is full"}
	}
	s.consumeEvent(ev.ID)
	return []string{fmt.Sprintf("Picked up %s", s.itemName(itemID))}
}

// restAtInn charges the inn price and fully restores the party.
func (s *Store) restAtInn(ev *worldmap.MapEvent) (InteractOutcome, error) {
	price := ev.Inn.Price
	if err := s.inv.SpendGold(price); err != nil {
		return InteractOutcome{Acted: true, Messages: []string{"Not enough gold to rest"}}, nil
	}
	for _, ch := range s.party {
		ch.RestoreAll(ch.EquipmentMods(s.deps.Registry))
	}
	s.logger.Info("party rested at inn", zap.Int("price", price))
	return InteractOutcome{Acted: true, Messages: []string{"The party rests and recovers fully"}}, nil
}

func (s *Store) itemName(itemID string) string {
	if def, ok := s.deps.Registry.Item(itemID); ok {
		return def.Name
	}
	return itemID
}

func (s *Store) shardName(shardID string) string {
	if def, ok := s.deps.Registry.Shard(shardID); ok {
		return def.Name
	}
	return shardID
}

// openDialogue starts the NPC's dialogue graph and moves to the dialogue
// phase.
func (s *Store) openDialogue(npc *worldmap.NPC) error {
	def, ok := s.deps.Registry.Dialogue(npc.DialogueID)
	if !ok {
		return fmt.Errorf("store: NPC %q references unknown dialogue %q", npc.ID, npc.DialogueID)
	}
	sess, err := dialogue.New(def, s.applyEffect)
	if err != nil {
		return err
	}
	s.dialogueSess = sess
	s.dialogueNPC = npc.ID
	s.phase = PhaseDialogue
	return nil
}

// DialogueNode returns the current dialogue node.
func (s *Store) DialogueNode() (*content.DialogueNode, error) {
	if s.phase != PhaseDialogue || s.dialogueSess == nil {
		return nil, fmt.Errorf("store: no dialogue in progress")
	}
	return s.dialogueSess.Node(), nil
}

// DialogueAdvance moves past a choiceless node. Reaching the end closes the
// dialogue, records the talk for quest objectives, and opens any shop a
// dialogue effect queued.
func (s *Store) DialogueAdvance() error {
	if s.phase != PhaseDialogue || s.dialogueSess == nil {
		return fmt.Errorf("store: no dialogue in progress")
	}
	if err := s.dialogueSess.Advance(s.applyEffect); err != nil {
		return err
	}
	s.finishDialogueIfDone()
	return nil
}

// DialogueChoose follows the indexed choice of the current node.
func (s *Store) DialogueChoose(index int) error {
	if s.phase != PhaseDialogue || s.dialogueSess == nil {
		return fmt.Errorf("store: no dialogue in progress")
	}
	if err := s.dialogueSess.Choose(index, s.applyEffect); err != nil {
		return err
	}
	s.finishDialogueIfDone()
	return nil
}

func (s *Store) finishDialogueIfDone() {
	if !s.dialogueSess.Done() {
		return
	}
	npcID := s.dialogueNPC
	s.dialogueSess = nil
	s.dialogueNPC = ""
	s.phase = PhaseExplore
	s.quests.OnNPCTalked(npcID)

	if s.queuedShop != "" {
		shopID := s.queuedShop
		s.queuedShop = ""
		if err := s.openShop(shopID); err != nil {
			s.logger.Warn("dialogue queued unknown shop",
				zap.String("shop_id", shopID),
				zap.Error(err))
		}
	}
}

// applyEffect interprets one declared dialogue effect against the game state.
func (s *Store) applyEffect(e content.Effect) {
	switch e.Type {
	case content.EffectStartQuest:
		res := s.quests.Start(e.Quest, quest.StartContext{
			FlagSet:       s.Flag,
			PartyMaxLevel: s.partyMaxLevel(),
		})
		if !res.Success {
			s.logger.Debug("dialogue quest start refused",
				zap.String("quest_id", e.Quest),
				zap.String("reason", res.Message))
		}
	case content.EffectCompleteQuest:
		res := s.quests.Complete(e.Quest, s.inv, s.SetFlag)
		if !res.Success {
			s.logger.Debug("dialogue quest turn-in refused",
				zap.String("quest_id", e.Quest),
				zap.String("reason", res.Message))
		}
	case content.EffectSetFlag:
		s.SetFlag(e.Flag)
	case content.EffectGiveItem:
		if err := s.GainItem(e.Item, e.Quantity); err != nil {
			s.logger.Warn("dialogue item grant dropped, inventory full",
				zap.String("item_id", e.Item))
		}
	case content.EffectGiveGold:
		_ = s.inv.AddGold(e.Gold)
	case content.EffectRunScript:
		s.callHook(e.Hook, lua.LString(s.dialogueNPC))
	case content.EffectOpenShop:
		s.queuedShop = e.Shop
	}
}

// openShop creates a shop session and moves to the shop phase.
func (s *Store) openShop(shopID string) error {
	def, ok := s.deps.Registry.Shop(shopID)
	if !ok {
		return fmt.Errorf("store: unknown shop %q", shopID)
	}
	s.shopSess = shop.NewSession(def, s.deps.Registry, s.logger)
	s.phase = PhaseShop
	return nil
}

// Shop returns the open shop session.
func (s *Store) Shop() (*shop.Session, error) {
	if s.phase != PhaseShop || s.shopSess == nil {
		return nil, fmt.Errorf("store: no shop open")
	}
	return s.shopSess, nil
}

// ShopBuy purchases from the open shop into the party inventory.
func (s *Store) ShopBuy(itemID string, quantity int) (shop.Result, error) {
	sess, err := s.Shop()
	if err != nil {
		return shop.Result{}, err
	}
	res := sess.Buy(itemID, quantity, s.inv)
	if res.Success {
		s.quests.OnItemCollected(itemID, quantity)
	}
	return res, nil
}

// ShopSell sells from the party inventory to the open shop.
func (s *Store) ShopSell(itemID string, quantity int) (shop.Result, error) {
	sess, err := s.Shop()
	if err != nil {
		return shop.Result{}, err
	}
	return sess.Sell(itemID, quantity, s.inv), nil
}

// CloseShop ends the shop visit. Per-visit stock is discarded.
func (s *Store) CloseShop() {
	if s.phase != PhaseShop {
		return
	}
	s.shopSess = nil
	s.phase = PhaseExplore
}
