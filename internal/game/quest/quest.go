// Package quest tracks quest state: admission checks, objective progress,
// and explicit turn-in completion. A quest id lives in at most one of the
// active, completed, or failed lists at any time.
package quest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/game/content"
	"github.com/evergloam/chimera/internal/game/inventory"
)

// Result reports a user-facing action outcome. Failures carry a message and
// never mutate state.
type Result struct {
	Success bool
	Message string
}

// ObjectiveProgress tracks one objective of an active quest.
type ObjectiveProgress struct {
	ObjectiveID string `json:"objectiveId"`
	Current     int    `json:"current"`
	Complete    bool   `json:"complete"`
}

// ActiveQuest is one admitted quest with per-objective progress.
type ActiveQuest struct {
	QuestID    string              `json:"questId"`
	Objectives []ObjectiveProgress `json:"objectives"`
}

// Objective returns the progress record for an objective id.
func (q *ActiveQuest) Objective(id string) (*ObjectiveProgress, bool) {
	for i := range q.Objectives {
		if q.Objectives[i].ObjectiveID == id {
			return &q.Objectives[i], true
		}
	}
	return nil, false
}

// StartContext supplies the dynamic state admission checks read.
type StartContext struct {
	// FlagSet reports whether a story flag is set.
	FlagSet func(flag string) bool
	// PartyMaxLevel is the level of the highest-level party member.
	PartyMaxLevel int
}

// Tracker owns the three disjoint quest lists. Not safe for concurrent use;
// the store serialises access.
type Tracker struct {
	reg    *content.Registry
	logger *zap.Logger

	active    []*ActiveQuest
	completed []string
	failed    []string
}

// NewTracker creates an empty tracker. logger may be nil.
func NewTracker(reg *content.Registry, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{reg: reg, logger: logger}
}

// IsActive reports whether the quest is currently active.
func (t *Tracker) IsActive(questID string) bool {
	_, ok := t.activeQuest(questID)
	return ok
}

// IsCompleted reports whether the quest has been turned in.
func (t *Tracker) IsCompleted(questID string) bool {
	return contains(t.completed, questID)
}

// IsFailed reports whether the quest has failed.
func (t *Tracker) IsFailed(questID string) bool {
	return contains(t.failed, questID)
}

// Active returns the active quest instances.
func (t *Tracker) Active() []*ActiveQuest { return t.active }

// Completed returns the completed quest ids.
func (t *Tracker) Completed() []string { return t.completed }

// Failed returns the failed quest ids.
func (t *Tracker) Failed() []string { return t.failed }

func (t *Tracker) activeQuest(questID string) (*ActiveQuest, bool) {
	for _, q := range t.active {
		if q.QuestID == questID {
			return q, true
		}
	}
	return nil, false
}

// Start admits a quest after validating its requirements: story flags,
// prerequisite completed quests, and minimum party level.
//
// Postcondition: On success the quest is active with zeroed objective
// progress; on failure nothing changes and the message explains why.
func (t *Tracker) Start(questID string, ctx StartContext) Result {
	def, ok := t.reg.Quest(questID)
	if !ok {
		t.logger.Warn("start of unknown quest ignored", zap.String("quest_id", questID))
		return Result{Success: false, Message: "Unknown quest"}
	}
	if t.IsActive(questID) {
		return Result{Success: false, Message: fmt.Sprintf("%s is already underway", def.Name)}
	}
	if t.IsCompleted(questID) {
		return Result{Success: false, Message: fmt.Sprintf("%s is already complete", def.Name)}
	}
	if t.IsFailed(questID) {
		return Result{Success: false, Message: fmt.Sprintf("%s can no longer be attempted", def.Name)}
	}

	for _, flag := range def.Requirements.Flags {
		if ctx.FlagSet == nil || !ctx.FlagSet(flag) {
			return Result{Success: false, Message: fmt.Sprintf("%s is not available yet", def.Name)}
		}
	}
	for _, prereq := range def.Requirements.CompletedQuests {
		if !t.IsCompleted(prereq) {
			return Result{Success: false, Message: fmt.Sprintf("%s is not available yet", def.Name)}
		}
	}
	if ctx.PartyMaxLevel < def.Requirements.MinLevel {
		return Result{Success: false, Message: fmt.Sprintf("%s requires level %d", def.Name, def.Requirements.MinLevel)}
	}

	q := &ActiveQuest{QuestID: questID}
	for _, obj := range def.Objectives {
		q.Objectives = append(q.Objectives, ObjectiveProgress{ObjectiveID: obj.ID})
	}
	t.active = append(t.active, q)
	t.logger.Info("quest started", zap.String("quest_id", questID))
	return Result{Success: true, Message: fmt.Sprintf("Quest started: %s", def.Name)}
}

// CompleteObjective marks one objective of an active quest complete. Used by
// scripted triggers; progress-tracked objectives normally complete through
// the On* callbacks.
//
// Postcondition: The objective's progress equals its target quantity.
func (t *Tracker) CompleteObjective(questID, objectiveID string) bool {
	q, ok := t.activeQuest(questID)
	if !ok {
		return false
	}
	def, ok := t.reg.Quest(questID)
	if !ok {
		return false
	}
	objDef, ok := def.Objective(objectiveID)
	if !ok {
		return false
	}
	prog, ok := q.Objective(objectiveID)
	if !ok {
		return false
	}
	prog.Current = objDef.TargetQuantity
	prog.Complete = true
	return true
}

// RequiredObjectivesComplete reports whether every required objective of an
// active quest is complete. Optional objectives never gate turn-in.
func (t *Tracker) RequiredObjectivesComplete(questID string) bool {
	q, ok := t.activeQuest(questID)
	if !ok {
		return false
	}
	def, ok := t.reg.Quest(questID)
	if !ok {
		return false
	}
	for _, obj := range def.Objectives {
		if !obj.Required {
			continue
		}
		prog, ok := q.Objective(obj.ID)
		if !ok || !prog.Complete {
			return false
		}
	}
	return true
}

// Complete turns in an active quest: verifies required objectives, consumes
// turn-in costs, grants rewards, and moves the quest to completed. The whole
// operation applies atomically or not at all.
//
// Precondition:  inv must not be nil; setFlag may be nil when the quest sets
// no flags.
// Postcondition: On success the quest id is only in the completed list and
// rewards are applied; on failure nothing changes.
func (t *Tracker) Complete(questID string, inv *inventory.Inventory, setFlag func(flag string)) Result {
	def, ok := t.reg.Quest(questID)
	if !ok {
		t.logger.Warn("completion of unknown quest ignored", zap.String("quest_id", questID))
		return Result{Success: false, Message: "Unknown quest"}
	}
	if !t.IsActive(questID) {
		return Result{Success: false, Message: fmt.Sprintf("%s is not underway", def.Name)}
	}
	if !t.RequiredObjectivesComplete(questID) {
		return Result{Success: false, Message: fmt.Sprintf("%s still has unfinished objectives", def.Name)}
	}
	for _, cost := range def.TurnInCosts {
		if !inv.Has(cost.ItemID, cost.Quantity) {
			return Result{Success: false, Message: fmt.Sprintf("You lack the items to finish %s", def.Name)}
		}
	}

	for _, cost := range def.TurnInCosts {
		if err := inv.RemoveItem(cost.ItemID, cost.Quantity); err != nil {
			// Unreachable after the Has checks above; restore is impossible so
			// surface loudly.
			t.logger.Error("turn-in cost removal failed after verification",
				zap.String("quest_id", questID), zap.Error(err))
			return Result{Success: false, Message: "Something went wrong"}
		}
	}

	if def.Rewards.Gold > 0 {
		_ = inv.AddGold(def.Rewards.Gold)
	}
	for _, ri := range def.Rewards.Items {
		if err := inv.AddItem(ri.ItemID, ri.Quantity); err != nil {
			t.logger.Warn("quest reward item dropped, inventory full",
				zap.String("quest_id", questID), zap.String("item_id", ri.ItemID))
			continue
		}
		// Reward items count as collected for any other active quest.
		t.OnItemCollected(ri.ItemID, ri.Quantity)
	}
	for _, shard := range def.Rewards.Shards {
		_ = inv.AddShard(shard)
	}
	if setFlag != nil {
		for _, flag := range def.Rewards.Flags {
			setFlag(flag)
		}
	}

	t.removeActive(questID)
	t.completed = append(t.completed, questID)
	t.logger.Info("quest completed", zap.String("quest_id", questID))
	return Result{Success: true, Message: fmt.Sprintf("Quest complete: %s", def.Name)}
}

// Fail moves an active quest to the failed list.
//
// Postcondition: The quest id appears only in the failed list.
func (t *Tracker) Fail(questID string) bool {
	if !t.IsActive(questID) {
		return false
	}
	t.removeActive(questID)
	t.failed = append(t.failed, questID)
	t.logger.Info("quest failed", zap.String("quest_id", questID))
	return true
}

func (t *Tracker) removeActive(questID string) {
	for i, q := range t.active {
		if q.QuestID == questID {
			t.active = append(t.active[:i], t.active[i+1:]...)
			return
		}
	}
}

// OnItemCollected advances collect objectives matching the item id across
// all active quests, accumulating progress. Returns the quest ids that made
// progress.
//
// Postcondition: Objective progress never exceeds its target quantity.
func (t *Tracker) OnItemCollected(itemID string, quantity int) []string {
	return t.advance(content.ObjectiveCollect, itemID, quantity)
}

// OnEnemyDefeated advances defeat objectives matching the enemy id.
func (t *Tracker) OnEnemyDefeated(enemyID string) []string {
	return t.advance(content.ObjectiveDefeat, enemyID, 1)
}

// OnNPCTalked advances talk objectives matching the NPC id.
func (t *Tracker) OnNPCTalked(npcID string) []string {
	return t.advance(content.ObjectiveTalk, npcID, 1)
}

// OnMapVisited advances visit objectives matching the map id.
func (t *Tracker) OnMapVisited(mapID string) []string {
	return t.advance(content.ObjectiveVisit, mapID, 1)
}

func (t *Tracker) advance(objType content.ObjectiveType, target string, quantity int) []string {
	if quantity < 1 {
		return nil
	}
	var progressed []string
	for _, q := range t.active {
		def, ok := t.reg.Quest(q.QuestID)
		if !ok {
			continue
		}
		for _, obj := range def.Objectives {
			if obj.Type != objType || obj.Target != target {
				continue
			}
			prog, ok := q.Objective(obj.ID)
			if !ok || prog.Complete {
				continue
			}
			prog.Current += quantity
			if prog.Current >= obj.TargetQuantity {
				prog.Current = obj.TargetQuantity
				prog.Complete = true
			}
			progressed = append(progressed, q.QuestID)
		}
	}
	return progressed
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
