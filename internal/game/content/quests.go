package content

import "fmt"

// ObjectiveType classifies what advances a quest objective.
type ObjectiveType string

// Objective types.
const (
	ObjectiveCollect ObjectiveType = "collect"
	ObjectiveDefeat  ObjectiveType = "defeat"
	ObjectiveTalk    ObjectiveType = "talk"
	ObjectiveVisit   ObjectiveType = "visit"
)

// QuestObjective is one goal within a quest definition.
type QuestObjective struct {
	ID          string        `yaml:"id"`
	Description string        `yaml:"description"`
	Type        ObjectiveType `yaml:"type"`
	// Target is the item/enemy/NPC/map id the objective tracks.
	Target string `yaml:"target"`
	// TargetQuantity is the progress needed to complete the objective.
	TargetQuantity int `yaml:"target_quantity"`
	// Required objectives gate turn-in; optional ones do not.
	Required bool `yaml:"required"`
}

// QuestRequirements gate quest admission.
type QuestRequirements struct {
	// Flags must all be set in the story state.
	Flags []string `yaml:"flags"`
	// CompletedQuests must all be in the completed list.
	CompletedQuests []string `yaml:"completed_quests"`
	// MinLevel is the minimum level of the highest-level party member.
	MinLevel int `yaml:"min_level"`
}

// RewardItem is an item id + quantity pair in a quest reward.
type RewardItem struct {
	ItemID   string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

// QuestRewards are granted on turn-in.
type QuestRewards struct {
	Gold   int          `yaml:"gold"`
	Items  []RewardItem `yaml:"items"`
	Shards []string     `yaml:"shards"`
	// Flags are story flags set on completion.
	Flags []string `yaml:"flags"`
}

// TurnInCost is consumed from the inventory on turn-in (e.g. collected quest
// items handed to the quest giver).
type TurnInCost struct {
	ItemID   string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

// QuestDef is the static definition of a quest.
type QuestDef struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Requirements QuestRequirements `yaml:"requirements"`
	Objectives   []QuestObjective  `yaml:"objectives"`
	Rewards      QuestRewards      `yaml:"rewards"`
	// TurnInCosts are removed from the inventory when the quest completes.
	TurnInCosts []TurnInCost `yaml:"turn_in_costs"`
}

// Objective returns the objective with the given id, if present.
//
// Postcondition: Returns (objective, true) if found, or (nil, false) otherwise.
func (d *QuestDef) Objective(id string) (*QuestObjective, bool) {
	for i := range d.Objectives {
		if d.Objectives[i].ID == id {
			return &d.Objectives[i], true
		}
	}
	return nil, false
}

// Validate checks quest invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (d *QuestDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("quest must have an id")
	}
	if d.Name == "" {
		return fmt.Errorf("quest %q: name must not be empty", d.ID)
	}
	if len(d.Objectives) == 0 {
		return fmt.Errorf("quest %q: must have at least one objective", d.ID)
	}
	seen := make(map[string]bool, len(d.Objectives))
	hasRequired := false
	for i, o := range d.Objectives {
		if o.ID == "" {
			return fmt.Errorf("quest %q: objective[%d] must have an id", d.ID, i)
		}
		if seen[o.ID] {
			return fmt.Errorf("quest %q: duplicate objective id %q", d.ID, o.ID)
		}
		seen[o.ID] = true
		switch o.Type {
		case ObjectiveCollect, ObjectiveDefeat, ObjectiveTalk, ObjectiveVisit:
		default:
			return fmt.Errorf("quest %q: objective %q has unknown type %q", d.ID, o.ID, o.Type)
		}
		if o.Target == "" {
			return fmt.Errorf("quest %q: objective %q must have a target", d.ID, o.ID)
		}
		if o.TargetQuantity < 1 {
			return fmt.Errorf("quest %q: objective %q target_quantity must be >= 1, got %d", d.ID, o.ID, o.TargetQuantity)
		}
		if o.Required {
			hasRequired = true
		}
	}
	if !hasRequired {
		return fmt.Errorf("quest %q: must have at least one required objective", d.ID)
	}
	if d.Requirements.MinLevel < 0 {
		return fmt.Errorf("quest %q: min_level must be >= 0", d.ID)
	}
	if d.Rewards.Gold < 0 {
		return fmt.Errorf("quest %q: reward gold must be >= 0", d.ID)
	}
	for i, ri := range d.Rewards.Items {
		if ri.ItemID == "" || ri.Quantity < 1 {
			return fmt.Errorf("quest %q: reward item[%d] must name an item with quantity >= 1", d.ID, i)
		}
	}
	for i, tc := range d.TurnInCosts {
		if tc.ItemID == "" || tc.Quantity < 1 {
			return fmt.Errorf("quest %q: turn_in_cost[%d] must name an item with quantity >= 1", d.ID, i)
		}
	}
	return nil
}
