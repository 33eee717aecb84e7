package content

import "fmt"

// EffectType enumerates the engine effects a dialogue node may declare.
type EffectType string

// Dialogue effect types.
const (
	EffectStartQuest    EffectType = "start_quest"
	EffectCompleteQuest EffectType = "complete_quest"
	EffectSetFlag       EffectType = "set_flag"
	EffectGiveItem      EffectType = "give_item"
	EffectGiveGold      EffectType = "give_gold"
	EffectRunScript     EffectType = "run_script"
	EffectOpenShop      EffectType = "open_shop"
)

// Effect is a tagged variant describing one engine side effect to run when the
// dialogue walker arrives at a node. Only the field matching Type is read.
type Effect struct {
	Type EffectType `yaml:"type"`
	// Quest is the quest id for start_quest / complete_quest.
	Quest string `yaml:"quest"`
	// Flag is the story flag for set_flag.
	Flag string `yaml:"flag"`
	// Item and Quantity describe the grant for give_item.
	Item     string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
	// Gold is the grant for give_gold.
	Gold int `yaml:"gold"`
	// Hook is the Lua function name for run_script.
	Hook string `yaml:"hook"`
	// Shop is the shop id for open_shop.
	Shop string `yaml:"shop"`
}

// Validate checks that the effect's variant field matches its type.
func (e Effect) Validate() error {
	switch e.Type {
	case EffectStartQuest, EffectCompleteQuest:
		if e.Quest == "" {
			return fmt.Errorf("%s effect must name a quest", e.Type)
		}
	case EffectSetFlag:
		if e.Flag == "" {
			return fmt.Errorf("set_flag effect must name a flag")
		}
	case EffectGiveItem:
		if e.Item == "" || e.Quantity < 1 {
			return fmt.Errorf("give_item effect must name an item with quantity >= 1")
		}
	case EffectGiveGold:
		if e.Gold < 1 {
			return fmt.Errorf("give_gold effect must grant at least 1 gold")
		}
	case EffectRunScript:
		if e.Hook == "" {
			return fmt.Errorf("run_script effect must name a hook")
		}
	case EffectOpenShop:
		if e.Shop == "" {
			return fmt.Errorf("open_shop effect must name a shop")
		}
	default:
		return fmt.Errorf("unknown effect type %q", e.Type)
	}
	return nil
}

// Choice is one selectable branch out of a dialogue node.
type Choice struct {
	Text string `yaml:"text"`
	Next string `yaml:"next"`
}

// DialogueNode is a single line of dialogue with optional branching and
// declared effects.
type DialogueNode struct {
	ID      string   `yaml:"id"`
	Speaker string   `yaml:"speaker"`
	Text    string   `yaml:"text"`
	Choices []Choice `yaml:"choices"`
	// Next is the id of the node that follows when there are no choices.
	// Empty Next with no choices makes the node terminal.
	Next string `yaml:"next"`
	// Effects run in order when the walker arrives at this node.
	Effects []Effect `yaml:"effects"`
}

// IsTerminal reports whether the dialogue ends after this node.
func (n *DialogueNode) IsTerminal() bool {
	return n.Next == "" && len(n.Choices) == 0
}

// DialogueDef is a dialogue graph: a start node id plus nodes keyed by id.
type DialogueDef struct {
	ID    string                   `yaml:"id"`
	Start string                   `yaml:"start"`
	Nodes map[string]*DialogueNode `yaml:"-"`
}

// Node returns the node with the given id, if present.
//
// Postcondition: Returns (node, true) if found, or (nil, false) otherwise.
func (d *DialogueDef) Node(id string) (*DialogueNode, bool) {
	n, ok := d.Nodes[id]
	return n, ok
}

// Validate checks dialogue invariants: the start node exists, every Next and
// choice target references a known node, and all effects are well-formed.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (d *DialogueDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("dialogue must have an id")
	}
	if d.Start == "" {
		return fmt.Errorf("dialogue %q: start must not be empty", d.ID)
	}
	if len(d.Nodes) == 0 {
		return fmt.Errorf("dialogue %q: must contain at least one node", d.ID)
	}
	if _, ok := d.Nodes[d.Start]; !ok {
		return fmt.Errorf("dialogue %q: start node %q not found", d.ID, d.Start)
	}
	for id, n := range d.Nodes {
		if n.ID != id {
			return fmt.Errorf("dialogue %q: node key %q does not match node id %q", d.ID, id, n.ID)
		}
		if n.Next != "" {
			if _, ok := d.Nodes[n.Next]; !ok {
				return fmt.Errorf("dialogue %q: node %q next targets unknown node %q", d.ID, id, n.Next)
			}
		}
		for i, c := range n.Choices {
			if c.Next == "" {
				return fmt.Errorf("dialogue %q: node %q choice[%d] has empty target", d.ID, id, i)
			}
			if _, ok := d.Nodes[c.Next]; !ok {
				return fmt.Errorf("dialogue %q: node %q choice[%d] targets unknown node %q", d.ID, id, i, c.Next)
			}
		}
		for i, e := range n.Effects {
			if err := e.Validate(); err != nil {
				return fmt.Errorf("dialogue %q: node %q effect[%d]: %w", d.ID, id, i, err)
			}
		}
	}
	return nil
}
