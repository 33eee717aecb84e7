// Package dialogue implements the dialogue graph walker. Nodes declare their
// engine effects as data; the walker interprets them through an injected
// applier so the graph stays decoupled from quest, inventory, and shop logic.
package dialogue

import (
	"fmt"

	"github.com/evergloam/chimera/internal/game/content"
)

// ApplyFunc runs one declared node effect. The walker invokes it for every
// effect, in order, each time it arrives at a node.
type ApplyFunc func(content.Effect)

// Session walks one dialogue from start to a terminal node. Not safe for
// concurrent use.
type Session struct {
	def  *content.DialogueDef
	node *content.DialogueNode
	done bool
}

// New opens a session at the dialogue's start node and applies its effects.
//
// Precondition:  def must have passed Validate; apply may be nil.
// Postcondition: Node() returns the start node.
func New(def *content.DialogueDef, apply ApplyFunc) (*Session, error) {
	start, ok := def.Node(def.Start)
	if !ok {
		return nil, fmt.Errorf("dialogue %q: start node %q not found", def.ID, def.Start)
	}
	s := &Session{def: def, node: start}
	s.runEffects(apply)
	return s, nil
}

// Node returns the current node.
func (s *Session) Node() *content.DialogueNode {
	return s.node
}

// Done reports whether the dialogue has reached a terminal node and been
// advanced past it.
func (s *Session) Done() bool {
	return s.done
}

// Advance follows the current node's Next pointer, applying the new node's
// effects. Advancing past a terminal node finishes the session.
//
// Precondition:  The current node must not offer choices.
// Postcondition: Either Node() is the next node, or Done() is true.
func (s *Session) Advance(apply ApplyFunc) error {
	if s.done {
		return fmt.Errorf("dialogue %q: session already finished", s.def.ID)
	}
	if len(s.node.Choices) > 0 {
		return fmt.Errorf("dialogue %q: node %q requires a choice", s.def.ID, s.node.ID)
	}
	if s.node.Next == "" {
		s.done = true
		return nil
	}
	return s.moveTo(s.node.Next, apply)
}

// Choose follows the indexed choice of the current node.
//
// Precondition: index must be within the current node's choice list.
func (s *Session) Choose(index int, apply ApplyFunc) error {
	if s.done {
		return fmt.Errorf("dialogue %q: session already finished", s.def.ID)
	}
	if index < 0 || index >= len(s.node.Choices) {
		return fmt.Errorf("dialogue %q: node %q has no choice %d", s.def.ID, s.node.ID, index)
	}
	return s.moveTo(s.node.Choices[index].Next, apply)
}

func (s *Session) moveTo(nodeID string, apply ApplyFunc) error {
	next, ok := s.def.Node(nodeID)
	if !ok {
		return fmt.Errorf("dialogue %q: node %q not found", s.def.ID, nodeID)
	}
	s.node = next
	s.runEffects(apply)
	return nil
}

func (s *Session) runEffects(apply ApplyFunc) {
	if apply == nil {
		return
	}
	for _, e := range s.node.Effects {
		apply(e)
	}
}
