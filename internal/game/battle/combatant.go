// Package battle implements the turn-based battle engine: combatant
// instancing, turn order, action resolution, and idempotent reward
// finalization.
package battle

import (
	"github.com/evergloam/chimera/internal/game/condition"
	"github.com/evergloam/chimera/internal/game/content"
)

// Kind distinguishes party battle-copies from enemy instances.
type Kind int

// Combatant kinds.
const (
	KindParty Kind = iota
	KindEnemy
)

// Combatant is one live participant. Party combatants are copies of the
// authoritative character records; enemy combatants are instanced from enemy
// definitions with a fresh uuid per instance.
type Combatant struct {
	// ID uniquely identifies this combatant within the battle.
	ID string
	// SourceID is the character id (party) or enemy definition id (enemy).
	SourceID string
	Name     string
	Kind     Kind

	HP           int
	MaxHP        int
	MP           int
	MaxMP        int
	Strength     int
	Magic        int
	Defense      int
	MagicDefense int
	Speed        int
	Luck         int

	// DamageDice is the physical attack roll: the equipped weapon's dice for
	// party members, chosen per action for enemies.
	DamageDice string

	// Defending halves incoming damage until the combatant's next turn.
	Defending bool
	// Fled marks a party member who escaped; fled combatants take no turns.
	Fled bool

	Conditions *condition.ActiveSet

	// Enemy-only yield data.
	Actions    []content.EnemyAction
	Drops      []content.EnemyDrop
	Experience int
	Gold       int
}

// IsEnemy reports whether the combatant is an enemy instance.
func (c *Combatant) IsEnemy() bool { return c.Kind == KindEnemy }

// IsDown reports whether the combatant is incapacitated.
func (c *Combatant) IsDown() bool { return c.HP <= 0 }

// IsActive reports whether the combatant takes turns: alive and not fled.
func (c *Combatant) IsActive() bool { return !c.IsDown() && !c.Fled }

// ApplyDamage reduces HP, halved (rounding up) while defending.
//
// Precondition:  amount must be >= 0.
// Postcondition: HP ∈ [0, MaxHP]; returns the damage actually dealt.
func (c *Combatant) ApplyDamage(amount int, defendModifier int) int {
	if c.Defending {
		amount = amount * defendModifier / 100
		if amount < 1 {
			amount = 1
		}
	}
	if amount > c.HP {
		amount = c.HP
	}
	c.HP -= amount
	return amount
}

// Heal restores HP up to MaxHP and returns the amount actually restored.
//
// Precondition:  amount must be >= 0.
// Postcondition: HP ∈ [0, MaxHP].
func (c *Combatant) Heal(amount int) int {
	if c.HP+amount > c.MaxHP {
		amount = c.MaxHP - c.HP
	}
	c.HP += amount
	return amount
}

// RestoreMP restores MP up to MaxMP and returns the amount actually restored.
func (c *Combatant) RestoreMP(amount int) int {
	if c.MP+amount > c.MaxMP {
		amount = c.MaxMP - c.MP
	}
	c.MP += amount
	return amount
}

// effectiveSpeed is the turn-order speed after condition penalties.
func (c *Combatant) effectiveSpeed() int {
	_, _, speedPenalty := c.Conditions.Penalties()
	s := c.Speed - speedPenalty
	if s < 0 {
		s = 0
	}
	return s
}

// attackPower is strength after condition attack penalties, floored at zero.
func (c *Combatant) attackPower() int {
	penalty, _, _ := c.Conditions.Penalties()
	p := c.Strength - penalty
	if p < 0 {
		p = 0
	}
	return p
}

// defensePower is defense after condition penalties, floored at zero.
func (c *Combatant) defensePower() int {
	_, penalty, _ := c.Conditions.Penalties()
	d := c.Defense - penalty
	if d < 0 {
		d = 0
	}
	return d
}
