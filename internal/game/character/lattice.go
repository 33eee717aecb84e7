package character

import (
	"fmt"

	"github.com/evergloam/chimera/internal/game/content"
)

// PurchasePassive spends optimization points to unlock a class passive.
//
// Precondition:  p must belong to the character's class definition.
// Postcondition: On success the cost is deducted and HasPassive(p.ID) is true.
func (c *Character) PurchasePassive(p content.Passive) error {
	if c.HasPassive(p.ID) {
		return fmt.Errorf("character %q: passive %q already unlocked", c.ID, p.ID)
	}
	if c.Level < p.Level {
		return fmt.Errorf("character %q: passive %q requires level %d", c.ID, p.ID, p.Level)
	}
	if c.OptimizationPoints < p.LatticeCost {
		return fmt.Errorf("character %q: passive %q costs %d points, have %d", c.ID, p.ID, p.LatticeCost, c.OptimizationPoints)
	}
	c.OptimizationPoints -= p.LatticeCost
	c.UnlockPassive(p.ID)
	return nil
}
