// Package leveling implements experience progression: threshold computation,
// multi-level-up application, stat growth, and passive unlocks.
package leveling

import (
	"github.com/evergloam/chimera/internal/game/character"
	"github.com/evergloam/chimera/internal/game/content"
)

// PointsPerLevel is the optimization points granted by every level-up.
const PointsPerLevel = 1

// LevelUp is the result of one gained level, produced in ascending level
// order.
type LevelUp struct {
	// Level is the level reached.
	Level int
	// Gains are the stat increases this level granted.
	Gains content.StatGrowth
	// UnlockedPassives are the passive ids that unlocked at this level.
	UnlockedPassives []string
	// OptimizationPoints granted for this level.
	OptimizationPoints int
}

// ThresholdFor returns the total experience required to reach level.
// Thresholds are non-decreasing in level; level 1 requires zero.
//
// Precondition: def must not be nil and level must be >= 1.
func ThresholdFor(def *content.ClassDef, level int) int {
	if level <= 1 {
		return 0
	}
	return def.ExpBase * (level - 1) * level / 2
}

// Apply raises the character's level for every threshold its experience has
// crossed, applying stat growth and level-gated passive unlocks per level.
// A single call processes any number of level-ups.
//
// Precondition:  c.Experience already includes the newly gained experience;
// def is the character's class definition.
// Postcondition: c.Experience < ThresholdFor(def, c.Level+1); the returned
// results are ordered by ascending level, one per level gained.
func Apply(c *character.Character, def *content.ClassDef) []LevelUp {
	var results []LevelUp
	for c.Experience >= ThresholdFor(def, c.Level+1) {
		c.Level++
		growStats(c, def.Growth)
		c.OptimizationPoints += PointsPerLevel

		result := LevelUp{
			Level:              c.Level,
			Gains:              def.Growth,
			OptimizationPoints: PointsPerLevel,
		}
		for _, p := range def.PassivesAtLevel(c.Level) {
			if p.LatticeCost > 0 {
				continue // lattice-purchased, not auto-unlocked
			}
			c.UnlockPassive(p.ID)
			result.UnlockedPassives = append(result.UnlockedPassives, p.ID)
		}
		results = append(results, result)
	}
	return results
}

// growStats applies one level of class growth. Current HP and MP rise by the
// same delta as their maxima.
func growStats(c *character.Character, g content.StatGrowth) {
	c.Stats.MaxHP += g.MaxHP
	c.Stats.HP += g.MaxHP
	c.Stats.MaxMP += g.MaxMP
	c.Stats.MP += g.MaxMP
	c.Stats.Strength += g.Strength
	c.Stats.Magic += g.Magic
	c.Stats.Defense += g.Defense
	c.Stats.MagicDefense += g.MagicDefense
	c.Stats.Speed += g.Speed
	c.Stats.Luck += g.Luck
}
