package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/evergloam/chimera/internal/game/dice"
)

// fixedSource always returns val (clamped to n-1) for any Intn call.
type fixedSource struct{ val int }

func (f *fixedSource) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr     string
		count    int
		sides    int
		modifier int
	}{
		{"d6", 1, 6, 0},
		{"2d6", 2, 6, 0},
		{"2d6+3", 2, 6, 3},
		{"3d4-1", 3, 4, -1},
		{"1d20+5", 1, 20, 5},
	}
	for _, tc := range tests {
		e, err := dice.Parse(tc.expr)
		require.NoError(t, err, "expr=%s", tc.expr)
		assert.Equal(t, tc.count, e.Count, "expr=%s", tc.expr)
		assert.Equal(t, tc.sides, e.Sides, "expr=%s", tc.expr)
		assert.Equal(t, tc.modifier, e.Modifier, "expr=%s", tc.expr)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, expr := range []string{"", "20", "0d6", "2d1", "2dx", "2d6+x"} {
		_, err := dice.Parse(expr)
		assert.Error(t, err, "expr=%q", expr)
	}
}

func TestRoll_FixedSource(t *testing.T) {
	e := dice.MustParse("2d6+3")
	src := &fixedSource{val: 4} // every die rolls 5
	r := dice.Roll(e, src)
	assert.Equal(t, []int{5, 5}, r.Dice)
	assert.Equal(t, 13, r.Total())
}

func TestRollExpr_ParseError(t *testing.T) {
	src := &fixedSource{val: 0}
	_, err := dice.RollExpr("bogus", src)
	assert.Error(t, err)
}

func TestRoll_Property_DiceWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		val := rapid.IntRange(0, 100).Draw(rt, "val")
		e := dice.Expression{Raw: "x", Count: count, Sides: sides}
		r := dice.Roll(e, &fixedSource{val: val})
		require.Len(rt, r.Dice, count)
		for _, d := range r.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
	})
}

func TestPercent(t *testing.T) {
	src := &fixedSource{val: 49}
	assert.True(t, dice.Percent(src, 50))
	assert.False(t, dice.Percent(src, 49))
	assert.False(t, dice.Percent(src, 0))
	assert.True(t, dice.Percent(src, 100))
}

func TestFraction(t *testing.T) {
	src := &fixedSource{val: 1199}
	assert.True(t, dice.Fraction(src, 0.12))
	assert.False(t, dice.Fraction(src, 0.11))
	assert.False(t, dice.Fraction(src, 0))
	assert.True(t, dice.Fraction(src, 1))
}

func TestIntBetween(t *testing.T) {
	src := &fixedSource{val: 3}
	assert.Equal(t, 11, dice.IntBetween(src, 8, 24))
	assert.Equal(t, 5, dice.IntBetween(src, 5, 5))
}

func TestIntBetween_Property_WithinRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		min := rapid.IntRange(0, 50).Draw(rt, "min")
		span := rapid.IntRange(0, 50).Draw(rt, "span")
		val := rapid.IntRange(0, 200).Draw(rt, "val")
		got := dice.IntBetween(&fixedSource{val: val}, min, min+span)
		assert.GreaterOrEqual(rt, got, min)
		assert.LessOrEqual(rt, got, min+span)
	})
}

func TestCryptoSource_Bounds(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 100; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}
