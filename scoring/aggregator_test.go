package scoring

import (
	"testing"

	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRuleSet() []*models.Penalty {
	quantity := &models.PenaltyKind{ID: 1, Description: "quantity"}
	ranged := &models.PenaltyKind{ID: 2, Description: "range", IsRange: true}

	return []*models.Penalty{
		{ID: 1, Description: "missed full", Penalty: 2.0, Kind: quantity},
		{ID: 2, Description: "gutter ball", Penalty: 0.5, Kind: quantity},
		{ID: 3, Description: "monthly dues", LowerLimit: 5, UpperLimit: 20, Kind: ranged},
	}
}

func TestPenaltyCalculatorSumsQuantityRules(t *testing.T) {
	pc, err := NewPenaltyCalculator(testRuleSet())
	require.NoError(t, err)

	total, err := pc.Calculate(map[int]int{1: 3, 2: 10})
	require.NoError(t, err)
	assert.InDelta(t, 11.0, total, 1e-9) // 3*2.0 + 10*0.5
}

func TestPenaltyCalculatorEmptyInputIsZero(t *testing.T) {
	pc, err := NewPenaltyCalculator(testRuleSet())
	require.NoError(t, err)

	total, err := pc.Calculate(map[int]int{})
	require.NoError(t, err)
	assert.Zero(t, total)

	total, err = pc.Calculate(nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPenaltyCalculatorSumIsOrderIndependent(t *testing.T) {
	pc, err := NewPenaltyCalculator(testRuleSet())
	require.NoError(t, err)

	forward := map[int]int{1: 3, 2: 10}
	reverse := make(map[int]int)
	reverse[2] = 10
	reverse[1] = 3

	// Map iteration order is randomized per run; repeating the sum pins the
	// result to plain addition regardless of visit order.
	for i := 0; i < 50; i++ {
		a, err := pc.Calculate(forward)
		require.NoError(t, err)
		b, err := pc.Calculate(reverse)
		require.NoError(t, err)

		assert.InDelta(t, 11.0, a, 1e-9)
		assert.InDelta(t, a, b, 1e-9)
	}
}

func TestPenaltyCalculatorExcludesRangeRules(t *testing.T) {
	pc, err := NewPenaltyCalculator(testRuleSet())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, pc.RuleIDs())
	assert.True(t, pc.Knows(1))
	assert.False(t, pc.Knows(3))

	_, err = pc.Calculate(map[int]int{3: 1})
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestPenaltyCalculatorUnknownRuleAborts(t *testing.T) {
	pc, err := NewPenaltyCalculator(testRuleSet())
	require.NoError(t, err)

	_, err = pc.Calculate(map[int]int{1: 2, 99: 1})
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestPenaltyCalculatorPropagatesNegativeCount(t *testing.T) {
	pc, err := NewPenaltyCalculator(testRuleSet())
	require.NoError(t, err)

	_, err = pc.Calculate(map[int]int{1: -2})
	assert.ErrorIs(t, err, ErrNegativeCount)
}

func TestPenaltyCalculatorSkipsNilAndKindlessRules(t *testing.T) {
	rules := testRuleSet()
	rules = append(rules, nil, &models.Penalty{ID: 4, Penalty: 9.0})

	pc, err := NewPenaltyCalculator(rules)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pc.RuleIDs())
}

func TestDisplayTotalSkipsUnresolvableRules(t *testing.T) {
	pc, err := NewPenaltyCalculator(testRuleSet())
	require.NoError(t, err)

	// Rule 99 no longer exists and rule 3 is range-priced; the display
	// total prices what it can instead of failing.
	total := pc.DisplayTotal(map[int]int{1: 3, 2: 10, 3: 1, 99: 4})
	assert.InDelta(t, 11.0, total, 1e-9)
}

func TestDisplayTotalIgnoresNegativeCounts(t *testing.T) {
	pc, err := NewPenaltyCalculator(testRuleSet())
	require.NoError(t, err)

	total := pc.DisplayTotal(map[int]int{1: -5, 2: 4})
	assert.InDelta(t, 2.0, total, 1e-9)
}
