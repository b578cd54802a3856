package scoring

import (
	"testing"

	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quantityRule(id int, price float64) models.Penalty {
	return models.Penalty{
		ID:          id,
		Description: "test rule",
		Penalty:     price,
		Kind:        &models.PenaltyKind{ID: 1, Description: "quantity"},
	}
}

func rangeRule(id int) models.Penalty {
	return models.Penalty{
		ID:          id,
		Description: "test range rule",
		LowerLimit:  0,
		UpperLimit:  9,
		Kind:        &models.PenaltyKind{ID: 2, Description: "range", IsRange: true},
	}
}

func TestQuantityCalculatorMultipliesCountByUnitPrice(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		count int
		want  float64
	}{
		{"zero count", 2.0, 0, 0.0},
		{"single occurrence", 0.5, 1, 0.5},
		{"many occurrences", 1.5, 7, 10.5},
		{"fractional price", 0.25, 10, 2.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calc, err := NewQuantityCalculator(quantityRule(1, tc.price))
			require.NoError(t, err)

			got, err := calc.Calculate(tc.count)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestQuantityCalculatorRejectsRangeRule(t *testing.T) {
	_, err := NewQuantityCalculator(rangeRule(3))
	assert.ErrorIs(t, err, ErrRuleNotQuantity)
}

func TestQuantityCalculatorRejectsRuleWithoutKind(t *testing.T) {
	rule := quantityRule(1, 2.0)
	rule.Kind = nil

	_, err := NewQuantityCalculator(rule)
	assert.ErrorIs(t, err, ErrRuleNotQuantity)
}

func TestQuantityCalculatorRejectsNegativeCount(t *testing.T) {
	calc, err := NewQuantityCalculator(quantityRule(1, 2.0))
	require.NoError(t, err)

	_, err = calc.Calculate(-1)
	assert.ErrorIs(t, err, ErrNegativeCount)
}

func TestQuantityCalculatorReportsRuleID(t *testing.T) {
	calc, err := NewQuantityCalculator(quantityRule(42, 1.0))
	require.NoError(t, err)
	assert.Equal(t, 42, calc.RuleID())
}
