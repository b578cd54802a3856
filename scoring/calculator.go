package scoring

import (
	"errors"
	"fmt"

	"github.com/bowlhaus/strafenkatalog/models"
)

var (
	// ErrRuleNotQuantity is returned when a quantity calculator is requested
	// for a range-priced rule. This is a contract violation by the caller,
	// not a data error.
	ErrRuleNotQuantity = errors.New("rule is not quantity-priced")

	// ErrNegativeCount is returned for counts below zero; occurrence counts
	// are never negative.
	ErrNegativeCount = errors.New("occurrence count must not be negative")
)

// Calculator prices the occurrence count of a single rule.
type Calculator interface {
	RuleID() int
	Calculate(count int) (float64, error)
}

// quantityCalculator prices count * unit price. It is the only pricing
// strategy the league uses today; range-priced rules are excluded from
// pricing at aggregator construction time and would need their own
// Calculator implementation here.
type quantityCalculator struct {
	rule models.Penalty
}

// NewQuantityCalculator builds the calculator for a quantity-priced rule.
// The rule must have its kind populated; range-kind rules are rejected.
func NewQuantityCalculator(rule models.Penalty) (Calculator, error) {
	if rule.Kind == nil {
		return nil, fmt.Errorf("rule %d has no kind loaded: %w", rule.ID, ErrRuleNotQuantity)
	}
	if rule.Kind.IsRange {
		return nil, fmt.Errorf("rule %d (%s): %w", rule.ID, rule.Description, ErrRuleNotQuantity)
	}
	return &quantityCalculator{rule: rule}, nil
}

func (c *quantityCalculator) RuleID() int {
	return c.rule.ID
}

func (c *quantityCalculator) Calculate(count int) (float64, error) {
	if count < 0 {
		return 0, fmt.Errorf("rule %d: count %d: %w", c.rule.ID, count, ErrNegativeCount)
	}
	return float64(count) * c.rule.Penalty, nil
}
