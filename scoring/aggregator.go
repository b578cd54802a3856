package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bowlhaus/strafenkatalog/models"
)

// ErrUnknownRule is returned when a value refers to a rule id that has no
// registered calculator. Range-priced rules are deliberately excluded at
// construction time, so their ids fall under this error as well.
var ErrUnknownRule = errors.New("no calculator registered for rule")

// PenaltyCalculator sums the monetary penalties of a game player record from
// a mapping of rule id to occurrence count. It is built once per rule-set
// snapshot and is immutable afterwards; when the rule table changes, build a
// new one.
type PenaltyCalculator struct {
	calculators map[int]Calculator
}

// NewPenaltyCalculator registers a quantity calculator for every non-range
// rule in the snapshot. Range-priced rules are silently skipped; they are not
// priced by this aggregator.
func NewPenaltyCalculator(rules []*models.Penalty) (*PenaltyCalculator, error) {
	calculators := make(map[int]Calculator, len(rules))
	for _, rule := range rules {
		if rule == nil || rule.Kind == nil || rule.Kind.IsRange {
			continue
		}
		calc, err := NewQuantityCalculator(*rule)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", rule.ID, err)
		}
		calculators[rule.ID] = calc
	}
	return &PenaltyCalculator{calculators: calculators}, nil
}

// Knows reports whether a calculator is registered for the rule id.
func (pc *PenaltyCalculator) Knows(ruleID int) bool {
	_, ok := pc.calculators[ruleID]
	return ok
}

// RuleIDs returns the priced rule ids in ascending order.
func (pc *PenaltyCalculator) RuleIDs() []int {
	ids := make([]int, 0, len(pc.calculators))
	for id := range pc.calculators {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Calculate sums the priced amounts of all supplied (rule id, count) pairs.
// Every rule id must be registered; an unknown id aborts the calculation
// with ErrUnknownRule. Map iteration order does not matter, the result is a
// plain sum.
func (pc *PenaltyCalculator) Calculate(values map[int]int) (float64, error) {
	sum := 0.0
	for ruleID, count := range values {
		calc, ok := pc.calculators[ruleID]
		if !ok {
			return 0, fmt.Errorf("rule %d: %w", ruleID, ErrUnknownRule)
		}
		amount, err := calc.Calculate(count)
		if err != nil {
			return 0, err
		}
		sum += amount
	}
	return sum, nil
}

// DisplayTotal sums the priced amounts while skipping rule ids that have no
// registered calculator. Display code uses this so that a stale reference to
// a retired rule degrades to "not priced" instead of breaking the whole
// grid; API-level misuse still goes through Calculate and fails loudly.
func (pc *PenaltyCalculator) DisplayTotal(values map[int]int) float64 {
	sum := 0.0
	for ruleID, count := range values {
		calc, ok := pc.calculators[ruleID]
		if !ok || count < 0 {
			continue
		}
		amount, err := calc.Calculate(count)
		if err != nil {
			continue
		}
		sum += amount
	}
	return sum
}
