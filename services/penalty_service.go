package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/bowlhaus/strafenkatalog/repositories"
	"github.com/bowlhaus/strafenkatalog/scoring"
)

// PenaltyService serves the rule table and hands out calculators built from
// a consistent snapshot of the active rules.
type PenaltyService interface {
	ListActiveRules(ctx context.Context) ([]*models.Penalty, error)
	GetRule(ctx context.Context, id int) (*models.Penalty, error)
	ListKinds(ctx context.Context) ([]*models.PenaltyKind, error)
	Calculator(ctx context.Context) (*scoring.PenaltyCalculator, error)
}

type penaltyService struct {
	penaltyRepo repositories.PenaltyRepository
}

func NewPenaltyService(penaltyRepo repositories.PenaltyRepository) PenaltyService {
	return &penaltyService{penaltyRepo: penaltyRepo}
}

func (s *penaltyService) ListActiveRules(ctx context.Context) ([]*models.Penalty, error) {
	rules, err := s.penaltyRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

func (s *penaltyService) GetRule(ctx context.Context, id int) (*models.Penalty, error) {
	rule, err := s.penaltyRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPenaltyNotFound) {
			return nil, ErrPenaltyNotFound
		}
		return nil, err
	}
	return rule, nil
}

func (s *penaltyService) ListKinds(ctx context.Context) ([]*models.PenaltyKind, error) {
	kinds, err := s.penaltyRepo.ListKinds(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list kinds: %w", err)
	}
	return kinds, nil
}

// Calculator builds an aggregator over the current active rule set. Rule
// changes are rare; callers rebuild rather than mutate.
func (s *penaltyService) Calculator(ctx context.Context) (*scoring.PenaltyCalculator, error) {
	rules, err := s.penaltyRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule snapshot: %w", err)
	}
	return scoring.NewPenaltyCalculator(rules)
}
