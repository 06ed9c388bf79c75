package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/greggyneo/homefinder/internal/core/affordability"
	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/ports"
)

// ScenarioService manages saved affordability scenarios.
type ScenarioService struct {
	scenarios ports.ScenarioRepository
}

// NewScenarioService creates a new ScenarioService.
func NewScenarioService(scenarios ports.ScenarioRepository) *ScenarioService {
	return &ScenarioService{scenarios: scenarios}
}

// Create validates and stores a scenario. The inputs must pass the calculator's
// own validation so that a stored scenario can always be re-evaluated.
func (s *ScenarioService) Create(ctx context.Context, scenario *domain.Scenario) (*domain.Scenario, error) {
	scenario.Name = strings.TrimSpace(scenario.Name)
	if scenario.Name == "" {
		return nil, fmt.Errorf("%w: scenario name must not be empty", domain.ErrInvalidInput)
	}
	if len(scenario.Name) > 120 {
		return nil, fmt.Errorf("%w: scenario name must be at most 120 characters", domain.ErrInvalidInput)
	}

	if _, err := affordability.Evaluate(domain.AffordabilityInput{
		Income:         scenario.Income,
		Expenses:       scenario.Expenses,
		InterestPct:    scenario.InterestPct,
		TenureYears:    scenario.TenureYears,
		DownPaymentPct: scenario.DownPaymentPct,
	}, domain.DefaultFlatSizeSQM); err != nil {
		return nil, err
	}

	if err := s.scenarios.Create(ctx, scenario); err != nil {
		return nil, err
	}
	return scenario, nil
}

// Get returns one scenario together with its freshly computed result.
func (s *ScenarioService) Get(ctx context.Context, id string) (*domain.Scenario, *domain.AffordabilityResult, error) {
	scenario, err := s.scenarios.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if scenario == nil {
		return nil, nil, nil
	}

	result, err := affordability.Evaluate(domain.AffordabilityInput{
		Income:         scenario.Income,
		Expenses:       scenario.Expenses,
		InterestPct:    scenario.InterestPct,
		TenureYears:    scenario.TenureYears,
		DownPaymentPct: scenario.DownPaymentPct,
	}, domain.DefaultFlatSizeSQM)
	if err != nil {
		return nil, nil, err
	}
	return scenario, &result, nil
}

// List returns a page of scenarios plus the total count.
func (s *ScenarioService) List(ctx context.Context, limit, offset int) ([]domain.Scenario, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.scenarios.List(ctx, limit, offset)
}

// Delete removes a scenario by ID.
func (s *ScenarioService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("scenario id must not be empty")
	}
	return s.scenarios.Delete(ctx, id)
}
