package usecases

import (
	"context"

	"github.com/greggyneo/homefinder/internal/core/affordability"
	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/ports"
)

// AffordabilityEvaluation is the calculator result enriched with the lending
// context it was computed under.
type AffordabilityEvaluation struct {
	domain.AffordabilityResult
	Input       domain.AffordabilityInput `json:"input"`
	FlatType    string                    `json:"flat_type,omitempty"`
	FlatSizeSQM float64                   `json:"flat_size_sqm"`
	CurrentRate *domain.MortgageRate      `json:"current_rate,omitempty"`
}

// AffordabilityService wires the pure calculator to stored lending reference
// data.
type AffordabilityService struct {
	lending ports.LendingRepository
}

// NewAffordabilityService creates a new AffordabilityService.
func NewAffordabilityService(lending ports.LendingRepository) *AffordabilityService {
	return &AffordabilityService{lending: lending}
}

// Evaluate runs the calculator on an already-defaulted input. When flatType
// is known its typical floor area drives the price-per-sqm figure; otherwise
// a 4-room assumption applies. Published rates are attached for context but
// never override the caller's interest rate.
func (s *AffordabilityService) Evaluate(ctx context.Context, in domain.AffordabilityInput, flatType string) (*AffordabilityEvaluation, error) {
	flatSize := domain.DefaultFlatSizeSQM
	if flatType != "" && s.lending != nil {
		if spec, err := s.lending.FlatTypeSpec(ctx, flatType); err == nil && spec != nil {
			flatSize = (spec.AreaMinSQM + spec.AreaMaxSQM) / 2
		}
	}

	result, err := affordability.Evaluate(in, flatSize)
	if err != nil {
		return nil, err
	}

	eval := &AffordabilityEvaluation{
		AffordabilityResult: result,
		Input:               in,
		FlatType:            flatType,
		FlatSizeSQM:         flatSize,
	}
	if s.lending != nil {
		if rate, err := s.lending.CurrentRate(ctx); err == nil {
			eval.CurrentRate = rate
		}
	}
	return eval, nil
}
