package usecases_test

import (
	"context"
	"testing"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/usecases"
)

// --- Mock ScenarioRepository ---

type mockScenarioRepo struct {
	createFn  func(ctx context.Context, s *domain.Scenario) error
	getByIDFn func(ctx context.Context, id string) (*domain.Scenario, error)
	listFn    func(ctx context.Context, limit, offset int) ([]domain.Scenario, int, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockScenarioRepo) Create(ctx context.Context, s *domain.Scenario) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	s.ID = "generated-id"
	return nil
}

func (m *mockScenarioRepo) GetByID(ctx context.Context, id string) (*domain.Scenario, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockScenarioRepo) List(ctx context.Context, limit, offset int) ([]domain.Scenario, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockScenarioRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Tests ---

func validScenario() *domain.Scenario {
	return &domain.Scenario{
		Name:           "first flat",
		Income:         7500,
		Expenses:       2000,
		InterestPct:    2.6,
		TenureYears:    25,
		DownPaymentPct: 20,
	}
}

func TestScenarioService_Create(t *testing.T) {
	svc := usecases.NewScenarioService(&mockScenarioRepo{})
	created, err := svc.Create(context.Background(), validScenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "generated-id" {
		t.Errorf("expected repository-assigned id, got %q", created.ID)
	}
}

func TestScenarioService_Create_Invalid(t *testing.T) {
	svc := usecases.NewScenarioService(&mockScenarioRepo{})

	noName := validScenario()
	noName.Name = "   "
	if _, err := svc.Create(context.Background(), noName); err == nil {
		t.Error("expected error for blank name")
	}

	badLoan := validScenario()
	badLoan.DownPaymentPct = 100
	if _, err := svc.Create(context.Background(), badLoan); err == nil {
		t.Error("expected error for unevaluable inputs")
	}
}

func TestScenarioService_Get_RecomputesResult(t *testing.T) {
	repo := &mockScenarioRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Scenario, error) {
			s := validScenario()
			s.ID = id
			return s, nil
		},
	}

	svc := usecases.NewScenarioService(repo)
	scenario, result, err := svc.Get(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scenario.ID != "abc-123" {
		t.Errorf("expected id abc-123, got %s", scenario.ID)
	}
	if result == nil || result.MaxMonthlyPayment != 2250 {
		t.Errorf("expected recomputed result, got %+v", result)
	}
}

func TestScenarioService_Get_NotFound(t *testing.T) {
	svc := usecases.NewScenarioService(&mockScenarioRepo{})
	scenario, result, err := svc.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scenario != nil || result != nil {
		t.Error("expected nil scenario and result when not found")
	}
}

func TestScenarioService_List_ClampsPaging(t *testing.T) {
	repo := &mockScenarioRepo{
		listFn: func(ctx context.Context, limit, offset int) ([]domain.Scenario, int, error) {
			if limit != 20 || offset != 0 {
				t.Errorf("expected clamped paging, got limit=%d offset=%d", limit, offset)
			}
			return nil, 0, nil
		},
	}
	svc := usecases.NewScenarioService(repo)
	_, _, _ = svc.List(context.Background(), -1, -1)
}

func TestScenarioService_Delete_EmptyID(t *testing.T) {
	svc := usecases.NewScenarioService(&mockScenarioRepo{})
	if err := svc.Delete(context.Background(), ""); err == nil {
		t.Error("expected error for empty id")
	}
}
