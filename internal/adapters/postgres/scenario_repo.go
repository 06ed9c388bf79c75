package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/greggyneo/homefinder/internal/core/domain"
)

// ScenarioRepo implements ports.ScenarioRepository with pgx.
type ScenarioRepo struct {
	db *DB
}

// NewScenarioRepo creates a new ScenarioRepo.
func NewScenarioRepo(db *DB) *ScenarioRepo {
	return &ScenarioRepo{db: db}
}

// Create stores a scenario, filling in the generated ID and timestamp.
func (r *ScenarioRepo) Create(ctx context.Context, s *domain.Scenario) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO scenarios (name, income, expenses, interest_rate_pct, tenure_years, down_payment_pct)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, s.Name, s.Income, s.Expenses, s.InterestPct, s.TenureYears, s.DownPaymentPct).
		Scan(&s.ID, &s.CreatedAt)
}

// GetByID returns one scenario, or nil when it does not exist.
func (r *ScenarioRepo) GetByID(ctx context.Context, id string) (*domain.Scenario, error) {
	var s domain.Scenario
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, income, expenses, interest_rate_pct, tenure_years, down_payment_pct, created_at
		FROM scenarios WHERE id = $1
	`, id).Scan(
		&s.ID, &s.Name, &s.Income, &s.Expenses,
		&s.InterestPct, &s.TenureYears, &s.DownPaymentPct, &s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns a page of scenarios, newest first, plus the total count.
func (r *ScenarioRepo) List(ctx context.Context, limit, offset int) ([]domain.Scenario, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM scenarios`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, income, expenses, interest_rate_pct, tenure_years, down_payment_pct, created_at
		FROM scenarios
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var scenarios []domain.Scenario
	for rows.Next() {
		var s domain.Scenario
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Income, &s.Expenses,
			&s.InterestPct, &s.TenureYears, &s.DownPaymentPct, &s.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, total, rows.Err()
}

// Delete removes a scenario by ID. Deleting a missing row is not an error.
func (r *ScenarioRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	return err
}
