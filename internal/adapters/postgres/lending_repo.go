package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/greggyneo/homefinder/internal/core/domain"
)

// LendingRepo implements ports.LendingRepository with pgx. The tables it
// reads are reference data seeded by migrations.
type LendingRepo struct {
	db *DB
}

// NewLendingRepo creates a new LendingRepo.
func NewLendingRepo(db *DB) *LendingRepo {
	return &LendingRepo{db: db}
}

// CurrentRate returns the most recently published mortgage rates.
func (r *LendingRepo) CurrentRate(ctx context.Context) (*domain.MortgageRate, error) {
	var m domain.MortgageRate
	err := r.db.Pool.QueryRow(ctx, `
		SELECT year, quarter, concessionary_rate_pct, cpf_oa_rate_pct, bank_floating_rate_pct
		FROM mortgage_interest_rates
		ORDER BY year DESC, quarter DESC
		LIMIT 1
	`).Scan(&m.Year, &m.Quarter, &m.ConcessionaryPct, &m.CPFOrdinaryPct, &m.BankFloatingPct)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CurrentRules returns the loan eligibility rules currently in effect.
func (r *LendingRepo) CurrentRules(ctx context.Context) (*domain.LoanRules, error) {
	var l domain.LoanRules
	err := r.db.Pool.QueryRow(ctx, `
		SELECT effective_date::text, max_ltv_pct, msr_pct, income_ceiling, max_tenure_years, min_occupation_period_years
		FROM hdb_loan_eligibility_rules
		WHERE effective_date <= CURRENT_DATE
		ORDER BY effective_date DESC
		LIMIT 1
	`).Scan(&l.EffectiveDate, &l.MaxLTVPct, &l.MSRPct, &l.IncomeCeiling, &l.MaxTenureYears, &l.MinOccupationYr)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FlatTypeSpec returns the physical spec for one flat type, or nil when the
// type is unknown.
func (r *LendingRepo) FlatTypeSpec(ctx context.Context, flatType string) (*domain.FlatTypeSpec, error) {
	var s domain.FlatTypeSpec
	err := r.db.Pool.QueryRow(ctx, `
		SELECT flat_type, area_min_sqm, area_max_sqm, bedrooms, bathrooms, COALESCE(description, '')
		FROM flat_type_specifications
		WHERE flat_type = $1
	`, flatType).Scan(&s.FlatType, &s.AreaMinSQM, &s.AreaMaxSQM, &s.Bedrooms, &s.Bathrooms, &s.Description)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListFlatTypeSpecs returns all flat type specs.
func (r *LendingRepo) ListFlatTypeSpecs(ctx context.Context) ([]domain.FlatTypeSpec, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT flat_type, area_min_sqm, area_max_sqm, bedrooms, bathrooms, COALESCE(description, '')
		FROM flat_type_specifications
		ORDER BY flat_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []domain.FlatTypeSpec
	for rows.Next() {
		var s domain.FlatTypeSpec
		if err := rows.Scan(&s.FlatType, &s.AreaMinSQM, &s.AreaMaxSQM, &s.Bedrooms, &s.Bathrooms, &s.Description); err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, rows.Err()
}
