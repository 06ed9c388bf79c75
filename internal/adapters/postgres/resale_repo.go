package postgres

import (
	"context"

	"github.com/greggyneo/homefinder/internal/core/domain"
)

// ResaleRepo implements ports.ResaleRepository with pgx.
type ResaleRepo struct {
	db *DB
}

// NewResaleRepo creates a new ResaleRepo.
func NewResaleRepo(db *DB) *ResaleRepo {
	return &ResaleRepo{db: db}
}

// ListTowns returns all distinct towns in the dataset.
func (r *ResaleRepo) ListTowns(ctx context.Context) ([]string, error) {
	return r.listDistinct(ctx, `SELECT DISTINCT town FROM resale_flat_prices ORDER BY town`)
}

// ListFlatTypes returns all distinct flat types in the dataset.
func (r *ResaleRepo) ListFlatTypes(ctx context.Context) ([]string, error) {
	return r.listDistinct(ctx, `SELECT DISTINCT flat_type FROM resale_flat_prices ORDER BY flat_type`)
}

func (r *ResaleRepo) listDistinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// MonthRange returns the earliest and latest transaction months.
func (r *ResaleRepo) MonthRange(ctx context.Context) (string, string, error) {
	var min, max string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(MIN(month), ''), COALESCE(MAX(month), '')
		FROM resale_flat_prices
	`).Scan(&min, &max)
	return min, max, err
}

// Trends returns monthly aggregates matching the filter, oldest month first.
// Optional filter fields are passed as empty strings and disabled in SQL.
func (r *ResaleRepo) Trends(ctx context.Context, f domain.TrendFilter) ([]domain.TrendPoint, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT month,
		       PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY resale_price / floor_area_sqm) AS median_psm,
		       AVG(resale_price / floor_area_sqm) AS avg_psm,
		       COUNT(*) AS tx_count,
		       MIN(resale_price) AS min_price,
		       MAX(resale_price) AS max_price
		FROM resale_flat_prices
		WHERE ($1 = '' OR town = $1)
		  AND ($2 = '' OR flat_type = $2)
		  AND ($3 = '' OR month >= $3)
		  AND ($4 = '' OR month <= $4)
		GROUP BY month
		ORDER BY month
	`, f.Town, f.FlatType, f.StartMonth, f.EndMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.TrendPoint
	for rows.Next() {
		var p domain.TrendPoint
		if err := rows.Scan(&p.Month, &p.MedianPSM, &p.AvgPSM, &p.Count, &p.MinPrice, &p.MaxPrice); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Transactions returns a page of raw transactions plus the total matching
// count, newest month first.
func (r *ResaleRepo) Transactions(ctx context.Context, f domain.TrendFilter, limit, offset int) ([]domain.ResaleTransaction, int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM resale_flat_prices
		WHERE ($1 = '' OR town = $1)
		  AND ($2 = '' OR flat_type = $2)
		  AND ($3 = '' OR month >= $3)
		  AND ($4 = '' OR month <= $4)
	`, f.Town, f.FlatType, f.StartMonth, f.EndMonth).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT r.block, r.street_name, r.storey_range, r.floor_area_sqm,
		       r.lease_commence_date, COALESCE(r.remaining_lease, ''),
		       r.resale_price, r.month,
		       r.resale_price / r.floor_area_sqm AS psm,
		       p.year_completed, p.total_dwelling_units
		FROM resale_flat_prices r
		LEFT JOIN hdb_property_information p
		       ON p.block = r.block AND p.street_name = r.street_name
		WHERE ($1 = '' OR r.town = $1)
		  AND ($2 = '' OR r.flat_type = $2)
		  AND ($3 = '' OR r.month >= $3)
		  AND ($4 = '' OR r.month <= $4)
		ORDER BY r.month DESC, r.resale_price DESC
		LIMIT $5 OFFSET $6
	`, f.Town, f.FlatType, f.StartMonth, f.EndMonth, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.ResaleTransaction
	for rows.Next() {
		var t domain.ResaleTransaction
		if err := rows.Scan(
			&t.Block, &t.Street, &t.Storey, &t.FloorArea,
			&t.LeaseStart, &t.RemainingLease,
			&t.Price, &t.Month, &t.PSM,
			&t.YearCompleted, &t.DwellingUnits,
		); err != nil {
			return nil, 0, err
		}
		txs = append(txs, t)
	}
	return txs, total, rows.Err()
}

// TownSummary aggregates one town's transactions, optionally narrowed to a
// flat type. A town with no matching rows yields zeroed aggregates.
func (r *ResaleRepo) TownSummary(ctx context.Context, town, flatType string) (*domain.TownComparison, error) {
	var c domain.TownComparison
	c.Town = town
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY resale_price / floor_area_sqm), 0),
		       COALESCE(AVG(resale_price), 0),
		       COALESCE(MIN(resale_price), 0),
		       COALESCE(MAX(resale_price), 0)
		FROM resale_flat_prices
		WHERE town = $1 AND ($2 = '' OR flat_type = $2)
	`, town, flatType).Scan(&c.Transactions, &c.MedianPSM, &c.AvgPrice, &c.MinPrice, &c.MaxPrice)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MarketStats summarises the whole dataset.
func (r *ResaleRepo) MarketStats(ctx context.Context) (*domain.MarketStats, error) {
	var s domain.MarketStats
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT town),
		       COUNT(DISTINCT flat_type),
		       COALESCE(MIN(month), ''),
		       COALESCE(MAX(month), ''),
		       COALESCE(AVG(resale_price), 0),
		       COALESCE(AVG(resale_price / floor_area_sqm), 0)
		FROM resale_flat_prices
	`).Scan(
		&s.TotalTransactions, &s.TotalTowns, &s.TotalFlatTypes,
		&s.EarliestMonth, &s.LatestMonth, &s.AvgPrice, &s.AvgPSM,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
