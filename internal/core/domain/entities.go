package domain

import "time"

// ResaleTransaction is a single recorded flat resale.
type ResaleTransaction struct {
	Block          string  `json:"block"`
	Street         string  `json:"street"`
	Storey         string  `json:"storey"`
	FloorArea      float64 `json:"floor_area"` // sqm
	LeaseStart     int     `json:"lease_start"`
	RemainingLease string  `json:"remaining_lease,omitempty"`
	Price          float64 `json:"price"`
	Month          string  `json:"month"` // YYYY-MM
	PSM            float64 `json:"psm"`
	YearCompleted  *int    `json:"year_completed,omitempty"`
	DwellingUnits  *int    `json:"total_dwelling_units,omitempty"`
}

// TrendPoint is one month of aggregated price statistics for a town and
// flat type.
type TrendPoint struct {
	Month     string  `json:"month"`
	MedianPSM float64 `json:"median_psm"`
	AvgPSM    float64 `json:"avg_psm"`
	Count     int     `json:"count"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
}

// TrendFilter narrows a trend query.
type TrendFilter struct {
	Town       string `json:"town"`
	FlatType   string `json:"flat_type"`
	StartMonth string `json:"start_month"`
	EndMonth   string `json:"end_month"`
}

// TownComparison is one town's row in a multi-town comparison.
type TownComparison struct {
	Town               string  `json:"town"`
	Transactions       int     `json:"transactions"`
	MedianPSM          float64 `json:"median_psm"`
	AvgPrice           float64 `json:"avg_price"`
	MinPrice           float64 `json:"min_price"`
	MaxPrice           float64 `json:"max_price"`
	MRTCount           int     `json:"mrt_count"`
	SchoolCount        int     `json:"school_count"`
	AffordabilityScore float64 `json:"affordability_score"`
}

// MarketStats summarises the whole resale dataset.
type MarketStats struct {
	TotalTransactions int     `json:"total_transactions"`
	TotalTowns        int     `json:"total_towns"`
	TotalFlatTypes    int     `json:"total_flat_types"`
	EarliestMonth     string  `json:"earliest_month"`
	LatestMonth       string  `json:"latest_month"`
	AvgPrice          float64 `json:"avg_price"`
	AvgPSM            float64 `json:"avg_psm"`
}

// FlatTypeSpec describes the typical physical characteristics of a flat type.
type FlatTypeSpec struct {
	FlatType    string  `json:"flat_type"`
	AreaMinSQM  float64 `json:"area_min_sqm"`
	AreaMaxSQM  float64 `json:"area_max_sqm"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Description string  `json:"description,omitempty"`
}

// MortgageRate holds the published lending rates for a quarter.
type MortgageRate struct {
	Year             int     `json:"year"`
	Quarter          int     `json:"quarter"`
	ConcessionaryPct float64 `json:"concessionary_rate_pct"`
	CPFOrdinaryPct   float64 `json:"cpf_oa_rate_pct"`
	BankFloatingPct  float64 `json:"bank_floating_rate_pct"`
}

// LoanRules holds the loan eligibility rules in effect on a date.
type LoanRules struct {
	EffectiveDate   string  `json:"effective_date"`
	MaxLTVPct       float64 `json:"max_ltv_pct"`
	MSRPct          float64 `json:"msr_pct"`
	IncomeCeiling   float64 `json:"income_ceiling"`
	MaxTenureYears  int     `json:"max_tenure_years"`
	MinOccupationYr int     `json:"min_occupation_period_years"`
}

// Scenario is a saved affordability scenario.
type Scenario struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Income         float64   `json:"income"`
	Expenses       float64   `json:"expenses"`
	InterestPct    float64   `json:"interest_rate_pct"`
	TenureYears    int       `json:"tenure_years"`
	DownPaymentPct float64   `json:"down_payment_pct"`
	CreatedAt      time.Time `json:"created_at"`
}
