package domain

// Defaults applied at the API edge when the caller omits loan parameters.
const (
	DefaultInterestPct    = 2.6
	DefaultTenureYears    = 25
	DefaultDownPaymentPct = 20.0
	DefaultFlatSizeSQM    = 90.0 // typical 4-room flat
)

// AffordabilityInput is one calculator invocation. All fields are assumed to
// be already-parsed numbers; defaulting of missing form fields is the
// caller's job.
type AffordabilityInput struct {
	Income         float64 `json:"income"`
	Expenses       float64 `json:"expenses"`
	InterestPct    float64 `json:"interest_rate_pct"`
	TenureYears    int     `json:"tenure_years"`
	DownPaymentPct float64 `json:"down_payment_pct"`
}

// AffordabilityResult is derived deterministically from the input; there is
// no hidden state. All monetary fields are non-negative.
type AffordabilityResult struct {
	MaxMonthlyPayment   float64 `json:"max_monthly_payment"`
	MaxLoanAmount       float64 `json:"max_loan_amount"`
	MaxPropertyValue    float64 `json:"max_property_value"`
	DownPaymentRequired float64 `json:"down_payment_required"`
	MaxPricePerSQM      float64 `json:"max_price_per_sqm"`
	Affordable          bool    `json:"affordable"`
}
