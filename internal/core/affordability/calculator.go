// Package affordability computes the maximum serviceable loan and property
// value from household income and loan terms. The calculator is a pure
// function over its input; rates and rules fetched from storage are resolved
// by the usecase layer before Evaluate is called.
package affordability

import (
	"fmt"
	"math"

	"github.com/greggyneo/homefinder/internal/core/domain"
)

// grossIncomeCapPct is the share of gross monthly income that may go to the
// mortgage. The payment cap uses gross income while the affordable flag uses
// disposable income; the asymmetry is part of the published methodology and
// changing either side alone breaks parity with it.
const grossIncomeCapPct = 0.30

// ValidationError reports an input that would produce a nonsensical money
// figure. It is returned instead of ever emitting Inf, NaN, or a negative
// amount.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Evaluate applies the lending-rule approximation to one input.
//
// The monthly payment cap is 30% of gross income. The loan amount is the
// present value of an annuity paying that cap over the tenure; when the rate
// is zero the loan degenerates to cap * months. The affordable flag compares
// the cap against disposable income (income minus expenses).
func Evaluate(in domain.AffordabilityInput, flatSizeSQM float64) (domain.AffordabilityResult, error) {
	if err := validate(in); err != nil {
		return domain.AffordabilityResult{}, err
	}

	disposable := in.Income - in.Expenses
	maxMonthly := grossIncomeCapPct * in.Income

	monthlyRate := (in.InterestPct / 100) / 12
	n := float64(in.TenureYears * 12)

	var maxLoan float64
	if monthlyRate == 0 {
		maxLoan = maxMonthly * n
	} else {
		maxLoan = maxMonthly * (1 - math.Pow(1+monthlyRate, -n)) / monthlyRate
	}

	maxProperty := maxLoan / (1 - in.DownPaymentPct/100)
	if maxProperty < 0 || math.IsNaN(maxProperty) || math.IsInf(maxProperty, 0) {
		return domain.AffordabilityResult{}, &ValidationError{Field: "down_payment_pct", Reason: "produces a negative or undefined property value"}
	}

	pricePerSQM := 0.0
	if flatSizeSQM > 0 {
		pricePerSQM = maxProperty / flatSizeSQM
	}

	return domain.AffordabilityResult{
		MaxMonthlyPayment:   maxMonthly,
		MaxLoanAmount:       maxLoan,
		MaxPropertyValue:    maxProperty,
		DownPaymentRequired: maxProperty - maxLoan,
		MaxPricePerSQM:      pricePerSQM,
		Affordable:          disposable >= maxMonthly,
	}, nil
}

func validate(in domain.AffordabilityInput) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"income", in.Income},
		{"expenses", in.Expenses},
		{"interest_rate_pct", in.InterestPct},
		{"down_payment_pct", in.DownPaymentPct},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ValidationError{Field: f.name, Reason: "must be a finite number"}
		}
	}
	if in.Income < 0 {
		return &ValidationError{Field: "income", Reason: "must not be negative"}
	}
	if in.Expenses < 0 {
		return &ValidationError{Field: "expenses", Reason: "must not be negative"}
	}
	if in.InterestPct < 0 {
		return &ValidationError{Field: "interest_rate_pct", Reason: "must not be negative"}
	}
	if in.TenureYears <= 0 {
		return &ValidationError{Field: "tenure_years", Reason: "must be a positive number of years"}
	}
	if in.DownPaymentPct < 0 || in.DownPaymentPct >= 100 {
		return &ValidationError{Field: "down_payment_pct", Reason: "must be within [0, 100)"}
	}
	return nil
}
