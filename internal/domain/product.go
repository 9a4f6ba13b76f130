package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanProduct is an admin-configured product. Submission resolves the interest
// rate by product name and bounds-checks the requested term.
type LoanProduct struct {
	Name              string          `json:"name" db:"name"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" db:"annual_rate_percent"`
	MinTermMonths     int             `json:"min_term_months" db:"min_term_months"`
	MaxTermMonths     int             `json:"max_term_months" db:"max_term_months"`
	Active            bool            `json:"active" db:"active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

type EligibilityRequest struct {
	MonthlyIncome       decimal.Decimal `json:"monthly_income"`
	MonthlyObligations  decimal.Decimal `json:"monthly_obligations"`
	ProposedInstallment decimal.Decimal `json:"proposed_installment"`
}

type EligibilityResult struct {
	Eligible                 bool            `json:"eligible"`
	AffordabilityRatio       decimal.Decimal `json:"affordability_ratio"`
	MaxAffordableInstallment decimal.Decimal `json:"max_affordable_installment"`
}
