package service

import (
	"github.com/shopspring/decimal"

	"github.com/lendfast/loan-engine/internal/domain"
)

var ratioCap = decimal.NewFromInt(100)

// EligibilityEvaluator applies a fixed debt-service ceiling and a minimum
// income floor. It is a pure check: negative available income is taken as
// given and simply fails the ceiling comparison, it is not rejected as input.
type EligibilityEvaluator struct {
	minMonthlyIncome   decimal.Decimal
	debtServiceCeiling decimal.Decimal
}

func NewEligibilityEvaluator(minMonthlyIncome, debtServiceCeiling decimal.Decimal) *EligibilityEvaluator {
	return &EligibilityEvaluator{
		minMonthlyIncome:   minMonthlyIncome,
		debtServiceCeiling: debtServiceCeiling,
	}
}

// Evaluate derives affordability from declared income, existing obligations
// and the proposed installment.
func (e *EligibilityEvaluator) Evaluate(monthlyIncome, existingObligations, proposedInstallment decimal.Decimal) domain.EligibilityResult {
	availableIncome := monthlyIncome.Sub(existingObligations)
	maxAffordable := availableIncome.Mul(e.debtServiceCeiling)

	eligible := proposedInstallment.LessThanOrEqual(maxAffordable) &&
		monthlyIncome.GreaterThanOrEqual(e.minMonthlyIncome)

	ratio := decimal.Zero
	if proposedInstallment.IsPositive() {
		ratio = maxAffordable.Div(proposedInstallment).Mul(ratioCap)
		if ratio.GreaterThan(ratioCap) {
			ratio = ratioCap
		}
	}

	return domain.EligibilityResult{
		Eligible:                 eligible,
		AffordabilityRatio:       ratio,
		MaxAffordableInstallment: maxAffordable,
	}
}
