package amortization

import (
	"fmt"

	"github.com/shopspring/decimal"

	customError "github.com/lendfast/loan-engine/pkg/errors"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Split is the interest/principal decomposition of a single payment.
type Split struct {
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
}

// MonthlyRate converts an annual percentage rate to a monthly fractional rate.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(twelve).Div(hundred)
}

// ComputeInstallment calculates the equated monthly installment for a
// fixed-rate, fixed-term loan:
//
//	installment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// where r is the monthly rate. A zero rate degenerates to straight-line
// repayment P/n. The result is unrounded; round only at presentation
// boundaries so schedule accumulation does not drift.
func ComputeInstallment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, customError.WrapInvalidInput(fmt.Sprintf("principal must be positive, got %s", principal))
	}
	if termMonths < 1 {
		return decimal.Zero, customError.WrapInvalidInput(fmt.Sprintf("term must be at least 1 month, got %d", termMonths))
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, customError.WrapInvalidInput(fmt.Sprintf("annual rate must not be negative, got %s", annualRatePercent))
	}

	term := decimal.NewFromInt(int64(termMonths))

	rate := MonthlyRate(annualRatePercent)
	if rate.IsZero() {
		return principal.Div(term), nil
	}

	compound := one.Add(rate).Pow(term)
	return principal.Mul(rate).Mul(compound).Div(compound.Sub(one)), nil
}

// ComputeTotalInterest returns the total interest paid over a full schedule:
// installment * term - principal. The installment must have been derived from
// the same principal and term.
func ComputeTotalInterest(installment, principal decimal.Decimal, termMonths int) decimal.Decimal {
	return installment.Mul(decimal.NewFromInt(int64(termMonths))).Sub(principal)
}

// SplitPayment decomposes a payment against the current outstanding balance.
// The interest portion is one month of interest on the balance, clipped to
// [0, paymentAmount]; the remainder goes to principal, clipped so it never
// exceeds the outstanding balance. Any excess beyond the balance is discarded
// rather than credited.
func SplitPayment(outstandingBalance, annualRatePercent, paymentAmount decimal.Decimal) (Split, error) {
	if !paymentAmount.IsPositive() {
		return Split{}, customError.WrapInvalidInput(fmt.Sprintf("payment amount must be positive, got %s", paymentAmount))
	}
	if outstandingBalance.IsNegative() {
		return Split{}, customError.WrapInvalidInput(fmt.Sprintf("outstanding balance must not be negative, got %s", outstandingBalance))
	}
	if annualRatePercent.IsNegative() {
		return Split{}, customError.WrapInvalidInput(fmt.Sprintf("annual rate must not be negative, got %s", annualRatePercent))
	}

	interest := outstandingBalance.Mul(MonthlyRate(annualRatePercent))
	if interest.GreaterThan(paymentAmount) {
		interest = paymentAmount
	}
	if interest.IsNegative() {
		interest = decimal.Zero
	}

	principal := paymentAmount.Sub(interest)
	if principal.GreaterThan(outstandingBalance) {
		principal = outstandingBalance
	}

	return Split{InterestPortion: interest, PrincipalPortion: principal}, nil
}

// RoundCurrency rounds a monetary value to 2 decimal places for display.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
