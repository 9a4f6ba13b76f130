package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func defaultEvaluator() *EligibilityEvaluator {
	return NewEligibilityEvaluator(decimal.NewFromInt(3000), decimal.NewFromFloat(0.5))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name                  string
		income                decimal.Decimal
		obligations           decimal.Decimal
		installment           decimal.Decimal
		expectedEligible      bool
		expectedMaxAffordable string
		expectedRatio         string
	}{
		{
			name:                  "Installment above 50% ceiling",
			income:                decimal.NewFromInt(3000),
			obligations:           decimal.Zero,
			installment:           decimal.NewFromInt(1600),
			expectedEligible:      false,
			expectedMaxAffordable: "1500",
			expectedRatio:         "93.75",
		},
		{
			name:                  "Installment within ceiling",
			income:                decimal.NewFromInt(3000),
			obligations:           decimal.Zero,
			installment:           decimal.NewFromInt(1400),
			expectedEligible:      true,
			expectedMaxAffordable: "1500",
			expectedRatio:         "100",
		},
		{
			name:                  "Income below floor fails even when affordable",
			income:                decimal.NewFromInt(2500),
			obligations:           decimal.Zero,
			installment:           decimal.NewFromInt(100),
			expectedEligible:      false,
			expectedMaxAffordable: "1250",
			expectedRatio:         "100",
		},
		{
			name:                  "Obligations reduce the ceiling",
			income:                decimal.NewFromInt(5000),
			obligations:           decimal.NewFromInt(3000),
			installment:           decimal.NewFromInt(1200),
			expectedEligible:      false,
			expectedMaxAffordable: "1000",
			expectedRatio:         "83.33333333333333",
		},
		{
			name:                  "Negative available income passes through unclamped",
			income:                decimal.NewFromInt(4000),
			obligations:           decimal.NewFromInt(5000),
			installment:           decimal.NewFromInt(200),
			expectedEligible:      false,
			expectedMaxAffordable: "-500",
			expectedRatio:         "-250",
		},
		{
			name:                  "Zero installment yields zero ratio",
			income:                decimal.NewFromInt(4000),
			obligations:           decimal.Zero,
			installment:           decimal.Zero,
			expectedEligible:      true,
			expectedMaxAffordable: "2000",
			expectedRatio:         "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := defaultEvaluator().Evaluate(tt.income, tt.obligations, tt.installment)

			assert.Equal(t, tt.expectedEligible, result.Eligible)
			assert.Equal(t, tt.expectedMaxAffordable, result.MaxAffordableInstallment.String())
			assert.Equal(t, tt.expectedRatio, result.AffordabilityRatio.String())
		})
	}
}
