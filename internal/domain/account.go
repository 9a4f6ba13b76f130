package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AccountStatusActive = "active"
	AccountStatusClosed = "closed"
)

// LoanAccount is created from an approved application and tracks repayment.
// It holds a back-reference to the originating application; applications never
// point forward to accounts. The installment is kept unrounded so repeated
// splits do not accumulate rounding error.
type LoanAccount struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	ApplicationID      uuid.UUID       `json:"application_id" db:"application_id"`
	Principal          decimal.Decimal `json:"principal" db:"principal"`
	InterestRate       decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TermMonths         int             `json:"term_months" db:"term_months"`
	Installment        decimal.Decimal `json:"installment" db:"installment"`
	StartDate          time.Time       `json:"start_date" db:"start_date"`
	PaidInstallments   int             `json:"paid_installments" db:"paid_installments"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance" db:"outstanding_balance"`
	Status             string          `json:"status" db:"status"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// IsClosed reports whether the account has been fully repaid.
func (a *LoanAccount) IsClosed() bool {
	return a.Status == AccountStatusClosed
}
