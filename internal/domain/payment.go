package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an append-only repayment record. Payments are never mutated or
// deleted; the stored split reflects the account state at recording time.
type Payment struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	AccountID        uuid.UUID       `json:"account_id" db:"account_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	InterestPortion  decimal.Decimal `json:"interest_portion" db:"interest_portion"`
	PrincipalPortion decimal.Decimal `json:"principal_portion" db:"principal_portion"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"decimal_gt_zero"`
}

type RecordPaymentResponse struct {
	Payment *Payment     `json:"payment"`
	Account *LoanAccount `json:"account"`
}
