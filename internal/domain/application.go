package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusInReview = "in_review"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// DefaultRejectionReason is stored when a lender rejects without giving one.
const DefaultRejectionReason = "Not specified"

// LoanApplication represents a borrower's application. Applications are never
// deleted; terminal statuses (approved, rejected) are immutable.
type LoanApplication struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	BorrowerID         string          `json:"borrower_id" db:"borrower_id"`
	ProductName        string          `json:"product_name" db:"product_name"`
	Principal          decimal.Decimal `json:"principal" db:"principal"`
	TermMonths         int             `json:"term_months" db:"term_months"`
	Purpose            string          `json:"purpose" db:"purpose"`
	MonthlyIncome      decimal.Decimal `json:"monthly_income" db:"monthly_income"`
	MonthlyObligations decimal.Decimal `json:"monthly_obligations" db:"monthly_obligations"`
	CreditScore        *int            `json:"credit_score,omitempty" db:"credit_score"`

	// Derived at submission from the product catalog, stored for display.
	InterestRate  decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	Installment   decimal.Decimal `json:"installment" db:"installment"`
	TotalInterest decimal.Decimal `json:"total_interest" db:"total_interest"`
	TotalPayable  decimal.Decimal `json:"total_payable" db:"total_payable"`

	Status          string    `json:"status" db:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ApproverID      string    `json:"approver_id,omitempty" db:"approver_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the application can no longer transition.
func (a *LoanApplication) IsTerminal() bool {
	return a.Status == ApplicationStatusApproved || a.Status == ApplicationStatusRejected
}

// IsOpen reports whether the application can still be approved or rejected.
func (a *LoanApplication) IsOpen() bool {
	return a.Status == ApplicationStatusPending || a.Status == ApplicationStatusInReview
}

// DTOs for requests and responses

type SubmitApplicationRequest struct {
	BorrowerID         string          `json:"borrower_id" validate:"required"`
	ProductName        string          `json:"product_name" validate:"required"`
	Principal          decimal.Decimal `json:"principal" validate:"decimal_gt_zero"`
	TermMonths         int             `json:"term_months" validate:"gt=0"`
	Purpose            string          `json:"purpose" validate:"required"`
	MonthlyIncome      decimal.Decimal `json:"monthly_income" validate:"decimal_gt_zero"`
	MonthlyObligations decimal.Decimal `json:"monthly_obligations" validate:"decimal_gte_zero"`
	CreditScore        *int            `json:"credit_score,omitempty" validate:"omitempty,gte=300,lte=850"`
}

type ApproveApplicationRequest struct {
	ApproverID string `json:"approver_id" validate:"required"`
}

type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

type ApproveApplicationResponse struct {
	Application *LoanApplication `json:"application"`
	Account     *LoanAccount     `json:"account"`
}
