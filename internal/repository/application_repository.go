package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendfast/loan-engine/internal/domain"
)

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, application *domain.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (
			id, borrower_id, product_name, principal, term_months, purpose,
			monthly_income, monthly_obligations, credit_score,
			interest_rate, installment, total_interest, total_payable,
			status, rejection_reason, approver_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.ExecContext(ctx, query,
		application.ID,
		application.BorrowerID,
		application.ProductName,
		application.Principal,
		application.TermMonths,
		application.Purpose,
		application.MonthlyIncome,
		application.MonthlyObligations,
		application.CreditScore,
		application.InterestRate,
		application.Installment,
		application.TotalInterest,
		application.TotalPayable,
		application.Status,
		application.RejectionReason,
		application.ApproverID,
		application.CreatedAt,
		application.UpdatedAt,
	)

	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	query := `
		SELECT id, borrower_id, product_name, principal, term_months, purpose,
		       monthly_income, monthly_obligations, credit_score,
		       interest_rate, installment, total_interest, total_payable,
		       status, rejection_reason, approver_id, created_at, updated_at
		FROM loan_applications
		WHERE id = $1
	`

	var application domain.LoanApplication
	err := r.db.GetContext(ctx, &application, query, id)
	if err != nil {
		return nil, err
	}

	return &application, nil
}

func (r *applicationRepository) Update(ctx context.Context, application *domain.LoanApplication) error {
	query := `
		UPDATE loan_applications
		SET status = $2, rejection_reason = $3, approver_id = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		application.ID,
		application.Status,
		application.RejectionReason,
		application.ApproverID,
		application.UpdatedAt,
	)

	return err
}

func (r *applicationRepository) ListByStatus(ctx context.Context, status string) ([]*domain.LoanApplication, error) {
	query := `
		SELECT id, borrower_id, product_name, principal, term_months, purpose,
		       monthly_income, monthly_obligations, credit_score,
		       interest_rate, installment, total_interest, total_payable,
		       status, rejection_reason, approver_id, created_at, updated_at
		FROM loan_applications
		WHERE status = $1
		ORDER BY created_at
	`

	var applications []*domain.LoanApplication
	err := r.db.SelectContext(ctx, &applications, query, status)
	if err != nil {
		return nil, err
	}

	return applications, nil
}
