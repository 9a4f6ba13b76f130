package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendfast/loan-engine/internal/domain"
)

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.LoanAccount) error {
	query := `
		INSERT INTO loan_accounts (
			id, application_id, principal, interest_rate, term_months, installment,
			start_date, paid_installments, outstanding_balance, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.ApplicationID,
		account.Principal,
		account.InterestRate,
		account.TermMonths,
		account.Installment,
		account.StartDate,
		account.PaidInstallments,
		account.OutstandingBalance,
		account.Status,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanAccount, error) {
	query := `
		SELECT id, application_id, principal, interest_rate, term_months, installment,
		       start_date, paid_installments, outstanding_balance, status, created_at, updated_at
		FROM loan_accounts
		WHERE id = $1
	`

	var account domain.LoanAccount
	err := r.db.GetContext(ctx, &account, query, id)
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.LoanAccount) error {
	query := `
		UPDATE loan_accounts
		SET paid_installments = $2, outstanding_balance = $3, status = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.PaidInstallments,
		account.OutstandingBalance,
		account.Status,
		account.UpdatedAt,
	)

	return err
}

func (r *accountRepository) ListByStatus(ctx context.Context, status string) ([]*domain.LoanAccount, error) {
	query := `
		SELECT id, application_id, principal, interest_rate, term_months, installment,
		       start_date, paid_installments, outstanding_balance, status, created_at, updated_at
		FROM loan_accounts
		WHERE status = $1
		ORDER BY created_at
	`

	var accounts []*domain.LoanAccount
	err := r.db.SelectContext(ctx, &accounts, query, status)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}
