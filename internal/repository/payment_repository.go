package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendfast/loan-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, account_id, amount, interest_portion, principal_portion, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.AccountID,
		payment.Amount,
		payment.InterestPortion,
		payment.PrincipalPortion,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, account_id, amount, interest_portion, principal_portion, created_at
		FROM payments
		WHERE account_id = $1
		ORDER BY created_at
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, accountID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
