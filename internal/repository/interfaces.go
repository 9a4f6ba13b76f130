package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/lendfast/loan-engine/internal/domain"
)

// ApplicationRepository defines the interface for loan application data operations
type ApplicationRepository interface {
	// Create creates a new application
	Create(ctx context.Context, application *domain.LoanApplication) error

	// GetByID retrieves an application by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error)

	// Update updates an application's mutable fields (status, reason, approver)
	Update(ctx context.Context, application *domain.LoanApplication) error

	// ListByStatus retrieves applications in a given status
	ListByStatus(ctx context.Context, status string) ([]*domain.LoanApplication, error)
}

// AccountRepository defines the interface for loan account data operations
type AccountRepository interface {
	// Create creates a new loan account
	Create(ctx context.Context, account *domain.LoanAccount) error

	// GetByID retrieves an account by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanAccount, error)

	// Update updates an account's balance, paid count and status
	Update(ctx context.Context, account *domain.LoanAccount) error

	// ListByStatus retrieves accounts in a given status
	ListByStatus(ctx context.Context, status string) ([]*domain.LoanAccount, error)
}

// PaymentRepository defines the interface for payment data operations.
// Payments are append-only; there is no update or delete.
type PaymentRepository interface {
	// Create records a new payment
	Create(ctx context.Context, payment *domain.Payment) error

	// ListByAccountID retrieves all payments for an account, oldest first
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Payment, error)
}

// ProductRepository defines the interface for the loan product catalog
type ProductRepository interface {
	// GetByName retrieves an active product by name
	GetByName(ctx context.Context, name string) (*domain.LoanProduct, error)

	// List retrieves all active products
	List(ctx context.Context) ([]*domain.LoanProduct, error)

	// Upsert creates or replaces a product definition
	Upsert(ctx context.Context, product *domain.LoanProduct) error
}
