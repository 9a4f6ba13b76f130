package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendfast/loan-engine/internal/domain"
	"github.com/lendfast/loan-engine/pkg/amortization"
	customError "github.com/lendfast/loan-engine/pkg/errors"
	"github.com/lendfast/loan-engine/tests/mocks"
)

func activeAccount(principal decimal.Decimal, ratePercent int64, termMonths int) *domain.LoanAccount {
	installment, _ := amortization.ComputeInstallment(principal, decimal.NewFromInt(ratePercent), termMonths)
	return &domain.LoanAccount{
		ID:                 uuid.New(),
		ApplicationID:      uuid.New(),
		Principal:          principal,
		InterestRate:       decimal.NewFromInt(ratePercent),
		TermMonths:         termMonths,
		Installment:        installment,
		StartDate:          time.Now(),
		PaidInstallments:   0,
		OutstandingBalance: principal,
		Status:             domain.AccountStatusActive,
	}
}

func TestRecordPayment(t *testing.T) {
	t.Run("Success - regular installment splits and decrements balance", func(t *testing.T) {
		account := activeAccount(decimal.NewFromInt(10000), 12, 12)

		accountRepo := &mocks.MockAccountRepository{}
		paymentRepo := &mocks.MockPaymentRepository{}
		accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil)
		paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.AccountID == account.ID &&
				p.InterestPortion.Equal(decimal.NewFromInt(100)) &&
				p.PrincipalPortion.Equal(decimal.NewFromFloat(788.49))
		})).Return(nil)
		accountRepo.On("Update", mock.Anything, account).Return(nil)

		svc := NewLedgerService(accountRepo, paymentRepo, testLogger())

		payment, updated, err := svc.RecordPayment(context.Background(), account.ID, decimal.NewFromFloat(888.49))

		require.NoError(t, err)
		assert.True(t, payment.Amount.Equal(decimal.NewFromFloat(888.49)))
		assert.Equal(t, "9211.51", updated.OutstandingBalance.String())
		assert.Equal(t, 1, updated.PaidInstallments)
		assert.Equal(t, domain.AccountStatusActive, updated.Status)
		assert.WithinDuration(t, time.Now(), updated.UpdatedAt, time.Second)
		accountRepo.AssertExpectations(t)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("Failure - non-positive amount", func(t *testing.T) {
		accountRepo := &mocks.MockAccountRepository{}
		paymentRepo := &mocks.MockPaymentRepository{}

		svc := NewLedgerService(accountRepo, paymentRepo, testLogger())

		_, _, err := svc.RecordPayment(context.Background(), uuid.New(), decimal.Zero)
		assert.ErrorIs(t, err, customError.ErrInvalidAmount)

		_, _, err = svc.RecordPayment(context.Background(), uuid.New(), decimal.NewFromInt(-50))
		assert.ErrorIs(t, err, customError.ErrInvalidAmount)

		accountRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Failure - closed account", func(t *testing.T) {
		account := activeAccount(decimal.NewFromInt(10000), 12, 12)
		account.Status = domain.AccountStatusClosed
		account.OutstandingBalance = decimal.Zero

		accountRepo := &mocks.MockAccountRepository{}
		accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil)

		svc := NewLedgerService(accountRepo, &mocks.MockPaymentRepository{}, testLogger())

		_, _, err := svc.RecordPayment(context.Background(), account.ID, decimal.NewFromInt(100))
		assert.ErrorIs(t, err, customError.ErrAccountClosed)
	})

	t.Run("Failure - unknown account", func(t *testing.T) {
		accountID := uuid.New()

		accountRepo := &mocks.MockAccountRepository{}
		accountRepo.On("GetByID", mock.Anything, accountID).Return(nil, sql.ErrNoRows)

		svc := NewLedgerService(accountRepo, &mocks.MockPaymentRepository{}, testLogger())

		_, _, err := svc.RecordPayment(context.Background(), accountID, decimal.NewFromInt(100))
		assert.ErrorIs(t, err, customError.ErrAccountNotFound)
	})

	t.Run("Success - overpayment closes at exactly zero, excess discarded", func(t *testing.T) {
		account := activeAccount(decimal.NewFromInt(10000), 12, 12)
		account.OutstandingBalance = decimal.NewFromInt(500)

		accountRepo := &mocks.MockAccountRepository{}
		paymentRepo := &mocks.MockPaymentRepository{}
		accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil)
		paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.PrincipalPortion.Equal(decimal.NewFromInt(500))
		})).Return(nil)
		accountRepo.On("Update", mock.Anything, account).Return(nil)

		svc := NewLedgerService(accountRepo, paymentRepo, testLogger())

		_, updated, err := svc.RecordPayment(context.Background(), account.ID, decimal.NewFromInt(10000))

		require.NoError(t, err)
		assert.True(t, updated.OutstandingBalance.IsZero())
		assert.Equal(t, domain.AccountStatusClosed, updated.Status)
	})
}

func TestEarlyPayoff(t *testing.T) {
	t.Run("Success - closes in one step with no penalty", func(t *testing.T) {
		account := activeAccount(decimal.NewFromInt(10000), 12, 12)
		account.OutstandingBalance = decimal.NewFromFloat(4321.55)
		account.PaidInstallments = 7

		accountRepo := &mocks.MockAccountRepository{}
		paymentRepo := &mocks.MockPaymentRepository{}
		accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil)
		paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.PrincipalPortion.Equal(decimal.NewFromFloat(4321.55)) &&
				p.InterestPortion.IsZero()
		})).Return(nil)
		accountRepo.On("Update", mock.Anything, account).Return(nil)

		svc := NewLedgerService(accountRepo, paymentRepo, testLogger())

		payment, updated, err := svc.EarlyPayoff(context.Background(), account.ID)

		require.NoError(t, err)
		assert.True(t, payment.Amount.Equal(decimal.NewFromFloat(4321.55)))
		assert.True(t, updated.OutstandingBalance.IsZero())
		assert.Equal(t, domain.AccountStatusClosed, updated.Status)
		assert.Equal(t, 8, updated.PaidInstallments)
	})

	t.Run("Failure - already closed", func(t *testing.T) {
		account := activeAccount(decimal.NewFromInt(10000), 12, 12)
		account.Status = domain.AccountStatusClosed
		account.OutstandingBalance = decimal.Zero

		accountRepo := &mocks.MockAccountRepository{}
		accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil)

		svc := NewLedgerService(accountRepo, &mocks.MockPaymentRepository{}, testLogger())

		_, _, err := svc.EarlyPayoff(context.Background(), account.ID)
		assert.ErrorIs(t, err, customError.ErrAccountClosed)
	})
}

// Payments swallowed entirely by interest leave the balance untouched and must
// not push the paid-installment count past the term.
func TestRecordPayment_InterestOnlyPaymentsDoNotInflateCount(t *testing.T) {
	account := activeAccount(decimal.NewFromInt(10000), 12, 2)

	accountRepo := &mocks.MockAccountRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil)
	paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.InterestPortion.Equal(decimal.NewFromInt(1)) && p.PrincipalPortion.IsZero()
	})).Return(nil)
	accountRepo.On("Update", mock.Anything, account).Return(nil)

	svc := NewLedgerService(accountRepo, paymentRepo, testLogger())

	for i := 0; i < 5; i++ {
		_, updated, err := svc.RecordPayment(context.Background(), account.ID, decimal.NewFromInt(1))
		require.NoError(t, err, "payment %d", i+1)
		assert.True(t, updated.OutstandingBalance.Equal(decimal.NewFromInt(10000)))
	}

	assert.LessOrEqual(t, account.PaidInstallments, account.TermMonths)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
}

// Twelve scheduled installments must amortize the loan to zero and close it,
// with the balance strictly decreasing along the way.
func TestRecordPayment_FullSchedule(t *testing.T) {
	account := activeAccount(decimal.NewFromInt(10000), 12, 12)
	installment := decimal.NewFromFloat(888.49)

	accountRepo := &mocks.MockAccountRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	// The same account pointer is returned each time, so mutations persist
	// across iterations the way a real store would.
	accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil)
	paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	accountRepo.On("Update", mock.Anything, account).Return(nil)

	svc := NewLedgerService(accountRepo, paymentRepo, testLogger())

	previousBalance := account.OutstandingBalance
	for i := 0; i < 12; i++ {
		_, updated, err := svc.RecordPayment(context.Background(), account.ID, installment)
		require.NoError(t, err, "installment %d", i+1)

		assert.True(t, updated.OutstandingBalance.LessThan(previousBalance), "balance must strictly decrease")
		assert.False(t, updated.OutstandingBalance.IsNegative())
		previousBalance = updated.OutstandingBalance
	}

	assert.True(t, account.OutstandingBalance.IsZero())
	assert.Equal(t, domain.AccountStatusClosed, account.Status)
	assert.Equal(t, 12, account.PaidInstallments)

	// A thirteenth payment must be refused.
	_, _, err := svc.RecordPayment(context.Background(), account.ID, installment)
	assert.ErrorIs(t, err, customError.ErrAccountClosed)
}
