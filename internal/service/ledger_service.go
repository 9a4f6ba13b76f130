package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lendfast/loan-engine/internal/domain"
	"github.com/lendfast/loan-engine/internal/repository"
	"github.com/lendfast/loan-engine/pkg/amortization"
	customError "github.com/lendfast/loan-engine/pkg/errors"
)

// LedgerService records payments against loan accounts. Recording a payment is
// the only way an outstanding balance decreases; payments are append-only.
type LedgerService struct {
	accountRepo repository.AccountRepository
	paymentRepo repository.PaymentRepository
	locks       *keyedMutex
	logger      *logrus.Logger
}

func NewLedgerService(
	accountRepo repository.AccountRepository,
	paymentRepo repository.PaymentRepository,
	logger *logrus.Logger,
) *LedgerService {
	return &LedgerService{
		accountRepo: accountRepo,
		paymentRepo: paymentRepo,
		locks:       newKeyedMutex(),
		logger:      logger,
	}
}

// RecordPayment splits the amount into interest and principal against the
// current balance, decrements the balance and bumps the installment count.
// A payment covering the whole balance closes the account at exactly zero;
// any excess is discarded, not credited.
func (s *LedgerService) RecordPayment(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Payment, *domain.LoanAccount, error) {
	if !amount.IsPositive() {
		return nil, nil, customError.WrapInvalidAmount(amount.String())
	}

	s.locks.Lock(accountID.String())
	defer s.locks.Unlock(accountID.String())

	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	return s.recordLocked(ctx, account, amount)
}

// EarlyPayoff settles the remaining balance in a single payment. No
// prepayment penalty applies.
func (s *LedgerService) EarlyPayoff(ctx context.Context, accountID uuid.UUID) (*domain.Payment, *domain.LoanAccount, error) {
	s.locks.Lock(accountID.String())
	defer s.locks.Unlock(accountID.String())

	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if account.IsClosed() {
		return nil, nil, customError.WrapAccountClosed(accountID.String())
	}

	return s.recordLocked(ctx, account, account.OutstandingBalance)
}

// GetAccount retrieves a single account snapshot.
func (s *LedgerService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.LoanAccount, error) {
	return s.getAccount(ctx, accountID)
}

// ListPayments returns the append-only payment history for an account.
func (s *LedgerService) ListPayments(ctx context.Context, accountID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.getAccount(ctx, accountID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

func (s *LedgerService) recordLocked(ctx context.Context, account *domain.LoanAccount, amount decimal.Decimal) (*domain.Payment, *domain.LoanAccount, error) {
	if account.IsClosed() {
		return nil, nil, customError.WrapAccountClosed(account.ID.String())
	}

	var split amortization.Split
	payoff := amount.GreaterThanOrEqual(account.OutstandingBalance)
	if payoff {
		// The full remaining principal is retired so the recorded principal
		// portions always sum to the original principal. Whatever the amount
		// covers beyond that is interest, capped at one month's worth; the
		// rest is discarded.
		interest := amount.Sub(account.OutstandingBalance)
		monthlyInterest := account.OutstandingBalance.Mul(amortization.MonthlyRate(account.InterestRate))
		if interest.GreaterThan(monthlyInterest) {
			interest = monthlyInterest
		}
		split = amortization.Split{
			InterestPortion:  interest,
			PrincipalPortion: account.OutstandingBalance,
		}
	} else {
		var err error
		split, err = amortization.SplitPayment(account.OutstandingBalance, account.InterestRate, amount)
		if err != nil {
			return nil, nil, err
		}
	}

	payment := &domain.Payment{
		ID:               uuid.New(),
		AccountID:        account.ID,
		Amount:           amount,
		InterestPortion:  split.InterestPortion,
		PrincipalPortion: split.PrincipalPortion,
		CreatedAt:        time.Now(),
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	account.OutstandingBalance = account.OutstandingBalance.Sub(split.PrincipalPortion)
	// The count never exceeds the term: partial payments beyond the schedule
	// (e.g. amounts swallowed entirely by interest) do not inflate it.
	if account.PaidInstallments < account.TermMonths {
		account.PaidInstallments++
	}
	if payoff || !account.OutstandingBalance.IsPositive() {
		account.OutstandingBalance = decimal.Zero
		account.Status = domain.AccountStatusClosed
	}
	account.UpdatedAt = time.Now()

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"account_id":  account.ID,
		"payment_id":  payment.ID,
		"amount":      amount,
		"principal":   split.PrincipalPortion,
		"interest":    split.InterestPortion,
		"outstanding": account.OutstandingBalance,
		"status":      account.Status,
	}).Info("payment recorded")

	return payment, account, nil
}

func (s *LedgerService) getAccount(ctx context.Context, accountID uuid.UUID) (*domain.LoanAccount, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapAccountNotFound(accountID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return account, nil
}
