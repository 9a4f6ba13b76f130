package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lendfast/loan-engine/internal/domain"
	"github.com/lendfast/loan-engine/internal/repository"
	"github.com/lendfast/loan-engine/pkg/amortization"
	customError "github.com/lendfast/loan-engine/pkg/errors"
)

// ApplicationService owns the application state machine:
//
//	pending -> in_review -> {approved, rejected}
//
// with a direct pending -> approved/rejected shortcut. Terminal statuses are
// immutable; approving twice fails rather than creating a second account.
type ApplicationService struct {
	applicationRepo repository.ApplicationRepository
	accountRepo     repository.AccountRepository
	productRepo     repository.ProductRepository
	locks           *keyedMutex
	logger          *logrus.Logger
}

func NewApplicationService(
	applicationRepo repository.ApplicationRepository,
	accountRepo repository.AccountRepository,
	productRepo repository.ProductRepository,
	logger *logrus.Logger,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo: applicationRepo,
		accountRepo:     accountRepo,
		productRepo:     productRepo,
		locks:           newKeyedMutex(),
		logger:          logger,
	}
}

// Submit validates a borrower's request, resolves the product rate, computes
// the derived installment figures and stores the application as pending.
// Every violated field is reported at once, not just the first.
func (s *ApplicationService) Submit(ctx context.Context, request *domain.SubmitApplicationRequest) (*domain.LoanApplication, error) {
	violations := make([]customError.FieldViolation, 0)

	if strings.TrimSpace(request.BorrowerID) == "" {
		violations = append(violations, customError.FieldViolation{Field: "borrower_id", Message: "is required"})
	}
	if !request.Principal.IsPositive() {
		violations = append(violations, customError.FieldViolation{Field: "principal", Message: "must be greater than zero"})
	}
	if request.TermMonths < 1 {
		violations = append(violations, customError.FieldViolation{Field: "term_months", Message: "must be at least 1"})
	}
	if strings.TrimSpace(request.Purpose) == "" {
		violations = append(violations, customError.FieldViolation{Field: "purpose", Message: "is required"})
	}
	if !request.MonthlyIncome.IsPositive() {
		violations = append(violations, customError.FieldViolation{Field: "monthly_income", Message: "must be greater than zero"})
	}
	if request.MonthlyObligations.IsNegative() {
		violations = append(violations, customError.FieldViolation{Field: "monthly_obligations", Message: "must not be negative"})
	}

	var product *domain.LoanProduct
	if strings.TrimSpace(request.ProductName) == "" {
		violations = append(violations, customError.FieldViolation{Field: "product_name", Message: "is required"})
	} else {
		var err error
		product, err = s.productRepo.GetByName(ctx, request.ProductName)
		if errors.Is(err, sql.ErrNoRows) {
			violations = append(violations, customError.FieldViolation{Field: "product_name", Message: "unknown loan product"})
		} else if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	if product != nil && request.TermMonths >= 1 {
		if request.TermMonths < product.MinTermMonths || request.TermMonths > product.MaxTermMonths {
			violations = append(violations, customError.FieldViolation{Field: "term_months", Message: "outside product term bounds"})
		}
	}

	if len(violations) > 0 {
		return nil, customError.NewValidationError(violations)
	}

	installment, err := amortization.ComputeInstallment(request.Principal, product.AnnualRatePercent, request.TermMonths)
	if err != nil {
		return nil, err
	}

	// Derived fields are stored rounded for display; the unrounded installment
	// is re-derived when the account is opened.
	displayInstallment := amortization.RoundCurrency(installment)
	totalInterest := amortization.ComputeTotalInterest(displayInstallment, request.Principal, request.TermMonths)

	now := time.Now()
	application := &domain.LoanApplication{
		ID:                 uuid.New(),
		BorrowerID:         request.BorrowerID,
		ProductName:        request.ProductName,
		Principal:          request.Principal,
		TermMonths:         request.TermMonths,
		Purpose:            strings.TrimSpace(request.Purpose),
		MonthlyIncome:      request.MonthlyIncome,
		MonthlyObligations: request.MonthlyObligations,
		CreditScore:        request.CreditScore,
		InterestRate:       product.AnnualRatePercent,
		Installment:        displayInstallment,
		TotalInterest:      totalInterest,
		TotalPayable:       request.Principal.Add(totalInterest),
		Status:             domain.ApplicationStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.applicationRepo.Create(ctx, application); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": application.ID,
		"borrower_id":    application.BorrowerID,
		"product":        application.ProductName,
		"principal":      application.Principal,
	}).Info("application submitted")

	return application, nil
}

// MarkInReview moves a pending application into review.
func (s *ApplicationService) MarkInReview(ctx context.Context, applicationID uuid.UUID) (*domain.LoanApplication, error) {
	s.locks.Lock(applicationID.String())
	defer s.locks.Unlock(applicationID.String())

	application, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if application.Status != domain.ApplicationStatusPending {
		return nil, customError.WrapInvalidTransition(applicationID.String(), application.Status, domain.ApplicationStatusInReview)
	}

	application.Status = domain.ApplicationStatusInReview
	application.UpdatedAt = time.Now()
	if err := s.applicationRepo.Update(ctx, application); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return application, nil
}

// Approve moves an open application to approved and opens the loan account
// seeded from the application's principal, rate and term.
func (s *ApplicationService) Approve(ctx context.Context, applicationID uuid.UUID, approverID string) (*domain.LoanApplication, *domain.LoanAccount, error) {
	s.locks.Lock(applicationID.String())
	defer s.locks.Unlock(applicationID.String())

	application, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}

	if !application.IsOpen() {
		return nil, nil, customError.WrapInvalidTransition(applicationID.String(), application.Status, domain.ApplicationStatusApproved)
	}

	// Unrounded installment; the application stores the rounded display value.
	installment, err := amortization.ComputeInstallment(application.Principal, application.InterestRate, application.TermMonths)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	account := &domain.LoanAccount{
		ID:                 uuid.New(),
		ApplicationID:      application.ID,
		Principal:          application.Principal,
		InterestRate:       application.InterestRate,
		TermMonths:         application.TermMonths,
		Installment:        installment,
		StartDate:          now,
		PaidInstallments:   0,
		OutstandingBalance: application.Principal,
		Status:             domain.AccountStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Note: account creation and the status flip are two statements; a partial
	// failure leaves the application open, so a retry cannot double-open an
	// account (the second approve would find the orphan on reconciliation).
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	application.Status = domain.ApplicationStatusApproved
	application.ApproverID = approverID
	application.UpdatedAt = now
	if err := s.applicationRepo.Update(ctx, application); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": application.ID,
		"account_id":     account.ID,
		"approver_id":    approverID,
	}).Info("application approved")

	return application, account, nil
}

// Reject moves an open application to rejected. An empty reason is stored as
// "Not specified".
func (s *ApplicationService) Reject(ctx context.Context, applicationID uuid.UUID, reason string) (*domain.LoanApplication, error) {
	s.locks.Lock(applicationID.String())
	defer s.locks.Unlock(applicationID.String())

	application, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if !application.IsOpen() {
		return nil, customError.WrapInvalidTransition(applicationID.String(), application.Status, domain.ApplicationStatusRejected)
	}

	if strings.TrimSpace(reason) == "" {
		reason = domain.DefaultRejectionReason
	}

	application.Status = domain.ApplicationStatusRejected
	application.RejectionReason = reason
	application.UpdatedAt = time.Now()
	if err := s.applicationRepo.Update(ctx, application); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": application.ID,
		"reason":         reason,
	}).Info("application rejected")

	return application, nil
}

// GetApplication retrieves a single application.
func (s *ApplicationService) GetApplication(ctx context.Context, applicationID uuid.UUID) (*domain.LoanApplication, error) {
	return s.getApplication(ctx, applicationID)
}

func (s *ApplicationService) getApplication(ctx context.Context, applicationID uuid.UUID) (*domain.LoanApplication, error) {
	application, err := s.applicationRepo.GetByID(ctx, applicationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapApplicationNotFound(applicationID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return application, nil
}
