package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lendfast/loan-engine/internal/domain"
	"github.com/lendfast/loan-engine/internal/repository"
	customError "github.com/lendfast/loan-engine/pkg/errors"
)

const arrearsFlagTTL = 48 * time.Hour

// ArrearsScanner walks active accounts and flags borrowers whose paid
// installment count lags the months elapsed since the loan started. Flags are
// written to Redis for the lender dashboard; the scan itself never mutates
// accounts.
type ArrearsScanner struct {
	accountRepo repository.AccountRepository
	redis       *redis.Client
	threshold   int
	logger      *logrus.Logger
}

func NewArrearsScanner(accountRepo repository.AccountRepository, redisClient *redis.Client, threshold int, logger *logrus.Logger) *ArrearsScanner {
	return &ArrearsScanner{
		accountRepo: accountRepo,
		redis:       redisClient,
		threshold:   threshold,
		logger:      logger,
	}
}

// ScanBehindSchedule flags accounts at least `threshold` installments behind
// schedule as of `now`. Returns the number of accounts flagged.
func (s *ArrearsScanner) ScanBehindSchedule(ctx context.Context, now time.Time) (int, error) {
	accounts, err := s.accountRepo.ListByStatus(ctx, domain.AccountStatusActive)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	flagged := 0
	for _, account := range accounts {
		expected := monthsElapsed(account.StartDate, now)
		if expected > account.TermMonths {
			expected = account.TermMonths
		}

		missed := expected - account.PaidInstallments
		if missed < s.threshold {
			continue
		}

		flagged++
		s.logger.WithFields(logrus.Fields{
			"account_id":        account.ID,
			"missed":            missed,
			"paid_installments": account.PaidInstallments,
		}).Warn("account behind schedule")

		if s.redis != nil {
			key := fmt.Sprintf("arrears:%s", account.ID)
			if err := s.redis.Set(ctx, key, missed, arrearsFlagTTL).Err(); err != nil {
				s.logger.WithError(err).Warn("failed to write arrears flag")
			}
		}
	}

	return flagged, nil
}

// ScanUpcoming logs accounts with an installment falling due within the next
// week as of `now`. Returns the number of accounts with an upcoming due date.
func (s *ArrearsScanner) ScanUpcoming(ctx context.Context, now time.Time) (int, error) {
	accounts, err := s.accountRepo.ListByStatus(ctx, domain.AccountStatusActive)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	horizon := now.AddDate(0, 0, 7)
	upcoming := 0
	for _, account := range accounts {
		if account.PaidInstallments >= account.TermMonths {
			continue
		}

		nextDue := account.StartDate.AddDate(0, account.PaidInstallments+1, 0)
		if nextDue.Before(now) || nextDue.After(horizon) {
			continue
		}

		upcoming++
		s.logger.WithFields(logrus.Fields{
			"account_id": account.ID,
			"due_date":   nextDue.Format("2006-01-02"),
		}).Info("installment due soon")
	}

	return upcoming, nil
}

// monthsElapsed counts full calendar months between start and now.
func monthsElapsed(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}

	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if now.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
