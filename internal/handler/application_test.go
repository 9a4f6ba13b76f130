package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendfast/loan-engine/internal/domain"
	"github.com/lendfast/loan-engine/internal/service"
	"github.com/lendfast/loan-engine/tests/mocks"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRouter(appRepo *mocks.MockApplicationRepository, accountRepo *mocks.MockAccountRepository, productRepo *mocks.MockProductRepository) *mux.Router {
	applicationService := service.NewApplicationService(appRepo, accountRepo, productRepo, testLogger())
	evaluator := service.NewEligibilityEvaluator(decimal.NewFromInt(3000), decimal.NewFromFloat(0.5))
	h := NewApplicationHandler(applicationService, evaluator)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/applications", h.Submit).Methods("POST")
	router.HandleFunc("/api/v1/applications/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/applications/{id}/approve", h.Approve).Methods("POST")
	router.HandleFunc("/api/v1/applications/{id}/reject", h.Reject).Methods("POST")
	router.HandleFunc("/api/v1/eligibility", h.Eligibility).Methods("POST")
	return router
}

func TestSubmitEndpoint(t *testing.T) {
	t.Run("201 on valid submission", func(t *testing.T) {
		appRepo := &mocks.MockApplicationRepository{}
		productRepo := &mocks.MockProductRepository{}
		productRepo.On("GetByName", mock.Anything, "personal").Return(&domain.LoanProduct{
			Name:              "personal",
			AnnualRatePercent: decimal.NewFromInt(12),
			MinTermMonths:     6,
			MaxTermMonths:     60,
			Active:            true,
		}, nil)
		appRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		router := newTestRouter(appRepo, &mocks.MockAccountRepository{}, productRepo)

		body := map[string]interface{}{
			"borrower_id":         "borrower-1",
			"product_name":        "personal",
			"principal":           "10000",
			"term_months":         12,
			"purpose":             "personal",
			"monthly_income":      "5000",
			"monthly_obligations": "500",
		}
		payload, _ := json.Marshal(body)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", bytes.NewReader(payload))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusCreated, recorder.Code)

		var envelope struct {
			Success bool                   `json:"success"`
			Data    domain.LoanApplication `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.True(t, envelope.Success)
		assert.Equal(t, domain.ApplicationStatusPending, envelope.Data.Status)
		assert.Equal(t, "888.49", envelope.Data.Installment.String())
	})

	t.Run("400 with field details on invalid submission", func(t *testing.T) {
		router := newTestRouter(&mocks.MockApplicationRepository{}, &mocks.MockAccountRepository{}, &mocks.MockProductRepository{})

		// Passes DTO validation shape-wise but fails business validation.
		body := map[string]interface{}{
			"borrower_id":         "borrower-1",
			"product_name":        "personal",
			"principal":           "10000",
			"term_months":         12,
			"purpose":             "",
			"monthly_income":      "5000",
			"monthly_obligations": "0",
		}
		payload, _ := json.Marshal(body)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", bytes.NewReader(payload))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("400 on malformed body", func(t *testing.T) {
		router := newTestRouter(&mocks.MockApplicationRepository{}, &mocks.MockAccountRepository{}, &mocks.MockProductRepository{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", bytes.NewReader([]byte("{not json")))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestApproveEndpoint(t *testing.T) {
	t.Run("409 when application already terminal", func(t *testing.T) {
		applicationID := uuid.New()
		appRepo := &mocks.MockApplicationRepository{}
		appRepo.On("GetByID", mock.Anything, applicationID).Return(&domain.LoanApplication{
			ID:     applicationID,
			Status: domain.ApplicationStatusApproved,
		}, nil)

		router := newTestRouter(appRepo, &mocks.MockAccountRepository{}, &mocks.MockProductRepository{})

		payload, _ := json.Marshal(map[string]string{"approver_id": "lender-1"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+applicationID.String()+"/approve", bytes.NewReader(payload))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("400 on malformed application id", func(t *testing.T) {
		router := newTestRouter(&mocks.MockApplicationRepository{}, &mocks.MockAccountRepository{}, &mocks.MockProductRepository{})

		payload, _ := json.Marshal(map[string]string{"approver_id": "lender-1"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/not-a-uuid/approve", bytes.NewReader(payload))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestRejectEndpoint(t *testing.T) {
	t.Run("200 with no body, reason defaults", func(t *testing.T) {
		applicationID := uuid.New()
		appRepo := &mocks.MockApplicationRepository{}
		appRepo.On("GetByID", mock.Anything, applicationID).Return(&domain.LoanApplication{
			ID:     applicationID,
			Status: domain.ApplicationStatusPending,
		}, nil)
		appRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		router := newTestRouter(appRepo, &mocks.MockAccountRepository{}, &mocks.MockProductRepository{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+applicationID.String()+"/reject", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data domain.LoanApplication `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, domain.ApplicationStatusRejected, envelope.Data.Status)
		assert.Equal(t, domain.DefaultRejectionReason, envelope.Data.RejectionReason)
	})

	t.Run("400 on malformed body, application untouched", func(t *testing.T) {
		applicationID := uuid.New()
		appRepo := &mocks.MockApplicationRepository{}

		router := newTestRouter(appRepo, &mocks.MockAccountRepository{}, &mocks.MockProductRepository{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+applicationID.String()+"/reject", bytes.NewReader([]byte("{\"reason\":")))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestGetApplicationEndpoint_NotFound(t *testing.T) {
	applicationID := uuid.New()
	appRepo := &mocks.MockApplicationRepository{}
	appRepo.On("GetByID", mock.Anything, applicationID).Return(nil, sql.ErrNoRows)

	router := newTestRouter(appRepo, &mocks.MockAccountRepository{}, &mocks.MockProductRepository{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/"+applicationID.String(), nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestEligibilityEndpoint(t *testing.T) {
	router := newTestRouter(&mocks.MockApplicationRepository{}, &mocks.MockAccountRepository{}, &mocks.MockProductRepository{})

	payload, _ := json.Marshal(map[string]string{
		"monthly_income":       "3000",
		"monthly_obligations":  "0",
		"proposed_installment": "1600",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/eligibility", bytes.NewReader(payload))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data domain.EligibilityResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Eligible)
	assert.Equal(t, "1500", envelope.Data.MaxAffordableInstallment.String())
}
