package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lendfast/loan-engine/internal/domain"
	"github.com/lendfast/loan-engine/internal/service"
	"github.com/lendfast/loan-engine/pkg/response"
)

type LedgerHandler struct {
	service   *service.LedgerService
	validator *validator.Validate
}

func NewLedgerHandler(svc *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		service:   svc,
		validator: newValidator(),
	}
}

// GetAccount handles GET /api/v1/accounts/{id}
func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, account)
}

// RecordPayment handles POST /api/v1/accounts/{id}/payments
func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	payment, account, err := h.service.RecordPayment(r.Context(), accountID, request.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, &domain.RecordPaymentResponse{
		Payment: payment,
		Account: account,
	})
}

// EarlyPayoff handles POST /api/v1/accounts/{id}/payoff
func (h *LedgerHandler) EarlyPayoff(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	payment, account, err := h.service.EarlyPayoff(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, &domain.RecordPaymentResponse{
		Payment: payment,
		Account: account,
	})
}

// ListPayments handles GET /api/v1/accounts/{id}/payments
func (h *LedgerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, payments)
}

func (h *LedgerHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "Invalid account id", err)
		return uuid.Nil, false
	}
	return id, true
}
