package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lendfast/loan-engine/internal/domain"
	"github.com/lendfast/loan-engine/internal/service"
	"github.com/lendfast/loan-engine/pkg/response"
)

type ApplicationHandler struct {
	service   *service.ApplicationService
	evaluator *service.EligibilityEvaluator
	validator *validator.Validate
}

func NewApplicationHandler(svc *service.ApplicationService, evaluator *service.EligibilityEvaluator) *ApplicationHandler {
	return &ApplicationHandler{
		service:   svc,
		evaluator: evaluator,
		validator: newValidator(),
	}
}

// Submit handles POST /api/v1/applications
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var request domain.SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	application, err := h.service.Submit(r.Context(), &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, application)
}

// Get handles GET /api/v1/applications/{id}
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	application, err := h.service.GetApplication(r.Context(), applicationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, application)
}

// MarkInReview handles POST /api/v1/applications/{id}/review
func (h *ApplicationHandler) MarkInReview(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	application, err := h.service.MarkInReview(r.Context(), applicationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, application)
}

// Approve handles POST /api/v1/applications/{id}/approve
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var request domain.ApproveApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	application, account, err := h.service.Approve(r.Context(), applicationID, request.ApproverID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, &domain.ApproveApplicationResponse{
		Application: application,
		Account:     account,
	})
}

// Reject handles POST /api/v1/applications/{id}/reject
func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	// The reason is optional; an absent body means no reason given, but a
	// body that fails to parse is rejected rather than ignored.
	var request domain.RejectApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	application, err := h.service.Reject(r.Context(), applicationID, request.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, application)
}

// Eligibility handles POST /api/v1/eligibility
func (h *ApplicationHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	var request domain.EligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	result := h.evaluator.Evaluate(request.MonthlyIncome, request.MonthlyObligations, request.ProposedInstallment)

	response.Success(w, result)
}

func (h *ApplicationHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "Invalid application id", err)
		return uuid.Nil, false
	}
	return id, true
}
