package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/lendfast/loan-engine/internal/domain"
	"github.com/lendfast/loan-engine/internal/repository"
	customError "github.com/lendfast/loan-engine/pkg/errors"
	"github.com/lendfast/loan-engine/pkg/response"
)

// ProductHandler exposes the admin-configured loan product catalog.
type ProductHandler struct {
	products  repository.ProductRepository
	validator *validator.Validate
}

func NewProductHandler(products repository.ProductRepository) *ProductHandler {
	return &ProductHandler{
		products:  products,
		validator: newValidator(),
	}
}

type upsertProductRequest struct {
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"decimal_gte_zero"`
	MinTermMonths     int             `json:"min_term_months" validate:"gt=0"`
	MaxTermMonths     int             `json:"max_term_months" validate:"gtefield=MinTermMonths"`
	Active            bool            `json:"active"`
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list products", err)
		return
	}

	response.Success(w, products)
}

// Get handles GET /api/v1/products/{name}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	product, err := h.products.GetByName(r.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		writeServiceError(w, customError.WrapProductNotFound(name))
		return
	}
	if err != nil {
		response.InternalServerError(w, "Failed to load product", err)
		return
	}

	response.Success(w, product)
}

// Upsert handles PUT /api/v1/products/{name}
func (h *ProductHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var request upsertProductRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	now := time.Now()
	product := &domain.LoanProduct{
		Name:              name,
		AnnualRatePercent: request.AnnualRatePercent,
		MinTermMonths:     request.MinTermMonths,
		MaxTermMonths:     request.MaxTermMonths,
		Active:            request.Active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.products.Upsert(r.Context(), product); err != nil {
		response.InternalServerError(w, "Failed to save product", err)
		return
	}

	response.Success(w, product)
}
