package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/cdandre/dealmemo-api/internal/api/shared"
	"github.com/cdandre/dealmemo-api/internal/platform/logger"
	"github.com/cdandre/dealmemo-api/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// DealHandler handles deal-related HTTP requests.
type DealHandler struct {
	dealService service.DealService
	validator   *validator.Validate
}

// NewDealHandler creates a new DealHandler.
func NewDealHandler(dealService service.DealService) *DealHandler {
	return &DealHandler{
		dealService: dealService,
		validator:   validator.New(),
	}
}

// CreateDeal handles POST /api/deals requests.
func (h *DealHandler) CreateDeal(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req CreateDealRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	deal, err := h.dealService.CreateDeal(r.Context(), req.Name, req.Company, req.Stage, req.Description)
	if err != nil {
		log.Error("failed to create deal", "error", err)
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, dealToResponse(deal))
}

// GetDeal handles GET /api/deals/{dealID} requests.
func (h *DealHandler) GetDeal(w http.ResponseWriter, r *http.Request) {
	dealID, err := getPathUUID(r, "dealID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deal, err := h.dealService.GetDeal(r.Context(), dealID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dealToResponse(deal))
}

// ListDeals handles GET /api/deals requests. Supports limit and offset
// query parameters for pagination.
func (h *DealHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid offset parameter")
			return
		}
		offset = parsed
	}

	deals, err := h.dealService.ListDeals(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	response := DealListResponse{Deals: make([]DealResponse, 0, len(deals))}
	for _, deal := range deals {
		response.Deals = append(response.Deals, dealToResponse(deal))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
