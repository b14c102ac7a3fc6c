// Package handler is the thin HTTP layer over the insurance core. It parses
// and validates inputs, delegates to the service, and translates coded
// errors into JSON responses; business logic stays out of this package.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/fleet/models"
	"motorcover/internal/insurance"
	"motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/httputil"
	"motorcover/pkg/requestcontext"
)

// Service defines the core operations the handler exposes.
type Service interface {
	ListCars(ctx context.Context) ([]models.CarSummary, error)
	IsInsuranceValid(ctx context.Context, carID domain.CarID, date domain.Date) (bool, error)
	RegisterClaim(ctx context.Context, carID domain.CarID, claimDate domain.Date, description string, amount float64) (*models.Claim, error)
	GetCarHistory(ctx context.Context, carID domain.CarID) ([]insurance.TimelineEvent, error)
}

// Handler wires the car insurance endpoints to the insurance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/cars", h.handleListCars)
	r.Get("/api/cars/{carID}/insurance-valid", h.handleInsuranceValid)
	r.Post("/api/cars/{carID}/claims", h.handleRegisterClaim)
	r.Get("/api/cars/{carID}/history", h.handleCarHistory)
}

func (h *Handler) handleListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.ListCars(r.Context())
	if err != nil {
		h.logError(r.Context(), "list cars failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, carResponses(cars))
}

func (h *Handler) handleInsuranceValid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	carID, err := domain.ParseCarID(chi.URLParam(r, "carID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	date, err := domain.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	valid, err := h.service.IsInsuranceValid(ctx, carID, date)
	if err != nil {
		h.logError(ctx, "validity check failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ValidityResponse{
		CarID: carID.String(),
		Date:  date.String(),
		Valid: valid,
	})
}

func (h *Handler) handleRegisterClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	carID, err := domain.ParseCarID(chi.URLParam(r, "carID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req RegisterClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	claimDate, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := h.service.RegisterClaim(ctx, carID, claimDate, req.Description, req.Amount)
	if err != nil {
		h.logError(ctx, "claim registration failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim accepted",
		"request_id", requestcontext.RequestID(ctx),
		"car_id", carID,
		"claim_id", claim.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, ClaimResponse{
		CarID:       carID.String(),
		ClaimDate:   claim.ClaimDate.String(),
		Description: claim.Description,
		Amount:      claim.Amount,
	})
}

func (h *Handler) handleCarHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	carID, err := domain.ParseCarID(chi.URLParam(r, "carID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.service.GetCarHistory(ctx, carID)
	if err != nil {
		h.logError(ctx, "history build failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, timelineResponses(events))
}

// logError keeps boundary failures out of the logs when they are the
// client's fault; only internal errors are worth an error line.
func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
