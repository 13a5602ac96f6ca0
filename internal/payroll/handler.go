package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/toko-ops/toko-ops/internal/platform/httpx"
	"github.com/toko-ops/toko-ops/internal/reporting/export"
)

const requestTimeout = 5 * time.Second

// OverrideRequest is the console's payload for adjusting one employee row.
type OverrideRequest struct {
	UserID   string   `json:"user_id" validate:"required"`
	Override Override `json:"override"`
}

// Handler serves the finance-console payroll endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	now      func() time.Time
}

// NewHandler constructs the payroll HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		now:      time.Now,
	}
}

// MountRoutes registers payroll endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/payroll", h.handleProjection)
	r.Post("/payroll/overrides", h.handleOverride)
	r.Delete("/payroll/overrides/{userID}", h.handleClearOverride)
	r.Get("/payroll/export.csv", h.handleCSV)
}

func (h *Handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	from, to, err := windowFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Window", err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, totals, err := h.service.Project(ctx, from, to)
	if err != nil {
		h.logger.Error("project payroll", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rows":   rows,
		"totals": totals,
		"range":  map[string]string{"from": from.Format("2006-01-02"), "to": to.Format("2006-01-02")},
	})
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Payload", "override payload is not valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	h.service.SetOverride(req.UserID, req.Override)
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": req.UserID})
}

func (h *Handler) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "user id required")
		return
	}
	h.service.ClearOverride(userID)
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := windowFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Window", err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, totals, err := h.service.Project(ctx, from, to)
	if err != nil {
		h.logger.Error("export payroll", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	table := ExportTable(rows, totals)
	if len(table.Rows) == 0 {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Nothing To Export", "no attendance in the selected window")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payroll-%s.csv", h.now().Format("20060102")))
	if err := export.WriteCSV(w, table); err != nil {
		h.logger.Error("write payroll csv", slog.Any("error", err))
	}
}

// windowFromQuery parses the reporting window, defaulting to the current
// calendar month.
func windowFromQuery(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, -1)

	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q", raw)
		}
		from = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q", raw)
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("window end precedes start")
	}
	return from, to, nil
}
