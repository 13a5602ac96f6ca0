package reporthttp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/toko-ops/toko-ops/internal/platform/httpx"
	"github.com/toko-ops/toko-ops/internal/reporting"
	"github.com/toko-ops/toko-ops/internal/reporting/export"
)

const requestTimeout = 5 * time.Second

// ReportService is the aggregation contract the handler depends on.
type ReportService interface {
	SalesSeries(ctx context.Context, filter reporting.SalesFilter) ([]reporting.AggregateBucket, error)
	ProfitReport(ctx context.Context, filter reporting.ProfitFilter) (reporting.ProfitReport, error)
	IngestSaleEvent(ctx context.Context, event reporting.SaleEvent) (bool, error)
}

// PDFService renders a printable document to PDF bytes.
type PDFService interface {
	Render(ctx context.Context, doc export.Document) ([]byte, error)
}

// WarmupEnqueuer schedules a background report warmup after live ingestion.
type WarmupEnqueuer interface {
	EnqueueReportWarmup(ctx context.Context) error
}

// SaleEventCounter records webhook outcomes for observability.
type SaleEventCounter interface {
	ObserveSaleEvent(outcome string)
}

// Handler serves the sales/profit reporting endpoints and the live sale
// webhook.
type Handler struct {
	logger       *slog.Logger
	service      ReportService
	pdf          PDFService
	warmup       WarmupEnqueuer
	validate     *validator.Validate
	webhookToken string
	counter      SaleEventCounter
	now          func() time.Time
}

// NewHandler constructs the reporting HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService, pdf PDFService, warmup WarmupEnqueuer, webhookToken string) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		pdf:          pdf,
		warmup:       warmup,
		validate:     validator.New(),
		webhookToken: webhookToken,
		now:          time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// WithSaleEventCounter attaches an outcome counter for the live webhook.
func (h *Handler) WithSaleEventCounter(c SaleEventCounter) {
	h.counter = c
}

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	buckets, err := h.service.SalesSeries(ctx, salesFilterFromQuery(r))
	if err != nil {
		h.serverError(w, "load sales series", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"buckets": buckets})
}

func (h *Handler) handleProfit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.ProfitReport(ctx, profitFilterFromQuery(r))
	if err != nil {
		h.serverError(w, "load profit report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		buckets []reporting.AggregateBucket
		report  reporting.ProfitReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		buckets, err = h.service.SalesSeries(gctx, salesFilterFromQuery(r))
		return err
	})
	g.Go(func() error {
		var err error
		report, err = h.service.ProfitReport(gctx, profitFilterFromQuery(r))
		return err
	})
	if err := g.Wait(); err != nil {
		h.serverError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"sales":  buckets,
		"profit": report,
	})
}

func (h *Handler) handleSalesCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	buckets, err := h.service.SalesSeries(ctx, salesFilterFromQuery(r))
	if err != nil {
		h.serverError(w, "export sales", err)
		return
	}
	h.writeCSV(w, export.SalesTable(buckets), "sales")
}

func (h *Handler) handleProfitCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.ProfitReport(ctx, profitFilterFromQuery(r))
	if err != nil {
		h.serverError(w, "export profit", err)
		return
	}
	h.writeCSV(w, export.ProfitTable(report), "profit")
}

func (h *Handler) handleProfitPDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter := profitFilterFromQuery(r)
	report, err := h.service.ProfitReport(ctx, filter)
	if err != nil {
		h.serverError(w, "export profit pdf", err)
		return
	}
	doc := export.Document{
		Title: "Profit Report",
		Table: export.ProfitTable(report),
		Metadata: map[string]string{
			"generated_at": h.now().Format("2006-01-02 15:04"),
			"channel":      string(filter.Channel),
		},
	}
	data, err := h.pdf.Render(ctx, doc)
	if err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			h.nothingToExport(w)
			return
		}
		h.serverError(w, "render profit pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=profit-%s.pdf", h.now().Format("20060102")))
	_, _ = w.Write(data)
}

func (h *Handler) handleSaleEvent(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeWebhook(r) {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid webhook token")
		return
	}
	var event reporting.SaleEvent
	if err := httpx.DecodeJSON(r, &event); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Payload", "sale event payload is not valid JSON")
		return
	}
	if err := h.validate.Struct(event); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	accepted, err := h.service.IngestSaleEvent(ctx, event)
	if err != nil {
		h.serverError(w, "ingest sale event", err)
		return
	}
	if h.counter != nil {
		outcome := "dropped"
		if accepted {
			outcome = "accepted"
		}
		h.counter.ObserveSaleEvent(outcome)
	}
	if accepted && h.warmup != nil {
		if err := h.warmup.EnqueueReportWarmup(ctx); err != nil {
			h.logger.Warn("enqueue report warmup", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"accepted": accepted})
}

func (h *Handler) writeCSV(w http.ResponseWriter, table export.Table, name string) {
	if len(table.Rows) == 0 {
		h.nothingToExport(w)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.csv", name, h.now().Format("20060102")))
	if err := export.WriteCSV(w, table); err != nil {
		h.logger.Error("write csv", slog.Any("error", err))
	}
}

func (h *Handler) nothingToExport(w http.ResponseWriter) {
	httpx.Problem(w, http.StatusUnprocessableEntity, "Nothing To Export", "the selected window contains no data")
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) authorizeWebhook(r *http.Request) bool {
	if h.webhookToken == "" {
		return true
	}
	header := r.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookToken)) == 1
}

func salesFilterFromQuery(r *http.Request) reporting.SalesFilter {
	q := r.URL.Query()
	filter := reporting.SalesFilter{
		Granularity: reporting.Granularity(q.Get("granularity")),
		Channel:     reporting.Channel(q.Get("channel")),
	}
	if window, err := strconv.Atoi(q.Get("window")); err == nil && window > 0 && window <= 52 {
		filter.Window = window
	}
	return filter
}

func profitFilterFromQuery(r *http.Request) reporting.ProfitFilter {
	return reporting.ProfitFilter{Channel: reporting.Channel(r.URL.Query().Get("channel"))}
}
