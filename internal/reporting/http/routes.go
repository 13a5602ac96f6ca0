package reporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the reporting endpoints onto the router. Export and
// PDF endpoints are rate limited; Gotenberg renders are not free.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/reports/sales", h.handleSales)
	r.Get("/reports/profit", h.handleProfit)
	r.Get("/reports/dashboard", h.handleDashboard)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/reports/sales/export.csv", h.handleSalesCSV)
		gr.Get("/reports/profit/export.csv", h.handleProfitCSV)
		gr.Get("/reports/profit/pdf", h.handleProfitPDF)
	})
	r.Post("/events/sales", h.handleSaleEvent)
}
