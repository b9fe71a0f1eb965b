package analytics

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/atelier-pos/atelier/internal/catalog"
	"github.com/atelier-pos/atelier/internal/platform/httpx"
)

// Handler serves the read-only analytics endpoints and the enriched
// product listing.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, "error", err)
	httpx.RespondError(w, err)
}

func channelFilter(r *http.Request) (catalog.Channel, error) {
	raw := r.URL.Query().Get("channel")
	if raw == "" {
		return "", nil
	}
	ch := catalog.Channel(raw)
	if !ch.Valid() {
		return "", fmt.Errorf("%w: unknown channel %q", httpx.ErrValidation, raw)
	}
	return ch, nil
}

// Products lists all products enriched with variants, stock sums and
// sales figures.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.EnrichedProducts(r.Context())
	if err != nil {
		h.respondErr(w, "analytics_products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	channel, err := channelFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	stats, err := h.svc.Dashboard(r.Context(), channel)
	if err != nil {
		h.respondErr(w, "analytics_dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	channel, err := channelFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	points, err := h.svc.MonthlySeries(r.Context(), from, to, channel)
	if err != nil {
		h.respondErr(w, "analytics_monthly", err)
		return
	}
	httpx.JSON(w, http.StatusOK, points)
}

func (h *Handler) TopSellers(w http.ResponseWriter, r *http.Request) {
	channel, err := channelFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sellers, err := h.svc.TopSellers(r.Context(), channel)
	if err != nil {
		h.respondErr(w, "analytics_top_sellers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sellers)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.CategoryRevenue(r.Context())
	if err != nil {
		h.respondErr(w, "analytics_categories", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Rankings(r.Context())
	if err != nil {
		h.respondErr(w, "analytics_rankings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Forecast(r.Context())
	if err != nil {
		h.respondErr(w, "analytics_forecast", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Colors(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ColorBreakdown(r.Context())
	if err != nil {
		h.respondErr(w, "analytics_colors", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// dateRange parses optional from/to query params (YYYY-MM-DD). The to
// bound is extended to the end of its day so ranges are inclusive. Both
// must be set together.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	rawFrom := r.URL.Query().Get("from")
	rawTo := r.URL.Query().Get("to")
	if rawFrom == "" && rawTo == "" {
		return time.Time{}, time.Time{}, nil
	}
	if rawFrom == "" || rawTo == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from and to must be provided together", httpx.ErrValidation)
	}
	from, err := time.Parse("2006-01-02", rawFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid from date", httpx.ErrValidation)
	}
	to, err := time.Parse("2006-01-02", rawTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid to date", httpx.ErrValidation)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to precedes from", httpx.ErrValidation)
	}
	return from, to.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
