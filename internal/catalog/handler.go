package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atelier-pos/atelier/internal/platform/httpx"
)

// Handler exposes catalogue maintenance endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err))
	case errors.Is(err, ErrDuplicateReference):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrDuplicate, err))
	case errors.Is(err, ErrInvalidInput):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
	default:
		if h.logger != nil {
			h.logger.Error("catalog request failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}

func productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Get returns a product with its variants.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Stock returns the product's aggregated stock figures.
func (h *Handler) Stock(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	summary, err := h.service.Stock(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// Create adds a catalogue entry.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}

	product := Product{
		Name:           form.Name,
		Reference:      form.Reference,
		Category:       form.Category,
		Price:          form.Price,
		PriceWholesale: form.PriceWholesale,
		Status:         form.Status,
		Trend:          form.Trend,
		Season:         form.Season,
		Description:    form.Description,
		Image:          form.Image,
	}
	created, err := h.service.Create(r.Context(), product, form.Variants)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// Patch applies a partial field update.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var form ProductPatchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	patch := ProductPatch{
		Name:           form.Name,
		Category:       form.Category,
		Price:          form.Price,
		PriceWholesale: form.PriceWholesale,
		Status:         form.Status,
		Trend:          form.Trend,
		Season:         form.Season,
		Description:    form.Description,
		Image:          form.Image,
	}
	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete removes a product and its variants.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ReplaceVariants swaps the product's variant list.
func (h *Handler) ReplaceVariants(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var form VariantListForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if form.Variants == nil {
		httpx.RespondError(w, fmt.Errorf("%w: variants must be an array", httpx.ErrValidation))
		return
	}
	updated, err := h.service.ReplaceVariants(r.Context(), id, form.Variants)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
