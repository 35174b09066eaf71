package fx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zambezi-erp/zambezi-erp/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/rates", h.listRates)
	r.Get("/rates/{currency}", h.getRate)
	r.Put("/rates/{currency}", h.upsertRate)
}

func (h *Handler) listRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list rates failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if rates == nil {
		rates = []Rate{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rates": rates, "base": BaseCurrency})
}

func (h *Handler) getRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.Lookup(r.Context(), chi.URLParam(r, "currency"))
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

type upsertRateRequest struct {
	Rate float64 `json:"rate"`
}

func (h *Handler) upsertRate(w http.ResponseWriter, r *http.Request) {
	var req upsertRateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	saved, err := h.service.Upsert(r.Context(), Rate{
		Currency: chi.URLParam(r, "currency"),
		Rate:     req.Rate,
	})
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}
