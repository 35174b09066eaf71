package drafts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zambezi-erp/zambezi-erp/internal/documents"
	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
	mdshared "github.com/zambezi-erp/zambezi-erp/internal/masterdata/shared"
	"github.com/zambezi-erp/zambezi-erp/internal/platform/httpx"
	"github.com/zambezi-erp/zambezi-erp/internal/terms"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Delete("/{id}", h.Discard)
	r.Put("/{id}", h.UpdateHeader)
	r.Post("/{id}/lines", h.AddLine)
	r.Put("/{id}/lines/{index}", h.UpdateLine)
	r.Delete("/{id}/lines/{index}", h.RemoveLine)
	r.Put("/{id}/billing", h.UpdateBilling)
	r.Put("/{id}/shipping", h.UpdateShipping)
	r.Put("/{id}/same-as-billing", h.SetSameAsBilling)
	r.Post("/{id}/currency", h.SwitchCurrency)
	r.Post("/{id}/reload-customer", h.ReloadCustomer)
	r.Post("/{id}/terms", h.StageTerms)
	r.Post("/{id}/terms/commit", h.CommitTerms)
	r.Post("/{id}/terms/discard", h.DiscardTerms)
	r.Post("/{id}/submit", h.Submit)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	draft, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create draft failed", "error", err, "type", req.Type)
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, draft)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateHeader(w http.ResponseWriter, r *http.Request) {
	var req UpdateHeaderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	draft, err := h.service.UpdateHeader(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var line Line
	if err := httpx.DecodeJSON(r, &line); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	result, err := h.service.AddLine(r.Context(), chi.URLParam(r, "id"), line)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	var line Line
	if err := httpx.DecodeJSON(r, &line); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	result, err := h.service.UpdateLine(r.Context(), chi.URLParam(r, "id"), index, line)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	result, err := h.service.RemoveLine(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateBilling(w http.ResponseWriter, r *http.Request) {
	var addr customers.Address
	if err := httpx.DecodeJSON(r, &addr); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	draft, err := h.service.UpdateBilling(r.Context(), chi.URLParam(r, "id"), addr)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

func (h *Handler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	var addr customers.Address
	if err := httpx.DecodeJSON(r, &addr); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	draft, err := h.service.UpdateShipping(r.Context(), chi.URLParam(r, "id"), addr)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

type sameAsBillingRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) SetSameAsBilling(w http.ResponseWriter, r *http.Request) {
	var req sameAsBillingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	draft, err := h.service.SetSameAsBilling(r.Context(), chi.URLParam(r, "id"), req.Enabled)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

type switchCurrencyRequest struct {
	Currency string `json:"currency" validate:"required,len=3"`
}

func (h *Handler) SwitchCurrency(w http.ResponseWriter, r *http.Request) {
	var req switchCurrencyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	draft, err := h.service.SwitchCurrency(r.Context(), chi.URLParam(r, "id"), req.Currency)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

func (h *Handler) ReloadCustomer(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.ReloadCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

type stageTermsRequest struct {
	Section string `json:"section" validate:"required"`
	Body    string `json:"body"`
}

func (h *Handler) StageTerms(w http.ResponseWriter, r *http.Request) {
	var req stageTermsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	draft, err := h.service.StageTerms(r.Context(), chi.URLParam(r, "id"), req.Section, req.Body)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

func (h *Handler) CommitTerms(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.CommitTerms(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

func (h *Handler) DiscardTerms(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.DiscardTerms(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("submit draft failed", "error", err, "draft_id", chi.URLParam(r, "id"))
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"document": doc,
		"summary":  documents.Summarize(doc),
	})
}

func (h *Handler) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid line index")
		return 0, false
	}
	return index, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "draft not found")
	case errors.Is(err, ErrBadLine),
		errors.Is(err, ErrEmptyDraft),
		errors.Is(err, ErrTermsStaged),
		errors.Is(err, documents.ErrUnknownType),
		errors.Is(err, documents.ErrLPORequired),
		errors.Is(err, documents.ErrBadLPONumber),
		errors.Is(err, documents.ErrInvalidLine),
		errors.Is(err, fx.ErrBadRate),
		errors.Is(err, fx.ErrUnknownCurrency),
		errors.Is(err, terms.ErrBadPhaseLine),
		errors.Is(err, terms.ErrBadPercent),
		errors.Is(err, mdshared.ErrNotFound):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
