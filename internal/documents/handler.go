package documents

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	mdshared "github.com/zambezi-erp/zambezi-erp/internal/masterdata/shared"
	"github.com/zambezi-erp/zambezi-erp/internal/platform/httpx"
	"github.com/zambezi-erp/zambezi-erp/internal/shared"
)

// maxListLimit caps the page size a client may request on list endpoints.
const maxListLimit = 1000

// Handler serves one family of document types. The same handler type is
// mounted once for sales documents and once for procurement documents.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	allowed  map[DocType]bool
}

func NewHandler(logger *slog.Logger, service *Service, types []DocType) *Handler {
	allowed := make(map[DocType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		allowed:  allowed,
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/number/{docNumber}", h.ShowByNumber)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/submit", h.Submit)
	r.Post("/{id}/cancel", h.Cancel)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListDocumentsRequest{Search: r.URL.Query().Get("search")}

	if t := r.URL.Query().Get("type"); t != "" {
		docType := DocType(t)
		if !h.allowed[docType] {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown document type")
			return
		}
		req.Types = []DocType{docType}
	} else {
		for docType := range h.allowed {
			req.Types = append(req.Types, docType)
		}
	}
	if party := r.URL.Query().Get("party_id"); party != "" {
		id, err := strconv.ParseInt(party, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid party_id")
			return
		}
		req.PartyID = &id
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := DocStatus(status)
		req.Status = &st
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid from date")
			return
		}
		req.DateFrom = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid to date")
			return
		}
		req.DateTo = &t
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	req.Limit = limit
	req.Offset = (page - 1) * limit

	docs, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list documents failed", "error", err)
		h.respondErr(w, err)
		return
	}
	if docs == nil {
		docs = []DocumentWithParty{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"documents":  docs,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.fetch(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"document": doc,
		"summary":  Summarize(doc),
	})
}

func (h *Handler) ShowByNumber(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "docNumber"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if !h.allowed[doc.Type] {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"document": doc,
		"summary":  Summarize(doc),
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if !h.allowed[req.Type] {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "document type not accepted on this endpoint")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Submit(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*Document, bool) {
	id, ok := h.parseID(w, r)
	if !ok {
		return nil, false
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return nil, false
	}
	if !h.allowed[doc.Type] {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
		return nil, false
	}
	return doc, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrUnknownType),
		errors.Is(err, ErrLPORequired),
		errors.Is(err, ErrBadLPONumber),
		errors.Is(err, ErrInvalidLine),
		errors.Is(err, fx.ErrBadRate),
		errors.Is(err, mdshared.ErrNotFound):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
