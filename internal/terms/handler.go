package terms

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/zambezi-erp/zambezi-erp/internal/platform/httpx"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/templates", h.listTemplates)
	r.Get("/templates/{section}", h.getTemplate)
	r.Post("/payment-terms", h.parsePaymentTerms)
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"sections": Templates()})
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "section"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid section name")
		return
	}
	body, err := Template(name)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, Section{Name: name, Body: body})
}

type parseRequest struct {
	Body string `json:"body"`
}

// parsePaymentTerms parses a Payment Terms body and reports whether the
// phases would be accepted on commit.
func (h *Handler) parsePaymentTerms(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	phases, err := ParsePaymentTerms(req.Body)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if phases == nil {
		phases = []PaymentPhase{}
	}
	resp := map[string]any{"phases": phases, "valid": true}
	if err := ValidatePaymentTerms(phases); err != nil {
		resp["valid"] = false
		resp["detail"] = err.Error()
	}
	httpx.JSON(w, http.StatusOK, resp)
}
