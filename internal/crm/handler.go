package crm

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zambezi-erp/zambezi-erp/internal/platform/httpx"
	"github.com/zambezi-erp/zambezi-erp/internal/shared"
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
	r.Get("/dashboard", h.Dashboard)

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", h.ListLeads)
		r.Post("/", h.CreateLead)
		r.Get("/{id}", h.GetLead)
		r.Put("/{id}", h.UpdateLead)
		r.Post("/{id}/status", h.TransitionLead)
	})

	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.ListTickets)
		r.Post("/", h.CreateTicket)
		r.Get("/{id}", h.GetTicket)
		r.Put("/{id}", h.UpdateTicket)
		r.Post("/{id}/status", h.TransitionTicket)
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	filters := LeadFilters{Search: r.URL.Query().Get("search")}
	filters.Page, filters.Limit = parsePaging(r)
	if status := r.URL.Query().Get("status"); status != "" {
		st := LeadStatus(status)
		if !st.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown lead status")
			return
		}
		filters.Status = &st
	}

	leads, total, err := h.service.ListLeads(r.Context(), filters)
	if err != nil {
		h.logger.Error("list leads failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if leads == nil {
		leads = []Lead{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"leads":      leads,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lead, err := h.service.CreateLead(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lead)
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	lead, err := h.service.GetLead(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req CreateLeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lead, err := h.service.UpdateLead(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) TransitionLead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	lead, err := h.service.TransitionLead(r.Context(), id, LeadStatus(req.Status))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	filters := TicketFilters{Search: r.URL.Query().Get("search")}
	filters.Page, filters.Limit = parsePaging(r)
	if status := r.URL.Query().Get("status"); status != "" {
		st := TicketStatus(status)
		if !st.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown ticket status")
			return
		}
		filters.Status = &st
	}
	if priority := r.URL.Query().Get("priority"); priority != "" {
		p := TicketPriority(priority)
		if !p.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown ticket priority")
			return
		}
		filters.Priority = &p
	}
	if customer := r.URL.Query().Get("customer_id"); customer != "" {
		id, err := strconv.ParseInt(customer, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer_id")
			return
		}
		filters.CustomerID = &id
	}

	tickets, total, err := h.service.ListTickets(r.Context(), filters)
	if err != nil {
		h.logger.Error("list tickets failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if tickets == nil {
		tickets = []Ticket{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"tickets":    tickets,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	ticket, err := h.service.CreateTicket(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ticket)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ticket, err := h.service.GetTicket(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ticket)
}

func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req CreateTicketRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	ticket, err := h.service.UpdateTicket(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ticket)
}

func (h *Handler) TransitionTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	ticket, err := h.service.TransitionTicket(r.Context(), id, TicketStatus(req.Status))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ticket)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}

func parsePaging(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, ErrBadTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrBadStatus), errors.Is(err, ErrBadPriority):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
