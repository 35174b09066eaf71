package crm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const recentLimit = 5

type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Company string `json:"company" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=40"`
	Source  string `json:"source" validate:"max=100"`
	Notes   string `json:"notes"`
}

func (s *Service) CreateLead(ctx context.Context, req CreateLeadRequest) (Lead, error) {
	lead, err := s.repo.CreateLead(ctx, Lead{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Source:  req.Source,
		Status:  LeadNew,
		Notes:   req.Notes,
	})
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	s.invalidateDashboard(ctx)
	return lead, nil
}

func (s *Service) UpdateLead(ctx context.Context, id int64, req CreateLeadRequest) (Lead, error) {
	err := s.repo.UpdateLead(ctx, id, Lead{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Source:  req.Source,
		Notes:   req.Notes,
	})
	if err != nil {
		return Lead{}, err
	}
	s.invalidateDashboard(ctx)
	return s.repo.GetLead(ctx, id)
}

// TransitionLead moves a lead along its pipeline. Converted and lost leads
// are terminal.
func (s *Service) TransitionLead(ctx context.Context, id int64, next LeadStatus) (Lead, error) {
	if !next.Valid() {
		return Lead{}, fmt.Errorf("%w: %q", ErrBadStatus, next)
	}
	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		return Lead{}, err
	}
	if !lead.Status.CanTransition(next) {
		return Lead{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, lead.Status, next)
	}
	if err := s.repo.UpdateLeadStatus(ctx, id, next); err != nil {
		return Lead{}, err
	}
	s.invalidateDashboard(ctx)
	return s.repo.GetLead(ctx, id)
}

func (s *Service) GetLead(ctx context.Context, id int64) (Lead, error) {
	return s.repo.GetLead(ctx, id)
}

func (s *Service) ListLeads(ctx context.Context, filters LeadFilters) ([]Lead, int, error) {
	return s.repo.ListLeads(ctx, filters)
}

type CreateTicketRequest struct {
	Subject     string         `json:"subject" validate:"required,max=300"`
	CustomerID  *int64         `json:"customer_id" validate:"omitempty,gt=0"`
	Priority    TicketPriority `json:"priority" validate:"required"`
	Description string         `json:"description"`
}

func (s *Service) CreateTicket(ctx context.Context, req CreateTicketRequest) (Ticket, error) {
	if !req.Priority.Valid() {
		return Ticket{}, fmt.Errorf("%w: %q", ErrBadPriority, req.Priority)
	}
	ticket, err := s.repo.CreateTicket(ctx, Ticket{
		Subject:     req.Subject,
		CustomerID:  req.CustomerID,
		Priority:    req.Priority,
		Status:      TicketOpen,
		Description: req.Description,
	})
	if err != nil {
		return Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	s.invalidateDashboard(ctx)
	return ticket, nil
}

func (s *Service) UpdateTicket(ctx context.Context, id int64, req CreateTicketRequest) (Ticket, error) {
	if !req.Priority.Valid() {
		return Ticket{}, fmt.Errorf("%w: %q", ErrBadPriority, req.Priority)
	}
	err := s.repo.UpdateTicket(ctx, id, Ticket{
		Subject:     req.Subject,
		CustomerID:  req.CustomerID,
		Priority:    req.Priority,
		Description: req.Description,
	})
	if err != nil {
		return Ticket{}, err
	}
	s.invalidateDashboard(ctx)
	return s.repo.GetTicket(ctx, id)
}

// TransitionTicket advances a ticket one step along its lifecycle.
func (s *Service) TransitionTicket(ctx context.Context, id int64, next TicketStatus) (Ticket, error) {
	if !next.Valid() {
		return Ticket{}, fmt.Errorf("%w: %q", ErrBadStatus, next)
	}
	ticket, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if !ticket.Status.CanTransition(next) {
		return Ticket{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, ticket.Status, next)
	}
	if err := s.repo.UpdateTicketStatus(ctx, id, next); err != nil {
		return Ticket{}, err
	}
	s.invalidateDashboard(ctx)
	return s.repo.GetTicket(ctx, id)
}

func (s *Service) GetTicket(ctx context.Context, id int64) (Ticket, error) {
	return s.repo.GetTicket(ctx, id)
}

func (s *Service) ListTickets(ctx context.Context, filters TicketFilters) ([]Ticket, int, error) {
	return s.repo.ListTickets(ctx, filters)
}

// Dashboard serves the cached activity snapshot, building it on a miss.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var dashboard Dashboard
	err := s.cache.Fetch(ctx, &dashboard, s.buildDashboard)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}
	return dashboard, nil
}

// WarmDashboard rebuilds the snapshot ahead of traffic; the worker calls
// this on a schedule.
func (s *Service) WarmDashboard(ctx context.Context) error {
	var dashboard Dashboard
	return s.cache.Fetch(ctx, &dashboard, s.buildDashboard)
}

func (s *Service) buildDashboard(ctx context.Context) (*Dashboard, error) {
	leadCounts, err := s.repo.CountLeadsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	ticketCounts, err := s.repo.CountTicketsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}
	recentLeads, err := s.repo.RecentLeads(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent leads: %w", err)
	}
	recentTickets, err := s.repo.RecentTickets(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent tickets: %w", err)
	}
	return &Dashboard{
		LeadCounts:    leadCounts,
		TicketCounts:  ticketCounts,
		RecentLeads:   recentLeads,
		RecentTickets: recentTickets,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("dashboard cache bump failed", "error", err)
	}
}
