// Package crm tracks sales leads and support tickets and serves the
// activity dashboard built from them.
package crm

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("crm: record not found")
	ErrBadTransition = errors.New("crm: invalid status transition")
	ErrBadStatus     = errors.New("crm: unknown status")
	ErrBadPriority   = errors.New("crm: unknown priority")
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadQualified LeadStatus = "QUALIFIED"
	LeadConverted LeadStatus = "CONVERTED"
	LeadLost      LeadStatus = "LOST"
)

var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadNew:       {LeadContacted, LeadLost},
	LeadContacted: {LeadQualified, LeadLost},
	LeadQualified: {LeadConverted, LeadLost},
}

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost:
		return true
	}
	return false
}

// CanTransition reports whether the lead may move to next. CONVERTED and
// LOST are terminal.
func (s LeadStatus) CanTransition(next LeadStatus) bool {
	for _, allowed := range leadTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

type Lead struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Company   string     `json:"company,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Source    string     `json:"source,omitempty"`
	Status    LeadStatus `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

var ticketTransitions = map[TicketStatus]TicketStatus{
	TicketOpen:       TicketInProgress,
	TicketInProgress: TicketResolved,
	TicketResolved:   TicketClosed,
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// CanTransition reports whether the ticket may move to next. Tickets walk
// the chain OPEN -> IN_PROGRESS -> RESOLVED -> CLOSED one step at a time.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	return ticketTransitions[s] == next
}

type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Ticket struct {
	ID          int64          `json:"id"`
	Subject     string         `json:"subject"`
	CustomerID  *int64         `json:"customer_id,omitempty"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Dashboard is the cached activity snapshot served to the CRM landing page.
type Dashboard struct {
	LeadCounts    map[LeadStatus]int   `json:"lead_counts"`
	TicketCounts  map[TicketStatus]int `json:"ticket_counts"`
	RecentLeads   []Lead               `json:"recent_leads"`
	RecentTickets []Ticket             `json:"recent_tickets"`
	GeneratedAt   time.Time            `json:"generated_at"`
}
