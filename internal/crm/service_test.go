package crm

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	leads      map[int64]*Lead
	tickets    map[int64]*Ticket
	nextID     int64
	countCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		leads:   make(map[int64]*Lead),
		tickets: make(map[int64]*Ticket),
		nextID:  1,
	}
}

func (m *mockRepository) ListLeads(ctx context.Context, f LeadFilters) ([]Lead, int, error) {
	var out []Lead
	for _, l := range m.leads {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (m *mockRepository) GetLead(ctx context.Context, id int64) (Lead, error) {
	l, ok := m.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return *l, nil
}

func (m *mockRepository) CreateLead(ctx context.Context, lead Lead) (Lead, error) {
	lead.ID = m.nextID
	m.nextID++
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	m.leads[lead.ID] = &lead
	return lead, nil
}

func (m *mockRepository) UpdateLead(ctx context.Context, id int64, lead Lead) error {
	existing, ok := m.leads[id]
	if !ok {
		return ErrNotFound
	}
	lead.ID = id
	lead.Status = existing.Status
	m.leads[id] = &lead
	return nil
}

func (m *mockRepository) UpdateLeadStatus(ctx context.Context, id int64, status LeadStatus) error {
	l, ok := m.leads[id]
	if !ok {
		return ErrNotFound
	}
	l.Status = status
	return nil
}

func (m *mockRepository) ListTickets(ctx context.Context, f TicketFilters) ([]Ticket, int, error) {
	var out []Ticket
	for _, t := range m.tickets {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *mockRepository) GetTicket(ctx context.Context, id int64) (Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	return *t, nil
}

func (m *mockRepository) CreateTicket(ctx context.Context, ticket Ticket) (Ticket, error) {
	ticket.ID = m.nextID
	m.nextID++
	m.tickets[ticket.ID] = &ticket
	return ticket, nil
}

func (m *mockRepository) UpdateTicket(ctx context.Context, id int64, ticket Ticket) error {
	existing, ok := m.tickets[id]
	if !ok {
		return ErrNotFound
	}
	ticket.ID = id
	ticket.Status = existing.Status
	m.tickets[id] = &ticket
	return nil
}

func (m *mockRepository) UpdateTicketStatus(ctx context.Context, id int64, status TicketStatus) error {
	t, ok := m.tickets[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	return nil
}

func (m *mockRepository) CountLeadsByStatus(ctx context.Context) (map[LeadStatus]int, error) {
	m.countCalls++
	counts := make(map[LeadStatus]int)
	for _, l := range m.leads {
		counts[l.Status]++
	}
	return counts, nil
}

func (m *mockRepository) CountTicketsByStatus(ctx context.Context) (map[TicketStatus]int, error) {
	counts := make(map[TicketStatus]int)
	for _, t := range m.tickets {
		counts[t.Status]++
	}
	return counts, nil
}

func (m *mockRepository) RecentLeads(ctx context.Context, limit int) ([]Lead, error) {
	out, _, _ := m.ListLeads(ctx, LeadFilters{})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRepository) RecentTickets(ctx context.Context, limit int) ([]Ticket, error) {
	out, _, _ := m.ListTickets(ctx, TicketFilters{})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newMockRepository()
	return NewService(repo, NewCache(rdb, 5*time.Minute), nil), repo
}

func TestLeadLifecycle(t *testing.T) {
	svc, _ := newTestService(t)

	lead, err := svc.CreateLead(context.Background(), CreateLeadRequest{Name: "Grace Mwila", Company: "Mosi Mills"})
	require.NoError(t, err)
	assert.Equal(t, LeadNew, lead.Status)

	lead, err = svc.TransitionLead(context.Background(), lead.ID, LeadContacted)
	require.NoError(t, err)
	assert.Equal(t, LeadContacted, lead.Status)

	lead, err = svc.TransitionLead(context.Background(), lead.ID, LeadQualified)
	require.NoError(t, err)
	lead, err = svc.TransitionLead(context.Background(), lead.ID, LeadConverted)
	require.NoError(t, err)
	assert.Equal(t, LeadConverted, lead.Status)

	// Converted is terminal.
	_, err = svc.TransitionLead(context.Background(), lead.ID, LeadLost)
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestLeadCanBeLostAtAnyActiveStage(t *testing.T) {
	svc, _ := newTestService(t)

	for _, from := range []LeadStatus{LeadNew, LeadContacted, LeadQualified} {
		lead, err := svc.CreateLead(context.Background(), CreateLeadRequest{Name: "Lead " + string(from)})
		require.NoError(t, err)
		for _, step := range []LeadStatus{LeadContacted, LeadQualified} {
			if lead.Status == from {
				break
			}
			lead, err = svc.TransitionLead(context.Background(), lead.ID, step)
			require.NoError(t, err)
		}
		_, err = svc.TransitionLead(context.Background(), lead.ID, LeadLost)
		assert.NoError(t, err, "losing from %s", from)
	}
}

func TestLeadSkippingStagesRejected(t *testing.T) {
	svc, _ := newTestService(t)

	lead, err := svc.CreateLead(context.Background(), CreateLeadRequest{Name: "Eager Lead"})
	require.NoError(t, err)

	_, err = svc.TransitionLead(context.Background(), lead.ID, LeadConverted)
	assert.ErrorIs(t, err, ErrBadTransition)

	_, err = svc.TransitionLead(context.Background(), lead.ID, "SHINY")
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestTicketLifecycle(t *testing.T) {
	svc, _ := newTestService(t)

	ticket, err := svc.CreateTicket(context.Background(), CreateTicketRequest{Subject: "Printer jam", Priority: PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, TicketOpen, ticket.Status)

	// Tickets walk the chain one step at a time.
	_, err = svc.TransitionTicket(context.Background(), ticket.ID, TicketClosed)
	assert.ErrorIs(t, err, ErrBadTransition)

	for _, next := range []TicketStatus{TicketInProgress, TicketResolved, TicketClosed} {
		ticket, err = svc.TransitionTicket(context.Background(), ticket.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, ticket.Status)
	}
}

func TestCreateTicketRejectsUnknownPriority(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateTicket(context.Background(), CreateTicketRequest{Subject: "Broken scale", Priority: "ASAP"})
	assert.ErrorIs(t, err, ErrBadPriority)
}

func TestDashboardCachesSnapshot(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.CreateLead(context.Background(), CreateLeadRequest{Name: "Grace Mwila"})
	require.NoError(t, err)
	repo.countCalls = 0

	first, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.LeadCounts[LeadNew])
	assert.Equal(t, 1, repo.countCalls)

	_, err = svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.countCalls, "second read is served from cache")
}

func TestDashboardInvalidatedByMutation(t *testing.T) {
	svc, repo := newTestService(t)

	first, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, first.LeadCounts)

	_, err = svc.CreateLead(context.Background(), CreateLeadRequest{Name: "Grace Mwila"})
	require.NoError(t, err)

	refreshed, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.LeadCounts[LeadNew])
	assert.Equal(t, 2, repo.countCalls, "mutation bumps the cache version")
}

func TestWarmDashboardPrimesCache(t *testing.T) {
	svc, repo := newTestService(t)

	require.NoError(t, svc.WarmDashboard(context.Background()))
	repoCalls := repo.countCalls

	_, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repoCalls, repo.countCalls, "warmed dashboard serves from cache")
}
