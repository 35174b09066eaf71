package crm

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ListLeads(ctx context.Context, filters LeadFilters) ([]Lead, int, error)
	GetLead(ctx context.Context, id int64) (Lead, error)
	CreateLead(ctx context.Context, lead Lead) (Lead, error)
	UpdateLead(ctx context.Context, id int64, lead Lead) error
	UpdateLeadStatus(ctx context.Context, id int64, status LeadStatus) error

	ListTickets(ctx context.Context, filters TicketFilters) ([]Ticket, int, error)
	GetTicket(ctx context.Context, id int64) (Ticket, error)
	CreateTicket(ctx context.Context, ticket Ticket) (Ticket, error)
	UpdateTicket(ctx context.Context, id int64, ticket Ticket) error
	UpdateTicketStatus(ctx context.Context, id int64, status TicketStatus) error

	CountLeadsByStatus(ctx context.Context) (map[LeadStatus]int, error)
	CountTicketsByStatus(ctx context.Context) (map[TicketStatus]int, error)
	RecentLeads(ctx context.Context, limit int) ([]Lead, error)
	RecentTickets(ctx context.Context, limit int) ([]Ticket, error)
}

type LeadFilters struct {
	Status *LeadStatus
	Search string
	Page   int
	Limit  int
}

type TicketFilters struct {
	Status     *TicketStatus
	Priority   *TicketPriority
	CustomerID *int64
	Search     string
	Page       int
	Limit      int
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const leadColumns = `id, name, company, email, phone, source, status, notes, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Company, &l.Email, &l.Phone, &l.Source, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *repository) ListLeads(ctx context.Context, filters LeadFilters) ([]Lead, int, error) {
	query := `SELECT ` + leadColumns + ` FROM crm_leads WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM crm_leads WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Status != nil {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.Status)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR company ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

func (r *repository) GetLead(ctx context.Context, id int64) (Lead, error) {
	lead, err := scanLead(r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM crm_leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *repository) CreateLead(ctx context.Context, lead Lead) (Lead, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO crm_leads (name, company, email, phone, source, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+leadColumns,
		lead.Name, lead.Company, lead.Email, lead.Phone, lead.Source, lead.Status, lead.Notes)
	return scanLead(row)
}

func (r *repository) UpdateLead(ctx context.Context, id int64, lead Lead) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE crm_leads
		SET name = $1, company = $2, email = $3, phone = $4, source = $5, notes = $6, updated_at = NOW()
		WHERE id = $7`,
		lead.Name, lead.Company, lead.Email, lead.Phone, lead.Source, lead.Notes, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateLeadStatus(ctx context.Context, id int64, status LeadStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE crm_leads SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const ticketColumns = `id, subject, customer_id, priority, status, description, created_at, updated_at`

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.Subject, &t.CustomerID, &t.Priority, &t.Status, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *repository) ListTickets(ctx context.Context, filters TicketFilters) ([]Ticket, int, error) {
	query := `SELECT ` + ticketColumns + ` FROM crm_tickets WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM crm_tickets WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Status != nil {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.Status)
	}
	if filters.Priority != nil {
		argCount++
		clause := ` AND priority = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.Priority)
	}
	if filters.CustomerID != nil {
		argCount++
		clause := ` AND customer_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.CustomerID)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND subject ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, total, rows.Err()
}

func (r *repository) GetTicket(ctx context.Context, id int64) (Ticket, error) {
	ticket, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM crm_tickets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, ErrNotFound
	}
	return ticket, err
}

func (r *repository) CreateTicket(ctx context.Context, ticket Ticket) (Ticket, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO crm_tickets (subject, customer_id, priority, status, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+ticketColumns,
		ticket.Subject, ticket.CustomerID, ticket.Priority, ticket.Status, ticket.Description)
	return scanTicket(row)
}

func (r *repository) UpdateTicket(ctx context.Context, id int64, ticket Ticket) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE crm_tickets
		SET subject = $1, customer_id = $2, priority = $3, description = $4, updated_at = NOW()
		WHERE id = $5`,
		ticket.Subject, ticket.CustomerID, ticket.Priority, ticket.Description, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateTicketStatus(ctx context.Context, id int64, status TicketStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE crm_tickets SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountLeadsByStatus(ctx context.Context) (map[LeadStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM crm_leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[LeadStatus]int)
	for rows.Next() {
		var status LeadStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *repository) CountTicketsByStatus(ctx context.Context) (map[TicketStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM crm_tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[TicketStatus]int)
	for rows.Next() {
		var status TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *repository) RecentLeads(ctx context.Context, limit int) ([]Lead, error) {
	rows, err := r.db.Query(ctx, `SELECT `+leadColumns+` FROM crm_leads ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *repository) RecentTickets(ctx context.Context, limit int) ([]Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM crm_tickets ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
