package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zambezi-erp/zambezi-erp/internal/platform/db"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Document, error)
	GetByNumber(ctx context.Context, docNumber string) (*Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]DocumentWithParty, int, error)
	Create(ctx context.Context, doc Document) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status DocStatus) error
	InsertLine(ctx context.Context, line DocumentLine) (int64, error)
	DeleteLines(ctx context.Context, documentID int64) error
	NextNumber(ctx context.Context, docType DocType, issueDate time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const documentColumns = `id, doc_number, doc_type, party_id, status, currency, exchange_rate,
	issue_date, due_date, lpo_number,
	billing_line1, billing_line2, billing_city, billing_country,
	shipping_line1, shipping_line2, shipping_city, shipping_country,
	payment_method, payment_reference, payment_bank_details,
	terms, notes, subtotal, tax_total, grand_total, created_at, updated_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(
		&d.ID, &d.DocNumber, &d.Type, &d.PartyID, &d.Status, &d.Currency, &d.ExchangeRate,
		&d.IssueDate, &d.DueDate, &d.LPONumber,
		&d.Billing.Line1, &d.Billing.Line2, &d.Billing.City, &d.Billing.Country,
		&d.Shipping.Line1, &d.Shipping.Line2, &d.Shipping.City, &d.Shipping.Country,
		&d.Payment.Method, &d.Payment.Reference, &d.Payment.BankDetails,
		&d.Terms, &d.Notes, &d.Subtotal, &d.TaxTotal, &d.GrandTotal, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Document, error) {
	doc, err := scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	lines, err := r.lines(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return &doc, nil
}

func (r *repository) GetByNumber(ctx context.Context, docNumber string) (*Document, error) {
	doc, err := scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE doc_number = $1`, docNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	lines, err := r.lines(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return &doc, nil
}

func (r *repository) lines(ctx context.Context, documentID int64) ([]DocumentLine, error) {
	const query = `SELECT id, document_id, item_code, description, quantity, uom, unit_price,
		discount_percent, discount_amount, tax_code, tax_percent, tax_amount, line_total, line_order
		FROM document_lines WHERE document_id = $1 ORDER BY line_order, id`
	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []DocumentLine
	for rows.Next() {
		var l DocumentLine
		err := rows.Scan(
			&l.ID, &l.DocumentID, &l.ItemCode, &l.Description, &l.Quantity, &l.UOM, &l.UnitPrice,
			&l.DiscountPercent, &l.DiscountAmount, &l.TaxCode, &l.TaxPercent, &l.TaxAmount, &l.LineTotal, &l.LineOrder,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListDocumentsRequest) ([]DocumentWithParty, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if len(req.Types) > 0 {
		conditions = append(conditions, fmt.Sprintf("d.doc_type = ANY($%d)", argPos))
		types := make([]string, len(req.Types))
		for i, t := range req.Types {
			types[i] = string(t)
		}
		args = append(args, types)
		argPos++
	}
	if req.PartyID != nil {
		conditions = append(conditions, fmt.Sprintf("d.party_id = $%d", argPos))
		args = append(args, *req.PartyID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("d.issue_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("d.issue_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(d.doc_number ILIKE $%d OR d.lpo_number ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	whereClause := ""
	for i, cond := range conditions {
		if i == 0 {
			whereClause = "WHERE " + cond
			continue
		}
		whereClause += " AND " + cond
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM documents d %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT d.id, d.doc_number, d.doc_type, d.party_id, d.status, d.currency, d.exchange_rate,
		       d.issue_date, d.due_date, d.lpo_number, d.subtotal, d.tax_total, d.grand_total,
		       d.created_at, d.updated_at,
		       COALESCE(c.name, s.name, '') AS party_name
		FROM documents d
		LEFT JOIN customers c ON d.party_side = 'CUSTOMER' AND d.party_id = c.id
		LEFT JOIN suppliers s ON d.party_side = 'SUPPLIER' AND d.party_id = s.id
		%s
		ORDER BY d.issue_date DESC, d.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []DocumentWithParty
	for rows.Next() {
		var d DocumentWithParty
		err := rows.Scan(
			&d.ID, &d.DocNumber, &d.Type, &d.PartyID, &d.Status, &d.Currency, &d.ExchangeRate,
			&d.IssueDate, &d.DueDate, &d.LPONumber, &d.Subtotal, &d.TaxTotal, &d.GrandTotal,
			&d.CreatedAt, &d.UpdatedAt, &d.PartyName,
		)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, doc Document) (int64, error) {
	const query = `INSERT INTO documents (doc_number, doc_type, party_side, party_id, status, currency, exchange_rate,
		issue_date, due_date, lpo_number,
		billing_line1, billing_line2, billing_city, billing_country,
		shipping_line1, shipping_line2, shipping_city, shipping_country,
		payment_method, payment_reference, payment_bank_details,
		terms, notes, subtotal, tax_total, grand_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		        $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING id`
	now := time.Now()
	var id int64
	err := r.db.QueryRow(ctx, query,
		doc.DocNumber, doc.Type, doc.Type.Side(), doc.PartyID, doc.Status, doc.Currency, doc.ExchangeRate,
		doc.IssueDate, doc.DueDate, doc.LPONumber,
		doc.Billing.Line1, doc.Billing.Line2, doc.Billing.City, doc.Billing.Country,
		doc.Shipping.Line1, doc.Shipping.Line2, doc.Shipping.City, doc.Shipping.Country,
		doc.Payment.Method, doc.Payment.Reference, doc.Payment.BankDetails,
		doc.Terms, doc.Notes, doc.Subtotal, doc.TaxTotal, doc.GrandTotal, now, now,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE documents SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	// Column whitelist; anything else in the map is a programming error.
	for _, col := range []string{
		"issue_date", "due_date", "lpo_number",
		"billing_line1", "billing_line2", "billing_city", "billing_country",
		"shipping_line1", "shipping_line2", "shipping_city", "shipping_country",
		"payment_method", "payment_reference", "payment_bank_details",
		"terms", "notes", "subtotal", "tax_total", "grand_total",
	} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}
	if len(args) == 0 {
		return nil
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status DocStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE documents SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, line DocumentLine) (int64, error) {
	const query = `INSERT INTO document_lines (document_id, item_code, description, quantity, uom, unit_price,
		discount_percent, discount_amount, tax_code, tax_percent, tax_amount, line_total, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		line.DocumentID, line.ItemCode, line.Description, line.Quantity, line.UOM, line.UnitPrice,
		line.DiscountPercent, line.DiscountAmount, line.TaxCode, line.TaxPercent, line.TaxAmount,
		line.LineTotal, line.LineOrder,
	).Scan(&id)
	return id, err
}

func (r *repository) DeleteLines(ctx context.Context, documentID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, documentID)
	return err
}

// NextNumber allocates the next sequence for the type and year. The
// counters row is locked for the duration of the surrounding transaction.
func (r *repository) NextNumber(ctx context.Context, docType DocType, issueDate time.Time) (string, error) {
	year := issueDate.Year()
	const query = `INSERT INTO document_counters (doc_type, year, counter)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, year) DO UPDATE SET counter = document_counters.counter + 1
		RETURNING counter`
	var counter int
	if err := r.db.QueryRow(ctx, query, docType, year).Scan(&counter); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%05d", docType.Prefix(), year, counter), nil
}
