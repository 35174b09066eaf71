package taxes

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context) ([]TaxCode, error)
	Get(ctx context.Context, id int64) (TaxCode, error)
	GetByCode(ctx context.Context, code string) (TaxCode, error)
	Create(ctx context.Context, tax TaxCode) (TaxCode, error)
	Update(ctx context.Context, id int64, tax TaxCode) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const taxColumns = `id, code, description, percent, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]TaxCode, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taxColumns+` FROM tax_codes ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taxes []TaxCode
	for rows.Next() {
		var t TaxCode
		if err := rows.Scan(&t.ID, &t.Code, &t.Description, &t.Percent, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		taxes = append(taxes, t)
	}
	return taxes, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (TaxCode, error) {
	var t TaxCode
	err := r.db.QueryRow(ctx, `SELECT `+taxColumns+` FROM tax_codes WHERE id = $1`, id).
		Scan(&t.ID, &t.Code, &t.Description, &t.Percent, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return TaxCode{}, shared.ErrNotFound
	}
	return t, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (TaxCode, error) {
	var t TaxCode
	err := r.db.QueryRow(ctx, `SELECT `+taxColumns+` FROM tax_codes WHERE code = $1`, code).
		Scan(&t.ID, &t.Code, &t.Description, &t.Percent, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return TaxCode{}, shared.ErrNotFound
	}
	return t, err
}

func (r *repository) Create(ctx context.Context, tax TaxCode) (TaxCode, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO tax_codes (code, description, percent, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		tax.Code, tax.Description, tax.Percent, tax.IsActive, now, now,
	).Scan(&tax.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return TaxCode{}, shared.ErrDuplicate
		}
		return TaxCode{}, err
	}
	tax.CreatedAt = now
	tax.UpdatedAt = now
	return tax, nil
}

func (r *repository) Update(ctx context.Context, id int64, tax TaxCode) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tax_codes SET code = $1, description = $2, percent = $3, is_active = $4, updated_at = $5 WHERE id = $6`,
		tax.Code, tax.Description, tax.Percent, tax.IsActive, time.Now(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tax_codes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
