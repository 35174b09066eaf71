package fx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, currency string) (Rate, error)
	List(ctx context.Context) ([]Rate, error)
	Upsert(ctx context.Context, rate Rate) (Rate, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, currency string) (Rate, error) {
	const query = `SELECT currency, rate, as_of, updated_at FROM exchange_rates WHERE currency = $1`
	var rate Rate
	err := r.db.QueryRow(ctx, query, NormalizeCurrency(currency)).
		Scan(&rate.Currency, &rate.Rate, &rate.AsOf, &rate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rate{}, ErrUnknownCurrency
		}
		return Rate{}, err
	}
	return rate, nil
}

func (r *repository) List(ctx context.Context) ([]Rate, error) {
	const query = `SELECT currency, rate, as_of, updated_at FROM exchange_rates ORDER BY currency`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		var rate Rate
		if err := rows.Scan(&rate.Currency, &rate.Rate, &rate.AsOf, &rate.UpdatedAt); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func (r *repository) Upsert(ctx context.Context, rate Rate) (Rate, error) {
	const query = `
		INSERT INTO exchange_rates (currency, rate, as_of, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (currency) DO UPDATE SET rate = $2, as_of = $3, updated_at = $4
		RETURNING currency, rate, as_of, updated_at`
	now := time.Now()
	asOf := rate.AsOf
	if asOf.IsZero() {
		asOf = now
	}
	var saved Rate
	err := r.db.QueryRow(ctx, query, NormalizeCurrency(rate.Currency), rate.Rate, asOf, now).
		Scan(&saved.Currency, &saved.Rate, &saved.AsOf, &saved.UpdatedAt)
	if err != nil {
		return Rate{}, err
	}
	return saved, nil
}
