package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficient: the sale would exceed the units the lot still holds.
var ErrInsufficient = errors.New("insufficient finished stock")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Create inserts the sale only while the lot still holds enough unsold
// units. The availability check and the insert run in one transaction
// under an advisory lock keyed by lot and presentation, so two concurrent
// sales cannot both pass the check and oversell the lot.
func (r *Repo) Create(ctx context.Context, s *Sale) (*Sale, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1 || '/' || $2))`,
		s.LotNumber, s.Presentation); err != nil {
		return nil, err
	}

	var available int64
	err = tx.QueryRow(ctx, `
		SELECT f.units_produced - COALESCE((
			SELECT SUM(q.quantity) FROM sales q
			WHERE q.lot_number = f.lot_number AND q.presentation = f.container_type
		), 0)::BIGINT
		FROM finished_goods f
		WHERE f.lot_number = $1 AND f.container_type = $2
	`, s.LotNumber, s.Presentation).Scan(&available)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("lot %s (%s) not in finished goods: %w", s.LotNumber, s.Presentation, ErrInsufficient)
	}
	if err != nil {
		return nil, err
	}
	if s.Quantity > available {
		return nil, fmt.Errorf("lot %s has %d units left: %w", s.LotNumber, available, ErrInsufficient)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO sales
		(date, lot_number, customer, style, presentation, quantity, unit_price, channel, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at
	`, s.Date, s.LotNumber, s.Customer, s.Style, s.Presentation, s.Quantity, s.UnitPrice, s.Channel, s.CreatedBy)
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repo) List(ctx context.Context) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, date, lot_number, customer, style, presentation, quantity, unit_price, channel, created_by, created_at
		FROM sales ORDER BY date DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.Date, &s.LotNumber, &s.Customer, &s.Style,
			&s.Presentation, &s.Quantity, &s.UnitPrice, &s.Channel, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id=$1`, id)
	return err
}
