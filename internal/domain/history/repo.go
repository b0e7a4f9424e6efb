package history

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Append(ctx context.Context, e *Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO history
		(operation_type, lot_number, style, volume_l, material_name, qty_deducted, status, details)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at
	`, e.OperationType, e.LotNumber, e.Style, e.VolumeL, e.MaterialName, e.QtyDeducted, e.Status, details)
	return row.Scan(&e.ID, &e.CreatedAt)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var details []byte
		if err := rows.Scan(
			&e.ID, &e.CreatedAt, &e.OperationType, &e.LotNumber, &e.Style,
			&e.VolumeL, &e.MaterialName, &e.QtyDeducted, &e.Status, &details,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const entryCols = `id, created_at, operation_type, lot_number, style, volume_l, material_name, qty_deducted, status, details`

func (r *Repo) List(ctx context.Context, limit int) ([]Entry, error) {
	return r.list(ctx, `
		SELECT `+entryCols+` FROM history ORDER BY created_at DESC LIMIT $1
	`, limit)
}

func (r *Repo) ListByLot(ctx context.Context, lotNumber string) ([]Entry, error) {
	return r.list(ctx, `
		SELECT `+entryCols+` FROM history WHERE lot_number = $1 ORDER BY created_at
	`, lotNumber)
}
