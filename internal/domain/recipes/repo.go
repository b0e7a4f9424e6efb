package recipes

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, l *Line) (*Line, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO recipe_lines (style, operation_type, material_name, qty_per_100l, unit)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, style, operation_type, material_name, qty_per_100l, unit
	`, l.Style, l.OperationType, l.MaterialName, l.QtyPer100L, l.Unit)

	var out Line
	if err := row.Scan(&out.ID, &out.Style, &out.OperationType, &out.MaterialName, &out.QtyPer100L, &out.Unit); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFor returns every line of the recipe for a style and operation type.
// An empty slice means "no recipe"; callers treat that as nothing to deduct.
func (r *Repo) ListFor(ctx context.Context, style string, op OperationType) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, style, operation_type, material_name, qty_per_100l, unit
		FROM recipe_lines
		WHERE style = $1 AND operation_type = $2
		ORDER BY material_name
	`, style, op)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.Style, &l.OperationType, &l.MaterialName, &l.QtyPer100L, &l.Unit); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Line, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, style, operation_type, material_name, qty_per_100l, unit
		FROM recipe_lines WHERE id = $1
	`, id)
	var l Line
	if err := row.Scan(&l.ID, &l.Style, &l.OperationType, &l.MaterialName, &l.QtyPer100L, &l.Unit); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *Repo) Update(ctx context.Context, l *Line) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE recipe_lines
		SET style=$2, operation_type=$3, material_name=$4, qty_per_100l=$5, unit=$6
		WHERE id=$1
	`, l.ID, l.Style, l.OperationType, l.MaterialName, l.QtyPer100L, l.Unit)
	return err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM recipe_lines WHERE id=$1`, id)
	return err
}

// ListStyles returns the distinct beer styles that have at least one recipe line.
func (r *Repo) ListStyles(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT style FROM recipe_lines ORDER BY style`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
