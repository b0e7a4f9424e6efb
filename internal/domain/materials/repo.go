package materials

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const cols = `id, name, type, stock, unit, reorder_point, unit_cost, capacity_l, updated_at`

func scanMaterial(row pgx.Row) (*Material, error) {
	var m Material
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Type,
		&m.Stock,
		&m.Unit,
		&m.ReorderPoint,
		&m.UnitCost,
		&m.CapacityL,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, m *Material) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO materials (name, type, stock, unit, reorder_point, unit_cost, capacity_l)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+cols,
		m.Name, m.Type, m.Stock, m.Unit, m.ReorderPoint, m.UnitCost, m.CapacityL)
	return scanMaterial(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cols+` FROM materials WHERE id = $1`, id)
	m, err := scanMaterial(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// GetByName resolves a material by its natural key. Name comparison is
// case-insensitive, matching how recipe lines reference materials.
func (r *Repo) GetByName(ctx context.Context, name string) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+cols+` FROM materials WHERE LOWER(name) = LOWER($1)
	`, strings.TrimSpace(name))
	m, err := scanMaterial(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *Repo) List(ctx context.Context, typ Type) ([]Material, error) {
	q := `SELECT ` + cols + ` FROM materials`
	args := []any{}
	if typ != "" {
		q += ` WHERE type = $1`
		args = append(args, typ)
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, m *Material) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE materials
		SET name=$2, type=$3, stock=$4, unit=$5, reorder_point=$6, unit_cost=$7, capacity_l=$8, updated_at=now()
		WHERE id=$1
		RETURNING `+cols,
		m.ID, m.Name, m.Type, m.Stock, m.Unit, m.ReorderPoint, m.UnitCost, m.CapacityL)
	out, err := scanMaterial(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return out, err
}

// UpdateStockCAS writes a new stock level only if the row still holds the
// previously read value. Returns false when another writer got there first;
// the caller re-reads and retries. This is what keeps concurrent
// confirmations that share a material from losing deductions.
func (r *Repo) UpdateStockCAS(ctx context.Context, id int64, prev, next float64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE materials SET stock=$3, updated_at=now()
		WHERE id=$1 AND stock=$2
	`, id, prev, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AdjustStock applies a manual delta (goods received, spillage correction).
// The result is clamped at zero like workflow deductions.
func (r *Repo) AdjustStock(ctx context.Context, id int64, delta float64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE materials SET stock = GREATEST(0, stock + $2), updated_at=now()
		WHERE id=$1
		RETURNING `+cols, id, delta)
	m, err := scanMaterial(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id=$1`, id)
	return err
}

// ListBelowReorder returns materials whose stock sits at or under their
// reorder point, lowest stock first. Feeds the dashboard and alerting.
func (r *Repo) ListBelowReorder(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+cols+` FROM materials
		WHERE stock <= reorder_point
		ORDER BY stock
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
