package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Revenue(ctx context.Context, from, to time.Time) (float64, int64, error) {
	var revenue float64
	var units int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity * unit_price), 0), COALESCE(SUM(quantity), 0)::BIGINT
		FROM sales WHERE date >= $1 AND date < $2
	`, from, to).Scan(&revenue, &units)
	return revenue, units, err
}

// VariableCosts sums the estimated cost of confirmed operations in the
// window. Drafts are excluded: their materials have not been consumed.
func (r *Repo) VariableCosts(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(estimated_cost), 0)
		FROM production_operations
		WHERE confirmed = TRUE AND date >= $1 AND date < $2
	`, from, to).Scan(&total)
	return total, err
}

func (r *Repo) FixedCosts(ctx context.Context, month, year int) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM fixed_costs WHERE month=$1 AND year=$2
	`, month, year).Scan(&total)
	return total, err
}

type styleSales struct {
	Style   string
	Units   int64
	Revenue float64
}

func (r *Repo) salesByStyle(ctx context.Context, from, to time.Time) ([]styleSales, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT style, COALESCE(SUM(quantity), 0)::BIGINT, COALESCE(SUM(quantity * unit_price), 0)
		FROM sales WHERE date >= $1 AND date < $2
		GROUP BY style ORDER BY style
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []styleSales
	for rows.Next() {
		var s styleSales
		if err := rows.Scan(&s.Style, &s.Units, &s.Revenue); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) costsByStyle(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT style, COALESCE(SUM(estimated_cost), 0)
		FROM production_operations
		WHERE confirmed = TRUE AND date >= $1 AND date < $2
		GROUP BY style
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var style string
		var cost float64
		if err := rows.Scan(&style, &cost); err != nil {
			return nil, err
		}
		out[style] = cost
	}
	return out, rows.Err()
}
