package costs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// ReplaceMonth swaps the whole fixed-cost set for one month in a single
// transaction, mirroring how the costs screen saves the full form at once.
func (r *Repo) ReplaceMonth(ctx context.Context, month, year int, items []FixedCost) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM fixed_costs WHERE month=$1 AND year=$2`, month, year); err != nil {
		return err
	}
	for _, c := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO fixed_costs (concept, amount, month, year)
			VALUES ($1,$2,$3,$4)
		`, c.Concept, c.Amount, month, year); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) ListMonth(ctx context.Context, month, year int) ([]FixedCost, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, concept, amount, month, year
		FROM fixed_costs WHERE month=$1 AND year=$2 ORDER BY concept
	`, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FixedCost
	for rows.Next() {
		var c FixedCost
		if err := rows.Scan(&c.ID, &c.Concept, &c.Amount, &c.Month, &c.Year); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
