package finished

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, l *Lot) (*Lot, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO finished_goods
		(lot_number, style, container_type, units_produced, packaged_on, expires_on, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, l.LotNumber, l.Style, l.ContainerType, l.UnitsProduced, l.PackagedOn, l.ExpiresOn, l.Location)
	if err := row.Scan(&l.ID); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *Repo) List(ctx context.Context) ([]Lot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lot_number, style, container_type, units_produced, packaged_on, expires_on, location
		FROM finished_goods
		ORDER BY packaged_on DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lot
	for rows.Next() {
		var l Lot
		if err := rows.Scan(&l.ID, &l.LotNumber, &l.Style, &l.ContainerType,
			&l.UnitsProduced, &l.PackagedOn, &l.ExpiresOn, &l.Location); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) GetByLotAndContainer(ctx context.Context, lotNumber, containerType string) (*Lot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, lot_number, style, container_type, units_produced, packaged_on, expires_on, location
		FROM finished_goods WHERE lot_number=$1 AND container_type=$2
	`, lotNumber, containerType)
	var l Lot
	err := row.Scan(&l.ID, &l.LotNumber, &l.Style, &l.ContainerType,
		&l.UnitsProduced, &l.PackagedOn, &l.ExpiresOn, &l.Location)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListWithAvailability joins each lot with its cumulative sales so callers
// see produced, sold and remaining units per lot.
func (r *Repo) ListWithAvailability(ctx context.Context) ([]LotAvailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id, f.lot_number, f.style, f.container_type, f.units_produced,
		       f.packaged_on, f.expires_on, f.location,
		       COALESCE(SUM(s.quantity), 0)::BIGINT AS units_sold
		FROM finished_goods f
		LEFT JOIN sales s ON s.lot_number = f.lot_number AND s.presentation = f.container_type
		GROUP BY f.id
		ORDER BY f.packaged_on DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LotAvailability
	for rows.Next() {
		var la LotAvailability
		if err := rows.Scan(&la.ID, &la.LotNumber, &la.Style, &la.ContainerType,
			&la.UnitsProduced, &la.PackagedOn, &la.ExpiresOn, &la.Location, &la.UnitsSold); err != nil {
			return nil, err
		}
		la.UnitsAvailable = la.UnitsProduced - la.UnitsSold
		out = append(out, la)
	}
	return out, rows.Err()
}
