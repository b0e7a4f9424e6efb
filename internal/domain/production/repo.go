package production

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const opCols = `id, date, operation_type, lot_number, style, volume_l, location,
	container_type, closure_type, label_type, estimated_cost, confirmed, created_at`

func scanOp(row pgx.Row) (*Operation, error) {
	var op Operation
	err := row.Scan(
		&op.ID, &op.Date, &op.OperationType, &op.LotNumber, &op.Style,
		&op.VolumeL, &op.Location, &op.ContainerType, &op.ClosureType,
		&op.LabelType, &op.EstimatedCost, &op.Confirmed, &op.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *Repo) Create(ctx context.Context, op *Operation) (*Operation, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO production_operations
		(date, operation_type, lot_number, style, volume_l, location,
		 container_type, closure_type, label_type, estimated_cost, confirmed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,FALSE)
		RETURNING `+opCols,
		op.Date, op.OperationType, op.LotNumber, op.Style, op.VolumeL,
		op.Location, op.ContainerType, op.ClosureType, op.LabelType, op.EstimatedCost)
	return scanOp(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Operation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+opCols+` FROM production_operations WHERE id=$1`, id)
	op, err := scanOp(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return op, err
}

func (r *Repo) List(ctx context.Context) ([]Operation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+opCols+` FROM production_operations ORDER BY date DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Operation
	for rows.Next() {
		op, err := scanOp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *op)
	}
	return out, rows.Err()
}

func (r *Repo) ListByLot(ctx context.Context, lotNumber string) ([]Operation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+opCols+` FROM production_operations WHERE lot_number=$1 ORDER BY date
	`, lotNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Operation
	for rows.Next() {
		op, err := scanOp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *op)
	}
	return out, rows.Err()
}

// MarkConfirmed is the workflow's commit point. The confirmed guard lives
// in the statement itself so a second confirmation can never match the row.
func (r *Repo) MarkConfirmed(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE production_operations SET confirmed=TRUE
		WHERE id=$1 AND confirmed=FALSE
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteDraft deletes only while unconfirmed. The guard is part of the
// statement, not a read-then-delete, so a concurrent confirmation cannot
// slip between check and delete.
func (r *Repo) DeleteDraft(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM production_operations WHERE id=$1 AND confirmed=FALSE
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
