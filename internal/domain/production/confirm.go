package production

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pagoa/brewops/internal/domain/finished"
	"github.com/pagoa/brewops/internal/domain/history"
	"github.com/pagoa/brewops/internal/domain/recipes"
	"github.com/pagoa/brewops/internal/infra/metrics"
)

// stockRetries bounds how often a losing CAS write on a shared material is
// retried before the confirmation gives up with ErrStockConflict.
const stockRetries = 5

// shelfLifeMonths is the fixed shelf life applied to every packaged lot.
const shelfLifeMonths = 6

type Service struct {
	ops      OperationStore
	recipes  RecipeStore
	mats     MaterialStore
	finished FinishedStore
	hist     HistoryStore
	notify   Notifier
	log      *slog.Logger
}

func NewService(ops OperationStore, rec RecipeStore, mats MaterialStore,
	fin FinishedStore, hist HistoryStore, notify Notifier, log *slog.Logger) *Service {
	return &Service{ops: ops, recipes: rec, mats: mats, finished: fin, hist: hist, notify: notify, log: log}
}

// Deduction is one applied stock movement. Shortfall is the pre-clamp
// deficit: how much the recipe wanted beyond what the ledger held.
type Deduction struct {
	MaterialName  string  `json:"material_name"`
	Qty           float64 `json:"qty"`
	PreviousStock float64 `json:"previous_stock"`
	NewStock      float64 `json:"new_stock"`
	Shortfall     float64 `json:"shortfall,omitempty"`
}

// ConfirmResult reports what a confirmation did. When Confirm also returns
// an error, Applied tells the caller whether any side effect landed before
// the failure: false means nothing happened, true means stock and audit
// rows need operator attention.
type ConfirmResult struct {
	OperationID      int64         `json:"operation_id"`
	Deductions       []Deduction   `json:"deductions,omitempty"`
	SkippedMaterials []string      `json:"skipped_materials,omitempty"`
	Lot              *finished.Lot `json:"lot,omitempty"`
	Applied          bool          `json:"applied"`
}

// Confirm transitions a draft operation to its terminal confirmed state:
// deducts recipe-driven quantities from raw-material stock, appends one
// audit entry per material consumed, creates a finished-goods lot for
// packaging operations, and finally flips the confirmed flag. There is no
// rollback of earlier steps on failure; the result flags partial
// application instead.
func (s *Service) Confirm(ctx context.Context, id int64) (*ConfirmResult, error) {
	res := &ConfirmResult{OperationID: id}

	op, err := s.ops.GetByID(ctx, id)
	if err != nil {
		return res, fmt.Errorf("fetch operation %d: %w", id, err)
	}
	if op == nil {
		return res, fmt.Errorf("operation %d: %w", id, ErrNotFound)
	}
	if op.Confirmed {
		return res, fmt.Errorf("operation %d already confirmed: %w", id, ErrPrecondition)
	}

	// No recipe lines is not an error: there is simply nothing to deduct.
	lines, err := s.recipes.ListFor(ctx, op.Style, op.OperationType)
	if err != nil {
		return res, fmt.Errorf("fetch recipe for %q/%q: %w", op.Style, op.OperationType, err)
	}

	for _, line := range lines {
		if err := s.deductLine(ctx, op, line, res); err != nil {
			return res, err
		}
	}

	if op.OperationType == recipes.OpPackaging && strings.TrimSpace(op.ContainerType) != "" {
		lot, err := s.createLot(ctx, op)
		if err != nil {
			return res, err
		}
		res.Applied = true
		res.Lot = lot
	}

	ok, err := s.ops.MarkConfirmed(ctx, id)
	if err != nil {
		return res, fmt.Errorf("confirm operation %d: %w", id, err)
	}
	if !ok {
		// A concurrent confirmation won the commit. Our deductions still
		// stand, so surface that rather than pretend nothing happened.
		return res, fmt.Errorf("operation %d no longer a draft: %w", id, ErrPrecondition)
	}

	metrics.ConfirmationsTotal.WithLabelValues(string(op.OperationType)).Inc()
	s.log.Info("operation confirmed",
		"operation_id", op.ID, "lot", op.LotNumber, "style", op.Style,
		"deductions", len(res.Deductions), "skipped", len(res.SkippedMaterials))

	s.alertLowStock(ctx, res)
	return res, nil
}

// deductLine applies one recipe line: compute the scaled quantity, write
// the clamped stock conditionally on the previously read value, then
// append the audit entry. The audit write happens strictly after the stock
// write succeeds; entries record what happened, not what was intended.
func (s *Service) deductLine(ctx context.Context, op *Operation, line recipes.Line, res *ConfirmResult) error {
	required := requiredQuantity(line.QtyPer100L, op.VolumeL)

	m, err := s.mats.GetByName(ctx, line.MaterialName)
	if err != nil {
		return fmt.Errorf("lookup material %q for operation %d: %w", line.MaterialName, op.ID, err)
	}
	if m == nil {
		// Non-fatal, but never silent: the line is skipped and reported.
		s.log.Warn("recipe material not found, line skipped",
			"material", line.MaterialName, "operation_id", op.ID, "lot", op.LotNumber)
		res.SkippedMaterials = append(res.SkippedMaterials, line.MaterialName)
		return nil
	}

	var stored float64
	for attempt := 0; ; attempt++ {
		stored = math.Max(0, m.Stock-required)
		ok, err := s.mats.UpdateStockCAS(ctx, m.ID, m.Stock, stored)
		if err != nil {
			return fmt.Errorf("deduct %q for operation %d: %w", m.Name, op.ID, err)
		}
		if ok {
			break
		}
		metrics.StockConflictsTotal.Inc()
		if attempt+1 >= stockRetries {
			return fmt.Errorf("deduct %q for operation %d: %w", m.Name, op.ID, ErrStockConflict)
		}
		// Lost the race: re-read by id and recompute from the fresh value.
		m, err = s.mats.GetByID(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("refetch material %q for operation %d: %w", line.MaterialName, op.ID, err)
		}
		if m == nil {
			return fmt.Errorf("material %q vanished during operation %d: %w", line.MaterialName, op.ID, ErrNotFound)
		}
	}

	res.Applied = true
	res.Deductions = append(res.Deductions, Deduction{
		MaterialName:  m.Name,
		Qty:           required,
		PreviousStock: m.Stock,
		NewStock:      stored,
		Shortfall:     math.Max(0, required-m.Stock),
	})

	err = s.hist.Append(ctx, &history.Entry{
		OperationType: string(op.OperationType),
		LotNumber:     op.LotNumber,
		Style:         op.Style,
		VolumeL:       op.VolumeL,
		MaterialName:  m.Name,
		QtyDeducted:   required,
		Status:        history.StatusActive,
		Details: history.Details{
			ProductionID:  op.ID,
			PreviousStock: m.Stock,
			NewStock:      stored,
		},
	})
	if err != nil {
		return fmt.Errorf("audit %q for operation %d: %w", m.Name, op.ID, err)
	}
	return nil
}

// createLot derives the finished-goods record for a packaging operation.
// Units come from the container capacity; an unresolvable container yields
// zero units rather than an error.
func (s *Service) createLot(ctx context.Context, op *Operation) (*finished.Lot, error) {
	var units int64
	container, err := s.mats.GetByName(ctx, op.ContainerType)
	if err != nil {
		return nil, fmt.Errorf("lookup container %q for operation %d: %w", op.ContainerType, op.ID, err)
	}
	if container != nil && container.CapacityL != nil && *container.CapacityL > 0 {
		units = decimal.NewFromFloat(op.VolumeL).
			Div(decimal.NewFromFloat(*container.CapacityL)).
			IntPart()
	} else {
		s.log.Warn("container capacity unresolved, lot created with zero units",
			"container", op.ContainerType, "operation_id", op.ID)
	}

	lot := &finished.Lot{
		LotNumber:     op.LotNumber,
		Style:         op.Style,
		ContainerType: op.ContainerType,
		UnitsProduced: units,
		PackagedOn:    op.Date,
		ExpiresOn:     addMonths(op.Date, shelfLifeMonths),
		Location:      op.Location,
	}
	if _, err := s.finished.Create(ctx, lot); err != nil {
		return nil, fmt.Errorf("create finished lot %q for operation %d: %w", op.LotNumber, op.ID, err)
	}
	return lot, nil
}

// alertLowStock pushes a best-effort notification for every material the
// confirmation drove to or under its reorder point.
func (s *Service) alertLowStock(ctx context.Context, res *ConfirmResult) {
	if s.notify == nil {
		return
	}
	for _, d := range res.Deductions {
		m, err := s.mats.GetByName(ctx, d.MaterialName)
		if err != nil || m == nil {
			continue
		}
		if m.BelowReorder() {
			s.notify.LowStock(ctx, m.Name, m.Stock, m.ReorderPoint, m.Unit)
		}
	}
}

// addMonths shifts a date by whole months, clamping to the last day of the
// target month instead of letting short months spill over (Aug 31 + 6
// months is Feb 28/29, not Mar 3).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}
