package production

import (
	"context"
	"fmt"
	"strings"

	"github.com/pagoa/brewops/internal/domain/recipes"
)

// Estimate previews the material cost of a batch before any draft exists.
// The caller decides what to do with insufficiency warnings; nothing here
// blocks.
func (s *Service) Estimate(ctx context.Context, style string, op recipes.OperationType, volumeL float64) (*Estimate, error) {
	lines, err := s.recipes.ListFor(ctx, style, op)
	if err != nil {
		return nil, fmt.Errorf("fetch recipe for %q/%q: %w", style, op, err)
	}
	return EstimateCost(ctx, s.mats, lines, volumeL)
}

func validateDraft(op *Operation) error {
	var missing []string
	if op.Date.IsZero() {
		missing = append(missing, "date")
	}
	switch op.OperationType {
	case recipes.OpMash, recipes.OpPackaging:
	default:
		missing = append(missing, "operation_type")
	}
	if strings.TrimSpace(op.LotNumber) == "" {
		missing = append(missing, "lot_number")
	}
	if strings.TrimSpace(op.Style) == "" {
		missing = append(missing, "style")
	}
	if op.VolumeL <= 0 {
		missing = append(missing, "volume_l")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing or invalid fields %s: %w", strings.Join(missing, ", "), ErrValidation)
	}
	return nil
}

// CreateDraft validates and persists a new operation in the unconfirmed
// state, stamping it with the estimated cost of its recipe at the given
// volume. A missing recipe or insufficient stock is reported through the
// returned estimate but does not block creation; confirmation will deduct
// down to zero regardless.
func (s *Service) CreateDraft(ctx context.Context, op *Operation) (*Operation, *Estimate, error) {
	if err := validateDraft(op); err != nil {
		return nil, nil, err
	}

	est, err := s.Estimate(ctx, op.Style, op.OperationType, op.VolumeL)
	if err != nil {
		return nil, nil, err
	}
	op.EstimatedCost = est.TotalCost

	created, err := s.ops.Create(ctx, op)
	if err != nil {
		return nil, nil, fmt.Errorf("create draft for lot %q: %w", op.LotNumber, err)
	}
	s.log.Info("draft operation created",
		"operation_id", created.ID, "lot", created.LotNumber,
		"type", created.OperationType, "estimated_cost", created.EstimatedCost,
		"insufficient_stock", est.InsufficientStock)
	return created, est, nil
}

// DeleteDraft removes an operation that has not been confirmed. The
// unconfirmed guard is enforced by the store in the delete statement
// itself, so a confirmation racing this call cannot be undone.
func (s *Service) DeleteDraft(ctx context.Context, id int64) error {
	ok, err := s.ops.DeleteDraft(ctx, id)
	if err != nil {
		return fmt.Errorf("delete operation %d: %w", id, err)
	}
	if ok {
		return nil
	}
	op, err := s.ops.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete operation %d: %w", id, err)
	}
	if op == nil {
		return fmt.Errorf("operation %d: %w", id, ErrNotFound)
	}
	return fmt.Errorf("operation %d is confirmed: %w", id, ErrPrecondition)
}
