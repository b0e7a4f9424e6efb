package production

import (
	"context"

	"github.com/pagoa/brewops/internal/domain/finished"
	"github.com/pagoa/brewops/internal/domain/history"
	"github.com/pagoa/brewops/internal/domain/materials"
	"github.com/pagoa/brewops/internal/domain/recipes"
)

// Store contracts consumed by the confirmation workflow and the cost
// estimator. The pgx repos satisfy them; tests use in-memory fakes.

type MaterialStore interface {
	// GetByName returns (nil, nil) when no material carries the name.
	GetByName(ctx context.Context, name string) (*materials.Material, error)
	GetByID(ctx context.Context, id int64) (*materials.Material, error)
	// UpdateStockCAS writes next only if the row still holds prev.
	UpdateStockCAS(ctx context.Context, id int64, prev, next float64) (bool, error)
}

type RecipeStore interface {
	ListFor(ctx context.Context, style string, op recipes.OperationType) ([]recipes.Line, error)
}

type OperationStore interface {
	GetByID(ctx context.Context, id int64) (*Operation, error)
	Create(ctx context.Context, op *Operation) (*Operation, error)
	// MarkConfirmed flips the flag atomically; false means the row was
	// absent or already confirmed.
	MarkConfirmed(ctx context.Context, id int64) (bool, error)
	// DeleteDraft removes the row only while unconfirmed; false means
	// nothing was deleted.
	DeleteDraft(ctx context.Context, id int64) (bool, error)
}

type FinishedStore interface {
	Create(ctx context.Context, lot *finished.Lot) (*finished.Lot, error)
}

type HistoryStore interface {
	Append(ctx context.Context, e *history.Entry) error
}

// Notifier receives low-stock signals after a confirmation commits.
// Delivery is best effort and never fails the workflow.
type Notifier interface {
	LowStock(ctx context.Context, name string, stock, reorderPoint float64, unit string)
}
