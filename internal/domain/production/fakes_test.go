package production

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/pagoa/brewops/internal/domain/finished"
	"github.com/pagoa/brewops/internal/domain/history"
	"github.com/pagoa/brewops/internal/domain/materials"
	"github.com/pagoa/brewops/internal/domain/recipes"
)

// In-memory stores with the same compare-and-set semantics as the pgx
// repos, safe for concurrent use so races can be exercised directly.

type fakeMaterials struct {
	mu   sync.Mutex
	rows map[int64]*materials.Material
	// casFails forces this many CAS rejections before writes go through.
	casFails int
}

func newFakeMaterials(rows ...*materials.Material) *fakeMaterials {
	f := &fakeMaterials{rows: make(map[int64]*materials.Material)}
	for _, m := range rows {
		cp := *m
		f.rows[m.ID] = &cp
	}
	return f
}

func (f *fakeMaterials) GetByName(_ context.Context, name string) (*materials.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if strings.EqualFold(m.Name, name) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMaterials) GetByID(_ context.Context, id int64) (*materials.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMaterials) UpdateStockCAS(_ context.Context, id int64, prev, next float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.casFails > 0 {
		f.casFails--
		return false, nil
	}
	m, ok := f.rows[id]
	if !ok || m.Stock != prev {
		return false, nil
	}
	m.Stock = next
	return true, nil
}

func (f *fakeMaterials) stock(id int64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].Stock
}

type fakeRecipes struct{ lines []recipes.Line }

func (f *fakeRecipes) ListFor(_ context.Context, style string, op recipes.OperationType) ([]recipes.Line, error) {
	var out []recipes.Line
	for _, l := range f.lines {
		if l.Style == style && l.OperationType == op {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeOps struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*Operation
}

func newFakeOps(ops ...*Operation) *fakeOps {
	f := &fakeOps{rows: make(map[int64]*Operation)}
	for _, op := range ops {
		cp := *op
		f.rows[op.ID] = &cp
		if op.ID > f.nextID {
			f.nextID = op.ID
		}
	}
	return f
}

func (f *fakeOps) GetByID(_ context.Context, id int64) (*Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *op
	return &cp, nil
}

func (f *fakeOps) Create(_ context.Context, op *Operation) (*Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *op
	cp.ID = f.nextID
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeOps) MarkConfirmed(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.rows[id]
	if !ok || op.Confirmed {
		return false, nil
	}
	op.Confirmed = true
	return true, nil
}

func (f *fakeOps) DeleteDraft(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.rows[id]
	if !ok || op.Confirmed {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

var errDuplicateLot = errors.New("duplicate key value violates unique constraint \"finished_goods_lot_idx\"")

type fakeFinished struct {
	mu   sync.Mutex
	lots []finished.Lot
	// createErr, when set, fails every Create.
	createErr error
}

func (f *fakeFinished) Create(_ context.Context, lot *finished.Lot) (*finished.Lot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, l := range f.lots {
		if l.LotNumber == lot.LotNumber && l.ContainerType == lot.ContainerType {
			return nil, errDuplicateLot
		}
	}
	lot.ID = int64(len(f.lots) + 1)
	f.lots = append(f.lots, *lot)
	return lot, nil
}

func (f *fakeFinished) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lots)
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []history.Entry
	// appendErr, when set, fails Append once failAfter entries exist.
	appendErr error
	failAfter int
}

func (f *fakeHistory) Append(_ context.Context, e *history.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil && len(f.entries) >= f.failAfter {
		return f.appendErr
	}
	e.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *e)
	return nil
}

type alert struct {
	name  string
	stock float64
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []alert
}

func (f *fakeNotifier) LowStock(_ context.Context, name string, stock, _ float64, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert{name: name, stock: stock})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
