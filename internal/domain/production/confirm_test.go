package production

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagoa/brewops/internal/domain/materials"
	"github.com/pagoa/brewops/internal/domain/recipes"
)

func floatPtr(v float64) *float64 { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestConfirmDeductsStockAndWritesAudit(t *testing.T) {
	mats := newFakeMaterials(&materials.Material{
		ID: 1, Name: "Pale Malt", Type: materials.TypeIngredient,
		Stock: 50, Unit: "kg", ReorderPoint: 10, UnitCost: 2,
	})
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L010", Style: "IPA", VolumeL: 100,
	})
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Pale Malt", QtyPer100L: 20, Unit: "kg"},
	}}
	fin := &fakeFinished{}
	hist := &fakeHistory{}
	svc := NewService(ops, rec, mats, fin, hist, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, res.Applied)

	require.Len(t, res.Deductions, 1)
	d := res.Deductions[0]
	assert.Equal(t, "Pale Malt", d.MaterialName)
	assert.InDelta(t, 20, d.Qty, 1e-9)
	assert.InDelta(t, 50, d.PreviousStock, 1e-9)
	assert.InDelta(t, 30, d.NewStock, 1e-9)
	assert.Zero(t, d.Shortfall)
	assert.InDelta(t, 30, mats.stock(1), 1e-9)

	require.Len(t, hist.entries, 1)
	e := hist.entries[0]
	assert.Equal(t, "L010", e.LotNumber)
	assert.InDelta(t, 20, e.QtyDeducted, 1e-9)
	assert.InDelta(t, 50, e.Details.PreviousStock, 1e-9)
	assert.InDelta(t, 30, e.Details.NewStock, 1e-9)
	assert.Equal(t, int64(1), e.Details.ProductionID)

	// Mash runs never create finished goods.
	assert.Empty(t, fin.lots)

	op, err := ops.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, op.Confirmed)
}

func TestConfirmClampsStockAtZero(t *testing.T) {
	mats := newFakeMaterials(&materials.Material{
		ID: 1, Name: "Cascade Hops", Stock: 5, Unit: "kg",
	})
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 5, 1), OperationType: recipes.OpMash,
		LotNumber: "L011", Style: "Pale Ale", VolumeL: 100,
	})
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "Pale Ale", OperationType: recipes.OpMash, MaterialName: "Cascade Hops", QtyPer100L: 20},
	}}
	hist := &fakeHistory{}
	svc := NewService(ops, rec, mats, &fakeFinished{}, hist, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, res.Deductions, 1)
	assert.Zero(t, res.Deductions[0].NewStock)
	assert.InDelta(t, 15, res.Deductions[0].Shortfall, 1e-9)
	assert.Zero(t, mats.stock(1))

	// The audit entry records the clamped movement, not the full demand.
	require.Len(t, hist.entries, 1)
	assert.Zero(t, hist.entries[0].Details.NewStock)
}

func TestConfirmAlreadyConfirmed(t *testing.T) {
	mats := newFakeMaterials(&materials.Material{ID: 1, Name: "Pale Malt", Stock: 50})
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L010", Style: "IPA", VolumeL: 100,
	})
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Pale Malt", QtyPer100L: 20},
	}}
	hist := &fakeHistory{}
	svc := NewService(ops, rec, mats, &fakeFinished{}, hist, nil, testLogger())

	_, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)

	res, err := svc.Confirm(context.Background(), 1)
	require.ErrorIs(t, err, ErrPrecondition)
	assert.False(t, res.Applied)

	// The rejection left stock and audit untouched.
	assert.InDelta(t, 30, mats.stock(1), 1e-9)
	assert.Len(t, hist.entries, 1)
}

func TestConfirmUnknownOperation(t *testing.T) {
	svc := NewService(newFakeOps(), &fakeRecipes{}, newFakeMaterials(), &fakeFinished{}, &fakeHistory{}, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, res.Applied)
}

func TestConfirmSkipsMissingRecipeMaterial(t *testing.T) {
	mats := newFakeMaterials(&materials.Material{ID: 1, Name: "Pale Malt", Stock: 50})
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L010", Style: "IPA", VolumeL: 100,
	})
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Pale Malt", QtyPer100L: 20},
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Discontinued Yeast", QtyPer100L: 1},
	}}
	hist := &fakeHistory{}
	svc := NewService(ops, rec, mats, &fakeFinished{}, hist, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Discontinued Yeast"}, res.SkippedMaterials)
	assert.Len(t, res.Deductions, 1)
	assert.Len(t, hist.entries, 1)

	op, _ := ops.GetByID(context.Background(), 1)
	assert.True(t, op.Confirmed)
}

func TestConfirmNoRecipeStillConfirms(t *testing.T) {
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L012", Style: "Experimental Sour", VolumeL: 80,
	})
	hist := &fakeHistory{}
	svc := NewService(ops, &fakeRecipes{}, newFakeMaterials(), &fakeFinished{}, hist, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, res.Deductions)
	assert.Empty(t, hist.entries)

	op, _ := ops.GetByID(context.Background(), 1)
	assert.True(t, op.Confirmed)
}

func TestConfirmPackagingCreatesLot(t *testing.T) {
	mats := newFakeMaterials(
		&materials.Material{ID: 1, Name: "Keg 33L", Type: materials.TypeContainer, Stock: 40, CapacityL: floatPtr(33)},
	)
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpPackaging,
		LotNumber: "L010", Style: "IPA", VolumeL: 500,
		Location: "Cold room", ContainerType: "Keg 33L",
	})
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpPackaging, MaterialName: "Keg 33L", QtyPer100L: 3},
	}}
	fin := &fakeFinished{}
	svc := NewService(ops, rec, mats, fin, &fakeHistory{}, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, res.Lot)

	lot := res.Lot
	assert.Equal(t, "L010", lot.LotNumber)
	assert.Equal(t, "Keg 33L", lot.ContainerType)
	// floor(500 / 33)
	assert.Equal(t, int64(15), lot.UnitsProduced)
	assert.Equal(t, date(2024, 3, 10), lot.PackagedOn)
	assert.Equal(t, date(2024, 9, 10), lot.ExpiresOn)
	assert.Equal(t, "Cold room", lot.Location)
	require.Len(t, fin.lots, 1)
}

func TestConfirmPackagingUnresolvedCapacity(t *testing.T) {
	// The container is not in the ledger at all: the lot is still created,
	// with zero units.
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpPackaging,
		LotNumber: "L010", Style: "IPA", VolumeL: 500, ContainerType: "Mystery Keg",
	})
	fin := &fakeFinished{}
	svc := NewService(ops, &fakeRecipes{}, newFakeMaterials(), fin, &fakeHistory{}, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, res.Lot)
	assert.Zero(t, res.Lot.UnitsProduced)
}

func TestConfirmStockConflictExhaustsRetries(t *testing.T) {
	mats := newFakeMaterials(&materials.Material{ID: 1, Name: "Pale Malt", Stock: 50})
	mats.casFails = 1000
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L010", Style: "IPA", VolumeL: 100,
	})
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Pale Malt", QtyPer100L: 20},
	}}
	hist := &fakeHistory{}
	svc := NewService(ops, rec, mats, &fakeFinished{}, hist, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 1)
	require.ErrorIs(t, err, ErrStockConflict)
	assert.False(t, res.Applied)
	assert.Empty(t, hist.entries)

	op, _ := ops.GetByID(context.Background(), 1)
	assert.False(t, op.Confirmed)
}

func TestConfirmLowStockAlert(t *testing.T) {
	mats := newFakeMaterials(&materials.Material{
		ID: 1, Name: "Bottle Caps", Stock: 120, Unit: "pcs", ReorderPoint: 100,
	})
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L010", Style: "IPA", VolumeL: 100,
	})
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Bottle Caps", QtyPer100L: 50},
	}}
	notify := &fakeNotifier{}
	svc := NewService(ops, rec, mats, &fakeFinished{}, &fakeHistory{}, notify, testLogger())

	_, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, notify.alerts, 1)
	assert.Equal(t, "Bottle Caps", notify.alerts[0].name)
	assert.InDelta(t, 70, notify.alerts[0].stock, 1e-9)
}

// Concurrent confirmations of distinct operations draw from the same
// material row. Every deduction must land exactly once: with a plain
// read-modify-write two confirmations can both read the same starting
// stock and one deduction is silently lost.
func TestConfirmConcurrentDeductionsOnSharedMaterial(t *testing.T) {
	// Each worker can lose at most workers-1 CAS rounds, so this stays
	// inside the retry budget and no confirmation may legitimately fail.
	const workers = 5

	mats := newFakeMaterials(&materials.Material{ID: 1, Name: "Pale Malt", Stock: 100, Unit: "kg"})
	drafts := make([]*Operation, 0, workers)
	for i := 0; i < workers; i++ {
		drafts = append(drafts, &Operation{
			ID: int64(i + 1), Date: date(2024, 3, 10), OperationType: recipes.OpMash,
			LotNumber: "L010", Style: "IPA", VolumeL: 100,
		})
	}
	ops := newFakeOps(drafts...)
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Pale Malt", QtyPer100L: 10},
	}}
	hist := &fakeHistory{}
	svc := NewService(ops, rec, mats, &fakeFinished{}, hist, nil, testLogger())

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Confirm(context.Background(), int64(i+1))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "confirmation %d", i+1)
	}

	// 5 confirmations x 10 kg each from 100 kg: nothing lost.
	assert.InDelta(t, 50, mats.stock(1), 1e-9)
	require.Len(t, hist.entries, workers)
	for _, e := range hist.entries {
		assert.InDelta(t, 10, e.Details.PreviousStock-e.Details.NewStock, 1e-9)
	}
}

// A store failure mid-workflow must not masquerade as a clean rejection:
// the caller has to learn that earlier deductions already landed.
func TestConfirmPartialFailureOnAuditWrite(t *testing.T) {
	mats := newFakeMaterials(
		&materials.Material{ID: 1, Name: "Pale Malt", Stock: 50, Unit: "kg"},
		&materials.Material{ID: 2, Name: "Cascade Hops", Stock: 10, Unit: "kg"},
	)
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L010", Style: "IPA", VolumeL: 100,
	})
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Pale Malt", QtyPer100L: 20},
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Cascade Hops", QtyPer100L: 2},
	}}
	hist := &fakeHistory{appendErr: errors.New("history store unavailable"), failAfter: 1}
	svc := NewService(ops, rec, mats, &fakeFinished{}, hist, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "audit")

	// The first line landed in full, the second line's stock write landed
	// before its audit append failed. Applied must say so.
	assert.True(t, res.Applied)
	assert.InDelta(t, 30, mats.stock(1), 1e-9)
	assert.InDelta(t, 8, mats.stock(2), 1e-9)
	assert.Len(t, hist.entries, 1)
	assert.Len(t, res.Deductions, 2)

	op, _ := ops.GetByID(context.Background(), 1)
	assert.False(t, op.Confirmed)
}

func TestConfirmPartialFailureOnLotCreate(t *testing.T) {
	mats := newFakeMaterials(
		&materials.Material{ID: 1, Name: "Keg 33L", Type: materials.TypeContainer, Stock: 40, CapacityL: floatPtr(33)},
	)
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpPackaging,
		LotNumber: "L010", Style: "IPA", VolumeL: 500, ContainerType: "Keg 33L",
	})
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpPackaging, MaterialName: "Keg 33L", QtyPer100L: 3},
	}}
	hist := &fakeHistory{}
	fin := &fakeFinished{createErr: errors.New("finished store unavailable")}
	svc := NewService(ops, rec, mats, fin, hist, nil, testLogger())

	res, err := svc.Confirm(context.Background(), 1)
	require.Error(t, err)

	// The keg deduction and its audit entry stand, the lot does not.
	assert.True(t, res.Applied)
	assert.Nil(t, res.Lot)
	assert.InDelta(t, 25, mats.stock(1), 1e-9)
	assert.Len(t, hist.entries, 1)

	op, _ := ops.GetByID(context.Background(), 1)
	assert.False(t, op.Confirmed)
}

// Two confirmations of the same packaging operation race each other. The
// unique lot constraint plus the conditional confirmed flip guarantee one
// winner and exactly one lot, whichever step the loser reaches first.
func TestConfirmConcurrentSameOperationSingleLot(t *testing.T) {
	mats := newFakeMaterials(
		&materials.Material{ID: 1, Name: "Keg 33L", Type: materials.TypeContainer, Stock: 40, CapacityL: floatPtr(33)},
	)
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpPackaging,
		LotNumber: "L010", Style: "IPA", VolumeL: 500, ContainerType: "Keg 33L",
	})
	fin := &fakeFinished{}
	svc := NewService(ops, &fakeRecipes{}, mats, fin, &fakeHistory{}, nil, testLogger())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Confirm(context.Background(), 1)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one confirmation must lose")
	assert.Equal(t, 1, fin.count())

	op, _ := ops.GetByID(context.Background(), 1)
	assert.True(t, op.Confirmed)
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"plain shift", date(2024, 3, 10), date(2024, 9, 10)},
		{"across year end", date(2024, 8, 15), date(2025, 2, 15)},
		{"clamped to shorter month", date(2024, 8, 31), date(2025, 2, 28)},
		{"clamped to leap february", date(2023, 8, 31), date(2024, 2, 29)},
		{"month end preserved when it fits", date(2024, 4, 30), date(2024, 10, 30)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, addMonths(tc.in, shelfLifeMonths))
		})
	}
}
