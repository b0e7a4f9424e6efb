package production

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagoa/brewops/internal/domain/materials"
	"github.com/pagoa/brewops/internal/domain/recipes"
)

func validOp() *Operation {
	return &Operation{
		Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L010", Style: "IPA", VolumeL: 100,
	}
}

func TestValidateDraft(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Operation)
		valid  bool
	}{
		{"complete", func(*Operation) {}, true},
		{"packaging type", func(op *Operation) { op.OperationType = recipes.OpPackaging }, true},
		{"zero date", func(op *Operation) { op.Date = time.Time{} }, false},
		{"unknown operation type", func(op *Operation) { op.OperationType = "fermentation" }, false},
		{"blank lot", func(op *Operation) { op.LotNumber = "  " }, false},
		{"blank style", func(op *Operation) { op.Style = "" }, false},
		{"zero volume", func(op *Operation) { op.VolumeL = 0 }, false},
		{"negative volume", func(op *Operation) { op.VolumeL = -10 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op := validOp()
			tc.mutate(op)
			err := validateDraft(op)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestCreateDraftStampsEstimatedCost(t *testing.T) {
	mats := newFakeMaterials(
		&materials.Material{ID: 1, Name: "Pale Malt", Stock: 50, UnitCost: 2},
	)
	ops := newFakeOps()
	rec := &fakeRecipes{lines: []recipes.Line{
		{Style: "IPA", OperationType: recipes.OpMash, MaterialName: "Pale Malt", QtyPer100L: 20},
	}}
	svc := NewService(ops, rec, mats, &fakeFinished{}, &fakeHistory{}, nil, testLogger())

	created, est, err := svc.CreateDraft(context.Background(), validOp())
	require.NoError(t, err)
	require.NotNil(t, est)

	assert.NotZero(t, created.ID)
	assert.False(t, created.Confirmed)
	assert.InDelta(t, 40, created.EstimatedCost, 1e-9)
	assert.True(t, est.HasRecipe)

	stored, err := ops.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 40, stored.EstimatedCost, 1e-9)
}

func TestCreateDraftInvalid(t *testing.T) {
	svc := NewService(newFakeOps(), &fakeRecipes{}, newFakeMaterials(), &fakeFinished{}, &fakeHistory{}, nil, testLogger())

	op := validOp()
	op.LotNumber = ""
	_, _, err := svc.CreateDraft(context.Background(), op)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateDraftWithoutRecipe(t *testing.T) {
	// Missing recipes never block draft creation, the estimate says so.
	ops := newFakeOps()
	svc := NewService(ops, &fakeRecipes{}, newFakeMaterials(), &fakeFinished{}, &fakeHistory{}, nil, testLogger())

	created, est, err := svc.CreateDraft(context.Background(), validOp())
	require.NoError(t, err)
	assert.False(t, est.HasRecipe)
	assert.Zero(t, created.EstimatedCost)
}

func TestDeleteDraft(t *testing.T) {
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L010", Style: "IPA", VolumeL: 100,
	})
	svc := NewService(ops, &fakeRecipes{}, newFakeMaterials(), &fakeFinished{}, &fakeHistory{}, nil, testLogger())

	require.NoError(t, svc.DeleteDraft(context.Background(), 1))

	op, err := ops.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, op)
}

func TestDeleteDraftNotFound(t *testing.T) {
	svc := NewService(newFakeOps(), &fakeRecipes{}, newFakeMaterials(), &fakeFinished{}, &fakeHistory{}, nil, testLogger())
	assert.ErrorIs(t, svc.DeleteDraft(context.Background(), 7), ErrNotFound)
}

func TestDeleteDraftConfirmed(t *testing.T) {
	ops := newFakeOps(&Operation{
		ID: 1, Date: date(2024, 3, 10), OperationType: recipes.OpMash,
		LotNumber: "L010", Style: "IPA", VolumeL: 100, Confirmed: true,
	})
	svc := NewService(ops, &fakeRecipes{}, newFakeMaterials(), &fakeFinished{}, &fakeHistory{}, nil, testLogger())

	assert.ErrorIs(t, svc.DeleteDraft(context.Background(), 1), ErrPrecondition)

	// The confirmed record survives.
	op, err := ops.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, op)
}
