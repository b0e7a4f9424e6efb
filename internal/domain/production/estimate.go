package production

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pagoa/brewops/internal/domain/recipes"
)

type LineEstimate struct {
	MaterialName string  `json:"material_name"`
	RequiredQty  float64 `json:"required_qty"`
	Unit         string  `json:"unit"`
	Stock        float64 `json:"stock"`
	UnitCost     float64 `json:"unit_cost"`
	Cost         float64 `json:"cost"`
	Sufficient   bool    `json:"sufficient"`
}

// Estimate is the cost preview for a recipe scaled to a batch volume.
// HasRecipe distinguishes "no recipe defined" from a genuinely zero cost.
// Missing lists recipe lines whose material no longer resolves in the
// ledger; they contribute nothing to the totals but are never silently
// dropped.
type Estimate struct {
	HasRecipe         bool           `json:"has_recipe"`
	TotalCost         float64        `json:"total_cost"`
	InsufficientStock bool           `json:"insufficient_stock"`
	Lines             []LineEstimate `json:"lines,omitempty"`
	Missing           []string       `json:"missing,omitempty"`
}

// requiredQuantity scales a per-100L line quantity to the batch volume.
func requiredQuantity(qtyPer100L, volumeL float64) float64 {
	return decimal.NewFromFloat(qtyPer100L).
		Mul(decimal.NewFromFloat(volumeL)).
		Div(decimal.NewFromInt(100)).
		InexactFloat64()
}

// EstimateCost computes required quantities, per-line costs and stock
// sufficiency for the given recipe lines at the given volume. It reads
// the ledger but mutates nothing, and is deterministic for a given input.
func EstimateCost(ctx context.Context, mats MaterialStore, lines []recipes.Line, volumeL float64) (*Estimate, error) {
	est := &Estimate{HasRecipe: len(lines) > 0}
	if len(lines) == 0 {
		return est, nil
	}

	total := decimal.Zero
	for _, line := range lines {
		m, err := mats.GetByName(ctx, line.MaterialName)
		if err != nil {
			return nil, fmt.Errorf("lookup material %q: %w", line.MaterialName, err)
		}
		if m == nil {
			est.Missing = append(est.Missing, line.MaterialName)
			continue
		}

		required := requiredQuantity(line.QtyPer100L, volumeL)
		cost := decimal.NewFromFloat(required).Mul(decimal.NewFromFloat(m.UnitCost))
		total = total.Add(cost)

		sufficient := m.Stock >= required
		if !sufficient {
			est.InsufficientStock = true
		}
		est.Lines = append(est.Lines, LineEstimate{
			MaterialName: m.Name,
			RequiredQty:  required,
			Unit:         m.Unit,
			Stock:        m.Stock,
			UnitCost:     m.UnitCost,
			Cost:         cost.InexactFloat64(),
			Sufficient:   sufficient,
		})
	}
	est.TotalCost = total.InexactFloat64()
	return est, nil
}
