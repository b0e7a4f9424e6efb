package materials

import "time"

type Type string

const (
	TypeIngredient Type = "ingredient"
	TypeContainer  Type = "container"
)

// Material is one raw-material row: an ingredient (malt, hops, yeast...)
// or a container (bottle, keg, can). Containers additionally carry a
// capacity in liters used to derive finished-goods unit counts.
type Material struct {
	ID           int64
	Name         string
	Type         Type
	Stock        float64 // never persisted negative
	Unit         string
	ReorderPoint float64
	UnitCost     float64
	CapacityL    *float64 // containers only
	UpdatedAt    time.Time
}

// BelowReorder reports whether current stock is at or under the reorder threshold.
func (m *Material) BelowReorder() bool {
	return m.Stock <= m.ReorderPoint
}
