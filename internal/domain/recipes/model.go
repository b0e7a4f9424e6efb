package recipes

// OperationType selects which stage of a batch a recipe line feeds.
type OperationType string

const (
	OpMash      OperationType = "mash/wort production"
	OpPackaging OperationType = "packaging"
)

// Line binds one material requirement to a (style, operation type) pair.
// Quantity is expressed per 100 liters of product; the unit is copied from
// the material at creation time for display.
type Line struct {
	ID            int64         `json:"id"`
	Style         string        `json:"style"`
	OperationType OperationType `json:"operation_type"`
	MaterialName  string        `json:"material_name"`
	QtyPer100L    float64       `json:"qty_per_100l"`
	Unit          string        `json:"unit"`
}
