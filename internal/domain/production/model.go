package production

import (
	"time"

	"github.com/pagoa/brewops/internal/domain/recipes"
)

// Operation is one manufacturing event on a lot: a mash/wort production
// run or a packaging run. It is created as a draft (Confirmed=false) and
// flips to confirmed exactly once; after that no update or delete touches it.
type Operation struct {
	ID            int64                 `json:"id"`
	Date          time.Time             `json:"date"`
	OperationType recipes.OperationType `json:"operation_type"`
	LotNumber     string                `json:"lot_number"`
	Style         string                `json:"style"`
	VolumeL       float64               `json:"volume_l"`
	Location      string                `json:"location"`
	ContainerType string                `json:"container_type,omitempty"` // packaging only
	ClosureType   string                `json:"closure_type,omitempty"`
	LabelType     string                `json:"label_type,omitempty"`
	EstimatedCost float64               `json:"estimated_cost"`
	Confirmed     bool                  `json:"confirmed"`
	CreatedAt     time.Time             `json:"created_at"`
}
