package history

import "time"

const StatusActive = "ACTIVE"

// Details captures the stock movement behind one audit entry, with a
// back-reference to the production operation that caused it.
type Details struct {
	ProductionID  int64   `json:"production_id"`
	PreviousStock float64 `json:"previous_stock"`
	NewStock      float64 `json:"new_stock"`
}

// Entry is one append-only audit row, written per material consumed when
// a production operation is confirmed. Entries record what happened;
// they are never updated or deleted.
type Entry struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	OperationType string    `json:"operation_type"`
	LotNumber     string    `json:"lot_number"`
	Style         string    `json:"style"`
	VolumeL       float64   `json:"volume_l"`
	MaterialName  string    `json:"material_name"`
	QtyDeducted   float64   `json:"qty_deducted"`
	Status        string    `json:"status"`
	Details       Details   `json:"details"`
}
