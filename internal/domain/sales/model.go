package sales

import "time"

// Sale records units of a finished lot leaving the brewery. Revenue is
// quantity times unit price; nothing else about the lot changes here,
// remaining stock is always derived.
type Sale struct {
	ID           int64     `json:"id"`
	Date         time.Time `json:"date"`
	LotNumber    string    `json:"lot_number"`
	Customer     string    `json:"customer"`
	Style        string    `json:"style"`
	Presentation string    `json:"presentation"` // container type sold, copied from the lot
	Quantity     int64     `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	Channel      string    `json:"channel"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}
