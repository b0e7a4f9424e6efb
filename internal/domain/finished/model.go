package finished

import "time"

// Lot is a sellable finished-goods record, created exactly once when a
// packaging operation with a resolvable container is confirmed. Remaining
// stock is derived from sales, never stored here.
type Lot struct {
	ID            int64     `json:"id"`
	LotNumber     string    `json:"lot_number"`
	Style         string    `json:"style"`
	ContainerType string    `json:"container_type"`
	UnitsProduced int64     `json:"units_produced"`
	PackagedOn    time.Time `json:"packaged_on"`
	ExpiresOn     time.Time `json:"expires_on"`
	Location      string    `json:"location"`
}

// LotAvailability is a Lot joined with its cumulative sales.
type LotAvailability struct {
	Lot
	UnitsSold      int64 `json:"units_sold"`
	UnitsAvailable int64 `json:"units_available"`
}
