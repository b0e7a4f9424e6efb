package costs

// FixedCost is one fixed-expense row for a calendar month: rent,
// utilities, salaries, insurance, maintenance.
type FixedCost struct {
	ID      int64   `json:"id"`
	Concept string  `json:"concept"`
	Amount  float64 `json:"amount"`
	Month   int     `json:"month"`
	Year    int     `json:"year"`
}
