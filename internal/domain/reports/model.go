package reports

// Summary is the monthly cost/margin picture: sales revenue against
// variable costs (confirmed production) and fixed costs.
type Summary struct {
	Month          int     `json:"month"`
	Year           int     `json:"year"`
	Revenue        float64 `json:"revenue"`
	UnitsSold      int64   `json:"units_sold"`
	VariableCosts  float64 `json:"variable_costs"`
	FixedCosts     float64 `json:"fixed_costs"`
	GrossMargin    float64 `json:"gross_margin"`
	NetMargin      float64 `json:"net_margin"`
	GrossMarginPct float64 `json:"gross_margin_pct"`
	NetMarginPct   float64 `json:"net_margin_pct"`
	// BreakEven is the revenue needed to cover fixed costs at the current
	// contribution margin; zero when the margin is not positive.
	BreakEven float64 `json:"break_even"`
}

// StyleRow is the per-style slice of a month: units and revenue sold
// against production cost attributed to that style.
type StyleRow struct {
	Style          string  `json:"style"`
	Units          int64   `json:"units"`
	Revenue        float64 `json:"revenue"`
	ProductionCost float64 `json:"production_cost"`
	Margin         float64 `json:"margin"`
	RevenueShare   float64 `json:"revenue_share_pct"` // percent of the month's revenue
}
