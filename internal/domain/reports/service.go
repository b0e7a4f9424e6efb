package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Service struct{ repo *Repo }

func NewService(repo *Repo) *Service { return &Service{repo: repo} }

func monthWindow(month, year int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// buildSummary derives every margin figure from the three raw totals.
// Kept pure so the math is testable without a database.
func buildSummary(month, year int, revenue float64, units int64, variable, fixed float64) Summary {
	rev := decimal.NewFromFloat(revenue)
	gross := rev.Sub(decimal.NewFromFloat(variable))
	net := gross.Sub(decimal.NewFromFloat(fixed))

	s := Summary{
		Month:         month,
		Year:          year,
		Revenue:       revenue,
		UnitsSold:     units,
		VariableCosts: variable,
		FixedCosts:    fixed,
		GrossMargin:   gross.InexactFloat64(),
		NetMargin:     net.InexactFloat64(),
	}
	if rev.IsPositive() {
		hundred := decimal.NewFromInt(100)
		s.GrossMarginPct = gross.Div(rev).Mul(hundred).InexactFloat64()
		s.NetMarginPct = net.Div(rev).Mul(hundred).InexactFloat64()

		// Break-even revenue = fixed costs / contribution margin ratio.
		contribution := gross.Div(rev)
		if contribution.IsPositive() {
			s.BreakEven = decimal.NewFromFloat(fixed).Div(contribution).InexactFloat64()
		}
	}
	return s
}

func (s *Service) MonthlySummary(ctx context.Context, month, year int) (Summary, error) {
	from, to := monthWindow(month, year)

	revenue, units, err := s.repo.Revenue(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("revenue %d-%02d: %w", year, month, err)
	}
	variable, err := s.repo.VariableCosts(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("variable costs %d-%02d: %w", year, month, err)
	}
	fixed, err := s.repo.FixedCosts(ctx, month, year)
	if err != nil {
		return Summary{}, fmt.Errorf("fixed costs %d-%02d: %w", year, month, err)
	}
	return buildSummary(month, year, revenue, units, variable, fixed), nil
}

// StyleAnalysis breaks the month down per beer style: what each style
// sold against what its confirmed production cost.
func (s *Service) StyleAnalysis(ctx context.Context, month, year int) ([]StyleRow, error) {
	from, to := monthWindow(month, year)

	sales, err := s.repo.salesByStyle(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by style %d-%02d: %w", year, month, err)
	}
	prodCosts, err := s.repo.costsByStyle(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("costs by style %d-%02d: %w", year, month, err)
	}

	total := decimal.Zero
	for _, row := range sales {
		total = total.Add(decimal.NewFromFloat(row.Revenue))
	}

	var out []StyleRow
	for _, row := range sales {
		rev := decimal.NewFromFloat(row.Revenue)
		cost := decimal.NewFromFloat(prodCosts[row.Style])
		r := StyleRow{
			Style:          row.Style,
			Units:          row.Units,
			Revenue:        row.Revenue,
			ProductionCost: prodCosts[row.Style],
			Margin:         rev.Sub(cost).InexactFloat64(),
		}
		if total.IsPositive() {
			r.RevenueShare = rev.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		out = append(out, r)
	}
	return out, nil
}
