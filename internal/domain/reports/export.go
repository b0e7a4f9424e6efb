package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX renders one month's summary and style analysis as an XLSX
// workbook, returned as bytes for the HTTP layer to serve.
func (s *Service) ExportXLSX(ctx context.Context, month, year int) ([]byte, error) {
	sum, err := s.MonthlySummary(ctx, month, year)
	if err != nil {
		return nil, err
	}
	styles, err := s.StyleAnalysis(ctx, month, year)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	summaryRows := [][]interface{}{
		{fmt.Sprintf("Monthly report %d-%02d", sum.Year, sum.Month)},
		{},
		{"Revenue", sum.Revenue},
		{"Units sold", sum.UnitsSold},
		{"Variable costs", sum.VariableCosts},
		{"Fixed costs", sum.FixedCosts},
		{"Gross margin", sum.GrossMargin},
		{"Net margin", sum.NetMargin},
		{"Gross margin %", sum.GrossMarginPct},
		{"Net margin %", sum.NetMarginPct},
		{"Break-even revenue", sum.BreakEven},
	}
	for i, r := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, err
		}
	}

	const stylesSheet = "By style"
	if _, err := f.NewSheet(stylesSheet); err != nil {
		return nil, err
	}
	header := []interface{}{"style", "units", "revenue", "production_cost", "margin", "revenue_share_pct"}
	if err := f.SetSheetRow(stylesSheet, "A1", &header); err != nil {
		return nil, err
	}
	row := 2
	for _, st := range styles {
		r := []interface{}{st.Style, st.Units, st.Revenue, st.ProductionCost, st.Margin, st.RevenueShare}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(stylesSheet, cell, &r); err != nil {
			return nil, err
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
