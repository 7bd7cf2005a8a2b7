package stocks

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

var historyColumns = []string{
	"date", "quantity", "base_cost", "shipping_cost", "additional_costs",
	"total_cost", "profit_margin", "price_change", "average_cost_change",
	"supplier", "notes",
}

const exportDateLayout = "2006-01-02 15:04:05"

// WriteHistoryCSV renders a supply history as one header line plus one line
// per entry. Monetary values are fixed to two decimals; string fields are
// always quoted with internal quotes doubled.
func WriteHistoryCSV(w io.Writer, history []models.SupplyEntry) error {
	if _, err := io.WriteString(w, strings.Join(historyColumns, ",")+"\n"); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range history {
		row := strings.Join([]string{
			quoteCSV(entry.Date.Format(exportDateLayout)),
			strconv.Itoa(entry.Quantity),
			entry.BaseCost.StringFixed(2),
			entry.ShippingCost.StringFixed(2),
			entry.AdditionalCosts.StringFixed(2),
			entry.TotalCost.StringFixed(2),
			entry.ProfitMargin.StringFixed(2),
			entry.PriceChange.StringFixed(2),
			entry.AverageCostChange.StringFixed(2),
			quoteCSV(entry.Supplier),
			quoteCSV(entry.Notes),
		}, ",")
		if _, err := io.WriteString(w, row+"\n"); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteHistoryXLSX renders the same table as a spreadsheet.
func WriteHistoryXLSX(w io.Writer, history []models.SupplyEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Supply History"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := make([]interface{}, len(historyColumns))
	for i, col := range historyColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, entry := range history {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		row := []interface{}{
			entry.Date.Format(exportDateLayout),
			entry.Quantity,
			entry.BaseCost.StringFixed(2),
			entry.ShippingCost.StringFixed(2),
			entry.AdditionalCosts.StringFixed(2),
			entry.TotalCost.StringFixed(2),
			entry.ProfitMargin.StringFixed(2),
			entry.PriceChange.StringFixed(2),
			entry.AverageCostChange.StringFixed(2),
			entry.Supplier,
			entry.Notes,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}
