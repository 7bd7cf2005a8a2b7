package stocks

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

func exportHistory() []models.SupplyEntry {
	return []models.SupplyEntry{
		{
			Date:              time.Date(2026, time.March, 20, 9, 30, 0, 0, time.UTC),
			Quantity:          50,
			BaseCost:          dec("16.00"),
			ShippingCost:      dec("2.00"),
			AdditionalCosts:   dec("1.00"),
			TotalCost:         dec("19.00"),
			ProfitMargin:      dec("30"),
			PriceChange:       dec("2.6"),
			AverageCostChange: dec("2"),
			Supplier:          `Hopfenhof "Premium" KG`,
			Notes:             "rush order",
		},
		{
			Date:         time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
			Quantity:     100,
			BaseCost:     dec("10.00"),
			ShippingCost: dec("2.00"),
			TotalCost:    dec("13.00"),
			Supplier:     "Brauhaus GmbH",
		},
	}
}

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHistoryCSV(&buf, exportHistory())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, strings.Join(historyColumns, ","), lines[0])

	// Monetary values carry two decimals, strings are quoted with internal
	// quotes doubled.
	assert.Equal(t,
		`"2026-03-20 09:30:00",50,16.00,2.00,1.00,19.00,30.00,2.60,2.00,"Hopfenhof ""Premium"" KG","rush order"`,
		lines[1])
	assert.Equal(t,
		`"2026-03-01 08:00:00",100,10.00,2.00,0.00,13.00,0.00,0.00,0.00,"Brauhaus GmbH",""`,
		lines[2])
}

func TestWriteHistoryCSVEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHistoryCSV(&buf, nil)
	require.NoError(t, err)

	assert.Equal(t, strings.Join(historyColumns, ",")+"\n", buf.String())
}

func TestWriteHistoryXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHistoryXLSX(&buf, exportHistory())
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.NotContains(t, f.GetSheetList(), "Sheet1")

	rows, err := f.GetRows("Supply History")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, historyColumns, rows[0])
	assert.Equal(t, "2026-03-20 09:30:00", rows[1][0])
	assert.Equal(t, "50", rows[1][1])
	assert.Equal(t, "19.00", rows[1][5])
	assert.Equal(t, `Hopfenhof "Premium" KG`, rows[1][9])
	assert.Equal(t, "Brauhaus GmbH", rows[2][9])
}
