package stocks

import (
	"sort"
	"strings"
	"time"

	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterAndSort narrows a stock listing by a case-insensitive substring match
// on name, type and supplier, then orders it by the requested field. The sort
// is stable so ties keep insertion order.
func FilterAndSort(items []models.StockItem, searchTerm, sortField string, order SortOrder) []models.StockItem {
	filtered := make([]models.StockItem, 0, len(items))
	term := strings.ToLower(searchTerm)
	for _, item := range items {
		if term == "" ||
			strings.Contains(strings.ToLower(item.Name), term) ||
			strings.Contains(strings.ToLower(item.Type), term) ||
			strings.Contains(strings.ToLower(item.Supplier), term) {
			filtered = append(filtered, item)
		}
	}

	less := stockItemLess(sortField)
	sort.SliceStable(filtered, func(i, j int) bool {
		if order == SortDesc {
			return less(filtered[j], filtered[i])
		}
		return less(filtered[i], filtered[j])
	})

	return filtered
}

func stockItemLess(field string) func(a, b models.StockItem) bool {
	switch field {
	case "type":
		return func(a, b models.StockItem) bool { return a.Type < b.Type }
	case "supplier":
		return func(a, b models.StockItem) bool { return a.Supplier < b.Supplier }
	case "quantity":
		return func(a, b models.StockItem) bool { return a.Quantity < b.Quantity }
	case "total_cost":
		return func(a, b models.StockItem) bool { return a.TotalCost.LessThan(b.TotalCost) }
	case "selling_price":
		return func(a, b models.StockItem) bool { return a.SellingPrice.LessThan(b.SellingPrice) }
	default:
		return func(a, b models.StockItem) bool { return a.Name < b.Name }
	}
}

// HistoryFilter narrows a supply history. Unset bounds mean unbounded; the
// date range is inclusive on both ends.
type HistoryFilter struct {
	From        *time.Time
	To          *time.Time
	Supplier    string
	MinQuantity *int
	MaxQuantity *int
	SortField   string // date, quantity, total_cost
	Order       SortOrder
}

// FilterSupplyHistory applies the filter and returns a sorted copy; the
// input slice is never reordered.
func FilterSupplyHistory(history []models.SupplyEntry, filter HistoryFilter) []models.SupplyEntry {
	supplier := strings.ToLower(filter.Supplier)
	filtered := make([]models.SupplyEntry, 0, len(history))
	for _, entry := range history {
		if filter.From != nil && entry.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.Date.After(*filter.To) {
			continue
		}
		if supplier != "" && !strings.Contains(strings.ToLower(entry.Supplier), supplier) {
			continue
		}
		if filter.MinQuantity != nil && entry.Quantity < *filter.MinQuantity {
			continue
		}
		if filter.MaxQuantity != nil && entry.Quantity > *filter.MaxQuantity {
			continue
		}
		filtered = append(filtered, entry)
	}

	less := supplyEntryLess(filter.SortField)
	sort.SliceStable(filtered, func(i, j int) bool {
		if filter.Order == SortDesc {
			return less(filtered[j], filtered[i])
		}
		return less(filtered[i], filtered[j])
	})

	return filtered
}

func supplyEntryLess(field string) func(a, b models.SupplyEntry) bool {
	switch field {
	case "quantity":
		return func(a, b models.SupplyEntry) bool { return a.Quantity < b.Quantity }
	case "total_cost":
		return func(a, b models.SupplyEntry) bool { return a.TotalCost.LessThan(b.TotalCost) }
	default:
		return func(a, b models.SupplyEntry) bool { return a.Date.Before(b.Date) }
	}
}
