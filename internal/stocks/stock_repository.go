package stocks

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/shopspring/decimal"

	"github.com/tobi647/beer-distribution-app-sub000/internal/repository"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type StockRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *StockRepository {
	return &StockRepository{repository: r}
}

// supplyEntryRow is the flat scan target for supply_entries; nullable columns
// are converted when mapping back to the model.
type supplyEntryRow struct {
	ID                  string              `db:"id"`
	StockItemID         string              `db:"stock_item_id"`
	Date                time.Time           `db:"date"`
	Quantity            int                 `db:"quantity"`
	BaseCost            decimal.Decimal     `db:"base_cost"`
	ShippingCost        decimal.Decimal     `db:"shipping_cost"`
	AdditionalCosts     decimal.Decimal     `db:"additional_costs"`
	TotalCost           decimal.Decimal     `db:"total_cost"`
	Supplier            string              `db:"supplier"`
	Notes               string              `db:"notes"`
	ProfitMargin        decimal.Decimal     `db:"profit_margin"`
	PriceChange         decimal.Decimal     `db:"price_change"`
	AverageCostChange   decimal.Decimal     `db:"average_cost_change"`
	WasAutoCalculated   bool                `db:"was_auto_calculated"`
	PriceLockChanged    bool                `db:"price_lock_changed"`
	PriceBeforeLock     decimal.NullDecimal `db:"price_before_lock"`
	BatchNumber         string              `db:"batch_number"`
	DeliveryDate        sql.NullTime        `db:"delivery_date"`
	Origin              string              `db:"origin"`
	ShippingMethod      string              `db:"shipping_method"`
	ReasonForCostChange string              `db:"reason_for_cost_change"`
	Comparison          string              `db:"comparison"`
}

func (row supplyEntryRow) toModel() models.SupplyEntry {
	entry := models.SupplyEntry{
		ID:                  row.ID,
		StockItemID:         row.StockItemID,
		Date:                row.Date,
		Quantity:            row.Quantity,
		BaseCost:            row.BaseCost,
		ShippingCost:        row.ShippingCost,
		AdditionalCosts:     row.AdditionalCosts,
		TotalCost:           row.TotalCost,
		Supplier:            row.Supplier,
		Notes:               row.Notes,
		ProfitMargin:        row.ProfitMargin,
		PriceChange:         row.PriceChange,
		AverageCostChange:   row.AverageCostChange,
		WasAutoCalculated:   row.WasAutoCalculated,
		PriceLockChanged:    row.PriceLockChanged,
		BatchNumber:         row.BatchNumber,
		Origin:              row.Origin,
		ShippingMethod:      row.ShippingMethod,
		ReasonForCostChange: row.ReasonForCostChange,
	}
	if row.PriceBeforeLock.Valid {
		entry.PriceBeforeLock = &row.PriceBeforeLock.Decimal
	}
	if row.DeliveryDate.Valid {
		deliveryDate := row.DeliveryDate.Time
		entry.DeliveryDate = &deliveryDate
	}
	if row.Comparison != "" {
		var cmp models.BatchComparison
		if err := json.Unmarshal([]byte(row.Comparison), &cmp); err == nil {
			entry.Comparison = &cmp
		}
	}
	return entry
}

func (r *StockRepository) GetStockItem(id string) (*models.StockItem, error) {
	var item models.StockItem
	query := r.repository.GoquDBWrapper.
		From("stock_items").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&item)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement for stock item: %w", err)
	}
	if !found {
		return nil, nil
	}

	history, err := r.GetSupplyHistory(id)
	if err != nil {
		return nil, err
	}
	item.SupplyHistory = history

	return &item, nil
}

// GetStockItemForUpdate loads an item inside tx with SELECT ... FOR UPDATE,
// so a concurrent blend on the same item waits for this transaction to
// commit instead of computing against a stale average.
func (r *StockRepository) GetStockItemForUpdate(tx *goqu.TxDatabase, id string) (*models.StockItem, error) {
	var item models.StockItem
	query := tx.From("stock_items").
		Where(goqu.Ex{"id": id}).
		ForUpdate(exp.Wait)

	found, err := query.Executor().ScanStruct(&item)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement for stock item lock: %w", err)
	}
	if !found {
		return nil, nil
	}

	history, err := r.getSupplyHistoryTx(tx, id)
	if err != nil {
		return nil, err
	}
	item.SupplyHistory = history

	return &item, nil
}

func (r *StockRepository) ListStockItems() ([]models.StockItem, error) {
	var items []models.StockItem
	query := r.repository.GoquDBWrapper.
		From("stock_items").
		Order(goqu.I("created_at").Asc())

	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("error executing SQL statement for stock items: %w", err)
	}

	return items, nil
}

func (r *StockRepository) ListLowStockItems() ([]models.StockItem, error) {
	var items []models.StockItem
	query := r.repository.GoquDBWrapper.
		From("stock_items").
		Where(goqu.C("quantity").Lte(goqu.C("minimum_stock"))).
		Order(goqu.I("quantity").Asc())

	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("error executing SQL statement for low stock items: %w", err)
	}

	return items, nil
}

func (r *StockRepository) GetSupplyHistory(itemID string) ([]models.SupplyEntry, error) {
	return scanSupplyHistory(r.repository.GoquDBWrapper.From("supply_entries"), itemID)
}

func (r *StockRepository) getSupplyHistoryTx(tx *goqu.TxDatabase, itemID string) ([]models.SupplyEntry, error) {
	return scanSupplyHistory(tx.From("supply_entries"), itemID)
}

func scanSupplyHistory(ds *goqu.SelectDataset, itemID string) ([]models.SupplyEntry, error) {
	var rows []supplyEntryRow
	query := ds.
		Where(goqu.Ex{"stock_item_id": itemID}).
		Order(goqu.I("date").Desc(), goqu.I("seq").Desc())

	if err := query.Executor().ScanStructs(&rows); err != nil {
		return nil, fmt.Errorf("error executing SQL statement for supply history: %w", err)
	}

	history := make([]models.SupplyEntry, 0, len(rows))
	for _, row := range rows {
		history = append(history, row.toModel())
	}

	return history, nil
}

func (r *StockRepository) InsertStockItem(item *models.StockItem) error {
	query := r.repository.GoquDBWrapper.Insert("stock_items").
		Rows(stockItemRecord(item))

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert stock item record: %w", err)
	}

	return nil
}

func (r *StockRepository) UpdateStockItem(tx *goqu.TxDatabase, item *models.StockItem) error {
	query := tx.Update("stock_items").
		Set(stockItemRecord(item)).
		Where(goqu.Ex{"id": item.ID})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to update stock item record: %w", err)
	}

	return nil
}

func (r *StockRepository) InsertSupplyEntry(tx *goqu.TxDatabase, entry models.SupplyEntry) error {
	record := goqu.Record{
		"id":                     entry.ID,
		"stock_item_id":          entry.StockItemID,
		"date":                   entry.Date,
		"quantity":               entry.Quantity,
		"base_cost":              entry.BaseCost,
		"shipping_cost":          entry.ShippingCost,
		"additional_costs":       entry.AdditionalCosts,
		"total_cost":             entry.TotalCost,
		"supplier":               entry.Supplier,
		"notes":                  entry.Notes,
		"profit_margin":          entry.ProfitMargin,
		"price_change":           entry.PriceChange,
		"average_cost_change":    entry.AverageCostChange,
		"was_auto_calculated":    entry.WasAutoCalculated,
		"price_lock_changed":     entry.PriceLockChanged,
		"batch_number":           entry.BatchNumber,
		"origin":                 entry.Origin,
		"shipping_method":        entry.ShippingMethod,
		"reason_for_cost_change": entry.ReasonForCostChange,
		"comparison":             "",
	}
	if entry.PriceBeforeLock != nil {
		record["price_before_lock"] = *entry.PriceBeforeLock
	}
	if entry.DeliveryDate != nil {
		record["delivery_date"] = *entry.DeliveryDate
	}
	if entry.Comparison != nil {
		comparisonJSON, err := json.Marshal(entry.Comparison)
		if err != nil {
			return fmt.Errorf("failed to marshal batch comparison: %w", err)
		}
		record["comparison"] = string(comparisonJSON)
	}

	query := tx.Insert("supply_entries").Rows(record)
	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert supply entry record: %w", err)
	}

	return nil
}

func (r *StockRepository) DeleteStockItem(id string) (bool, error) {
	query := r.repository.GoquDBWrapper.Delete("stock_items").
		Where(goqu.Ex{"id": id})

	result, err := query.Executor().Exec()
	if err != nil {
		return false, fmt.Errorf("failed to delete stock item record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for stock item delete: %w", err)
	}

	return rowsAffected > 0, nil
}

func stockItemRecord(item *models.StockItem) goqu.Record {
	return goqu.Record{
		"id":                   item.ID,
		"name":                 item.Name,
		"type":                 item.Type,
		"supplier":             item.Supplier,
		"quantity":             item.Quantity,
		"base_cost":            item.BaseCost,
		"shipping_cost":        item.ShippingCost,
		"additional_costs":     item.AdditionalCosts,
		"total_cost":           item.TotalCost,
		"markup":               item.Markup,
		"is_markup_percentage": item.IsMarkupPercentage,
		"selling_price":        item.SellingPrice,
		"is_price_locked":      item.IsPriceLocked,
		"minimum_stock":        item.MinimumStock,
		"available":            item.Available,
		"created_at":           item.CreatedAt,
		"updated_at":           item.UpdatedAt,
	}
}
