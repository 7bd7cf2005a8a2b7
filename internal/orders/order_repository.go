package orders

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/tobi647/beer-distribution-app-sub000/internal/repository"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type OrderRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *OrderRepository {
	return &OrderRepository{repository: r}
}

func (r *OrderRepository) InsertOrderRecord(tx *goqu.TxDatabase, order *models.Order) error {
	query := tx.Insert("orders").
		Rows(goqu.Record{
			"id":            order.ID,
			"stock_item_id": order.StockItemID,
			"client_name":   order.ClientName,
			"quantity":      order.Quantity,
			"unit_price":    order.UnitPrice,
			"total_price":   order.TotalPrice,
			"status":        order.Status,
			"created_at":    order.CreatedAt,
		})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert order record: %w", err)
	}

	return nil
}

// GetStockPricing reads the current selling price inside the order
// transaction so the captured price matches the decrement it pairs with.
func (r *OrderRepository) GetStockPricing(tx *goqu.TxDatabase, stockItemID string) (decimal.Decimal, bool, error) {
	var sellingPrice decimal.Decimal
	query := tx.From("stock_items").
		Select("selling_price").
		Where(goqu.Ex{"id": stockItemID})

	found, err := query.Executor().ScanVal(&sellingPrice)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("error reading stock pricing: %w", err)
	}

	return sellingPrice, found, nil
}

// ReserveStock decrements on-hand quantity, guarding against oversell at the
// database level. Returns false when the item lacks sufficient quantity.
func (r *OrderRepository) ReserveStock(tx *goqu.TxDatabase, stockItemID string, quantity int) (bool, error) {
	query := tx.Update("stock_items").
		Set(goqu.Record{
			"quantity":  goqu.L("quantity - ?", quantity),
			"available": goqu.L("quantity - ? > 0", quantity),
		}).
		Where(goqu.Ex{"id": stockItemID}).
		Where(goqu.C("quantity").Gte(quantity))

	result, err := query.Executor().Exec()
	if err != nil {
		return false, fmt.Errorf("failed to reserve stock for order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for stock reservation: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *OrderRepository) GetOrders() ([]models.Order, error) {
	var orders []models.Order
	query := r.repository.GoquDBWrapper.
		From("orders").
		Order(goqu.I("created_at").Desc())

	if err := query.Executor().ScanStructs(&orders); err != nil {
		return nil, fmt.Errorf("error executing SQL statement for orders: %w", err)
	}

	return orders, nil
}

func (r *OrderRepository) GetOrder(id string) (*models.Order, error) {
	var order models.Order
	query := r.repository.GoquDBWrapper.
		From("orders").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&order)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement for order: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &order, nil
}
