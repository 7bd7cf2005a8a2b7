package orders

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	custom_error "github.com/tobi647/beer-distribution-app-sub000/pkg/errors"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type orderStore interface {
	InsertOrderRecord(tx *goqu.TxDatabase, order *models.Order) error
	GetStockPricing(tx *goqu.TxDatabase, stockItemID string) (decimal.Decimal, bool, error)
	ReserveStock(tx *goqu.TxDatabase, stockItemID string, quantity int) (bool, error)
	GetOrders() ([]models.Order, error)
	GetOrder(id string) (*models.Order, error)
}

type txRunner interface {
	RunInTransaction(fn func(tx *goqu.TxDatabase) error) error
}

type OrderRequest struct {
	StockItemID string `json:"stock_item_id" binding:"required"`
	ClientName  string `json:"client_name" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
}

// OrderService places client orders against stock items. Price capture and
// quantity reservation happen in one transaction so an order never carries a
// price from a different state than the stock it reserved.
type OrderService struct {
	r     txRunner
	store orderStore
}

func NewOrderService(r txRunner, store orderStore) *OrderService {
	return &OrderService{r: r, store: store}
}

func (s *OrderService) PlaceOrder(req OrderRequest) (*models.Order, error) {
	if req.Quantity < 1 {
		return nil, custom_error.NewValidationError("quantity", "must be at least 1")
	}

	order := &models.Order{
		ID:          uuid.NewString(),
		StockItemID: req.StockItemID,
		ClientName:  req.ClientName,
		Quantity:    req.Quantity,
		Status:      "placed",
		CreatedAt:   time.Now(),
	}

	err := s.r.RunInTransaction(func(tx *goqu.TxDatabase) error {
		unitPrice, found, err := s.store.GetStockPricing(tx, req.StockItemID)
		if err != nil {
			return err
		}
		if !found {
			return custom_error.NewNotFoundError("stock item", req.StockItemID)
		}

		reserved, err := s.store.ReserveStock(tx, req.StockItemID, req.Quantity)
		if err != nil {
			return err
		}
		if !reserved {
			return custom_error.NewValidationError("quantity", "insufficient stock on hand")
		}

		order.UnitPrice = unitPrice
		order.TotalPrice = unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2)

		return s.store.InsertOrderRecord(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *OrderService) ListOrders() ([]models.Order, error) {
	return s.store.GetOrders()
}

func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	order, err := s.store.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, custom_error.NewNotFoundError("order", id)
	}
	return order, nil
}
