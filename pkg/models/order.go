package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a client purchase against a single stock item. UnitPrice is the
// item's selling price captured at order time.
type Order struct {
	ID          string          `json:"id" db:"id"`
	StockItemID string          `json:"stock_item_id" db:"stock_item_id"`
	ClientName  string          `json:"client_name" db:"client_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
	Status      string          `json:"status" db:"status"` // placed, cancelled
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

func (o *Order) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   o.ID,
		ResourceType: "order",
	}
}
