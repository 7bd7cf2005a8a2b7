package stock_request

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItemRequest is the full field set; the admin form always submits the
// complete record on both create and edit.
type StockItemRequest struct {
	Name               string          `json:"name" binding:"required"`
	Type               string          `json:"type" binding:"required"`
	Supplier           string          `json:"supplier" binding:"required"`
	Quantity           int             `json:"quantity"`
	BaseCost           decimal.Decimal `json:"base_cost"`
	ShippingCost       decimal.Decimal `json:"shipping_cost"`
	AdditionalCosts    decimal.Decimal `json:"additional_costs"`
	Markup             decimal.Decimal `json:"markup"`
	IsMarkupPercentage bool            `json:"is_markup_percentage"`
	MinimumStock       int             `json:"minimum_stock"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	IsPriceLocked      bool            `json:"is_price_locked"`
}

type SupplyBatchRequest struct {
	Quantity            int             `json:"quantity" binding:"required"`
	BaseCost            decimal.Decimal `json:"base_cost"`
	ShippingCost        decimal.Decimal `json:"shipping_cost"`
	AdditionalCosts     decimal.Decimal `json:"additional_costs"`
	Supplier            string          `json:"supplier"`
	Notes               string          `json:"notes"`
	BatchNumber         string          `json:"batch_number"`
	DeliveryDate        *time.Time      `json:"delivery_date"`
	Origin              string          `json:"origin"`
	ShippingMethod      string          `json:"shipping_method"`
	ReasonForCostChange string          `json:"reason_for_cost_change"`
}

type PriceLockRequest struct {
	Lock         bool            `json:"lock"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}
