package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is the priced stock record for one product. BaseCost carries the
// running weighted-average unit cost once supply batches have been blended in;
// TotalCost must always equal BaseCost + ShippingCost + AdditionalCosts.
type StockItem struct {
	ID                 string          `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Type               string          `json:"type" db:"type"`
	Supplier           string          `json:"supplier" db:"supplier"`
	Quantity           int             `json:"quantity" db:"quantity"`
	BaseCost           decimal.Decimal `json:"base_cost" db:"base_cost"`
	ShippingCost       decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	AdditionalCosts    decimal.Decimal `json:"additional_costs" db:"additional_costs"`
	TotalCost          decimal.Decimal `json:"total_cost" db:"total_cost"`
	Markup             decimal.Decimal `json:"markup" db:"markup"`
	IsMarkupPercentage bool            `json:"is_markup_percentage" db:"is_markup_percentage"`
	SellingPrice       decimal.Decimal `json:"selling_price" db:"selling_price"`
	IsPriceLocked      bool            `json:"is_price_locked" db:"is_price_locked"`
	MinimumStock       int             `json:"minimum_stock" db:"minimum_stock"`
	Available          bool            `json:"available" db:"available"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`

	// Newest first. Entries are immutable once recorded.
	SupplyHistory []SupplyEntry `json:"supply_history" db:"-"`
}

func (s *StockItem) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   s.ID,
		ResourceType: "stock",
	}
}

// SupplyEntry records one delivery or price-change event. Quantity is 0 for
// pure price events. The cost fields are the batch's own costs, not the
// running average.
type SupplyEntry struct {
	ID                string          `json:"id" db:"id"`
	StockItemID       string          `json:"-" db:"stock_item_id"`
	Date              time.Time       `json:"date" db:"date"`
	Quantity          int             `json:"quantity" db:"quantity"`
	BaseCost          decimal.Decimal `json:"base_cost" db:"base_cost"`
	ShippingCost      decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	AdditionalCosts   decimal.Decimal `json:"additional_costs" db:"additional_costs"`
	TotalCost         decimal.Decimal `json:"total_cost" db:"total_cost"`
	Supplier          string          `json:"supplier" db:"supplier"`
	Notes             string          `json:"notes" db:"notes"`
	ProfitMargin      decimal.Decimal `json:"profit_margin" db:"profit_margin"`
	PriceChange       decimal.Decimal `json:"price_change" db:"price_change"`
	AverageCostChange decimal.Decimal `json:"average_cost_change" db:"average_cost_change"`
	WasAutoCalculated bool            `json:"was_auto_calculated" db:"was_auto_calculated"`

	// Set only on lock/unlock events.
	PriceLockChanged bool             `json:"price_lock_changed,omitempty" db:"price_lock_changed"`
	PriceBeforeLock  *decimal.Decimal `json:"price_before_lock,omitempty" db:"price_before_lock"`

	// Optional batch tracking, audit display only.
	BatchNumber         string           `json:"batch_number,omitempty" db:"batch_number"`
	DeliveryDate        *time.Time       `json:"delivery_date,omitempty" db:"delivery_date"`
	Origin              string           `json:"origin,omitempty" db:"origin"`
	ShippingMethod      string           `json:"shipping_method,omitempty" db:"shipping_method"`
	ReasonForCostChange string           `json:"reason_for_cost_change,omitempty" db:"reason_for_cost_change"`
	Comparison          *BatchComparison `json:"comparison_to_previous,omitempty" db:"-"`
}

// BatchComparison summarizes how a batch's costs moved against the
// immediately preceding delivery.
type BatchComparison struct {
	BaseCostDelta        decimal.Decimal `json:"base_cost_delta"`
	ShippingCostDelta    decimal.Decimal `json:"shipping_cost_delta"`
	AdditionalCostsDelta decimal.Decimal `json:"additional_costs_delta"`
	TotalCostDelta       decimal.Decimal `json:"total_cost_delta"`
	TotalCostPctChange   decimal.Decimal `json:"total_cost_pct_change"`
}
