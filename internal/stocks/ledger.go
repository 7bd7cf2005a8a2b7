package stocks

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	custom_error "github.com/tobi647/beer-distribution-app-sub000/pkg/errors"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

var (
	oneHundred = decimal.NewFromInt(100)

	// Advisory limit for manually set prices: more than 15% away from the
	// markup-implied price raises a warning, never an error.
	priceDeviationThreshold = decimal.NewFromInt(15)
)

// ItemFields is the full field set submitted on create and edit. Edits are a
// full record replace, not a partial patch.
type ItemFields struct {
	Name               string
	Type               string
	Supplier           string
	Quantity           int
	BaseCost           decimal.Decimal
	ShippingCost       decimal.Decimal
	AdditionalCosts    decimal.Decimal
	Markup             decimal.Decimal
	IsMarkupPercentage bool
	MinimumStock       int
	SellingPrice       decimal.Decimal
	IsPriceLocked      bool
}

// SupplyBatch is one incoming delivery to be blended into an item's
// weighted-average cost.
type SupplyBatch struct {
	Quantity            int
	BaseCost            decimal.Decimal
	ShippingCost        decimal.Decimal
	AdditionalCosts     decimal.Decimal
	Supplier            string
	Notes               string
	BatchNumber         string
	DeliveryDate        *time.Time
	Origin              string
	ShippingMethod      string
	ReasonForCostChange string
}

// PriceWarning is returned alongside a successful operation when a manual
// price strays too far from the markup-implied one. The caller decides what
// to do with it.
type PriceWarning struct {
	ManualPrice    decimal.Decimal `json:"manual_price"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	DeviationPct   decimal.Decimal `json:"deviation_pct"`
}

// CalculateSellingPrice derives a price from cost and markup. Negative markup
// is deliberately not clamped; clearance pricing below cost is allowed here
// and guarded by validation at the operation boundary instead.
func CalculateSellingPrice(totalCost, markup decimal.Decimal, isPercentage bool) decimal.Decimal {
	if isPercentage {
		return totalCost.Mul(decimal.NewFromInt(1).Add(markup.Div(oneHundred))).Round(2)
	}
	return totalCost.Add(markup).Round(2)
}

// ProfitMargin is (price - cost) / cost * 100. Zero cost yields zero margin,
// not an error.
func ProfitMargin(price, cost decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(cost).Mul(oneHundred).Round(2)
}

func validateItemFields(f ItemFields) error {
	if f.Name == "" {
		return custom_error.NewValidationError("name", "is required")
	}
	if f.Type == "" {
		return custom_error.NewValidationError("type", "is required")
	}
	if f.Supplier == "" {
		return custom_error.NewValidationError("supplier", "is required")
	}
	if f.Quantity < 0 {
		return custom_error.NewValidationError("quantity", "must not be negative")
	}
	if f.BaseCost.IsNegative() {
		return custom_error.NewValidationError("base_cost", "must not be negative")
	}
	if f.ShippingCost.IsNegative() {
		return custom_error.NewValidationError("shipping_cost", "must not be negative")
	}
	if f.AdditionalCosts.IsNegative() {
		return custom_error.NewValidationError("additional_costs", "must not be negative")
	}
	if f.Markup.IsNegative() {
		return custom_error.NewValidationError("markup", "must not be negative")
	}
	if f.MinimumStock < 0 {
		return custom_error.NewValidationError("minimum_stock", "must not be negative")
	}
	if f.IsPriceLocked && f.SellingPrice.IsNegative() {
		return custom_error.NewValidationError("selling_price", "must not be negative")
	}
	return nil
}

func validateBatch(b SupplyBatch) error {
	if b.Quantity < 1 {
		return custom_error.NewValidationError("quantity", "must be at least 1")
	}
	if !b.BaseCost.IsPositive() {
		return custom_error.NewValidationError("base_cost", "must be positive for a delivery")
	}
	if b.ShippingCost.IsNegative() {
		return custom_error.NewValidationError("shipping_cost", "must not be negative")
	}
	if b.AdditionalCosts.IsNegative() {
		return custom_error.NewValidationError("additional_costs", "must not be negative")
	}
	return nil
}

// CreateItem builds a new stock item with an empty supply history. Selling
// price is derived from markup unless the caller locks it to an explicit
// value; a locked manual price far from the markup-implied one returns an
// advisory warning alongside the item.
func CreateItem(f ItemFields) (*models.StockItem, *PriceWarning, error) {
	if err := validateItemFields(f); err != nil {
		return nil, nil, err
	}

	totalCost := f.BaseCost.Add(f.ShippingCost).Add(f.AdditionalCosts).Round(2)
	sellingPrice := f.SellingPrice
	if !f.IsPriceLocked {
		sellingPrice = CalculateSellingPrice(totalCost, f.Markup, f.IsMarkupPercentage)
	}

	now := time.Now()
	item := &models.StockItem{
		ID:                 uuid.NewString(),
		Name:               f.Name,
		Type:               f.Type,
		Supplier:           f.Supplier,
		Quantity:           f.Quantity,
		BaseCost:           f.BaseCost,
		ShippingCost:       f.ShippingCost,
		AdditionalCosts:    f.AdditionalCosts,
		TotalCost:          totalCost,
		Markup:             f.Markup,
		IsMarkupPercentage: f.IsMarkupPercentage,
		SellingPrice:       sellingPrice,
		IsPriceLocked:      f.IsPriceLocked,
		MinimumStock:       f.MinimumStock,
		Available:          f.Quantity > 0,
		CreatedAt:          now,
		UpdatedAt:          now,
		SupplyHistory:      []models.SupplyEntry{},
	}

	var warning *PriceWarning
	if f.IsPriceLocked {
		warning = PriceSanityCheck(item, f.SellingPrice)
	}

	return item, warning, nil
}

// ApplyEdit replaces the item's editable fields in full and recomputes the
// derived ones. When the resulting selling price or lock state differs from
// the previous values a price-change entry is recorded; an edit that changes
// nothing priced appends nothing. Setting a manual price while locked runs
// the same deviation check as the lock endpoint and reports it as an
// advisory warning.
func ApplyEdit(item *models.StockItem, f ItemFields) (*models.SupplyEntry, *PriceWarning, error) {
	if err := validateItemFields(f); err != nil {
		return nil, nil, err
	}

	oldPrice := item.SellingPrice
	oldLock := item.IsPriceLocked
	oldTotal := item.TotalCost

	item.Name = f.Name
	item.Type = f.Type
	item.Supplier = f.Supplier
	item.Quantity = f.Quantity
	item.BaseCost = f.BaseCost
	item.ShippingCost = f.ShippingCost
	item.AdditionalCosts = f.AdditionalCosts
	item.TotalCost = f.BaseCost.Add(f.ShippingCost).Add(f.AdditionalCosts).Round(2)
	item.Markup = f.Markup
	item.IsMarkupPercentage = f.IsMarkupPercentage
	item.MinimumStock = f.MinimumStock
	item.IsPriceLocked = f.IsPriceLocked
	if f.IsPriceLocked {
		item.SellingPrice = f.SellingPrice
	} else {
		item.SellingPrice = CalculateSellingPrice(item.TotalCost, f.Markup, f.IsMarkupPercentage)
	}
	item.Available = f.Quantity > 0
	item.UpdatedAt = time.Now()

	var warning *PriceWarning
	if f.IsPriceLocked {
		warning = PriceSanityCheck(item, f.SellingPrice)
	}

	if item.SellingPrice.Equal(oldPrice) && item.IsPriceLocked == oldLock {
		return nil, warning, nil
	}

	entry := newLedgerEntry(item, 0, "Price updated via item edit")
	entry.PriceChange = item.SellingPrice.Sub(oldPrice)
	entry.AverageCostChange = item.TotalCost.Sub(oldTotal)
	entry.WasAutoCalculated = !item.IsPriceLocked
	if item.IsPriceLocked != oldLock {
		entry.PriceLockChanged = true
		entry.PriceBeforeLock = &oldPrice
	}
	prependEntry(item, entry)

	return &item.SupplyHistory[0], warning, nil
}

// AddSupply blends one delivery into the item's weighted-average unit cost
// and records the batch in the supply history. Shipping and additional costs
// of the batch are folded into the blended average rather than tracked as
// separate running figures.
func AddSupply(item *models.StockItem, batch SupplyBatch) (*models.SupplyEntry, error) {
	if err := validateBatch(batch); err != nil {
		return nil, err
	}

	batchTotal := batch.BaseCost.Add(batch.ShippingCost).Add(batch.AdditionalCosts).Round(2)

	oldQty := decimal.NewFromInt(int64(item.Quantity))
	batchQty := decimal.NewFromInt(int64(batch.Quantity))
	newAverage := oldQty.Mul(item.TotalCost).
		Add(batchQty.Mul(batchTotal)).
		Div(oldQty.Add(batchQty)).
		Round(2)

	oldPrice := item.SellingPrice
	oldTotal := item.TotalCost

	item.BaseCost = newAverage
	item.ShippingCost = decimal.Zero
	item.AdditionalCosts = decimal.Zero
	item.TotalCost = newAverage
	item.Quantity += batch.Quantity
	item.Available = true
	if !item.IsPriceLocked {
		item.SellingPrice = CalculateSellingPrice(newAverage, item.Markup, item.IsMarkupPercentage)
	}
	item.UpdatedAt = time.Now()

	entry := newLedgerEntry(item, batch.Quantity, batch.Notes)
	entry.BaseCost = batch.BaseCost
	entry.ShippingCost = batch.ShippingCost
	entry.AdditionalCosts = batch.AdditionalCosts
	entry.TotalCost = batchTotal
	if batch.Supplier != "" {
		entry.Supplier = batch.Supplier
	}
	entry.PriceChange = item.SellingPrice.Sub(oldPrice)
	entry.AverageCostChange = newAverage.Sub(oldTotal)
	entry.WasAutoCalculated = !item.IsPriceLocked
	entry.BatchNumber = batch.BatchNumber
	entry.DeliveryDate = batch.DeliveryDate
	entry.Origin = batch.Origin
	entry.ShippingMethod = batch.ShippingMethod
	entry.ReasonForCostChange = batch.ReasonForCostChange
	entry.Comparison = compareToPreviousBatch(item, batchTotal, batch)
	prependEntry(item, entry)

	return &item.SupplyHistory[0], nil
}

// TogglePriceLock switches between operator-fixed and markup-derived pricing.
// Locking keeps whatever price was on screen and back-derives an implied
// markup so a later unlock lands near the locked price. Unlocking does not
// recompute the price by itself; the next cost-affecting operation does.
// Toggling to the state the item is already in is a no-op.
func TogglePriceLock(item *models.StockItem, lock bool, currentPrice decimal.Decimal) (*models.SupplyEntry, *PriceWarning, error) {
	if lock == item.IsPriceLocked {
		return nil, nil, nil
	}

	oldPrice := item.SellingPrice
	var warning *PriceWarning
	var notes string

	if lock {
		if currentPrice.IsNegative() {
			return nil, nil, custom_error.NewValidationError("selling_price", "must not be negative")
		}
		warning = PriceSanityCheck(item, currentPrice)
		item.IsPriceLocked = true
		item.SellingPrice = currentPrice
		item.Markup = impliedMarkup(currentPrice, item.TotalCost, item.IsMarkupPercentage, item.Markup)
		notes = "Price locked at " + currentPrice.StringFixed(2)
	} else {
		item.IsPriceLocked = false
		notes = "Price unlocked; selling price follows cost and markup again"
	}
	item.UpdatedAt = time.Now()

	entry := newLedgerEntry(item, 0, notes)
	entry.PriceChange = item.SellingPrice.Sub(oldPrice)
	entry.PriceLockChanged = true
	entry.PriceBeforeLock = &oldPrice
	prependEntry(item, entry)

	return &item.SupplyHistory[0], warning, nil
}

// PriceSanityCheck compares a manual price against the markup-implied one and
// reports a warning when they diverge by more than the threshold.
func PriceSanityCheck(item *models.StockItem, manualPrice decimal.Decimal) *PriceWarning {
	suggested := CalculateSellingPrice(item.TotalCost, item.Markup, item.IsMarkupPercentage)
	if suggested.IsZero() {
		return nil
	}
	deviation := manualPrice.Sub(suggested).Div(suggested).Mul(oneHundred).Abs().Round(2)
	if deviation.LessThanOrEqual(priceDeviationThreshold) {
		return nil
	}
	return &PriceWarning{
		ManualPrice:    manualPrice,
		SuggestedPrice: suggested,
		DeviationPct:   deviation,
	}
}

func impliedMarkup(price, totalCost decimal.Decimal, isPercentage bool, fallback decimal.Decimal) decimal.Decimal {
	if isPercentage {
		if totalCost.IsZero() {
			return fallback
		}
		return price.Div(totalCost).Sub(decimal.NewFromInt(1)).Mul(oneHundred).Round(2)
	}
	return price.Sub(totalCost).Round(2)
}

// newLedgerEntry seeds an entry with the item's current state; callers
// overwrite the batch-specific fields.
func newLedgerEntry(item *models.StockItem, quantity int, notes string) models.SupplyEntry {
	return models.SupplyEntry{
		ID:              uuid.NewString(),
		StockItemID:     item.ID,
		Date:            time.Now(),
		Quantity:        quantity,
		BaseCost:        item.BaseCost,
		ShippingCost:    item.ShippingCost,
		AdditionalCosts: item.AdditionalCosts,
		TotalCost:       item.TotalCost,
		Supplier:        item.Supplier,
		Notes:           notes,
		ProfitMargin:    ProfitMargin(item.SellingPrice, item.TotalCost),
	}
}

func prependEntry(item *models.StockItem, entry models.SupplyEntry) {
	item.SupplyHistory = append([]models.SupplyEntry{entry}, item.SupplyHistory...)
}

// compareToPreviousBatch reports per-field deltas against the most recent
// real delivery, skipping pure price events.
func compareToPreviousBatch(item *models.StockItem, batchTotal decimal.Decimal, batch SupplyBatch) *models.BatchComparison {
	for _, prev := range item.SupplyHistory {
		if prev.Quantity == 0 {
			continue
		}
		cmp := &models.BatchComparison{
			BaseCostDelta:        batch.BaseCost.Sub(prev.BaseCost),
			ShippingCostDelta:    batch.ShippingCost.Sub(prev.ShippingCost),
			AdditionalCostsDelta: batch.AdditionalCosts.Sub(prev.AdditionalCosts),
			TotalCostDelta:       batchTotal.Sub(prev.TotalCost),
		}
		if !prev.TotalCost.IsZero() {
			cmp.TotalCostPctChange = batchTotal.Sub(prev.TotalCost).Div(prev.TotalCost).Mul(oneHundred).Round(2)
		}
		return cmp
	}
	return nil
}
