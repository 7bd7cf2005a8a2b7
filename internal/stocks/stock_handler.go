package stocks

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tobi647/beer-distribution-app-sub000/internal/stocks/request"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/auditlog"
	custom_error "github.com/tobi647/beer-distribution-app-sub000/pkg/errors"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type stockOperations interface {
	CreateStock(fields ItemFields) (*models.StockItem, *PriceWarning, error)
	GetStock(id string) (*models.StockItem, error)
	ListStocks(searchTerm, sortField string, order SortOrder) ([]models.StockItem, error)
	ListLowStocks() ([]models.StockItem, error)
	EditStock(id string, fields ItemFields) (*models.StockItem, *PriceWarning, error)
	AddSupply(id string, batch SupplyBatch) (*models.StockItem, error)
	TogglePriceLock(id string, lock bool, currentPrice decimal.Decimal) (*models.StockItem, *PriceWarning, error)
	DeleteStock(id string) error
	GetHistory(id string, filter HistoryFilter) ([]models.SupplyEntry, error)
}

type auditLogger interface {
	Log(action string, data interface{}, item auditlog.Auditable)
}

type auditReader interface {
	GetResourceLog(id string, resourceType string) ([]models.AuditLog, error)
}

type StockHandler struct {
	Service   stockOperations
	AuditLog  auditLogger
	AuditRead auditReader
}

func NewStockHandler(service stockOperations, a auditLogger, reader auditReader) *StockHandler {
	return &StockHandler{
		Service:   service,
		AuditLog:  a,
		AuditRead: reader,
	}
}

func (h *StockHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/stocks", h.CreateStock)
	router.GET("/stocks", h.ListStocks)
	router.GET("/stocks/low", h.ListLowStocks)
	router.GET("/stocks/:id", h.GetStock)
	router.PUT("/stocks/:id", h.UpdateStock)
	router.DELETE("/stocks/:id", h.DeleteStock)
	router.POST("/stocks/:id/supply", h.AddSupply)
	router.POST("/stocks/:id/price-lock", h.TogglePriceLock)
	router.GET("/stocks/:id/history", h.GetHistory)
	router.GET("/stocks/:id/history/export", h.ExportHistory)
	router.GET("/stocks/:id/audit-log", h.GetAuditLog)
}

func (h *StockHandler) CreateStock(c *gin.Context) {
	var stockRequest stock_request.StockItemRequest
	if err := c.ShouldBindJSON(&stockRequest); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	item, warning, err := h.Service.CreateStock(itemFieldsFromRequest(stockRequest))
	if err != nil {
		respondWithError(c, err)
		return
	}

	logItem := *item
	go h.AuditLog.Log(
		"create",
		map[string]interface{}{
			"name":          item.Name,
			"quantity":      item.Quantity,
			"total_cost":    item.TotalCost,
			"selling_price": item.SellingPrice,
			"msg":           "Register stock item",
		},
		&logItem,
	)

	c.JSON(http.StatusCreated, itemResponse(item, warning))
}

func (h *StockHandler) ListStocks(c *gin.Context) {
	order := SortAsc
	if c.Query("order") == string(SortDesc) {
		order = SortDesc
	}

	items, err := h.Service.ListStocks(c.Query("search"), c.Query("sort"), order)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *StockHandler) ListLowStocks(c *gin.Context) {
	items, err := h.Service.ListLowStocks()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *StockHandler) GetStock(c *gin.Context) {
	item, err := h.Service.GetStock(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *StockHandler) UpdateStock(c *gin.Context) {
	var stockRequest stock_request.StockItemRequest
	if err := c.ShouldBindJSON(&stockRequest); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	item, warning, err := h.Service.EditStock(c.Param("id"), itemFieldsFromRequest(stockRequest))
	if err != nil {
		respondWithError(c, err)
		return
	}

	logItem := *item
	go h.AuditLog.Log(
		"update",
		map[string]interface{}{
			"name":          item.Name,
			"total_cost":    item.TotalCost,
			"selling_price": item.SellingPrice,
			"msg":           "Edit stock item",
		},
		&logItem,
	)

	c.JSON(http.StatusOK, itemResponse(item, warning))
}

func (h *StockHandler) DeleteStock(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.DeleteStock(id); err != nil {
		respondWithError(c, err)
		return
	}

	stub := &models.StockItem{ID: id}
	go h.AuditLog.Log(
		"delete",
		map[string]interface{}{"msg": "Remove stock item and its history"},
		stub,
	)

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *StockHandler) AddSupply(c *gin.Context) {
	var batchRequest stock_request.SupplyBatchRequest
	if err := c.ShouldBindJSON(&batchRequest); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	batch := SupplyBatch{
		Quantity:            batchRequest.Quantity,
		BaseCost:            batchRequest.BaseCost,
		ShippingCost:        batchRequest.ShippingCost,
		AdditionalCosts:     batchRequest.AdditionalCosts,
		Supplier:            batchRequest.Supplier,
		Notes:               batchRequest.Notes,
		BatchNumber:         batchRequest.BatchNumber,
		DeliveryDate:        batchRequest.DeliveryDate,
		Origin:              batchRequest.Origin,
		ShippingMethod:      batchRequest.ShippingMethod,
		ReasonForCostChange: batchRequest.ReasonForCostChange,
	}

	item, err := h.Service.AddSupply(c.Param("id"), batch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logItem := *item
	go h.AuditLog.Log(
		"add_supply",
		map[string]interface{}{
			"batch_quantity": batch.Quantity,
			"new_quantity":   item.Quantity,
			"average_cost":   item.TotalCost,
			"msg":            "Blend supply batch into stock",
		},
		&logItem,
	)

	c.JSON(http.StatusOK, item)
}

func (h *StockHandler) TogglePriceLock(c *gin.Context) {
	var lockRequest stock_request.PriceLockRequest
	if err := c.ShouldBindJSON(&lockRequest); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	item, warning, err := h.Service.TogglePriceLock(c.Param("id"), lockRequest.Lock, lockRequest.CurrentPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action := "price_unlock"
	if lockRequest.Lock {
		action = "price_lock"
	}
	logItem := *item
	go h.AuditLog.Log(
		action,
		map[string]interface{}{
			"selling_price": item.SellingPrice,
			"msg":           "Toggle price lock",
		},
		&logItem,
	)

	c.JSON(http.StatusOK, itemResponse(item, warning))
}

func (h *StockHandler) GetHistory(c *gin.Context) {
	filter, err := historyFilterFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	history, err := h.Service.GetHistory(c.Param("id"), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *StockHandler) GetAuditLog(c *gin.Context) {
	// Resolve the item first so unknown IDs map to 404, not an empty log.
	item, err := h.Service.GetStock(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	logs, err := h.AuditRead.GetResourceLog(item.ID, "stock")
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *StockHandler) ExportHistory(c *gin.Context) {
	item, err := h.Service.GetStock(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="supply-history.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := WriteHistoryXLSX(c.Writer, item.SupplyHistory); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to export supply history"})
		}
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="supply-history.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := WriteHistoryCSV(c.Writer, item.SupplyHistory); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to export supply history"})
		}
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unsupported export format"})
	}
}

// itemResponse wraps an item with the optional price-deviation advisory, the
// same shape for every mutating endpoint that can carry one.
func itemResponse(item *models.StockItem, warning *PriceWarning) gin.H {
	response := gin.H{"item": item}
	if warning != nil {
		response["warning"] = warning
	}
	return response
}

func itemFieldsFromRequest(req stock_request.StockItemRequest) ItemFields {
	return ItemFields{
		Name:               req.Name,
		Type:               req.Type,
		Supplier:           req.Supplier,
		Quantity:           req.Quantity,
		BaseCost:           req.BaseCost,
		ShippingCost:       req.ShippingCost,
		AdditionalCosts:    req.AdditionalCosts,
		Markup:             req.Markup,
		IsMarkupPercentage: req.IsMarkupPercentage,
		MinimumStock:       req.MinimumStock,
		SellingPrice:       req.SellingPrice,
		IsPriceLocked:      req.IsPriceLocked,
	}
}

func historyFilterFromQuery(c *gin.Context) (HistoryFilter, error) {
	filter := HistoryFilter{
		Supplier:  c.Query("supplier"),
		SortField: c.DefaultQuery("sort", "date"),
		Order:     SortAsc,
	}
	if c.Query("order") == string(SortDesc) {
		filter.Order = SortDesc
	}

	if raw := c.Query("from"); raw != "" {
		from, err := parseFilterDate(raw)
		if err != nil {
			return filter, custom_error.NewValidationError("from", "must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseFilterDate(raw)
		if err != nil {
			return filter, custom_error.NewValidationError("to", "must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
		filter.To = &to
	}
	if raw := c.Query("min_quantity"); raw != "" {
		minQty, err := strconv.Atoi(raw)
		if err != nil {
			return filter, custom_error.NewValidationError("min_quantity", "must be an integer")
		}
		filter.MinQuantity = &minQty
	}
	if raw := c.Query("max_quantity"); raw != "" {
		maxQty, err := strconv.Atoi(raw)
		if err != nil {
			return filter, custom_error.NewValidationError("max_quantity", "must be an integer")
		}
		filter.MaxQuantity = &maxQty
	}

	return filter, nil
}

func parseFilterDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func respondWithError(c *gin.Context, err error) {
	var validationErr *custom_error.ValidationError
	var notFoundErr *custom_error.NotFoundError
	var uniqueErr *custom_error.UniqueViolationError

	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"field":  validationErr.Field,
			"reason": validationErr.Reason,
		})
	case errors.As(err, &notFoundErr):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &uniqueErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
