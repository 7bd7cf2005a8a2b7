package orders

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tobi647/beer-distribution-app-sub000/pkg/auditlog"
	custom_error "github.com/tobi647/beer-distribution-app-sub000/pkg/errors"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type orderOperations interface {
	PlaceOrder(req OrderRequest) (*models.Order, error)
	ListOrders() ([]models.Order, error)
	GetOrder(id string) (*models.Order, error)
}

type auditLogger interface {
	Log(action string, data interface{}, item auditlog.Auditable)
}

type OrderHandler struct {
	Service  orderOperations
	AuditLog auditLogger
}

func NewOrderHandler(service orderOperations, a auditLogger) *OrderHandler {
	return &OrderHandler{Service: service, AuditLog: a}
}

func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/orders", h.PlaceOrder)
	router.GET("/orders", h.ListOrders)
	router.GET("/orders/:id", h.GetOrder)
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var orderRequest OrderRequest
	if err := c.ShouldBindJSON(&orderRequest); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	order, err := h.Service.PlaceOrder(orderRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logOrder := *order
	go h.AuditLog.Log(
		"order",
		map[string]interface{}{
			"stock_item_id": order.StockItemID,
			"quantity":      order.Quantity,
			"total_price":   order.TotalPrice,
			"msg":           "Client order placed",
		},
		&logOrder,
	)

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.Service.ListOrders()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.Service.GetOrder(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func respondWithError(c *gin.Context, err error) {
	var validationErr *custom_error.ValidationError
	var notFoundErr *custom_error.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"field":  validationErr.Field,
			"reason": validationErr.Reason,
		})
	case errors.As(err, &notFoundErr):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
