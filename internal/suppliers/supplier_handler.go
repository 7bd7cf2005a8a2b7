package suppliers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	custom_error "github.com/tobi647/beer-distribution-app-sub000/pkg/errors"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type SupplierHandler struct {
	Repository *SupplierRepository
}

func NewSupplierHandler(r *SupplierRepository) *SupplierHandler {
	return &SupplierHandler{Repository: r}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/suppliers", h.CreateSupplier)
	router.GET("/suppliers", h.GetSuppliers)
	router.GET("/suppliers/:id", h.GetSupplier)
	router.DELETE("/suppliers/:id", h.RemoveSupplier)
}

type supplierRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.Repository.GetSuppliers()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not list suppliers", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, suppliers)
}

func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.Repository.GetSupplier(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not get supplier", "details": err.Error()})
		return
	}
	if supplier == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	c.JSON(http.StatusOK, supplier)
}

func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	supplier := models.Supplier{
		Name:    req.Name,
		Contact: req.Contact,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
	}

	err := h.Repository.PersistSupplier(&supplier)
	var uniqueErr *custom_error.UniqueViolationError
	if errors.As(err, &uniqueErr) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Supplier name already registered", "details": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not insert supplier"})
		return
	}

	c.JSON(http.StatusCreated, supplier)
}

func (h *SupplierHandler) RemoveSupplier(c *gin.Context) {
	err := h.Repository.RemoveSupplier(c.Param("id"))

	var notFoundErr *custom_error.NotFoundError
	var fkErr *custom_error.ForeignKeyViolationError
	switch {
	case errors.As(err, &notFoundErr):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
	case errors.As(err, &fkErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Could not delete supplier", "details": err.Error()})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not delete supplier", "details": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
	}
}
