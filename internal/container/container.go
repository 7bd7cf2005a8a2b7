package container

import (
	"database/sql"

	"go.uber.org/zap"

	auditLogRepo "github.com/tobi647/beer-distribution-app-sub000/internal/auditlog"
	"github.com/tobi647/beer-distribution-app-sub000/internal/orders"
	"github.com/tobi647/beer-distribution-app-sub000/internal/repository"
	"github.com/tobi647/beer-distribution-app-sub000/internal/stocks"
	"github.com/tobi647/beer-distribution-app-sub000/internal/suppliers"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/auditlog"
)

type Container struct {
	Repository      *repository.Repository
	AuditLog        *auditlog.Auditlog
	StockHandler    *stocks.StockHandler
	SupplierHandler *suppliers.SupplierHandler
	OrderHandler    *orders.OrderHandler
}

func NewAppContainer(db *sql.DB, logger *zap.Logger) *Container {
	repo := repository.NewRepository(db)
	auditRepo := auditLogRepo.NewRepository(repo)
	auditLog := auditlog.NewAuditLog(auditRepo, logger)

	stockService := stocks.NewStockService(repo, stocks.NewRepository(repo))
	stockHandler := stocks.NewStockHandler(stockService, auditLog, auditRepo)

	supplierHandler := suppliers.NewSupplierHandler(suppliers.NewSupplierRepository(repo))

	orderService := orders.NewOrderService(repo, orders.NewRepository(repo))
	orderHandler := orders.NewOrderHandler(orderService, auditLog)

	return &Container{
		Repository:      repo,
		AuditLog:        auditLog,
		StockHandler:    stockHandler,
		SupplierHandler: supplierHandler,
		OrderHandler:    orderHandler,
	}
}
