package auditlog

import (
	"go.uber.org/zap"

	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type LogStore interface {
	PersistLog(auditLog models.AuditLog, data interface{}) error
}

// Auditlog records operation-level events (who did what to which resource)
// next to the domain's own supply history. Failures are logged and swallowed;
// audit logging never fails the operation it describes.
type Auditlog struct {
	store  LogStore
	logger *zap.Logger
}

type Auditable interface {
	CreateLogView() models.AuditLog
}

func NewAuditLog(store LogStore, logger *zap.Logger) *Auditlog {
	return &Auditlog{store: store, logger: logger}
}

func (a *Auditlog) Log(action string, data interface{}, item Auditable) {
	auditLog := item.CreateLogView()
	auditLog.Action = action

	if err := a.store.PersistLog(auditLog, data); err != nil {
		a.logger.Warn("unable to create audit log entry",
			zap.String("resource_id", auditLog.ResourceID),
			zap.String("action", action),
			zap.Error(err))
		return
	}

	a.logger.Debug("created audit log entry",
		zap.String("resource_id", auditLog.ResourceID),
		zap.String("action", action))
}
