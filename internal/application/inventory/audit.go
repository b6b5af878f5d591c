package inventory

import (
	"context"
	"time"
)

// Acciones registradas en auditoría.
const (
	AuditStockAdjusted     = "stock.adjusted"
	AuditTransferCreated   = "transfer.created"
	AuditTransferApproved  = "transfer.approved"
	AuditTransferCancelled = "transfer.cancelled"
	AuditTransferUpdated   = "transfer.updated"
	AuditTransferDeleted   = "transfer.deleted"
	AuditAlertResolved     = "alert.resolved"
)

// auditTrail envía entradas de auditoría al AuditLogger a través del Dispatcher.
// Sin logger o sin dispatcher no registra nada.
type auditTrail struct {
	logger     AuditLogger
	dispatcher *Dispatcher
	now        func() time.Time
}

func (a auditTrail) record(action, entityType, entityID, actor string, before, after any) {
	if a.logger == nil {
		return
	}
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	entry := AuditEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Before:     before,
		After:      after,
		At:         now(),
	}
	a.dispatcher.Dispatch("audit:"+action, func(ctx context.Context) error {
		return a.logger.Log(ctx, entry)
	})
}
