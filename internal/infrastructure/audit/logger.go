// Package audit implementación por defecto del gancho de auditoría: registros estructurados en zerolog.
package audit

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
)

var _ inventory.AuditLogger = (*Logger)(nil)

// Logger escribe cada entrada de auditoría como un evento "audit" con before/after en JSON.
type Logger struct {
	log zerolog.Logger
}

// NewLogger construye el auditor.
func NewLogger(log zerolog.Logger) *Logger {
	return &Logger{log: log.With().Str("channel", "audit").Logger()}
}

// Log registra la entrada. Solo falla si las instantáneas no se pueden serializar.
func (l *Logger) Log(_ context.Context, e inventory.AuditEntry) error {
	before, err := snapshot(e.Before)
	if err != nil {
		return err
	}
	after, err := snapshot(e.After)
	if err != nil {
		return err
	}
	l.log.Info().
		Str("action", e.Action).
		Str("entity_type", e.EntityType).
		Str("entity_id", e.EntityID).
		Str("actor", e.Actor).
		Time("at", e.At).
		RawJSON("before", before).
		RawJSON("after", after).
		Msg("audit")
	return nil
}

func snapshot(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
