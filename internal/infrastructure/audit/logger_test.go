package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/audit"
)

func TestLog_EscribeBeforeYAfter(t *testing.T) {
	var buf bytes.Buffer
	l := audit.NewLogger(zerolog.New(&buf))

	err := l.Log(context.Background(), inventory.AuditEntry{
		Action:     inventory.AuditTransferApproved,
		EntityType: "stock_transfer",
		EntityID:   "TRF-000001",
		Actor:      "ana",
		Before:     map[string]string{"status": "pending"},
		After:      map[string]string{"status": "completed"},
		At:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["message"])
	assert.Equal(t, "audit", line["channel"])
	assert.Equal(t, "transfer.approved", line["action"])
	assert.Equal(t, "TRF-000001", line["entity_id"])
	assert.Equal(t, "ana", line["actor"])
	assert.Equal(t, map[string]any{"status": "pending"}, line["before"])
	assert.Equal(t, map[string]any{"status": "completed"}, line["after"])
}

func TestLog_SinInstantaneaEsNull(t *testing.T) {
	var buf bytes.Buffer
	l := audit.NewLogger(zerolog.New(&buf))
	require.NoError(t, l.Log(context.Background(), inventory.AuditEntry{Action: inventory.AuditTransferCreated}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Contains(t, line, "before")
	assert.Nil(t, line["before"])
}

func TestLog_InstantaneaNoSerializable(t *testing.T) {
	l := audit.NewLogger(zerolog.Nop())
	err := l.Log(context.Background(), inventory.AuditEntry{After: make(chan int)})
	assert.Error(t, err)
}
