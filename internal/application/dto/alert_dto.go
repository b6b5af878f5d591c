package dto

import (
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// AlertResponse alerta de stock bajo serializada.
type AlertResponse struct {
	ID              string     `json:"id"`
	ProductID       string     `json:"product_id"`
	WarehouseID     *string    `json:"warehouse_id"`
	CurrentQuantity int64      `json:"current_quantity"`
	Threshold       int64      `json:"threshold"`
	AlertLevel      string     `json:"alert_level"`
	IsResolved      bool       `json:"is_resolved"`
	ResolvedBy      string     `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AlertListResponse lista de alertas.
type AlertListResponse struct {
	Items []AlertResponse `json:"items"`
	Count int             `json:"count"`
}

// CheckAlertsRequest body opcional para POST /api/stock/alerts/check.
type CheckAlertsRequest struct {
	ProductID   *string `json:"product_id,omitempty"`
	WarehouseID *string `json:"warehouse_id,omitempty"`
}

// ResolveAlertRequest body opcional para POST /api/stock/alerts/:id/resolve.
type ResolveAlertRequest struct {
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// ToAlertResponse convierte una alerta.
func ToAlertResponse(a *entity.LowStockAlert) AlertResponse {
	return AlertResponse{
		ID:              a.ID,
		ProductID:       a.ProductID,
		WarehouseID:     a.WarehouseID,
		CurrentQuantity: a.CurrentQuantity,
		Threshold:       a.Threshold,
		AlertLevel:      string(a.AlertLevel),
		IsResolved:      a.IsResolved,
		ResolvedBy:      a.ResolvedBy,
		ResolvedAt:      a.ResolvedAt,
		CreatedAt:       a.CreatedAt,
	}
}

// ToAlertListResponse convierte una lista de alertas.
func ToAlertListResponse(list []*entity.LowStockAlert) AlertListResponse {
	items := make([]AlertResponse, 0, len(list))
	for _, a := range list {
		items = append(items, ToAlertResponse(a))
	}
	return AlertListResponse{Items: items, Count: len(items)}
}
