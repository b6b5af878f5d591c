package postgres

import (
	"context"
	"fmt"
)

// schemaStatements DDL idempotente del módulo de stock.
// warehouse_key = '' representa el pool global (sin bodega); así la clave primaria no tiene NULLs.
// products y warehouses pertenecen al catálogo: solo se crean si no existen (entornos de desarrollo).
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id                  TEXT PRIMARY KEY,
		sku                 TEXT NOT NULL DEFAULT '',
		name                TEXT NOT NULL,
		current_stock       BIGINT NOT NULL DEFAULT 0,
		low_stock_threshold BIGINT NOT NULL DEFAULT 0,
		critical_ratio      NUMERIC(4,3)
	)`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS critical_ratio NUMERIC(4,3)`,
	`DO $$ BEGIN
		ALTER TABLE products ADD CONSTRAINT ck_products_critical_ratio
			CHECK (critical_ratio IS NULL OR (critical_ratio > 0 AND critical_ratio <= 1));
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE TABLE IF NOT EXISTS warehouses (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_levels (
		product_id       TEXT NOT NULL,
		warehouse_key    TEXT NOT NULL DEFAULT '',
		current_quantity BIGINT NOT NULL DEFAULT 0 CHECK (current_quantity >= 0),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (product_id, warehouse_key)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_history (
		id                TEXT PRIMARY KEY,
		product_id        TEXT NOT NULL,
		warehouse_id      TEXT,
		transaction_type  TEXT NOT NULL,
		quantity_delta    BIGINT NOT NULL,
		previous_quantity BIGINT NOT NULL,
		new_quantity      BIGINT NOT NULL CHECK (new_quantity >= 0),
		reference_type    TEXT,
		reference_id      TEXT,
		notes             TEXT,
		actor             TEXT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (new_quantity = previous_quantity + quantity_delta)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_history_product ON stock_history (product_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_history_reference ON stock_history (reference_id)`,
	`CREATE TABLE IF NOT EXISTS stock_transfers (
		id                TEXT PRIMARY KEY,
		product_id        TEXT NOT NULL,
		from_warehouse_id TEXT NOT NULL,
		to_warehouse_id   TEXT NOT NULL,
		quantity          BIGINT NOT NULL CHECK (quantity > 0),
		status            TEXT NOT NULL,
		notes             TEXT,
		actor             TEXT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (from_warehouse_id <> to_warehouse_id)
	)`,
	`CREATE TABLE IF NOT EXISTS low_stock_alerts (
		id               TEXT PRIMARY KEY,
		product_id       TEXT NOT NULL,
		warehouse_key    TEXT NOT NULL DEFAULT '',
		current_quantity BIGINT NOT NULL,
		threshold        BIGINT NOT NULL,
		alert_level      TEXT NOT NULL,
		is_resolved      BOOLEAN NOT NULL DEFAULT false,
		resolved_by      TEXT,
		resolved_at      TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// Una sola alerta activa por clave
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_low_stock_alerts_active
		ON low_stock_alerts (product_id, warehouse_key) WHERE NOT is_resolved`,
}

// Migrate aplica el esquema. Se puede ejecutar en cada arranque.
func Migrate(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
