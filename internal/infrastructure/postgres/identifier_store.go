package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.IdentifierStore = (*IdentifierStore)(nil)

// tablas con ids legibles; el nombre nunca viene del usuario.
var identifierTables = map[string]bool{
	"stock_transfers": true,
}

// IdentifierStore lee los ids existentes de una tabla para el IdAllocator.
type IdentifierStore struct {
	q     Querier
	table string
}

// NewIdentifierStore construye el store para una tabla conocida.
func NewIdentifierStore(q Querier, table string) (*IdentifierStore, error) {
	if !identifierTables[table] {
		return nil, fmt.Errorf("identifier store: tabla %q no soportada", table)
	}
	return &IdentifierStore{q: q, table: table}, nil
}

// MaxSequence devuelve el mayor sufijo numérico de los ids prefix+dígitos (máximo 18 dígitos).
// La comparación es numérica, no lexicográfica: TRF-1000000 > TRF-999999.
func (s *IdentifierStore) MaxSequence(ctx context.Context, prefix string) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(substr(id, char_length($1::text) + 1)::bigint), 0)
		FROM %s
		WHERE left(id, char_length($1::text)) = $1::text
		  AND substr(id, char_length($1::text) + 1) ~ '^[0-9]{1,18}$'`, s.table)
	var max int64
	if err := s.q.QueryRow(ctx, query, prefix).Scan(&max); err != nil {
		return 0, fmt.Errorf("max sequence %s: %w", s.table, err)
	}
	return max, nil
}

// Exists indica si el id ya está en la tabla.
func (s *IdentifierStore) Exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, s.table)
	var exists bool
	if err := s.q.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", s.table, err)
	}
	return exists, nil
}
