package repository

import "context"

// IdentifierStore expone lo que el asignador de identificadores necesita de una tabla.
type IdentifierStore interface {
	// MaxSequence devuelve el mayor sufijo numérico de los ids con forma prefix+dígitos (0 si no hay).
	MaxSequence(ctx context.Context, prefix string) (int64, error)
	Exists(ctx context.Context, id string) (bool, error)
}
