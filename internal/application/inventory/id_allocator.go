package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain"
	invrules "github.com/jhoicas/inventario-stock/internal/domain/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/rs/zerolog"
)

// IdAllocatorConfig ancho del número y reintentos ante colisión.
type IdAllocatorConfig struct {
	Width       int
	MaxAttempts int
}

// IdAllocator genera identificadores legibles (prefix + número con ceros) con reintento optimista.
// No bloquea: la unicidad la garantiza la restricción de la tabla y el caller reintenta.
type IdAllocator struct {
	store       repository.IdentifierStore
	width       int
	maxAttempts int
	log         zerolog.Logger
	now         func() time.Time
}

// NewIdAllocator construye el asignador sobre una tabla concreta.
func NewIdAllocator(store repository.IdentifierStore, cfg IdAllocatorConfig, log zerolog.Logger) *IdAllocator {
	if cfg.Width <= 0 {
		cfg.Width = 6
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &IdAllocator{
		store:       store,
		width:       cfg.Width,
		maxAttempts: cfg.MaxAttempts,
		log:         log.With().Str("component", "id_allocator").Logger(),
		now:         time.Now,
	}
}

// Next lee el mayor número existente para el prefijo, lo incrementa y verifica que el candidato no exista.
// Si existe devuelve ErrConflict (otro escritor ganó entre la lectura y la verificación).
func (a *IdAllocator) Next(ctx context.Context, prefix string) (string, error) {
	maxSeq, err := a.store.MaxSequence(ctx, prefix)
	if err != nil {
		return "", err
	}
	candidate := invrules.FormatIdentifier(prefix, maxSeq+1, a.width)
	exists, err := a.store.Exists(ctx, candidate)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: identificador %s ya existe", domain.ErrConflict, candidate)
	}
	return candidate, nil
}

// Allocate obtiene un id con Next y lo persiste con persist. Ante ErrDuplicate/ErrConflict reintenta
// hasta MaxAttempts veces; agotados los intentos usa un id derivado del reloj para garantizar progreso.
func (a *IdAllocator) Allocate(ctx context.Context, prefix string, persist func(ctx context.Context, id string) error) (string, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		id, err := a.Next(ctx, prefix)
		if err == nil {
			err = persist(ctx, id)
			if err == nil {
				return id, nil
			}
		}
		if !isCollision(err) {
			return "", err
		}
		a.log.Debug().Str("prefix", prefix).Int("attempt", attempt).Msg("colisión de identificador, reintentando")
	}

	fallback := invrules.FallbackIdentifier(prefix, a.now())
	a.log.Warn().Str("prefix", prefix).Str("id", fallback).Msg("reintentos agotados, usando identificador por reloj")
	if err := persist(ctx, fallback); err != nil {
		if isCollision(err) {
			return "", fmt.Errorf("%w: no se pudo asignar identificador para %q", domain.ErrConflict, prefix)
		}
		return "", err
	}
	return fallback, nil
}

func isCollision(err error) bool {
	return errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrConflict)
}
