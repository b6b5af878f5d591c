// Package redis caché de resúmenes de stock sobre Redis (cache-aside, invalidación tras cada commit del libro).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

const (
	keyPrefix = "stock:summary:"
	genPrefix = "stock:summary:gen:"
)

// setIfGenerationLua guarda el resumen solo si la generación no avanzó.
// KEYS[1] resumen, KEYS[2] generación; ARGV[1] generación leída, ARGV[2] payload, ARGV[3] ttl en ms.
const setIfGenerationLua = `
local gen = redis.call('GET', KEYS[2])
if not gen then gen = '0' end
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

var setIfGeneration = goredis.NewScript(setIfGenerationLua)

var _ inventory.SummaryCache = (*SummaryCache)(nil)

// SummaryCache implementa inventory.SummaryCache.
type SummaryCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewSummaryCache construye la caché. ttl <= 0 usa 5 minutos.
func NewSummaryCache(client *goredis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Get devuelve el resumen cacheado; ok=false si no está.
func (c *SummaryCache) Get(ctx context.Context, productID string) (*entity.StockSummary, bool, error) {
	val, err := c.client.Get(ctx, summaryKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get summary cache: %w", err)
	}
	var s entity.StockSummary
	if err := json.Unmarshal(val, &s); err != nil {
		// Entrada corrupta: se trata como ausente y se borra
		_ = c.client.Del(ctx, summaryKey(productID)).Err()
		return nil, false, nil
	}
	return &s, true, nil
}

// Generation devuelve el contador de invalidaciones del producto; 0 si nunca se invalidó.
func (c *SummaryCache) Generation(ctx context.Context, productID string) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(productID)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get summary generation: %w", err)
	}
	return gen, nil
}

// Set guarda el resumen con el TTL configurado si la generación sigue siendo generation.
func (c *SummaryCache) Set(ctx context.Context, s *entity.StockSummary, generation int64) (bool, error) {
	val, err := json.Marshal(s)
	if err != nil {
		return false, fmt.Errorf("marshal summary: %w", err)
	}
	keys := []string{summaryKey(s.ProductID), genKey(s.ProductID)}
	res, err := setIfGeneration.Run(ctx, c.client, keys, generation, val, c.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("set summary cache: %w", err)
	}
	return res == 1, nil
}

// Invalidate avanza la generación y borra el resumen en una sola transacción.
func (c *SummaryCache) Invalidate(ctx context.Context, productID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, genKey(productID))
		pipe.Del(ctx, summaryKey(productID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate summary cache: %w", err)
	}
	return nil
}

func summaryKey(productID string) string {
	return keyPrefix + productID
}

func genKey(productID string) string {
	return genPrefix + productID
}
