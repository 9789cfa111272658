// Package cache guarda en Redis los nombres de catálogo que se muestran en las consultas de compras.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/compras-api/internal/domain/repository"
	"github.com/jhoicas/compras-api/pkg/logger"
)

const keyPrefix = "compras:nombre"

// NameStore almacén de nombres por (catálogo, id).
type NameStore interface {
	// GetNames devuelve solo los ids encontrados.
	GetNames(ctx context.Context, kind repository.CatalogKind, ids []string) (map[string]string, error)
	SetNames(ctx context.Context, kind repository.CatalogKind, names map[string]string, ttl time.Duration) error
}

// RedisNameStore NameStore sobre Redis: un string por id con expiración.
type RedisNameStore struct {
	client *redis.Client
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a redis %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisNameStore usa un cliente existente; el llamador lo cierra.
func NewRedisNameStore(client *redis.Client) *RedisNameStore {
	return &RedisNameStore{client: client}
}

func nameKey(kind repository.CatalogKind, id string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, kind, id)
}

func (s *RedisNameStore) GetNames(ctx context.Context, kind repository.CatalogKind, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = nameKey(kind, id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget nombres %s: %w", kind, err)
	}
	for i, v := range vals {
		if name, ok := v.(string); ok {
			out[ids[i]] = name
		}
	}
	return out, nil
}

func (s *RedisNameStore) SetNames(ctx context.Context, kind repository.CatalogKind, names map[string]string, ttl time.Duration) error {
	if len(names) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for id, name := range names {
		pipe.Set(ctx, nameKey(kind, id), name, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set nombres %s: %w", kind, err)
	}
	return nil
}

// CatalogCache decorador de CatalogRepository que cachea Names. Los Get pasan directo:
// validan referencias y tienen que ver el estado real. Un fallo del caché no falla la
// consulta; se registra y se lee de la base.
type CatalogCache struct {
	repository.CatalogRepository
	store NameStore
	ttl   time.Duration
	log   *logger.Logger
}

var _ repository.CatalogRepository = (*CatalogCache)(nil)

// NewCatalogCache envuelve next.
func NewCatalogCache(next repository.CatalogRepository, store NameStore, ttl time.Duration, log *logger.Logger) *CatalogCache {
	return &CatalogCache{CatalogRepository: next, store: store, ttl: ttl, log: log.Component("catalog_cache")}
}

func (c *CatalogCache) Names(ctx context.Context, kind repository.CatalogKind, ids []string) (map[string]string, error) {
	cached, err := c.store.GetNames(ctx, kind, ids)
	if err != nil {
		c.log.Warn().Err(err).Str("catalog", string(kind)).Msg("caché de nombres no disponible")
		return c.CatalogRepository.Names(ctx, kind, ids)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return cached, nil
	}

	fresh, err := c.CatalogRepository.Names(ctx, kind, missing)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetNames(ctx, kind, fresh, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("catalog", string(kind)).Msg("guardar nombres en caché")
	}
	for id, name := range fresh {
		cached[id] = name
	}
	return cached, nil
}
