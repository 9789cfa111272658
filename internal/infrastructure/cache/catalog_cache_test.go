package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/compras-api/internal/domain/entity"
	"github.com/jhoicas/compras-api/internal/domain/repository"
	"github.com/jhoicas/compras-api/pkg/logger"
)

type memStore struct {
	data   map[string]string
	ttl    time.Duration
	getErr error
}

func (s *memStore) GetNames(_ context.Context, kind repository.CatalogKind, ids []string) (map[string]string, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := map[string]string{}
	for _, id := range ids {
		if v, ok := s.data[nameKey(kind, id)]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (s *memStore) SetNames(_ context.Context, kind repository.CatalogKind, names map[string]string, ttl time.Duration) error {
	s.ttl = ttl
	for id, v := range names {
		s.data[nameKey(kind, id)] = v
	}
	return nil
}

type countingCatalog struct {
	names map[string]string
	asked [][]string
}

func (c *countingCatalog) GetSupplier(context.Context, string) (*entity.Supplier, error) {
	return &entity.Supplier{ID: "PROV1"}, nil
}
func (c *countingCatalog) GetEmployee(context.Context, string) (*entity.Employee, error) { return nil, nil }
func (c *countingCatalog) GetProduct(context.Context, string) (*entity.Product, error)   { return nil, nil }
func (c *countingCatalog) GetWarehouse(context.Context, string) (*entity.Warehouse, error) {
	return nil, nil
}

func (c *countingCatalog) Names(_ context.Context, _ repository.CatalogKind, ids []string) (map[string]string, error) {
	c.asked = append(c.asked, append([]string(nil), ids...))
	out := map[string]string{}
	for _, id := range ids {
		if v, ok := c.names[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func TestCatalogCache_SoloConsultaLosFaltantes(t *testing.T) {
	store := &memStore{data: map[string]string{nameKey(repository.CatalogProduct, "P1"): "Arroz 500g"}}
	inner := &countingCatalog{names: map[string]string{"P1": "Arroz", "P2": "Aceite 1L"}}
	c := NewCatalogCache(inner, store, time.Minute, logger.Nop())

	got, err := c.Names(context.Background(), repository.CatalogProduct, []string{"P1", "P2"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"P1": "Arroz 500g", "P2": "Aceite 1L"}, got)
	assert.Equal(t, [][]string{{"P2"}}, inner.asked)
	assert.Equal(t, "Aceite 1L", store.data[nameKey(repository.CatalogProduct, "P2")])
	assert.Equal(t, time.Minute, store.ttl)

	_, err = c.Names(context.Background(), repository.CatalogProduct, []string{"P1", "P2"})
	require.NoError(t, err)
	assert.Len(t, inner.asked, 1, "la segunda lectura sale completa del caché")
}

func TestCatalogCache_CacheCaidoLeeDeLaBase(t *testing.T) {
	store := &memStore{data: map[string]string{}, getErr: errors.New("connection refused")}
	inner := &countingCatalog{names: map[string]string{"B1": "Bodega Central"}}
	c := NewCatalogCache(inner, store, time.Minute, logger.Nop())

	got, err := c.Names(context.Background(), repository.CatalogWarehouse, []string{"B1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"B1": "Bodega Central"}, got)
}

func TestCatalogCache_GetPasaDirecto(t *testing.T) {
	inner := &countingCatalog{}
	c := NewCatalogCache(inner, &memStore{data: map[string]string{}}, time.Minute, logger.Nop())

	s, err := c.GetSupplier(context.Background(), "PROV1")
	require.NoError(t, err)
	assert.Equal(t, "PROV1", s.ID)
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, "compras:nombre:empleado:EMP1", nameKey(repository.CatalogEmployee, "EMP1"))
}
