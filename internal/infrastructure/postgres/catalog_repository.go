package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/compras-api/internal/domain/entity"
	"github.com/jhoicas/compras-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// catalogNameSQL tabla, columna id y expresión de nombre por catálogo.
var catalogNameSQL = map[repository.CatalogKind]struct{ table, id, name string }{
	repository.CatalogSupplier:  {"proveedor", "id_proveedor", "nombre"},
	repository.CatalogEmployee:  {"empleado", "id_empleado", "TRIM(nombre || ' ' || COALESCE(apellido, ''))"},
	repository.CatalogProduct:   {"producto", "id_producto", "nombre"},
	repository.CatalogWarehouse: {"bodega", "id_bodega", "nombre"},
}

// CatalogRepo lecturas de proveedor, empleado, producto y bodega.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository construye el adaptador de catálogos.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

func (r *CatalogRepo) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	found, err := r.get(ctx, &s, `SELECT id_proveedor, nombre FROM proveedor WHERE id_proveedor = $1`, id)
	if !found {
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepo) GetEmployee(ctx context.Context, id string) (*entity.Employee, error) {
	var e entity.Employee
	found, err := r.get(ctx, &e, `
		SELECT id_empleado, nombre, COALESCE(apellido, '') AS apellido, COALESCE(rol, '') AS rol,
		       COALESCE(id_sucursal, '') AS id_sucursal
		FROM empleado WHERE id_empleado = $1`, id)
	if !found {
		return nil, err
	}
	return &e, nil
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	found, err := r.get(ctx, &p, `SELECT id_producto, nombre, created_at FROM producto WHERE id_producto = $1`, id)
	if !found {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepo) GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	found, err := r.get(ctx, &w, `
		SELECT id_bodega, nombre, COALESCE(id_sucursal, '') AS id_sucursal, created_at
		FROM bodega WHERE id_bodega = $1`, id)
	if !found {
		return nil, err
	}
	return &w, nil
}

func (r *CatalogRepo) get(ctx context.Context, dst any, query string, id string) (bool, error) {
	if err := pgxscan.Get(ctx, conn(ctx, r.pool), dst, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get catálogo: %w", err)
	}
	return true, nil
}

// Names resuelve los nombres de todos los ids en una consulta (= ANY($1)).
func (r *CatalogRepo) Names(ctx context.Context, kind repository.CatalogKind, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	t, ok := catalogNameSQL[kind]
	if !ok {
		return nil, fmt.Errorf("catálogo desconocido %q", kind)
	}
	var rows []struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}
	query := fmt.Sprintf(`SELECT %s AS id, %s AS name FROM %s WHERE %s = ANY($1)`, t.id, t.name, t.table, t.id)
	if err := pgxscan.Select(ctx, conn(ctx, r.pool), &rows, query, ids); err != nil {
		return nil, fmt.Errorf("nombres de %s: %w", kind, err)
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}
