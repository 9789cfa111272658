package repository

import (
	"context"

	"github.com/jhoicas/compras-api/internal/domain/entity"
)

// CatalogKind tabla de catálogo de la que se resuelven nombres.
type CatalogKind string

const (
	CatalogSupplier  CatalogKind = "proveedor"
	CatalogEmployee  CatalogKind = "empleado"
	CatalogProduct   CatalogKind = "producto"
	CatalogWarehouse CatalogKind = "bodega"
)

// CatalogRepository lecturas de solo consulta sobre proveedores, empleados, productos y bodegas.
// Los Get devuelven nil, nil si no existe.
type CatalogRepository interface {
	GetSupplier(ctx context.Context, id string) (*entity.Supplier, error)
	GetEmployee(ctx context.Context, id string) (*entity.Employee, error)
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error)
	// Names resuelve en una sola consulta los nombres de los ids dados. Los ids inexistentes no aparecen.
	Names(ctx context.Context, kind CatalogKind, ids []string) (map[string]string, error)
}
