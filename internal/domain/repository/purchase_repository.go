package repository

import (
	"context"
	"time"

	"github.com/jhoicas/compras-api/internal/domain/entity"
)

// PurchaseRepository puerto de persistencia para cabeceras y lotes de compra.
// Todas las operaciones usan la transacción activa del contexto si existe.
type PurchaseRepository interface {
	Create(ctx context.Context, p *entity.Purchase) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	// GetForUpdate como GetByID pero bloquea la cabecera hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	// FindByRef busca por id o por número de documento.
	FindByRef(ctx context.Context, ref string) (*entity.Purchase, error)
	// UpdateHeader escribe solo los campos presentes en el patch.
	UpdateHeader(ctx context.Context, id string, patch entity.PurchaseHeaderPatch, updatedAt time.Time) error

	CreateLine(ctx context.Context, l *entity.PurchaseLine) error
	UpdateLine(ctx context.Context, l *entity.PurchaseLine) error
	DeleteLine(ctx context.Context, lotID string) error
	ListLines(ctx context.Context, purchaseID string) ([]*entity.PurchaseLine, error)

	List(ctx context.Context, f PurchaseFilter) ([]*entity.Purchase, int, error)
}

// PurchaseSortField columnas por las que se puede ordenar un listado.
type PurchaseSortField string

const (
	SortByDate           PurchaseSortField = "fecha"
	SortByDocumentNumber PurchaseSortField = "numero_factura"
	SortByTotal          PurchaseSortField = "total"
	SortByStatus         PurchaseSortField = "estado"
	SortByCreatedAt      PurchaseSortField = "created_at"
	SortByUpdatedAt      PurchaseSortField = "updated_at"
)

// PurchaseFilter filtros, orden y paginación del listado de compras.
// Los filtros de texto (empleado, producto, bodega, número) son coincidencias parciales sin mayúsculas.
type PurchaseFilter struct {
	SupplierID     string
	Employee       string
	Date           *time.Time
	Status         string
	Product        string
	Warehouse      string
	DocumentNumber string

	SortBy   PurchaseSortField
	SortDesc bool
	Limit    int
	Offset   int
}
