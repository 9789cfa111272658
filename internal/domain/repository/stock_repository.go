package repository

import (
	"context"

	"github.com/jhoicas/compras-api/internal/domain/entity"
)

// StockRepository puerto del libro de existencias por (producto, bodega).
// Compras, facturas, devoluciones y traslados escriben a través de Adjust.
type StockRepository interface {
	Exists(ctx context.Context, productID, warehouseID string) (bool, error)
	// Get devuelve nil, nil si no hay fila para el par.
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// Create falla con ErrDuplicate si el par ya existe.
	Create(ctx context.Context, productID, warehouseID string, quantity int) (*entity.Stock, error)
	// SetQuantity sobrescribe la cantidad; nil, nil si no hay fila.
	SetQuantity(ctx context.Context, productID, warehouseID string, quantity int) (*entity.Stock, error)
	// Adjust suma delta en una sola sentencia; crea la fila si no existe. Permite negativos.
	Adjust(ctx context.Context, warehouseID, productID string, delta int) (*entity.Stock, error)
}
