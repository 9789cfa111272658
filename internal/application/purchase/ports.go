package purchase

import (
	"context"
	"time"

	"github.com/jhoicas/compras-api/internal/domain/entity"
)

// TxRunner unidad de trabajo: cabecera, lotes y ajustes de stock de una operación
// se confirman o se revierten juntos. Si el ctx ya trae una transacción se reutiliza.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// StockAdjuster primitiva atómica de ajuste de stock (inventory.StockLedger).
type StockAdjuster interface {
	Adjust(ctx context.Context, warehouseID, productID string, delta int) (*entity.Stock, error)
}

// DocumentNumberer entrega el siguiente número de documento para la fecha de la compra.
type DocumentNumberer interface {
	Next(ctx context.Context, date time.Time) (string, error)
}

// LotIDGenerator genera ids de lote.
type LotIDGenerator interface {
	NewLotID(productID string) string
}
