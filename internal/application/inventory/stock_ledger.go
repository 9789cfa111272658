package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/compras-api/internal/domain"
	"github.com/jhoicas/compras-api/internal/domain/entity"
	"github.com/jhoicas/compras-api/internal/domain/repository"
	"github.com/jhoicas/compras-api/pkg/logger"
)

// StockLedger libro de existencias por (producto, bodega). Es el único punto de escritura
// de stock: compras, facturas, devoluciones y traslados ajustan a través de Adjust.
// Todas las operaciones corren en la transacción del ctx si existe.
type StockLedger struct {
	stock   repository.StockRepository
	catalog repository.CatalogRepository
	log     *logger.Logger
}

// NewStockLedger construye el libro de stock.
func NewStockLedger(stock repository.StockRepository, catalog repository.CatalogRepository, log *logger.Logger) *StockLedger {
	return &StockLedger{stock: stock, catalog: catalog, log: log.Component("stock")}
}

// Exists indica si hay fila de stock para el par.
func (l *StockLedger) Exists(ctx context.Context, productID, warehouseID string) (bool, error) {
	if productID == "" || warehouseID == "" {
		return false, domain.Validation("producto y bodega son requeridos", nil)
	}
	ok, err := l.stock.Exists(ctx, productID, warehouseID)
	if err != nil {
		return false, domain.Internal("error al verificar la existencia del stock", err)
	}
	return ok, nil
}

// Get devuelve el stock del par o nil si no hay fila.
func (l *StockLedger) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.Validation("producto y bodega son requeridos", nil)
	}
	s, err := l.stock.Get(ctx, productID, warehouseID)
	if err != nil {
		return nil, domain.Internal("error al consultar el stock", err)
	}
	return s, nil
}

// Create registra el stock inicial del par. Producto y bodega deben existir y el par no debe tener fila.
func (l *StockLedger) Create(ctx context.Context, productID, warehouseID string, quantity int) (*entity.Stock, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.Validation("producto y bodega son requeridos", nil)
	}
	if quantity < 0 {
		return nil, domain.Validation("la cantidad no puede ser negativa", nil)
	}
	if err := l.checkRefs(ctx, productID, warehouseID); err != nil {
		return nil, err
	}
	s, err := l.stock.Create(ctx, productID, warehouseID, quantity)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Conflict(fmt.Sprintf("ya existe stock del producto %s en la bodega %s", productID, warehouseID))
		}
		l.log.Error().Err(err).Str("product_id", productID).Str("warehouse_id", warehouseID).Msg("crear stock")
		return nil, domain.Internal("ocurrió un error al registrar el stock", err)
	}
	return s, nil
}

// SetQuantity sobrescribe la cantidad del par. Devuelve nil si no hay fila.
func (l *StockLedger) SetQuantity(ctx context.Context, productID, warehouseID string, quantity int) (*entity.Stock, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.Validation("producto y bodega son requeridos", nil)
	}
	if quantity < 0 {
		return nil, domain.Validation("la cantidad no puede ser negativa", nil)
	}
	s, err := l.stock.SetQuantity(ctx, productID, warehouseID, quantity)
	if err != nil {
		l.log.Error().Err(err).Str("product_id", productID).Str("warehouse_id", warehouseID).Msg("actualizar stock")
		return nil, domain.Internal("ocurrió un error al actualizar el stock", err)
	}
	return s, nil
}

// Adjust suma delta (con signo) a la cantidad del par en una sola sentencia del motor,
// creando la fila si no existe. No impide que la cantidad quede negativa.
func (l *StockLedger) Adjust(ctx context.Context, warehouseID, productID string, delta int) (*entity.Stock, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.Validation("producto y bodega son requeridos", nil)
	}
	s, err := l.stock.Adjust(ctx, warehouseID, productID, delta)
	if err != nil {
		l.log.Error().Err(err).
			Str("product_id", productID).
			Str("warehouse_id", warehouseID).
			Int("delta", delta).
			Msg("ajustar stock")
		return nil, domain.Internal("ocurrió un error al ajustar el stock", err)
	}
	if s.Quantity < 0 {
		l.log.Warn().Str("stock_id", s.ID).Int("cantidad", s.Quantity).Msg("stock negativo")
	}
	return s, nil
}

func (l *StockLedger) checkRefs(ctx context.Context, productID, warehouseID string) error {
	p, err := l.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Internal("error al consultar el producto", err)
	}
	if p == nil {
		return domain.Validation(fmt.Sprintf("el producto %s no existe", productID), nil)
	}
	w, err := l.catalog.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return domain.Internal("error al consultar la bodega", err)
	}
	if w == nil {
		return domain.Validation(fmt.Sprintf("la bodega %s no existe", warehouseID), nil)
	}
	return nil
}
