package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/compras-api/internal/domain"
	"github.com/jhoicas/compras-api/internal/domain/entity"
	"github.com/jhoicas/compras-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id_stock, id_producto, id_bodega, cantidad, created_at, updated_at`

// StockRepo libro de existencias por (producto, bodega) sobre la tabla stock.
type StockRepo struct {
	pool *pgxpool.Pool
}

// NewStockRepository construye el adaptador de stock. Dentro de TxRunner usa la tx del contexto.
func NewStockRepository(pool *pgxpool.Pool) *StockRepo {
	return &StockRepo{pool: pool}
}

// Exists indica si hay fila para el par.
func (r *StockRepo) Exists(ctx context.Context, productID, warehouseID string) (bool, error) {
	var ok bool
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock WHERE id_producto = $1 AND id_bodega = $2)`,
		productID, warehouseID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists stock: %w", err)
	}
	return ok, nil
}

// Get obtiene la fila del par; nil, nil si no existe.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	var s entity.Stock
	err := pgxscan.Get(ctx, conn(ctx, r.pool), &s,
		`SELECT `+stockColumns+` FROM stock WHERE id_producto = $1 AND id_bodega = $2`,
		productID, warehouseID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Create inserta la fila del par. Si ya existe devuelve ErrDuplicate.
func (r *StockRepo) Create(ctx context.Context, productID, warehouseID string, quantity int) (*entity.Stock, error) {
	var s entity.Stock
	err := pgxscan.Get(ctx, conn(ctx, r.pool), &s, `
		INSERT INTO stock (id_stock, id_producto, id_bodega, cantidad)
		VALUES ($1, $2, $3, $4)
		RETURNING `+stockColumns,
		entity.StockID(productID, warehouseID), productID, warehouseID, quantity)
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("insert stock: %w", err)
	}
	return &s, nil
}

// SetQuantity sobrescribe la cantidad del par; nil, nil si no hay fila.
func (r *StockRepo) SetQuantity(ctx context.Context, productID, warehouseID string, quantity int) (*entity.Stock, error) {
	var s entity.Stock
	err := pgxscan.Get(ctx, conn(ctx, r.pool), &s, `
		UPDATE stock SET cantidad = $3, updated_at = now()
		WHERE id_producto = $1 AND id_bodega = $2
		RETURNING `+stockColumns,
		productID, warehouseID, quantity)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update stock: %w", classify(err))
	}
	return &s, nil
}

// Adjust suma delta a la fila del par en una sola sentencia. Si la fila no existe se crea
// con cantidad delta; dos ajustes concurrentes sobre el mismo par se serializan en la fila
// y ninguno se pierde.
func (r *StockRepo) Adjust(ctx context.Context, warehouseID, productID string, delta int) (*entity.Stock, error) {
	var s entity.Stock
	err := pgxscan.Get(ctx, conn(ctx, r.pool), &s, `
		INSERT INTO stock (id_stock, id_producto, id_bodega, cantidad)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id_producto, id_bodega)
		DO UPDATE SET cantidad = stock.cantidad + EXCLUDED.cantidad, updated_at = now()
		RETURNING `+stockColumns,
		entity.StockID(productID, warehouseID), productID, warehouseID, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock %s/%s: %w", productID, warehouseID, classify(err))
	}
	return &s, nil
}
