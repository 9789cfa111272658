package dto

import "time"

// StockRequest body para crear o sobrescribir stock (POST/PUT /api/stock).
type StockRequest struct {
	ProductID   string `json:"idProducto" validate:"required"`
	WarehouseID string `json:"idBodega" validate:"required"`
	Quantity    *int   `json:"cantidad" validate:"required"`
}

// StockAdjustRequest body para POST /api/stock/ajustes. Delta puede ser negativo.
type StockAdjustRequest struct {
	ProductID   string `json:"idProducto" validate:"required"`
	WarehouseID string `json:"idBodega" validate:"required"`
	Delta       *int   `json:"delta" validate:"required"`
}

// StockResponse existencias de un producto en una bodega.
type StockResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"idProducto"`
	WarehouseID string    `json:"idBodega"`
	Quantity    int       `json:"cantidad"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
