package entity

import "time"

// Stock existencias de un producto en una bodega. Una fila por par (producto, bodega);
// el ID es la concatenación "<producto>-<bodega>".
type Stock struct {
	ID          string    `db:"id_stock"`
	ProductID   string    `db:"id_producto"`
	WarehouseID string    `db:"id_bodega"`
	Quantity    int       `db:"cantidad"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// StockID construye el identificador compuesto de la fila de stock.
func StockID(productID, warehouseID string) string {
	return productID + "-" + warehouseID
}
