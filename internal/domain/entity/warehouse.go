package entity

import "time"

// Warehouse bodega donde se almacena inventario (tabla bodega).
type Warehouse struct {
	ID        string    `db:"id_bodega"`
	Name      string    `db:"nombre"`
	BranchID  string    `db:"id_sucursal"`
	CreatedAt time.Time `db:"created_at"`
}
