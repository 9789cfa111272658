package entity

import "time"

// Product producto del catálogo (tabla producto). El módulo de compras solo lo lee
// para validar referencias y mostrar su nombre.
type Product struct {
	ID        string    `db:"id_producto"`
	Name      string    `db:"nombre"`
	CreatedAt time.Time `db:"created_at"`
}
