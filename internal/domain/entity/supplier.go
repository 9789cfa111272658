package entity

// Supplier proveedor (tabla proveedor).
type Supplier struct {
	ID   string `db:"id_proveedor"`
	Name string `db:"nombre"`
}
