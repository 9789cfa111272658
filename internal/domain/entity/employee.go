package entity

// Roles de empleado que viajan en el token.
const (
	RoleAdmin    = "admin"
	RoleEmpleado = "empleado"
)

// Employee empleado que registra compras (tabla empleado).
type Employee struct {
	ID        string `db:"id_empleado"`
	FirstName string `db:"nombre"`
	LastName  string `db:"apellido"`
	Role      string `db:"rol"`
	BranchID  string `db:"id_sucursal"`
}

// FullName nombre y apellido.
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
