package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de fecha de las compras (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// PurchaseLineRequest detalle (lote) en el body de crear/actualizar compra.
// Cantidad y costo son punteros para distinguir "no enviado" de cero.
type PurchaseLineRequest struct {
	ProductID         string           `json:"idProducto" validate:"required"`
	WarehouseID       string           `json:"idBodega" validate:"required"`
	Quantity          *int             `json:"cantidad" validate:"required,min=0"`
	UnitCost          *decimal.Decimal `json:"costoUnitario" validate:"required"`
	QuantityAvailable *int             `json:"cantidadDisponible,omitempty" validate:"omitempty,min=0"`
}

// CreatePurchaseRequest body para POST /api/compras.
// El empleado lo fija el handler a partir del token.
type CreatePurchaseRequest struct {
	SupplierID string                `json:"idProveedor" validate:"required"`
	EmployeeID string                `json:"id_Empleado,omitempty"`
	Date       string                `json:"fecha" validate:"required,datetime=2006-01-02"`
	Total      *decimal.Decimal      `json:"total,omitempty"`
	Notes      *string               `json:"observacion,omitempty"`
	Lines      []PurchaseLineRequest `json:"detalles" validate:"required,min=1,dive"`
}

// UpdatePurchaseRequest body para PATCH /api/compras/:id. Solo se escriben los campos enviados.
// Los detalles se emparejan por (idProducto, idBodega); los lotes omitidos no se tocan
// y solo se eliminan los listados en RemoveLots.
type UpdatePurchaseRequest struct {
	SupplierID *string               `json:"idProveedor,omitempty" validate:"omitempty,min=1"`
	EmployeeID *string               `json:"id_Empleado,omitempty" validate:"omitempty,min=1"`
	Date       *string               `json:"fecha,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Total      *decimal.Decimal      `json:"total,omitempty"`
	Notes      *string               `json:"observacion,omitempty"`
	Lines      []PurchaseLineRequest `json:"detalles,omitempty" validate:"omitempty,dive"`
	RemoveLots []string              `json:"eliminarLotes,omitempty" validate:"omitempty,dive,required"`
}

// PurchaseHeaderResponse cabecera de compra.
type PurchaseHeaderResponse struct {
	ID             string    `json:"id"`
	DocumentNumber string    `json:"numeroFactura"`
	SupplierID     string    `json:"idProveedor"`
	EmployeeID     string    `json:"id_Empleado"`
	Date           string    `json:"fecha"`
	Total          string    `json:"total"`
	Notes          *string   `json:"observacion"`
	Status         string    `json:"estado"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PurchaseLineResponse detalle (lote) de compra.
type PurchaseLineResponse struct {
	LotID             string    `json:"idLote"`
	PurchaseID        string    `json:"idCompra"`
	ProductID         string    `json:"idProducto"`
	WarehouseID       string    `json:"idBodega"`
	Quantity          int       `json:"cantidad"`
	UnitCost          string    `json:"costoUnitario"`
	QuantityAvailable int       `json:"cantidadDisponible"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// PurchaseResponse resultado de crear, actualizar o anular.
type PurchaseResponse struct {
	Header  PurchaseHeaderResponse `json:"header"`
	Details []PurchaseLineResponse `json:"details"`
}

// PurchaseHeaderFormatted cabecera con nombres de proveedor y empleado.
type PurchaseHeaderFormatted struct {
	PurchaseHeaderResponse
	SupplierName string `json:"nombreProveedor"`
	EmployeeName string `json:"nombreEmpleado"`
}

// PurchaseLineFormatted detalle con nombres de producto y bodega.
type PurchaseLineFormatted struct {
	PurchaseLineResponse
	ProductName   string `json:"nombreProducto"`
	WarehouseName string `json:"nombreBodega"`
}

// PurchaseFormatted compra lista para presentación (GET /api/compras/:id).
type PurchaseFormatted struct {
	Header  PurchaseHeaderFormatted `json:"header"`
	Details []PurchaseLineFormatted `json:"details"`
}

// PurchaseListQuery query string de GET /api/compras.
type PurchaseListQuery struct {
	Page           int    `query:"page" validate:"min=1"`
	Size           int    `query:"size" validate:"min=1,max=100"`
	SortBy         string `query:"sortBy"`
	SortOrder      string `query:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
	SupplierID     string `query:"idProveedor"`
	Employee       string `query:"empleado"`
	Date           string `query:"fecha" validate:"omitempty,datetime=2006-01-02"`
	Status         string `query:"estado" validate:"omitempty,oneof=pending processed anulated canceled"`
	Product        string `query:"producto"`
	Warehouse      string `query:"bodega"`
	DocumentNumber string `query:"numeroFacturaCompra"`
}

// Defaults aplica página 1 y tamaño 10 si no vienen.
func (q *PurchaseListQuery) Defaults() {
	p := PageRequest{Page: q.Page, Size: q.Size}
	p.DefaultPage()
	q.Page, q.Size = p.Page, p.Size
}

// PurchaseListData bloque data del listado.
type PurchaseListData struct {
	Compras []PurchaseHeaderFormatted `json:"compras"`
}

// PurchaseListResponse respuesta de GET /api/compras. Una página fuera de rango
// no es un error HTTP: viene con status "error", compras vacías y la paginación calculada.
type PurchaseListResponse struct {
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	Data       PurchaseListData `json:"data"`
	Pagination PaginationMeta   `json:"pagination"`
}
