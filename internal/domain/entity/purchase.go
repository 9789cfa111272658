package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra. El flujo es pending -> processed -> anulated; canceled queda reservado.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusProcessed = "processed"
	PurchaseStatusAnulated  = "anulated"
	PurchaseStatusCanceled  = "canceled"
)

// Purchase cabecera de una compra a proveedor (tabla compra).
type Purchase struct {
	ID             string          `db:"id_compra"`
	SupplierID     string          `db:"id_proveedor"`
	EmployeeID     string          `db:"id_empleado"`
	Date           time.Time       `db:"fecha"`
	DocumentNumber string          `db:"numero_factura"`
	Total          decimal.Decimal `db:"total"`
	Status         string          `db:"estado"`
	Notes          string          `db:"observaciones"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// IsAnulated indica si la compra ya fue anulada.
func (p *Purchase) IsAnulated() bool {
	return p.Status == PurchaseStatusAnulated
}

// PurchaseLine lote recibido en una compra (tabla compra_detalle).
// El ID del lote lo reutilizan los movimientos de inventario y las líneas de factura.
type PurchaseLine struct {
	LotID             string          `db:"id_lote"`
	PurchaseID        string          `db:"id_compra"`
	ProductID         string          `db:"id_producto"`
	WarehouseID       string          `db:"id_bodega"`
	Quantity          int             `db:"cantidad"`
	QuantityAvailable int             `db:"cantidad_disponible"`
	UnitCost          decimal.Decimal `db:"costo_unitario"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// Subtotal cantidad * costo unitario.
func (l *PurchaseLine) Subtotal() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineKey clave (producto, bodega) con la que se emparejan líneas en una actualización.
type LineKey struct {
	ProductID   string
	WarehouseID string
}

// Key devuelve la clave (producto, bodega) de la línea.
func (l *PurchaseLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, WarehouseID: l.WarehouseID}
}

// PurchaseHeaderPatch campos de cabecera a escribir en una actualización parcial.
// Un puntero nil significa "sin cambio".
type PurchaseHeaderPatch struct {
	SupplierID     *string
	EmployeeID     *string
	Date           *time.Time
	DocumentNumber *string
	Total          *decimal.Decimal
	Status         *string
	Notes          *string
}

// IsEmpty indica que no hay campos que escribir.
func (p PurchaseHeaderPatch) IsEmpty() bool {
	return p.SupplierID == nil && p.EmployeeID == nil && p.Date == nil && p.DocumentNumber == nil &&
		p.Total == nil && p.Status == nil && p.Notes == nil
}

// Apply copia sobre la cabecera los campos presentes en el patch.
func (p PurchaseHeaderPatch) Apply(h *Purchase) {
	if p.SupplierID != nil {
		h.SupplierID = *p.SupplierID
	}
	if p.EmployeeID != nil {
		h.EmployeeID = *p.EmployeeID
	}
	if p.Date != nil {
		h.Date = *p.Date
	}
	if p.DocumentNumber != nil {
		h.DocumentNumber = *p.DocumentNumber
	}
	if p.Total != nil {
		h.Total = *p.Total
	}
	if p.Status != nil {
		h.Status = *p.Status
	}
	if p.Notes != nil {
		h.Notes = *p.Notes
	}
}
