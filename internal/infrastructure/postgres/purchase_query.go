package postgres

import (
	"github.com/Masterminds/squirrel"

	"github.com/jhoicas/compras-api/internal/domain/repository"
)

// Columnas permitidas en ORDER BY; cualquier otro valor cae en fecha.
var purchaseSortColumns = map[repository.PurchaseSortField]string{
	repository.SortByDate:           "c.fecha",
	repository.SortByDocumentNumber: "c.numero_factura",
	repository.SortByTotal:          "c.total",
	repository.SortByStatus:         "c.estado",
	repository.SortByCreatedAt:      "c.created_at",
	repository.SortByUpdatedAt:      "c.updated_at",
}

// purchaseWhere traduce el filtro a condiciones sobre compra c. Empleado, producto y bodega
// aceptan el id exacto o parte del nombre.
func purchaseWhere(f repository.PurchaseFilter) squirrel.And {
	where := squirrel.And{}
	if f.SupplierID != "" {
		where = append(where, squirrel.Eq{"c.id_proveedor": f.SupplierID})
	}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"c.estado": f.Status})
	}
	if f.Date != nil {
		where = append(where, squirrel.Expr("c.fecha = ?::date", f.Date.Format("2006-01-02")))
	}
	if f.DocumentNumber != "" {
		where = append(where, squirrel.ILike{"c.numero_factura": likePattern(f.DocumentNumber)})
	}
	if f.Employee != "" {
		where = append(where, squirrel.Expr(
			`(c.id_empleado = ? OR EXISTS (
				SELECT 1 FROM empleado e
				WHERE e.id_empleado = c.id_empleado
				  AND (e.nombre || ' ' || COALESCE(e.apellido, '')) ILIKE ?))`,
			f.Employee, likePattern(f.Employee)))
	}
	if f.Product != "" {
		where = append(where, squirrel.Expr(
			`EXISTS (
				SELECT 1 FROM compra_detalle d JOIN producto p ON p.id_producto = d.id_producto
				WHERE d.id_compra = c.id_compra AND (d.id_producto = ? OR p.nombre ILIKE ?))`,
			f.Product, likePattern(f.Product)))
	}
	if f.Warehouse != "" {
		where = append(where, squirrel.Expr(
			`EXISTS (
				SELECT 1 FROM compra_detalle d JOIN bodega b ON b.id_bodega = d.id_bodega
				WHERE d.id_compra = c.id_compra AND (d.id_bodega = ? OR b.nombre ILIKE ?))`,
			f.Warehouse, likePattern(f.Warehouse)))
	}
	return where
}

func countQuery(f repository.PurchaseFilter) squirrel.SelectBuilder {
	return psql.Select("COUNT(*)").From("compra c").Where(purchaseWhere(f))
}

func listQuery(f repository.PurchaseFilter) squirrel.SelectBuilder {
	col, ok := purchaseSortColumns[f.SortBy]
	if !ok {
		col = "c.fecha"
	}
	dir := " ASC"
	if f.SortDesc {
		dir = " DESC"
	}
	q := psql.Select(purchaseColumns...).From("compra c").
		Where(purchaseWhere(f)).
		OrderBy(col+dir, "c.id_compra"+dir)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}
