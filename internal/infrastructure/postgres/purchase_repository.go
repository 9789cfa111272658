package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/compras-api/internal/domain"
	"github.com/jhoicas/compras-api/internal/domain/entity"
	"github.com/jhoicas/compras-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

var purchaseColumns = []string{
	"c.id_compra", "c.id_proveedor", "c.id_empleado", "c.fecha", "c.numero_factura", "c.total", "c.estado",
	"COALESCE(c.observaciones, '') AS observaciones", "c.created_at", "c.updated_at",
}

var lineColumns = []string{
	"id_lote", "id_compra", "id_producto", "id_bodega", "cantidad", "cantidad_disponible", "costo_unitario",
	"created_at", "updated_at",
}

// PurchaseRepo cabeceras (compra) y lotes (compra_detalle) sobre PostgreSQL.
type PurchaseRepo struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository construye el adaptador de compras.
func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

// Create inserta la cabecera.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	sql, args, err := psql.Insert("compra").
		Columns("id_compra", "id_proveedor", "id_empleado", "fecha", "numero_factura", "total", "estado",
			"observaciones", "created_at", "updated_at").
		Values(p.ID, p.SupplierID, p.EmployeeID, p.Date, p.DocumentNumber, p.Total, p.Status,
			nullIfEmpty(p.Notes), p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert compra: %w", err)
	}
	if _, err := conn(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert compra: %w", classify(err))
	}
	return nil
}

// GetByID obtiene la cabecera por id; nil, nil si no existe.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.getOne(ctx, psql.Select(purchaseColumns...).From("compra c").Where(squirrel.Eq{"c.id_compra": id}))
}

// GetForUpdate obtiene la cabecera y bloquea la fila (SELECT ... FOR UPDATE).
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.getOne(ctx, psql.Select(purchaseColumns...).From("compra c").
		Where(squirrel.Eq{"c.id_compra": id}).Suffix("FOR UPDATE"))
}

// FindByRef busca por id_compra o por numero_factura.
func (r *PurchaseRepo) FindByRef(ctx context.Context, ref string) (*entity.Purchase, error) {
	return r.getOne(ctx, psql.Select(purchaseColumns...).From("compra c").
		Where(squirrel.Or{squirrel.Eq{"c.id_compra": ref}, squirrel.Eq{"c.numero_factura": ref}}).
		Limit(1))
}

func (r *PurchaseRepo) getOne(ctx context.Context, q squirrel.SelectBuilder) (*entity.Purchase, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select compra: %w", err)
	}
	var p entity.Purchase
	if err := pgxscan.Get(ctx, conn(ctx, r.pool), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get compra: %w", err)
	}
	return &p, nil
}

// UpdateHeader escribe solo las columnas presentes en el patch.
func (r *PurchaseRepo) UpdateHeader(ctx context.Context, id string, patch entity.PurchaseHeaderPatch, updatedAt time.Time) error {
	if patch.IsEmpty() {
		return nil
	}
	sql, args, err := headerUpdate(id, patch, updatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("build update compra: %w", err)
	}
	tag, err := conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update compra: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update compra %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func headerUpdate(id string, patch entity.PurchaseHeaderPatch, updatedAt time.Time) squirrel.UpdateBuilder {
	q := psql.Update("compra")
	if patch.SupplierID != nil {
		q = q.Set("id_proveedor", *patch.SupplierID)
	}
	if patch.EmployeeID != nil {
		q = q.Set("id_empleado", *patch.EmployeeID)
	}
	if patch.Date != nil {
		q = q.Set("fecha", *patch.Date)
	}
	if patch.DocumentNumber != nil {
		q = q.Set("numero_factura", *patch.DocumentNumber)
	}
	if patch.Total != nil {
		q = q.Set("total", *patch.Total)
	}
	if patch.Status != nil {
		q = q.Set("estado", *patch.Status)
	}
	if patch.Notes != nil {
		q = q.Set("observaciones", nullIfEmpty(*patch.Notes))
	}
	return q.Set("updated_at", updatedAt).Where(squirrel.Eq{"id_compra": id})
}

// CreateLine inserta un lote. Un id_lote repetido devuelve ErrDuplicate.
func (r *PurchaseRepo) CreateLine(ctx context.Context, l *entity.PurchaseLine) error {
	sql, args, err := psql.Insert("compra_detalle").
		Columns(lineColumns...).
		Values(l.LotID, l.PurchaseID, l.ProductID, l.WarehouseID, l.Quantity, l.QuantityAvailable, l.UnitCost,
			l.CreatedAt, l.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert compra_detalle: %w", err)
	}
	if _, err := conn(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert compra_detalle: %w", classify(err))
	}
	return nil
}

// UpdateLine reescribe cantidad, disponible y costo del lote.
func (r *PurchaseRepo) UpdateLine(ctx context.Context, l *entity.PurchaseLine) error {
	const query = `
		UPDATE compra_detalle
		SET cantidad = $2, cantidad_disponible = $3, costo_unitario = $4, updated_at = $5
		WHERE id_lote = $1`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, l.LotID, l.Quantity, l.QuantityAvailable, l.UnitCost, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update compra_detalle: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update lote %s: %w", l.LotID, domain.ErrNotFound)
	}
	return nil
}

// DeleteLine elimina el lote.
func (r *PurchaseRepo) DeleteLine(ctx context.Context, lotID string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM compra_detalle WHERE id_lote = $1`, lotID)
	if err != nil {
		return fmt.Errorf("delete compra_detalle: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete lote %s: %w", lotID, domain.ErrNotFound)
	}
	return nil
}

// ListLines lotes de la compra en orden de registro.
func (r *PurchaseRepo) ListLines(ctx context.Context, purchaseID string) ([]*entity.PurchaseLine, error) {
	sql, args, err := psql.Select(lineColumns...).From("compra_detalle").
		Where(squirrel.Eq{"id_compra": purchaseID}).
		OrderBy("created_at", "id_lote").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select compra_detalle: %w", err)
	}
	var out []*entity.PurchaseLine
	if err := pgxscan.Select(ctx, conn(ctx, r.pool), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list compra_detalle: %w", err)
	}
	return out, nil
}

// List cabeceras filtradas y paginadas, con el total sin paginar.
func (r *PurchaseRepo) List(ctx context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, int, error) {
	countSQL, countArgs, err := countQuery(f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count compra: %w", err)
	}
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count compra: %w", err)
	}
	if total == 0 || f.Offset >= total {
		return []*entity.Purchase{}, total, nil
	}

	sql, args, err := listQuery(f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list compra: %w", err)
	}
	var out []*entity.Purchase
	if err := pgxscan.Select(ctx, q, &out, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list compra: %w", err)
	}
	return out, total, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
