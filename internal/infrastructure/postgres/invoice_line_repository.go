package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/compras-api/internal/domain/repository"
)

var _ repository.InvoiceLineRepository = (*InvoiceLineRepo)(nil)

// InvoiceLineRepo consulta factura_detalle.id_lote para saber si un lote ya se vendió.
type InvoiceLineRepo struct {
	pool *pgxpool.Pool
}

// NewInvoiceLineRepository construye el adaptador.
func NewInvoiceLineRepository(pool *pgxpool.Pool) *InvoiceLineRepo {
	return &InvoiceLineRepo{pool: pool}
}

// FirstInvoicedLot devuelve el primer lote de lotIDs que aparece en alguna factura, o "".
func (r *InvoiceLineRepo) FirstInvoicedLot(ctx context.Context, lotIDs []string) (string, error) {
	if len(lotIDs) == 0 {
		return "", nil
	}
	var invoiced []string
	err := pgxscan.Select(ctx, conn(ctx, r.pool), &invoiced,
		`SELECT DISTINCT id_lote FROM factura_detalle WHERE id_lote = ANY($1)`, lotIDs)
	if err != nil {
		return "", fmt.Errorf("lotes facturados: %w", err)
	}
	set := make(map[string]bool, len(invoiced))
	for _, id := range invoiced {
		set[id] = true
	}
	for _, id := range lotIDs {
		if set[id] {
			return id, nil
		}
	}
	return "", nil
}
