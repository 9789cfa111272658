package repository

import "context"

// InvoiceLineRepository consulta las líneas de factura que consumieron lotes de compra.
type InvoiceLineRepository interface {
	// FirstInvoicedLot devuelve el primer lote (en el orden dado) referenciado por alguna línea de factura, o "".
	FirstInvoicedLot(ctx context.Context, lotIDs []string) (string, error)
}
