package repository

import (
	"context"
	"time"
)

// DocumentSequence entrega el siguiente consecutivo de documento para (prefijo, año, mes).
// Debe llamarse dentro de la transacción que inserta el documento.
type DocumentSequence interface {
	Next(ctx context.Context, prefix string, date time.Time) (int, error)
}
