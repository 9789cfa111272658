package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/compras-api/internal/domain/document"
	"github.com/jhoicas/compras-api/internal/domain/repository"
)

var (
	_ repository.DocumentSequence = (*CounterSequence)(nil)
	_ repository.DocumentSequence = (*LegacySequence)(nil)
)

// CounterSequence consecutivo por (prefijo, año, mes) en secuencia_documento. El incremento
// es un solo upsert, así que dos compras concurrentes del mismo mes reciben números distintos.
// El valor nunca queda por debajo del mayor número ya emitido en compra: así se siembra un mes
// nuevo y se alcanza a los números que LegacySequence emitió si PURCHASE_NUMBERING cambió a
// mitad de mes. Sin ese piso el contador repetiría un número y el insert fallaría en
// compra_numero_factura_key.
type CounterSequence struct {
	pool *pgxpool.Pool
}

// NewCounterSequence construye la estrategia por contador.
func NewCounterSequence(pool *pgxpool.Pool) *CounterSequence {
	return &CounterSequence{pool: pool}
}

func (s *CounterSequence) Next(ctx context.Context, prefix string, date time.Time) (int, error) {
	const query = `
		INSERT INTO secuencia_documento (prefijo, anio, mes, valor)
		VALUES ($1, $2, $3, COALESCE((
			SELECT MAX(CASE WHEN split_part(numero_factura, '-', 4) ~ '^[0-9]+$'
			                THEN split_part(numero_factura, '-', 4)::int END)
			FROM compra WHERE numero_factura LIKE $4
		), 0) + 1)
		ON CONFLICT (prefijo, anio, mes)
		DO UPDATE SET valor = GREATEST(secuencia_documento.valor + 1, EXCLUDED.valor)
		RETURNING valor`
	var n int
	err := conn(ctx, s.pool).QueryRow(ctx, query,
		prefix, date.Year(), int(date.Month()), prefixPattern(document.MonthPrefix(prefix, date)),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("secuencia_documento: %w", classify(err))
	}
	return n, nil
}

// LegacySequence lee el mayor número del mes en compra y suma uno. Toma un advisory lock
// de transacción por mes para que dos compras no lean el mismo máximo; fuera de una
// transacción el lock se libera en el acto y no protege nada.
type LegacySequence struct {
	pool *pgxpool.Pool
}

// NewLegacySequence construye la estrategia de lectura del máximo.
func NewLegacySequence(pool *pgxpool.Pool) *LegacySequence {
	return &LegacySequence{pool: pool}
}

func (s *LegacySequence) Next(ctx context.Context, prefix string, date time.Time) (int, error) {
	month := document.MonthPrefix(prefix, date)
	q := conn(ctx, s.pool)
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, month); err != nil {
		return 0, fmt.Errorf("advisory lock %s: %w", month, err)
	}
	var last string
	err := q.QueryRow(ctx, `
		SELECT numero_factura FROM compra
		WHERE numero_factura LIKE $1
		ORDER BY numero_factura DESC LIMIT 1`, prefixPattern(month)).Scan(&last)
	if err != nil && !isNoRows(err) {
		return 0, fmt.Errorf("último número %s: %w", month, err)
	}
	return document.Next(last), nil
}
