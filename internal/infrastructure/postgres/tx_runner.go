package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/compras-api/internal/application/purchase"
	"github.com/jhoicas/compras-api/pkg/logger"
)

var tracer = otel.Tracer("compras-api/postgres")

var _ purchase.TxRunner = (*TxRunner)(nil)

// IsolationLevel traduce el nombre de configuración (read_committed, repeatable_read, serializable).
func IsolationLevel(name string) pgx.TxIsoLevel {
	switch name {
	case "repeatable_read":
		return pgx.RepeatableRead
	case "serializable":
		return pgx.Serializable
	default:
		return pgx.ReadCommitted
	}
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. La tx viaja en el ctx
// y los repositorios la toman de ahí; una llamada anidada reutiliza la tx abierta.
type TxRunner struct {
	pool *pgxpool.Pool
	iso  pgx.TxIsoLevel
	log  *logger.Logger
}

// NewTxRunner construye el runner con el pool y el nivel de aislamiento.
func NewTxRunner(pool *pgxpool.Pool, iso pgx.TxIsoLevel, log *logger.Logger) *TxRunner {
	return &TxRunner{pool: pool, iso: iso, log: log.Component("tx")}
}

// Run inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, "tx",
		trace.WithAttributes(attribute.String("tx.isolation", string(r.iso))))
	defer span.End()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: r.iso})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin")
		return fmt.Errorf("begin transaction: %w", classify(err))
	}

	if err := fn(withTx(ctx, tx)); err != nil {
		// el ctx de la petición puede estar cancelado; el rollback tiene que llegar igual
		if rbErr := tx.Rollback(context.Background()); rbErr != nil {
			r.log.Error().Err(rbErr).AnErr("original", err).Msg("rollback")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "rollback")
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit")
		return fmt.Errorf("commit transaction: %w", classify(err))
	}
	return nil
}
