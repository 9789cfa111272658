package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/compras-api/internal/domain"
)

// Códigos SQLSTATE que se clasifican.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// classify envuelve los errores de PostgreSQL conocidos con el sentinel de dominio
// correspondiente; la causa original queda en la cadena para los logs.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s: %w", domain.ErrDuplicate, pgErr.ConstraintName, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: referencia inexistente (%s): %w", domain.ErrInvalidInput, pgErr.ConstraintName, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: transacción concurrente: %w", domain.ErrConflict, err)
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern arma "%texto%" escapando los comodines de LIKE.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// prefixPattern arma "texto%" escapando los comodines de LIKE.
func prefixPattern(s string) string {
	return likeEscaper.Replace(s) + "%"
}
