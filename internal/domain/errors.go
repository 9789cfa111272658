package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInternal          = errors.New("error interno")
)

// Kind clasifica un error de dominio. Cada Kind es uno de los sentinels de arriba,
// así que errors.Is(err, domain.ErrConflict) funciona sobre un *Error.
type Kind = error

// Error es el error estructurado que cruza la frontera de los casos de uso.
// Conserva la causa original para logs y para errors.As.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is permite comparar contra el sentinel del tipo.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

// Validation error de entrada del cliente (400).
func Validation(msg string, cause error) *Error {
	return &Error{Kind: ErrInvalidInput, Message: msg, Cause: cause}
}

// NotFound recurso inexistente (404).
func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Conflict violación de regla de negocio sobre el estado actual (409).
func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// Internal fallo de almacenamiento o transacción (500).
func Internal(msg string, cause error) *Error {
	return &Error{Kind: ErrInternal, Message: msg, Cause: cause}
}

// KindOf devuelve el sentinel asociado a err; ErrInternal si no se reconoce.
func KindOf(err error) Kind {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) && de.Kind != nil {
		return de.Kind
	}
	for _, k := range []error{ErrInvalidInput, ErrNotFound, ErrConflict, ErrDuplicate, ErrUnauthorized, ErrForbidden, ErrInsufficientStock} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// MessageOf devuelve el mensaje presentable de err (sin la causa interna si es un *Error).
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
