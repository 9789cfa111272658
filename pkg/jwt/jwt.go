// Package jwt valida los Bearer Tokens que emite el servicio de autenticación.
// Este servicio solo los consume; no firma tokens.
package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken token mal firmado, expirado o sin empleado.
var ErrInvalidToken = errors.New("jwt: token inválido")

// Claims payload del token: claims registrados más los del empleado.
// UserID es el id_empleado; si falta se toma el subject.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	BranchID string `json:"branch_id"`
	Role     string `json:"role"`
}

// Identity empleado autenticado extraído del token.
type Identity struct {
	EmployeeID string
	BranchID   string
	Role       string
}

var parser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithExpirationRequired(),
)

// Parse verifica firma HS256 y expiración y devuelve la identidad del empleado.
func Parse(secret, token string) (Identity, error) {
	if secret == "" {
		return Identity{}, errors.New("jwt: secret vacío")
	}
	var claims Claims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	id := Identity{EmployeeID: claims.UserID, BranchID: claims.BranchID, Role: claims.Role}
	if id.EmployeeID == "" {
		id.EmployeeID = claims.Subject
	}
	if id.EmployeeID == "" {
		return Identity{}, fmt.Errorf("%w: sin id de empleado", ErrInvalidToken)
	}
	return id, nil
}
