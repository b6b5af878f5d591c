// Package jwt firma y valida los tokens de acceso. El servicio solo los verifica;
// Generate existe para herramientas internas y tests.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el servicio de stock.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

var errNoSecret = errors.New("jwt: secret vacío")

// Claims del token de acceso. UserID queda como actor en el historial de stock.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Generate firma un token HS256 que vence en ttlMinutes.
func Generate(secret, userID, role, issuer string, ttlMinutes int) (string, error) {
	if secret == "" {
		return "", errNoSecret
	}
	issued := time.Now()
	expires := issued.Add(time.Duration(ttlMinutes) * time.Minute)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: userID,
		Role:   role,
	}).SignedString([]byte(secret))
}

// Parse verifica firma y vencimiento. Tokens sin user_id usan el subject.
func Parse(secret, raw string) (*Claims, error) {
	if secret == "" {
		return nil, errNoSecret
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errors.New("jwt: token sin usuario")
	}
	return claims, nil
}
