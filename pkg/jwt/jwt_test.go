package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/pkg/jwt"
)

const secret = "clave-de-prueba"

func TestGenerateParse_ConservaUsuarioYRol(t *testing.T) {
	tok, err := jwt.Generate(secret, "u-1", jwt.RoleBodeguero, "inventario", 30)
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, jwt.RoleBodeguero, claims.Role)
	assert.Equal(t, "inventario", claims.Issuer)
}

func TestParse_Rechazos(t *testing.T) {
	expired, err := jwt.Generate(secret, "u-1", jwt.RoleAdmin, "", -1)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, expired)
	assert.Error(t, err, "vencido")

	valid, err := jwt.Generate(secret, "u-1", jwt.RoleAdmin, "", 30)
	require.NoError(t, err)
	_, err = jwt.Parse("otra-clave", valid)
	assert.Error(t, err, "firma con otra clave")

	_, err = jwt.Parse("", valid)
	assert.Error(t, err, "secret vacío")

	_, err = jwt.Generate("", "u-1", jwt.RoleAdmin, "", 30)
	assert.Error(t, err)
}

func TestParse_SinExpiracionOSinUsuario(t *testing.T) {
	noExp, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &jwt.Claims{UserID: "u-1"}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = jwt.Parse(secret, noExp)
	assert.Error(t, err, "el vencimiento es obligatorio")

	anon, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = jwt.Parse(secret, anon)
	assert.Error(t, err, "token sin user_id ni subject")
}

func TestParse_SubjectComoUsuario(t *testing.T) {
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "u-9",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: jwt.RoleVendedor,
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-9", claims.UserID)
}
