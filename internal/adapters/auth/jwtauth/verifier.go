package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ganado-api/internal/ports/auth"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken = errors.New("token inválido o expirado")
)

// Verifier valida tokens HS256 emitidos por el servicio de sesiones.
// El payload esperado es { id, nombre, rolID }.
type Verifier struct {
	secret []byte
}

func New(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Claims{}, ErrInvalidToken
	}

	claims := auth.Claims{}
	if v, ok := mc["id"].(string); ok {
		claims.UserID = strings.TrimSpace(v)
	}
	if v, ok := mc["nombre"].(string); ok {
		claims.Nombre = strings.TrimSpace(v)
	}
	// JSON numbers llegan como float64
	if v, ok := mc["rolID"].(float64); ok {
		claims.RolID = int(v)
	}

	if claims.UserID == "" {
		return auth.Claims{}, ErrInvalidToken
	}
	return claims, nil
}
