package model

import (
	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims Claims токена администратора
type AdminClaims struct {
	jwt.RegisteredClaims
}
