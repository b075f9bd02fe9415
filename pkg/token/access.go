package token

import (
	"errors"
	"fmt"
	"time"

	"powerrush_backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const adminSubject = "admin"

// GenerateAccessToken Токен администратора на ttl
func GenerateAccessToken(now time.Time, secretKey []byte, ttl time.Duration) (string, error) {
	claims := model.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   adminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secretKey)
}

func VerifyToken(tokenStr string, secretKey []byte) (*model.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &model.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok {
			return nil, errors.New("unexpected token signing method")
		}

		return secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*model.AdminClaims)
	if !ok || claims.Subject != adminSubject {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
