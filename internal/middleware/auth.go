package middleware

import (
	"net/http"
	"strings"

	"powerrush_backend/pkg/resp"
	"powerrush_backend/pkg/token"

	"go.uber.org/zap"
)

// AdminAuth Пропускает только запросы с действующим токеном администратора
// в заголовке Authorization: Bearer <token>
func AdminAuth(secretKey []byte, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenStr) == "" {
				resp.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			if _, err := token.VerifyToken(strings.TrimSpace(tokenStr), secretKey); err != nil {
				logger.Info("admin token rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				resp.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
