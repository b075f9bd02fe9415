// Package middleware содержит HTTP middleware игрового API и админки.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"powerrush_backend/pkg/resp"
)

const (
	DeviceIDHeader = "X-Device-ID"

	maxDeviceIDLength = 128
)

type deviceIDKey struct{}

// DeviceID Берет отпечаток устройства из заголовка X-Device-ID и кладет в контекст
func DeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(DeviceIDHeader))
		if id == "" {
			resp.WriteError(w, http.StatusBadRequest, "missing "+DeviceIDHeader+" header")
			return
		}
		if len(id) > maxDeviceIDLength {
			resp.WriteError(w, http.StatusBadRequest, DeviceIDHeader+" header is too long")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithDeviceID(r.Context(), id)))
	})
}

func WithDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceIDKey{}, id)
}

// DeviceIDFromContext Идентификатор устройства, положенный DeviceID
func DeviceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceIDKey{}).(string)
	return id, ok && id != ""
}
