package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/dropDatabas3/portalgate/internal/http/errors"
)

// WithAdminKey exige el header X-Admin-API-Key en las rutas administrativas.
// Con apiKey vacía todas las rutas admin responden 503: un deploy sin clave
// configurada no debe quedar abierto.
func WithAdminKey(apiKey string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				errors.WriteError(w, errors.ErrServiceUnavailable.WithDetail("admin API disabled"))
				return
			}

			got := r.Header.Get("X-Admin-API-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("invalid admin API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
