// Package metrics registra y expone las métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Handshake SSO
	TokensIssuedTotal   *prometheus.CounterVec
	TokensVerifiedTotal *prometheus.CounterVec
	TokensSweptTotal    prometheus.Counter
	AccessDeniedTotal   *prometheus.CounterVec
)

// Register inicializa las métricas una sola vez y retorna el handler de
// /metrics. Registra contra el registry por defecto.
func Register() http.Handler {
	once.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sso_tokens_issued_total",
			Help: "Request tokens emitidos por portal",
		}, []string{"portal"})

		TokensVerifiedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sso_tokens_verified_total",
			Help: "Auth tokens verificados y consumidos por portal",
		}, []string{"portal"})

		TokensSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sso_tokens_swept_total",
			Help: "Tokens eliminados por el barrido de expirados",
		})

		AccessDeniedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sso_access_denied_total",
			Help: "Intentos de login rechazados por falta de acceso",
		}, []string{"portal"})

		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			TokensIssuedTotal,
			TokensVerifiedTotal,
			TokensSweptTotal,
			AccessDeniedTotal,
		)
	})
	return promhttp.Handler()
}
