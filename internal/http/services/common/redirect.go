// Package common reúne lógica compartida por los services HTTP.
package common

import (
	"net/url"
	"strings"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

// RedirectTarget decide a qué URL se devuelve al usuario. Un destino
// pedido explícitamente se honra solo si su host cae dentro de los
// sufijos de dominio permitidos del portal; en cualquier otro caso gana
// la redirect_url registrada. Nunca redirige a un dominio arbitrario.
func RedirectTarget(p *model.Portal, requested string) string {
	if requested == "" {
		return p.RedirectURL
	}

	u, err := url.Parse(requested)
	if err != nil || u.Host == "" {
		return p.RedirectURL
	}

	host := strings.ToLower(u.Hostname())
	for _, domain := range strings.Fields(strings.ToLower(p.AllowedDomain)) {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return requested
		}
	}
	return p.RedirectURL
}

// AppendQuery agrega un parámetro a una URL respetando los que ya trae.
func AppendQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
