package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachemem "github.com/dropDatabas3/portalgate/internal/cache/memory"
	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/envelope"
	"github.com/dropDatabas3/portalgate/internal/exchange"
	activationctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/activation"
	adminctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/admin"
	apiv2ctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/apiv2"
	healthctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/health"
	ssoctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/sso"
	"github.com/dropDatabas3/portalgate/internal/http/router"
	activationsvc "github.com/dropDatabas3/portalgate/internal/http/services/activation"
	adminsvc "github.com/dropDatabas3/portalgate/internal/http/services/admin"
	apiv2svc "github.com/dropDatabas3/portalgate/internal/http/services/apiv2"
	healthsvc "github.com/dropDatabas3/portalgate/internal/http/services/health"
	ssosvc "github.com/dropDatabas3/portalgate/internal/http/services/sso"
	"github.com/dropDatabas3/portalgate/internal/invite"
	"github.com/dropDatabas3/portalgate/internal/keystore"
	"github.com/dropDatabas3/portalgate/internal/ledger"
	"github.com/dropDatabas3/portalgate/internal/rate"
	"github.com/dropDatabas3/portalgate/internal/roles"
	"github.com/dropDatabas3/portalgate/internal/store/memory"
)

const adminKey = "test-admin-key"

type captureSender struct {
	to   string
	html string
}

func (c *captureSender) Send(to, subject, htmlBody, textBody string) error {
	c.to = to
	c.html = htmlBody
	return nil
}

type env struct {
	t       *testing.T
	st      *memory.Store
	handler http.Handler
	sender  *captureSender
}

func newEnv(t *testing.T, limiter rate.Limiter) *env {
	t.Helper()
	st := memory.New()
	keys := keystore.New(st.Portals(), cachemem.New(time.Minute), 0)
	lg := ledger.New(st.Tokens(), 0)
	resolver := roles.NewResolver(st.Organisations(), st.Profiles())
	protocol := exchange.New(keys, lg, resolver, st.Directory(), st.Profiles(), 0)

	sender := &captureSender{}
	invites := invite.NewService(st.Invitations(), st.Organisations(), st.Profiles(), st.Directory(), sender, "http://sso.local", 0)

	handler := router.New(router.Deps{
		SSO:        ssoctrl.NewController(ssosvc.NewService(protocol, keys, st.Directory())),
		APIv2:      apiv2ctrl.NewController(apiv2svc.NewService(protocol, keys, st.Directory(), st.Organisations())),
		Admin:      adminctrl.NewController(adminsvc.NewService(keys, st.Portals(), invites)),
		Activation: activationctrl.NewController(activationsvc.NewService(invites)),
		Health: healthctrl.NewController(healthsvc.NewService(healthsvc.Deps{
			StoreCheck: func(context.Context) error { return nil },
		})),
		Limiter:     limiter,
		AdminAPIKey: adminKey,
	})
	return &env{t: t, st: st, handler: handler, sender: sender}
}

func (e *env) do(method, path string, headers map[string]string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *env) adminDo(method, path string, body any) *httptest.ResponseRecorder {
	return e.do(method, path, map[string]string{"X-Admin-API-Key": adminKey}, body)
}

// createPortal da de alta un portal vía la API admin y devuelve key y secret.
func (e *env) createPortal(name string) (ssoKey, ssoSecret, id string) {
	e.t.Helper()
	w := e.adminDo(http.MethodPost, "/v1/admin/portals", map[string]any{
		"name":         name,
		"redirect_url": "https://" + name + ".example.com/sso",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID        string `json:"id"`
		SSOKey    string `json:"sso_key"`
		SSOSecret string `json:"sso_secret"`
	}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(e.t, resp.SSOKey)
	require.NotEmpty(e.t, resp.SSOSecret)
	return resp.SSOKey, resp.SSOSecret, resp.ID
}

func (e *env) createUser(username, portalID string) string {
	e.t.Helper()
	ctx := context.Background()
	u, err := e.st.CreateUser(ctx, directory.CreateUserInput{
		Username:  username,
		Password:  "hunter2hunter2",
		Email:     username + "@example.com",
		FirstName: "Ana",
		LastName:  "Prueba",
		Active:    true,
	})
	require.NoError(e.t, err)
	require.NoError(e.t, e.st.AttachPortal(ctx, u.ID, portalID))
	return u.ID
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	e := newEnv(t, nil)
	w := e.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)
}

func TestAdminRequiresAPIKey(t *testing.T) {
	e := newEnv(t, nil)

	w := e.do(http.MethodGet, "/v1/admin/portals", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/v1/admin/portals", map[string]string{"X-Admin-API-Key": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.adminDo(http.MethodGet, "/v1/admin/portals", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminListPortalsHidesSecret(t *testing.T) {
	e := newEnv(t, nil)
	_, secret, _ := e.createPortal("intranet")

	w := e.adminDo(http.MethodGet, "/v1/admin/portals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), secret)
}

func TestSSOHandshakeOverHTTP(t *testing.T) {
	e := newEnv(t, nil)
	ssoKey, ssoSecret, portalID := e.createPortal("crm")
	e.createUser("ana", portalID)

	// 1. request_token
	w := e.do(http.MethodGet, "/sso/request_token?sso_key="+ssoKey, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reqResp struct {
		Envelope string `json:"envelope"`
	}
	decodeJSON(t, w, &reqResp)
	require.NotEmpty(t, reqResp.Envelope)

	// 2. authorize con credenciales
	w = e.do(http.MethodPost, "/sso/authorize", nil, map[string]string{
		"sso_key":  ssoKey,
		"envelope": reqResp.Envelope,
		"username": "ana",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var authResp struct {
		Envelope    string `json:"envelope"`
		RedirectURL string `json:"redirect_url"`
	}
	decodeJSON(t, w, &authResp)
	require.NotEmpty(t, authResp.Envelope)
	assert.Contains(t, authResp.RedirectURL, "https://crm.example.com/sso")
	assert.Contains(t, authResp.RedirectURL, "envelope=")

	// El sobre debe verificar con el secret del portal.
	_, err := envelope.Open(ssoSecret, authResp.Envelope, time.Minute)
	require.NoError(t, err)

	// 3. verify
	w = e.do(http.MethodGet, "/sso/verify?sso_key="+ssoKey+"&envelope="+authResp.Envelope, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var verResp struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Envelope string `json:"envelope"`
	}
	decodeJSON(t, w, &verResp)
	assert.Equal(t, "ana", verResp.User.Username)
	assert.NotEmpty(t, verResp.Envelope)

	// El auth token es de un solo uso.
	w = e.do(http.MethodGet, "/sso/verify?sso_key="+ssoKey+"&envelope="+authResp.Envelope, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestSSORequestToken_UnknownPortal(t *testing.T) {
	e := newEnv(t, nil)
	w := e.do(http.MethodGet, "/sso/request_token?sso_key=nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_PORTAL")
}

func TestSSOAuthorize_BadCredentials(t *testing.T) {
	e := newEnv(t, nil)
	ssoKey, _, portalID := e.createPortal("crm")
	e.createUser("ana", portalID)

	w := e.do(http.MethodGet, "/sso/request_token?sso_key="+ssoKey, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reqResp struct {
		Envelope string `json:"envelope"`
	}
	decodeJSON(t, w, &reqResp)

	w = e.do(http.MethodPost, "/sso/authorize", nil, map[string]string{
		"sso_key":  ssoKey,
		"envelope": reqResp.Envelope,
		"username": "ana",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestLogoutRedirect_DomainRule(t *testing.T) {
	e := newEnv(t, nil)
	w := e.adminDo(http.MethodPost, "/v1/admin/portals", map[string]any{
		"name":           "crm",
		"redirect_url":   "https://crm.example.com/sso",
		"allowed_domain": "example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		SSOKey string `json:"sso_key"`
	}
	decodeJSON(t, w, &resp)

	// next dentro del dominio permitido se honra
	w = e.do(http.MethodGet, "/sso/logout_redirect?sso_key="+resp.SSOKey+"&next=https%3A%2F%2Fapp.example.com%2Fbye", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.com/bye", w.Header().Get("Location"))

	// fuera del dominio gana la redirect_url registrada
	w = e.do(http.MethodGet, "/sso/logout_redirect?sso_key="+resp.SSOKey+"&next=https%3A%2F%2Fevil.example.org%2F", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://crm.example.com/sso", w.Header().Get("Location"))
}

func TestAPI2CheckCredentials(t *testing.T) {
	e := newEnv(t, nil)
	ssoKey, ssoSecret, portalID := e.createPortal("shop")
	e.createUser("ana", portalID)

	message, err := envelope.SignClaims(ssoSecret, envelope.Claims{
		"iss":      ssoKey,
		"username": "ana",
		"password": "hunter2hunter2",
	}, time.Minute)
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/api2/check_credentials", nil, map[string]string{"message": message})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "ana", resp.User.Username)
}

func TestAPI2Start(t *testing.T) {
	e := newEnv(t, nil)
	ssoKey, ssoSecret, _ := e.createPortal("shop")

	message, err := envelope.SignClaims(ssoSecret, envelope.Claims{
		"iss":               ssoKey,
		"login_success_url": "https://shop.example.com/welcome",
	}, time.Minute)
	require.NoError(t, err)

	w := e.do(http.MethodGet, "/api2/?message="+message, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		LoginSuccessURL string `json:"login_success_url"`
		ForceSSOLogin   bool   `json:"force_sso_login"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "https://shop.example.com/welcome", resp.LoginSuccessURL)
	assert.True(t, resp.ForceSSOLogin)
}

func TestAPI2Authorize(t *testing.T) {
	e := newEnv(t, nil)
	ssoKey, ssoSecret, portalID := e.createPortal("shop")
	e.createUser("ana", portalID)

	message, err := envelope.SignClaims(ssoSecret, envelope.Claims{
		"iss":               ssoKey,
		"login_success_url": "https://shop.example.com/welcome",
	}, time.Minute)
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/api2/authorize", nil, map[string]string{
		"message":  message,
		"username": "ana",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Message     string `json:"message"`
		RedirectURL string `json:"redirect_url"`
	}
	decodeJSON(t, w, &resp)
	require.NotEmpty(t, resp.Message)
	assert.Contains(t, resp.RedirectURL, "https://shop.example.com/welcome")
	assert.Contains(t, resp.RedirectURL, "message=")
}

func TestActivationFlow(t *testing.T) {
	e := newEnv(t, nil)
	_, _, portalID := e.createPortal("crm")

	w := e.adminDo(http.MethodPost, "/v1/admin/invitations", map[string]any{
		"name":       "Ana Prueba",
		"email":      "ana@example.com",
		"portal_ids": []string{portalID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var inv struct {
		ID string `json:"id"`
	}
	decodeJSON(t, w, &inv)

	w = e.adminDo(http.MethodPost, "/v1/admin/invitations/resend", map[string]string{"invitation_id": inv.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "ana@example.com", e.sender.to)

	// La activation key sale del link del mail.
	m := regexp.MustCompile(`/activate/([A-Za-z0-9_-]+)`).FindStringSubmatch(e.sender.html)
	require.Len(t, m, 2)
	key := m[1]

	w = e.do(http.MethodPost, "/activate/"+key, nil, map[string]string{
		"username": "ana",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"username":"ana"`)

	// La key no se puede reusar.
	w = e.do(http.MethodPost, "/activate/"+key, nil, map[string]string{
		"username": "otra",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ACTIVATION_KEY")
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t, rate.NewMemoryLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		w := e.do(http.MethodGet, "/sso/request_token?sso_key=nope", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, fmt.Sprintf("request %d", i))
	}
	w := e.do(http.MethodGet, "/sso/request_token?sso_key=nope", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")

	// Las rutas de health quedan fuera del límite.
	w = e.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
