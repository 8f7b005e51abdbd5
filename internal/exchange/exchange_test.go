package exchange

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	cachemem "github.com/dropDatabas3/portalgate/internal/cache/memory"
	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/envelope"
	"github.com/dropDatabas3/portalgate/internal/keystore"
	"github.com/dropDatabas3/portalgate/internal/ledger"
	"github.com/dropDatabas3/portalgate/internal/roles"
	"github.com/dropDatabas3/portalgate/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	st     *memory.Store
	keys   *keystore.KeyStore
	ledger *ledger.Ledger
	proto  *Protocol
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memory.New()
	keys := keystore.New(st.Portals(), cachemem.New(time.Minute), 0)
	lg := ledger.New(st.Tokens(), 0)
	resolver := roles.NewResolver(st.Organisations(), st.Profiles())
	proto := New(keys, lg, resolver, st.Directory(), st.Profiles(), 0)
	return &env{st: st, keys: keys, ledger: lg, proto: proto}
}

func (e *env) portal(t *testing.T, name string) *model.Portal {
	t.Helper()
	p, err := e.keys.Create(context.Background(), keystore.CreateInput{
		Name:        name,
		RedirectURL: "https://" + name + ".example.org/sso/local_login",
	})
	require.NoError(t, err)
	return p
}

func (e *env) user(t *testing.T, username string, portal *model.Portal) *model.User {
	t.Helper()
	u, err := e.st.CreateUser(context.Background(), directory.CreateUserInput{
		Username:  username,
		Password:  "hunter22",
		Email:     username + "@example.org",
		FirstName: "Ana",
		LastName:  "Pérez",
		Active:    true,
	})
	require.NoError(t, err)
	if portal != nil {
		require.NoError(t, e.st.AttachPortal(context.Background(), u.ID, portal.ID))
	}
	return u
}

// grantViewer le da al usuario un rol Viewer en una organisación del
// portal, vía for_all_users.
func (e *env) grantViewer(t *testing.T, u *model.User, p *model.Portal) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.st.CreateOrganisation(ctx, &model.Organisation{ID: "o1", Name: "Acme", UniqueID: "uo1"}))
	require.NoError(t, e.st.CreateRole(ctx, &model.Role{ID: "viewer", PortalID: p.ID, UniqueID: "ur1", Code: "viewer", Name: "Viewer"}))
	require.NoError(t, e.st.CreateOrganisationRole(ctx, &model.OrganisationRole{ID: "or1", OrganisationID: "o1", RoleID: "viewer", ForAllUsers: true}))
	require.NoError(t, e.st.AttachOrganisation(ctx, u.ID, "o1"))
}

func TestFullHandshake(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.portal(t, "portal-a")
	u := e.user(t, "ana", p)
	e.grantViewer(t, u, p)

	reqEnv, err := e.proto.RequestToken(ctx, p.SSOKey)
	require.NoError(t, err)

	authEnv, err := e.proto.Authorize(ctx, p.SSOKey, reqEnv, u)
	require.NoError(t, err)

	res, err := e.proto.Verify(ctx, p.SSOKey, authEnv)
	require.NoError(t, err)
	assert.Equal(t, "ana", res.User.Username)
	assert.Equal(t, u.ID, res.User.ID)
	require.Len(t, res.Roles.OrganisationRoles, 1)
	assert.Equal(t, []string{"uo1", "ur1"}, res.Roles.OrganisationRoles[0])

	// El sobre de respuesta abre con el secreto del portal y transporta
	// el mismo contenido.
	payload, err := envelope.Open(p.SSOSecret, res.Envelope, time.Minute)
	require.NoError(t, err)
	var signedUser UserPayload
	require.NoError(t, json.Unmarshal([]byte(payload["user"]), &signedUser))
	assert.Equal(t, res.User, signedUser)

	// Verify no es idempotente.
	_, err = e.proto.Verify(ctx, p.SSOKey, authEnv)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequestToken_UnknownPortal(t *testing.T) {
	e := newEnv(t)
	_, err := e.proto.RequestToken(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, ErrUnknownPortal)
}

func TestAuthorize_CrossPortalEnvelopeFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pa := e.portal(t, "portal-a")
	pb := e.portal(t, "portal-b")
	u := e.user(t, "ana", pb)

	reqEnv, err := e.proto.RequestToken(ctx, pa.SSOKey)
	require.NoError(t, err)

	// Un sobre firmado por A no verifica bajo la clave de B.
	_, err = e.proto.Authorize(ctx, pb.SSOKey, reqEnv, u)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestAuthorize_AccessDenied(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.portal(t, "portal-a")

	t.Run("sin vínculo al portal", func(t *testing.T) {
		u := e.user(t, "sinportal", nil)
		reqEnv, err := e.proto.RequestToken(ctx, p.SSOKey)
		require.NoError(t, err)
		_, err = e.proto.Authorize(ctx, p.SSOKey, reqEnv, u)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("cuenta inactiva", func(t *testing.T) {
		u := e.user(t, "inactiva", p)
		require.NoError(t, e.st.SetActive(ctx, u.ID, false))
		u.IsActive = false
		reqEnv, err := e.proto.RequestToken(ctx, p.SSOKey)
		require.NoError(t, err)
		_, err = e.proto.Authorize(ctx, p.SSOKey, reqEnv, u)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("staff accede sin vínculo", func(t *testing.T) {
		u := e.user(t, "staff", nil)
		u.IsStaff = true
		require.NoError(t, e.st.UpdateUser(ctx, u))
		reqEnv, err := e.proto.RequestToken(ctx, p.SSOKey)
		require.NoError(t, err)
		_, err = e.proto.Authorize(ctx, p.SSOKey, reqEnv, u)
		assert.NoError(t, err)
	})
}

func TestAuthorize_ExpiredTokenThenInvalid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.portal(t, "portal-a")
	u := e.user(t, "ana", p)

	// Token sembrado con edad mayor al timeout; el sobre es fresco, así
	// que la expiración que se observa es la del ledger, no la del sobre.
	tok := &model.Token{
		ID:           "t-old",
		PortalID:     p.ID,
		RequestToken: "stale-request-token",
		AuthToken:    "stale-auth-token",
		CreatedAt:    time.Now().UTC().Add(-10 * time.Minute),
	}
	require.NoError(t, e.st.CreateToken(ctx, tok))
	reqEnv, err := envelope.Sign(p.SSOSecret, map[string]string{"request_token": tok.RequestToken})
	require.NoError(t, err)

	_, err = e.proto.Authorize(ctx, p.SSOKey, reqEnv, u)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// El token expirado fue destruido: el reintento ya no distingue.
	_, err = e.proto.Authorize(ctx, p.SSOKey, reqEnv, u)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_UnboundToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.portal(t, "portal-a")

	reqEnv, err := e.proto.RequestToken(ctx, p.SSOKey)
	require.NoError(t, err)
	payload, err := envelope.Open(p.SSOSecret, reqEnv, time.Minute)
	require.NoError(t, err)

	// Armamos un sobre de verify con el auth_token de un token nunca
	// asociado: el ledger lo rechaza.
	tok, err := e.st.GetUnboundToken(ctx, payload["request_token"], p.ID)
	require.NoError(t, err)
	authEnv, err := envelope.Sign(p.SSOSecret, map[string]string{"auth_token": tok.AuthToken})
	require.NoError(t, err)

	_, err = e.proto.Verify(ctx, p.SSOKey, authEnv)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStartLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.portal(t, "portal-a")

	t.Run("login forzado por defecto", func(t *testing.T) {
		msg, err := envelope.SignClaims(p.SSOSecret, envelope.Claims{
			"iss":               p.SSOKey,
			"login_success_url": "https://portal-a.example.org/sso/success",
		}, time.Minute)
		require.NoError(t, err)

		ticket, err := e.proto.StartLogin(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, p.ID, ticket.Portal.ID)
		assert.True(t, ticket.ForceSSOLogin)
		assert.Equal(t, "https://portal-a.example.org/sso/success", ticket.SuccessURL)
	})

	t.Run("force_sso_login false exige url de rebote", func(t *testing.T) {
		msg, err := envelope.SignClaims(p.SSOSecret, envelope.Claims{
			"iss":                       p.SSOKey,
			"login_success_url":         "https://portal-a.example.org/sso/success",
			"force_sso_login":           false,
			"unauthenticated_is_ok_url": "https://portal-a.example.org/anon",
		}, time.Minute)
		require.NoError(t, err)

		ticket, err := e.proto.StartLogin(ctx, msg)
		require.NoError(t, err)
		assert.False(t, ticket.ForceSSOLogin)
		assert.Equal(t, "https://portal-a.example.org/anon", ticket.UnauthenticatedURL)

		msg, err = envelope.SignClaims(p.SSOSecret, envelope.Claims{
			"iss":               p.SSOKey,
			"login_success_url": "https://portal-a.example.org/sso/success",
			"force_sso_login":   false,
		}, time.Minute)
		require.NoError(t, err)
		_, err = e.proto.StartLogin(ctx, msg)
		assert.ErrorIs(t, err, ErrMalformedClaims)
	})

	t.Run("emisor desconocido parece firma inválida", func(t *testing.T) {
		msg, err := envelope.SignClaims("otro-secreto", envelope.Claims{
			"iss":               "unknown-key",
			"login_success_url": "https://x.example.org/ok",
		}, time.Minute)
		require.NoError(t, err)
		_, err = e.proto.StartLogin(ctx, msg)
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("claim obligatorio ausente", func(t *testing.T) {
		msg, err := envelope.SignClaims(p.SSOSecret, envelope.Claims{"iss": p.SSOKey}, time.Minute)
		require.NoError(t, err)
		_, err = e.proto.StartLogin(ctx, msg)
		assert.ErrorIs(t, err, ErrMalformedClaims)
	})
}

func TestCompleteLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.portal(t, "portal-a")
	u := e.user(t, "ana", p)
	e.grantViewer(t, u, p)

	ticket := &LoginTicket{Portal: p, SuccessURL: "https://portal-a.example.org/ok", ForceSSOLogin: true}
	msg, err := e.proto.CompleteLogin(ctx, ticket, u)
	require.NoError(t, err)

	claims, err := envelope.OpenClaims(ctx, msg, e.keys.SecretForKey, envelope.ClaimsOpts{
		Require: []string{"user", "roles"},
	})
	require.NoError(t, err)
	var signedUser UserPayload
	require.NoError(t, json.Unmarshal([]byte(claims.String("user")), &signedUser))
	assert.Equal(t, "ana", signedUser.Username)

	var signedRoles roles.Payload
	require.NoError(t, json.Unmarshal([]byte(claims.String("roles")), &signedRoles))
	require.Len(t, signedRoles.OrganisationRoles, 1)
}

func TestCheckCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.portal(t, "portal-a")
	u := e.user(t, "ana", p)
	e.grantViewer(t, u, p)

	sign := func(username, password string) string {
		msg, err := envelope.SignClaims(p.SSOSecret, envelope.Claims{
			"iss":      p.SSOKey,
			"username": username,
			"password": password,
		}, time.Minute)
		require.NoError(t, err)
		return msg
	}

	res, err := e.proto.CheckCredentials(ctx, sign("ana", "hunter22"))
	require.NoError(t, err)
	assert.Equal(t, "ana", res.User.Username)
	assert.Len(t, res.Roles.OrganisationRoles, 1)

	_, err = e.proto.CheckCredentials(ctx, sign("ana", "wrong"))
	assert.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, e.st.SetActive(ctx, u.ID, false))
	_, err = e.proto.CheckCredentials(ctx, sign("ana", "hunter22"))
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Sin el claim password el mensaje está malformado.
	msg, err := envelope.SignClaims(p.SSOSecret, envelope.Claims{
		"iss": p.SSOKey, "username": "ana",
	}, time.Minute)
	require.NoError(t, err)
	_, err = e.proto.CheckCredentials(ctx, msg)
	assert.ErrorIs(t, err, ErrMalformedClaims)
}
