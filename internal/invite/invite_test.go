package invite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	to, subject, html, text string
}

type captureSender struct{ sent []capturedMail }

func (c *captureSender) Send(to, subject, htmlBody, textBody string) error {
	c.sent = append(c.sent, capturedMail{to, subject, htmlBody, textBody})
	return nil
}

func newService(t *testing.T) (*Service, *memory.Store, *captureSender) {
	t.Helper()
	st := memory.New()
	sender := &captureSender{}
	svc := NewService(st.Invitations(), st.Organisations(), st.Profiles(),
		st.Directory(), sender, "https://sso.example.org", 0)
	return svc, st, sender
}

func TestCreate(t *testing.T) {
	svc, _, _ := newService(t)

	inv, err := svc.Create(context.Background(), CreateInput{
		Name:         "Ana Pérez",
		Email:        "ana@example.org",
		Organisation: "Acme",
		PortalIDs:    []string{"p1"},
	})
	require.NoError(t, err)
	require.NotNil(t, inv.ActivationKey)
	assert.Len(t, *inv.ActivationKey, 64)
	assert.Equal(t, "en", inv.Language)
	assert.False(t, inv.IsActivated)
}

func TestSendActivation(t *testing.T) {
	svc, _, sender := newService(t)

	inv, err := svc.Create(context.Background(), CreateInput{
		Name: "Ana", Email: "ana@example.org", Organisation: "Acme",
	})
	require.NoError(t, err)

	oldKey := *inv.ActivationKey
	require.NoError(t, svc.SendActivation(context.Background(), inv.ID))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ana@example.org", sender.sent[0].to)
	assert.True(t, strings.Contains(sender.sent[0].html, "Acme"))

	// Cada envío rota la key: el mail lleva la nueva y la vieja muere.
	got, err := svc.invitations.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ActivationKey)
	assert.NotEqual(t, oldKey, *got.ActivationKey)
	assert.True(t, strings.Contains(sender.sent[0].text, "/activate/"+*got.ActivationKey))

	_, err = svc.Activate(context.Background(), ActivateInput{
		ActivationKey: oldKey, Username: "ana", Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestActivate_ExpiredKey(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInput{
		Name: "Ana", Email: "ana@example.org",
	})
	require.NoError(t, err)
	key := *inv.ActivationKey

	// Una key emitida hace 100 días está fuera de la ventana default de 45.
	stale := time.Now().UTC().Add(-100 * 24 * time.Hour)
	inv.ActivationKeyDate = &stale
	require.NoError(t, svc.invitations.Update(ctx, inv))

	_, err = svc.Activate(ctx, ActivateInput{
		ActivationKey: key, Username: "ana", Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrKeyExpired)

	// Re-enviar rota la key y reinicia la ventana.
	require.NoError(t, svc.SendActivation(ctx, inv.ID))
	got, err := svc.invitations.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	_, err = svc.Activate(ctx, ActivateInput{
		ActivationKey: *got.ActivationKey, Username: "ana", Password: "hunter22",
	})
	require.NoError(t, err)
}

func TestActivate(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, st.CreatePortal(ctx, &model.Portal{
		ID: "p1", Name: "Portal Uno", SSOKey: "k1", SSOSecret: "s1",
	}))
	require.NoError(t, st.CreateOrganisation(ctx, &model.Organisation{
		ID: "o1", Name: "Acme", UniqueID: "uo1",
	}))

	inv, err := svc.Create(ctx, CreateInput{
		Name: "Ana", Email: "ana@example.org", Organisation: "Acme", PortalIDs: []string{"p1"},
	})
	require.NoError(t, err)
	key := *inv.ActivationKey

	user, err := svc.Activate(ctx, ActivateInput{
		ActivationKey: key,
		Username:      "ana",
		Password:      "hunter22",
		FirstName:     "Ana",
		LastName:      "Pérez",
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Equal(t, "ana@example.org", user.Email)

	// Cuenta con perfil, portal y organisación vinculados.
	_, err = st.GetProfileByUserID(ctx, user.ID)
	require.NoError(t, err)
	hasPortal, err := st.HasPortal(ctx, user.ID, "p1")
	require.NoError(t, err)
	assert.True(t, hasPortal)
	orgs, err := st.OrganisationsOf(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "o1", orgs[0].ID)

	// La invitación quedó consumida y la key no se puede reusar.
	got, err := st.GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActivated)
	assert.Nil(t, got.ActivationKey)

	_, err = svc.Activate(ctx, ActivateInput{ActivationKey: key, Username: "otra", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestActivate_UnknownKey(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Activate(context.Background(), ActivateInput{
		ActivationKey: "no-such-key", Username: "x", Password: "y",
	})
	assert.ErrorIs(t, err, ErrInvalidKey)
}
