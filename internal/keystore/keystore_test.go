package keystore

import (
	"context"
	"testing"
	"time"

	cachemem "github.com/dropDatabas3/portalgate/internal/cache/memory"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyStore(t *testing.T) (*KeyStore, *memory.Store) {
	t.Helper()
	st := memory.New()
	return New(st.Portals(), cachemem.New(time.Minute), time.Minute), st
}

func TestCreate_GeneratesUnique64CharKeys(t *testing.T) {
	t.Parallel()
	ks, _ := newKeyStore(t)
	ctx := context.Background()

	a, err := ks.Create(ctx, CreateInput{Name: "portal-a", RedirectURL: "https://a.example.com"})
	require.NoError(t, err)
	b, err := ks.Create(ctx, CreateInput{Name: "portal-b", RedirectURL: "https://b.example.com"})
	require.NoError(t, err)

	assert.Len(t, a.SSOKey, 64)
	assert.Len(t, a.SSOSecret, 64)
	assert.NotEqual(t, a.SSOKey, b.SSOKey)
	assert.NotEqual(t, a.SSOSecret, b.SSOSecret)
	assert.NotEqual(t, a.SSOKey, a.SSOSecret)
}

func TestLookupByKey(t *testing.T) {
	t.Parallel()
	ks, _ := newKeyStore(t)
	ctx := context.Background()

	p, err := ks.Create(ctx, CreateInput{Name: "portal"})
	require.NoError(t, err)

	got, err := ks.LookupByKey(ctx, p.SSOKey)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	// Segunda vez via cache.
	got2, err := ks.LookupByKey(ctx, p.SSOKey)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got2.ID)

	_, err = ks.LookupByKey(ctx, "no-such-key")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRotate_ReplacesBothAndInvalidatesOldKey(t *testing.T) {
	t.Parallel()
	ks, _ := newKeyStore(t)
	ctx := context.Background()

	p, err := ks.Create(ctx, CreateInput{Name: "portal"})
	require.NoError(t, err)
	oldKey, oldSecret := p.SSOKey, p.SSOSecret

	// Calentar el cache con la key vieja.
	_, err = ks.LookupByKey(ctx, oldKey)
	require.NoError(t, err)

	rotated, err := ks.Rotate(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, rotated.SSOKey)
	assert.NotEqual(t, oldSecret, rotated.SSOSecret)

	// La key vieja ya no resuelve (ni desde cache).
	_, err = ks.LookupByKey(ctx, oldKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := ks.LookupByKey(ctx, rotated.SSOKey)
	require.NoError(t, err)
	assert.Equal(t, rotated.SSOSecret, got.SSOSecret)
}

func TestSecretForKey(t *testing.T) {
	t.Parallel()
	ks, _ := newKeyStore(t)
	ctx := context.Background()

	p, err := ks.Create(ctx, CreateInput{Name: "portal"})
	require.NoError(t, err)

	secret, err := ks.SecretForKey(ctx, p.SSOKey)
	require.NoError(t, err)
	assert.Equal(t, p.SSOSecret, secret)

	_, err = ks.SecretForKey(ctx, "unknown")
	assert.Error(t, err)
}
