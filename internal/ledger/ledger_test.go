package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPortal(t *testing.T, st *memory.Store) *model.Portal {
	t.Helper()
	p := &model.Portal{
		ID:        "portal-1",
		Name:      "Portal Uno",
		SSOKey:    "key-1",
		SSOSecret: "secret-1",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.CreatePortal(context.Background(), p))
	return p
}

func TestCreateForPortal(t *testing.T) {
	st := memory.New()
	p := testPortal(t, st)
	l := New(st.Tokens(), 0)

	tok, err := l.CreateForPortal(context.Background(), p)
	require.NoError(t, err)

	assert.Len(t, tok.RequestToken, 64)
	assert.Len(t, tok.AuthToken, 64)
	assert.NotEqual(t, tok.RequestToken, tok.AuthToken)
	assert.Equal(t, p.ID, tok.PortalID)
	assert.False(t, tok.Bound())
	assert.Equal(t, DefaultTimeout, l.Timeout())
}

func TestCreateForPortal_ConcurrentDistinct(t *testing.T) {
	st := memory.New()
	p := testPortal(t, st)
	l := New(st.Tokens(), 0)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := l.CreateForPortal(context.Background(), p)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[tok.RequestToken] = true
			seen[tok.AuthToken] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 2*n)
}

func TestLookupUnbound(t *testing.T) {
	st := memory.New()
	p := testPortal(t, st)
	l := New(st.Tokens(), 0)

	tok, err := l.CreateForPortal(context.Background(), p)
	require.NoError(t, err)

	got, err := l.LookupUnbound(context.Background(), tok.RequestToken, p.ID)
	require.NoError(t, err)
	assert.Equal(t, tok.ID, got.ID)

	_, err = l.LookupUnbound(context.Background(), "no-such-token", p.ID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// El request_token de un portal no sirve para otro.
	_, err = l.LookupUnbound(context.Background(), tok.RequestToken, "portal-otro")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLookupUnbound_ExpiredIsDeleted(t *testing.T) {
	st := memory.New()
	p := testPortal(t, st)
	l := New(st.Tokens(), time.Minute)

	tok, err := l.CreateForPortal(context.Background(), p)
	require.NoError(t, err)

	// Adelantamos el reloj más allá del timeout.
	l.now = func() time.Time { return tok.CreatedAt.Add(2 * time.Minute) }

	_, err = l.LookupUnbound(context.Background(), tok.RequestToken, p.ID)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// El primer intento lo borró: el segundo ya no distingue expirado.
	_, err = l.LookupUnbound(context.Background(), tok.RequestToken, p.ID)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBind(t *testing.T) {
	st := memory.New()
	p := testPortal(t, st)
	l := New(st.Tokens(), 0)

	tok, err := l.CreateForPortal(context.Background(), p)
	require.NoError(t, err)

	require.NoError(t, l.Bind(context.Background(), tok, "user-1"))
	require.NotNil(t, tok.UserID)
	assert.Equal(t, "user-1", *tok.UserID)

	// Segundo bind: violación de protocolo, la asociación original queda.
	err = l.Bind(context.Background(), tok, "user-2")
	assert.ErrorIs(t, err, ErrInvalidToken)

	got, err := l.Consume(context.Background(), tok.AuthToken, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", *got.UserID)
}

func TestConsume_SingleUse(t *testing.T) {
	st := memory.New()
	p := testPortal(t, st)
	l := New(st.Tokens(), 0)

	tok, err := l.CreateForPortal(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, l.Bind(context.Background(), tok, "user-1"))

	got, err := l.Consume(context.Background(), tok.AuthToken, p.ID)
	require.NoError(t, err)
	assert.Equal(t, tok.ID, got.ID)

	_, err = l.Consume(context.Background(), tok.AuthToken, p.ID)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConsume_Unbound(t *testing.T) {
	st := memory.New()
	p := testPortal(t, st)
	l := New(st.Tokens(), 0)

	tok, err := l.CreateForPortal(context.Background(), p)
	require.NoError(t, err)

	// Sin usuario asociado el auth_token todavía no es canjeable.
	_, err = l.Consume(context.Background(), tok.AuthToken, p.ID)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConsume_ConcurrentSingleWinner(t *testing.T) {
	st := memory.New()
	p := testPortal(t, st)
	l := New(st.Tokens(), 0)

	tok, err := l.CreateForPortal(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, l.Bind(context.Background(), tok, "user-1"))

	const n = 10
	var (
		wg   sync.WaitGroup
		wins int32
		mu   sync.Mutex
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Consume(context.Background(), tok.AuthToken, p.ID)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrInvalidToken) {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestSweepExpired(t *testing.T) {
	st := memory.New()
	p := testPortal(t, st)
	l := New(st.Tokens(), time.Minute)

	old, err := l.CreateForPortal(context.Background(), p)
	require.NoError(t, err)

	l.now = func() time.Time { return old.CreatedAt.Add(5 * time.Minute) }
	fresh, err := l.CreateForPortal(context.Background(), p)
	require.NoError(t, err)

	n, err := l.SweepExpired(context.Background(), l.now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = l.LookupUnbound(context.Background(), old.RequestToken, p.ID)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = l.LookupUnbound(context.Background(), fresh.RequestToken, p.ID)
	assert.NoError(t, err)
}
