package identity

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/subtrack/internal/cache"
	"github.com/dmitrijs2005/subtrack/internal/errs"
)

type fakeProvider struct {
	user         *User
	userErr      error
	exchanged    []string
	exchangeErr  error
	signOutCalls int
}

func (f *fakeProvider) GetSession(ctx context.Context) (*Session, error) {
	return nil, nil
}

func (f *fakeProvider) GetUser(ctx context.Context) (*User, error) {
	return f.user, f.userErr
}

func (f *fakeProvider) ExchangeAuthorizationArtifact(ctx context.Context, artifact string) (*Session, error) {
	f.exchanged = append(f.exchanged, artifact)
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	f.user = &User{ID: "uid-1", Email: "alice@example.com"}
	return &Session{AccessToken: "token"}, nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.signOutCalls++
	f.user = nil
	return nil
}

func setupCache(t *testing.T) *cache.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE cache (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)

	return cache.NewStore(db, nil)
}

func TestResolve_ArtifactExchangedOnce(t *testing.T) {
	provider := &fakeProvider{}
	r := NewResolver(provider, setupCache(t), nil)

	id, err := r.Resolve(context.Background(), "code-123")
	require.NoError(t, err)
	require.Equal(t, []string{"code-123"}, provider.exchanged)
	assert.Equal(t, "uid-1", id.OwnerKey)
	assert.Equal(t, "uid-1", id.RemoteID)
	assert.True(t, id.Remote())
}

func TestResolve_FederatedSessionWinsOverLocal(t *testing.T) {
	ctx := context.Background()
	store := setupCache(t)
	require.NoError(t, RegisterLocal(ctx, store, "alice", []byte("secret")))

	provider := &fakeProvider{user: &User{ID: "uid-1"}}
	r := NewResolver(provider, store, nil)

	id, err := r.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.OwnerKey)
	assert.Empty(t, provider.exchanged, "no artifact means no exchange")
}

func TestResolve_ExchangeFailureFallsThroughToLocal(t *testing.T) {
	ctx := context.Background()
	store := setupCache(t)
	require.NoError(t, RegisterLocal(ctx, store, "alice", []byte("secret")))

	provider := &fakeProvider{exchangeErr: errors.New("boom")}
	r := NewResolver(provider, store, nil)

	id, err := r.Resolve(ctx, "code-123")
	require.NoError(t, err)
	require.Equal(t, []string{"code-123"}, provider.exchanged)
	assert.Equal(t, "alice", id.OwnerKey)
	assert.False(t, id.Remote())
}

func TestResolve_ProviderOutageFallsThroughToLocal(t *testing.T) {
	ctx := context.Background()
	store := setupCache(t)
	require.NoError(t, RegisterLocal(ctx, store, "alice", []byte("secret")))

	provider := &fakeProvider{userErr: errors.New("connection refused")}
	r := NewResolver(provider, store, nil)

	id, err := r.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.OwnerKey)
}

func TestResolve_NoSourcesIsUnauthenticated(t *testing.T) {
	r := NewResolver(&fakeProvider{}, setupCache(t), nil)

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestResolve_NilProviderUsesLocalOnly(t *testing.T) {
	ctx := context.Background()
	store := setupCache(t)
	require.NoError(t, RegisterLocal(ctx, store, "alice", []byte("secret")))

	r := NewResolver(nil, store, nil)
	id, err := r.Resolve(ctx, "code-123")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.OwnerKey)
}

func TestSignOut_ClearsBothSources(t *testing.T) {
	ctx := context.Background()
	store := setupCache(t)
	require.NoError(t, RegisterLocal(ctx, store, "alice", []byte("secret")))

	provider := &fakeProvider{user: &User{ID: "uid-1"}}
	r := NewResolver(provider, store, nil)

	require.NoError(t, r.SignOut(ctx))
	assert.Equal(t, 1, provider.signOutCalls)

	cred, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)

	_, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}
