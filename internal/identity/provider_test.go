package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/subtrack/internal/errs"
)

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestExchangeAuthorizationArtifact_StoresSession(t *testing.T) {
	access := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "uid-1"},
		Email:            "alice@example.com",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "code-123", body["artifact"])

		json.NewEncoder(w).Encode(Session{
			AccessToken: access,
			ExpiresAt:   time.Now().Add(time.Hour),
		})
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	session, err := p.ExchangeAuthorizationArtifact(context.Background(), "code-123")
	require.NoError(t, err)
	assert.Equal(t, access, session.AccessToken)

	user, err := p.GetUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "uid-1", user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestExchangeAuthorizationArtifact_RejectedArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	_, err := p.ExchangeAuthorizationArtifact(context.Background(), "stale-code")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	session, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session, "a failed exchange must not leave a session behind")
}

func TestGetSession_ExpiredSessionIsDropped(t *testing.T) {
	p := NewHTTPProvider("http://unused", time.Second)
	p.session = &Session{AccessToken: "token", ExpiresAt: time.Now().Add(-time.Minute)}

	session, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestGetUser_NoSession(t *testing.T) {
	p := NewHTTPProvider("http://unused", time.Second)

	user, err := p.GetUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetUser_FallsBackToEndpointWhenClaimsLackSubject(t *testing.T) {
	// A token without a subject claim cannot be read locally.
	access := signToken(t, Claims{Email: "alice@example.com"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		require.Equal(t, "Bearer "+access, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(User{ID: "uid-1", Email: "alice@example.com"})
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	p.session = &Session{AccessToken: access, ExpiresAt: time.Now().Add(time.Hour)}

	user, err := p.GetUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "uid-1", user.ID)
}

func TestGetUser_UnauthorizedDropsSession(t *testing.T) {
	access := signToken(t, Claims{Email: "alice@example.com"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	p.session = &Session{AccessToken: access, ExpiresAt: time.Now().Add(time.Hour)}

	user, err := p.GetUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Nil(t, p.session)
}

func TestSignOut_DropsSessionBeforeNotifyingProvider(t *testing.T) {
	var logoutSeen bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/logout", r.URL.Path)
		logoutSeen = true
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	p.session = &Session{AccessToken: "token", ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, p.SignOut(context.Background()))
	assert.True(t, logoutSeen)
	assert.Nil(t, p.session)
}

func TestSignOut_NoSessionIsNoop(t *testing.T) {
	p := NewHTTPProvider("http://unused", time.Second)
	assert.NoError(t, p.SignOut(context.Background()))
}
