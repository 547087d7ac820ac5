// Package identity resolves the active owner of the subscription data:
// either a federated identity held by an external provider, or a locally
// registered credential. Resolution is best-effort; provider outages and
// malformed local records degrade to "unauthenticated", never to a hard
// failure.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/subtrack/internal/errs"
)

// Session is a provider-issued session. AccessToken is a JWT whose claims
// carry the federated user id and email.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// User is the provider's view of the authenticated user.
type User struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata"`
}

// Provider is the federated identity provider boundary. The OAuth handshake
// itself happens outside this system; the provider is consumed as "exchange
// an authorization artifact for a session".
type Provider interface {
	// GetSession returns the active session, or nil when none exists.
	GetSession(ctx context.Context) (*Session, error)

	// GetUser returns the user behind the active session, or nil when no
	// session exists.
	GetUser(ctx context.Context) (*User, error)

	// ExchangeAuthorizationArtifact trades a pending authorization artifact
	// (e.g. a code returned from an OAuth redirect) for a session. The
	// artifact is consumed: a successful or failed exchange must not be
	// retried with the same artifact.
	ExchangeAuthorizationArtifact(ctx context.Context, artifact string) (*Session, error)

	// SignOut invalidates the active session.
	SignOut(ctx context.Context) error
}

// HTTPProvider talks to the provider's JSON API. The current session is held
// in memory for the lifetime of the process.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	session *Session
}

// NewHTTPProvider builds a provider client for the given base URL.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetSession returns the in-memory session if it has not expired.
func (p *HTTPProvider) GetSession(ctx context.Context) (*Session, error) {
	if p.session == nil {
		return nil, nil
	}
	if sessionExpired(p.session) {
		p.session = nil
		return nil, nil
	}
	return p.session, nil
}

// GetUser fetches the user behind the active session. Without a session the
// result is nil, not an error.
func (p *HTTPProvider) GetUser(ctx context.Context) (*User, error) {
	session, err := p.GetSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	// The token claims already carry id and email; prefer them and avoid a
	// round trip when they parse cleanly.
	if user, err := userFromToken(session.AccessToken); err == nil {
		return user, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider user request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		p.session = nil
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider user request: unexpected status %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("provider user response: %w", err)
	}
	return &user, nil
}

// ExchangeAuthorizationArtifact posts the artifact to the provider's token
// endpoint and stores the returned session. The artifact is consumed either
// way, per the provider contract.
func (p *HTTPProvider) ExchangeAuthorizationArtifact(ctx context.Context, artifact string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"artifact": artifact})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/token", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("artifact exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artifact exchange: %w: status %d", errs.ErrUnauthorized, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("artifact exchange response: %w", err)
	}

	p.session = &session
	return &session, nil
}

// SignOut drops the in-memory session and notifies the provider. A provider
// error does not resurrect the local session.
func (p *HTTPProvider) SignOut(ctx context.Context) error {
	session := p.session
	p.session = nil
	if session == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()
	return nil
}
