package identity

import (
	"context"

	"github.com/dmitrijs2005/subtrack/internal/cache"
	"github.com/dmitrijs2005/subtrack/internal/errs"
	"github.com/dmitrijs2005/subtrack/internal/logging"
)

// Identity is the resolved owner of the session's data. RemoteID is set only
// on the federated path; OwnerKey is the storage partition key in both cases.
type Identity struct {
	OwnerKey string
	RemoteID string
}

// Remote reports whether this identity is backed by the remote store.
func (i *Identity) Remote() bool {
	return i.RemoteID != ""
}

// Resolver determines the active identity. A nil provider disables the
// federated path; a nil cache disables the local path.
type Resolver struct {
	provider Provider
	cache    *cache.Store
	logger   logging.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(provider Provider, cacheStore *cache.Store, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{provider: provider, cache: cacheStore, logger: logger}
}

// Resolve produces the active identity, trying sources in order:
//
//  1. A pending authorization artifact, if present, is exchanged for a
//     provider session first. The artifact is consumed exactly once; an
//     exchange failure is logged and resolution continues.
//  2. The provider's active session user becomes a federated identity.
//  3. The locally stored credential record becomes a local identity.
//
// When every source comes up empty, ErrUnauthenticated is returned and the
// caller must treat the user as signed out. Provider outages and malformed
// local records are degraded, not fatal.
func (r *Resolver) Resolve(ctx context.Context, artifact string) (*Identity, error) {
	if artifact != "" && r.provider != nil {
		if _, err := r.provider.ExchangeAuthorizationArtifact(ctx, artifact); err != nil {
			r.logger.Warn(ctx, "artifact exchange failed", "err", err)
		}
	}

	if r.provider != nil {
		user, err := r.provider.GetUser(ctx)
		if err != nil {
			r.logger.Warn(ctx, "identity provider unavailable", "err", err)
		} else if user != nil {
			return &Identity{OwnerKey: user.ID, RemoteID: user.ID}, nil
		}
	}

	if r.cache != nil {
		cred, err := r.cache.CurrentUser(ctx)
		if err != nil {
			r.logger.Warn(ctx, "local credential lookup failed", "err", err)
		} else if cred != nil {
			return &Identity{OwnerKey: cred.Username}, nil
		}
	}

	return nil, errs.ErrUnauthenticated
}

// SignOut ends the federated session (if any) and clears the local
// credential record.
func (r *Resolver) SignOut(ctx context.Context) error {
	if r.provider != nil {
		if err := r.provider.SignOut(ctx); err != nil {
			r.logger.Warn(ctx, "provider sign out failed", "err", err)
		}
	}
	if r.cache != nil {
		return r.cache.ClearCurrentUser(ctx)
	}
	return nil
}
