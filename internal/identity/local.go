package identity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/subtrack/internal/cache"
	"github.com/dmitrijs2005/subtrack/internal/errs"
)

// Argon2id parameters for the local credential verifier.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	saltLen = 32
)

func deriveVerifier(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// WipeBytes overwrites a sensitive byte slice with zeros. Callers wipe
// passwords as soon as the verifier is derived.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// RegisterLocal creates a local credential record: a fresh salt and an
// argon2id verifier derived from the password. The record doubles as the
// "current user" marker for the local identity path.
func RegisterLocal(ctx context.Context, store *cache.Store, username string, password []byte) error {
	if username == "" {
		return fmt.Errorf("register: username is empty")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	cred := &cache.Credential{
		Username: username,
		Salt:     salt,
		Verifier: deriveVerifier(password, salt),
	}
	if err := store.SetCurrentUser(ctx, cred); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// LoginLocal verifies the password against the stored credential record in
// constant time. Missing or malformed records yield ErrUnauthenticated,
// wrong passwords ErrUnauthorized.
func LoginLocal(ctx context.Context, store *cache.Store, username string, password []byte) error {
	cred, err := store.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if cred == nil || cred.Username != username {
		return errs.ErrUnauthenticated
	}

	candidate := deriveVerifier(password, cred.Salt)
	if subtle.ConstantTimeCompare(cred.Verifier, candidate) == 0 {
		return errs.ErrUnauthorized
	}
	return nil
}
