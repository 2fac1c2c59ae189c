// Package session keeps the authentication token of the current user.
//
// The token is an opaque string written at login, read whenever a request is
// built or a guarded route is entered, and removed at logout. No expiry is
// tracked here; an invalid token is only discovered when the backend rejects
// a request.
//
// An empty token is never stored and is reported as absent.
package session

import (
	"context"
	"errors"
)

const (
	keyToken = "token"
	keyEmail = "email"
)

// ErrEmptyToken is returned by Set when asked to store "".
var ErrEmptyToken = errors.New("empty session token")

// Store is a durable slot for the session token.
type Store interface {
	// Get returns the stored token and whether one is present.
	Get(ctx context.Context) (string, bool, error)
	// Set stores token, replacing any previous one.
	Set(ctx context.Context, token string) error
	// SetEmail records the email the token was issued for.
	SetEmail(ctx context.Context, email string) error
	// Email returns the email saved with the token, or "".
	Email(ctx context.Context) (string, error)
	// Clear removes the token and the email.
	Clear(ctx context.Context) error
}

// atomicSaver is implemented by stores that write both values at once.
type atomicSaver interface {
	Save(ctx context.Context, token, email string) error
}

// Save stores token and the email it was issued for. If the email cannot
// be written the token is removed again.
func Save(ctx context.Context, s Store, token, email string) error {
	if as, ok := s.(atomicSaver); ok {
		return as.Save(ctx, token, email)
	}
	if err := s.Set(ctx, token); err != nil {
		return err
	}
	if err := s.SetEmail(ctx, email); err != nil {
		return errors.Join(err, s.Clear(ctx))
	}
	return nil
}

// Present reports whether s currently holds a token. Read errors count as
// absent.
func Present(ctx context.Context, s Store) bool {
	_, ok, err := s.Get(ctx)
	return err == nil && ok
}
