// Package identity resolves bearer tokens to authenticated caller identities.
package identity

import (
	"context"
	"errors"

	"github.com/groblegark/knotes/internal/model"
)

// ErrUnauthenticated means the token is missing, malformed, or unknown.
// Transport layers map it to 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrUnavailable means the identity backend could not be reached or answered
// with a server error. Transport layers map it to 503; the caller's token may
// well be valid.
var ErrUnavailable = errors.New("identity service unavailable")

// Authenticator resolves a bearer token to an identity. Errors are
// distinguishable: ErrUnauthenticated for bad credentials, ErrUnavailable
// when no decision could be made.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Identity, error)
}
