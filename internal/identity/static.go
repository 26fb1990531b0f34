package identity

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/groblegark/knotes/internal/model"
)

// StaticAuthenticator resolves tokens from a fixed in-memory table. Intended
// for development and single-tenant deployments without an identity service.
type StaticAuthenticator struct {
	tokens map[string]model.Identity
}

var _ Authenticator = (*StaticAuthenticator)(nil)

// NewStaticAuthenticator builds an authenticator from a token table.
func NewStaticAuthenticator(tokens map[string]model.Identity) *StaticAuthenticator {
	return &StaticAuthenticator{tokens: tokens}
}

// ParseStaticTokens parses the NOTES_AUTH_TOKENS format: comma-separated
// "token=id:role" entries, e.g. "s3cret=alice:member,topsecret=root:admin".
func ParseStaticTokens(spec string) (*StaticAuthenticator, error) {
	tokens := make(map[string]model.Identity)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		token, who, ok := strings.Cut(entry, "=")
		if !ok || token == "" {
			return nil, fmt.Errorf("invalid token entry %q (want token=id:role)", entry)
		}
		id, role, ok := strings.Cut(who, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid token entry %q (want token=id:role)", entry)
		}
		r := model.Role(role)
		if !r.IsValid() {
			return nil, fmt.Errorf("invalid role %q in token entry for %q", role, id)
		}
		tokens[token] = model.Identity{ID: id, Role: r}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no token entries in %q", spec)
	}
	return &StaticAuthenticator{tokens: tokens}, nil
}

// Authenticate implements Authenticator. Token comparison is constant-time
// per candidate entry.
func (a *StaticAuthenticator) Authenticate(_ context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, ErrUnauthenticated
	}
	for candidate, id := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			return id, nil
		}
	}
	return model.Identity{}, ErrUnauthenticated
}
