package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/groblegark/knotes/internal/model"
)

// HTTPAuthenticator verifies tokens against a remote identity service.
// It POSTs the token to <baseURL>/v1/verify and expects {"id": ..., "role": ...}
// on success.
type HTTPAuthenticator struct {
	baseURL    string
	httpClient *http.Client
}

var _ Authenticator = (*HTTPAuthenticator)(nil)

// NewHTTPAuthenticator creates an authenticator targeting the given base URL
// (e.g. "http://identity.internal:8080").
func NewHTTPAuthenticator(baseURL string) *HTTPAuthenticator {
	return &HTTPAuthenticator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Authenticate implements Authenticator. 401/403 from the service means the
// token is bad; connection failures and 5xx answers mean no decision could
// be made and surface as ErrUnavailable.
func (a *HTTPAuthenticator) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, ErrUnauthenticated
	}

	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return model.Identity{}, fmt.Errorf("encoding verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/verify", bytes.NewReader(body))
	if err != nil {
		return model.Identity{}, fmt.Errorf("building verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var id model.Identity
		if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
			return model.Identity{}, fmt.Errorf("%w: decoding verify response: %v", ErrUnavailable, err)
		}
		if id.ID == "" || !id.Role.IsValid() {
			return model.Identity{}, fmt.Errorf("%w: malformed identity in verify response", ErrUnavailable)
		}
		return id, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.Identity{}, ErrUnauthenticated
	default:
		return model.Identity{}, fmt.Errorf("%w: verify returned status %d", ErrUnavailable, resp.StatusCode)
	}
}
