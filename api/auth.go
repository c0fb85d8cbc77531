package api

import (
	"context"
	"sync"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/pkg/errors"
)

const (
	defaultTokenLifetime = 4*time.Minute + 30*time.Second
	tokenExpiryMargin    = 30 * time.Second
)

// KeycloakTokens logs in with client credentials and caches the access
// token until shortly before it expires.
type KeycloakTokens struct {
	keycloak *gocloak.GoCloak
	clientId string
	secret   string
	realm    string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

func NewKeycloakTokens(keycloak *gocloak.GoCloak, clientId, secret, realm string) *KeycloakTokens {
	return &KeycloakTokens{
		keycloak: keycloak,
		clientId: clientId,
		secret:   secret,
		realm:    realm,
		now:      time.Now,
	}
}

func (h *KeycloakTokens) Token(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.token != "" && h.now().Before(h.expiresAt) {
		return h.token, nil
	}
	if err := h.refreshApiToken(ctx); err != nil {
		return "", err
	}
	return h.token, nil
}

func (h *KeycloakTokens) refreshApiToken(ctx context.Context) error {
	res, err := h.keycloak.LoginClient(ctx, h.clientId, h.secret, h.realm)
	if err != nil {
		return errors.Wrap(err, "refresh api token")
	}
	if res.AccessToken == "" {
		return errors.New("refresh api token: access token is empty")
	}

	lifetime := defaultTokenLifetime
	if res.ExpiresIn > 0 {
		lifetime = time.Duration(res.ExpiresIn)*time.Second - tokenExpiryMargin
	}
	h.token = res.AccessToken
	h.expiresAt = h.now().Add(lifetime)

	return nil
}
