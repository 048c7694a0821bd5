package energiapro

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

const (
	// Tokens expire after 60 minutes. They are refreshed after 55 to avoid
	// a token expiring mid-request.
	tokenTTL = 55 * time.Minute

	// bcrypt cost mandated by the API for the one-time secret key.
	oneTimeKeyCost = 11
)

// Token is a short-lived bearer credential obtained via a login exchange.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be attached to a request.
func (t Token) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// TokenManager owns the authentication lifecycle: it exchanges the
// long-lived credentials for a short-lived token, caches it, and refreshes
// it on expiry or when the client reports a rejection.
//
// Concurrent callers share a single refresh: the first performs the login
// exchange, the others wait for its result.
type TokenManager struct {
	username  string
	secretKey string
	transport *transport
	log       *zap.Logger

	mu     sync.Mutex
	cached Token

	group singleflight.Group

	// now is swapped in tests to control expiry.
	now func() time.Time
}

func newTokenManager(username, secretKey string, tr *transport, log *zap.Logger) *TokenManager {
	return &TokenManager{
		username:  username,
		secretKey: secretKey,
		transport: tr,
		log:       log,
		now:       time.Now,
	}
}

// Obtain returns a valid token value, from the cache when possible and via
// a single login exchange otherwise.
func (m *TokenManager) Obtain(ctx context.Context) (string, error) {
	if value, ok := m.fromCache(); ok {
		return value, nil
	}

	value, err, _ := m.group.Do("token", func() (any, error) {
		// Another caller may have refreshed while we waited for the gate.
		if value, ok := m.fromCache(); ok {
			return value, nil
		}

		token, err := m.authenticate(ctx)
		if err != nil {
			return "", err
		}

		m.mu.Lock()
		m.cached = token
		m.mu.Unlock()

		m.log.Debug("obtained fresh token", zap.Time("expires_at", token.ExpiresAt))
		return token.Value, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Invalidate drops the cached token so the next Obtain performs a login
// exchange. Called when the API rejects the current token.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.cached = Token{}
	m.mu.Unlock()
}

func (m *TokenManager) fromCache() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached.Valid(m.now()) {
		return m.cached.Value, true
	}
	return "", false
}

// authenticate exchanges the credentials for a fresh token. The secret key
// is never sent raw: the API expects a bcrypt hash of it, usable once.
func (m *TokenManager) authenticate(ctx context.Context) (Token, error) {
	oneTimeKey, err := bcrypt.GenerateFromPassword([]byte(m.secretKey), oneTimeKeyCost)
	if err != nil {
		return Token{}, &AuthError{Reason: AuthInvalidCredentials, Err: err}
	}

	form := url.Values{}
	form.Set("username", m.username)
	form.Set("secret_key", string(oneTimeKey))

	payload, err := m.transport.postForm(ctx, authEndpoint, form, "")
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return Token{}, err
		case errors.Is(err, ErrTokenRejected):
			// A 401 on the login exchange itself means the credentials
			// were refused, not the token.
			return Token{}, &AuthError{Reason: AuthInvalidCredentials, Err: err}
		}
		return Token{}, &AuthError{Reason: AuthNetworkFailure, Err: err}
	}

	if apiErr := apiErrorFromPayload(payload); apiErr != nil {
		if apiErr.IsCredentialError() {
			return Token{}, &AuthError{Reason: AuthInvalidCredentials, Err: apiErr}
		}
		return Token{}, apiErr
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Token == "" {
		return Token{}, &AuthError{Reason: AuthMissingToken, Err: err}
	}

	return Token{Value: body.Token, ExpiresAt: m.now().Add(tokenTTL)}, nil
}
