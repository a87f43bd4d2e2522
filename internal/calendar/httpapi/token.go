package httpapi

import (
	"fmt"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// tokenMinter issues short-lived HS256 service tokens for the calendar API
// and caches them until shortly before expiry.
type tokenMinter struct {
	appID  string
	secret []byte
	ttl    time.Duration

	mu      sync.Mutex
	cached  string
	expires time.Time
}

func newTokenMinter(appID, secret string, ttl time.Duration) *tokenMinter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &tokenMinter{appID: appID, secret: []byte(secret), ttl: ttl}
}

func (t *tokenMinter) bearer() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// Refresh one minute ahead of expiry so in-flight requests never carry
	// a token that lapses mid-call.
	if t.cached != "" && time.Until(t.expires) > time.Minute {
		return t.cached, nil
	}
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Issuer(t.appID).
		Audience([]string{"calendar-api"}).
		IssuedAt(now).
		Expiration(now.Add(t.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build service token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, t.secret))
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	t.cached = string(signed)
	t.expires = now.Add(t.ttl)
	return t.cached, nil
}
