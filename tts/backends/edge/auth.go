package edge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/feuyeux/hello-tts-go/tts"
)

const (
	// tokenTTL is the provider-defined token lifetime.
	tokenTTL = 9 * time.Minute

	// tokenRefreshMargin refreshes tokens this close to expiry so a token
	// is never handed out about to die mid-connection.
	tokenRefreshMargin = time.Minute

	// maxTokenBody bounds the auth response read.
	maxTokenBody = 64 << 10
)

// TokenProvider fetches and caches the short-lived bearer token the
// synthesis endpoint requires. Concurrent callers never trigger duplicate
// refreshes: one in-flight refresh serves them all.
type TokenProvider struct {
	endpoint string
	client   *http.Client
	now      func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenProvider creates a provider against the given auth endpoint. An
// empty endpoint selects the Edge consumer endpoint; a nil client gets a
// default with the given timeout.
func NewTokenProvider(endpoint string, client *http.Client, timeout time.Duration) *TokenProvider {
	if endpoint == "" {
		endpoint = authEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &TokenProvider{
		endpoint: endpoint,
		client:   client,
		now:      time.Now,
	}
}

// Token returns a valid bearer token, refreshing it when the cached one is
// missing or within the safety margin of expiry.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.token != "" && p.now().Add(tokenRefreshMargin).Before(p.expiresAt) {
		token := p.token
		p.mu.Unlock()
		return token, nil
	}
	p.mu.Unlock()

	v, err, _ := p.group.Do("token", func() (interface{}, error) {
		// Another flight may have refreshed while this caller waited for
		// the lock above.
		p.mu.Lock()
		if p.token != "" && p.now().Add(tokenRefreshMargin).Before(p.expiresAt) {
			token := p.token
			p.mu.Unlock()
			return token, nil
		}
		p.mu.Unlock()
		return p.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refresh performs the HTTP token exchange and caches the result.
func (p *TokenProvider) refresh(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return "", tts.NewError(tts.KindAuth, "fetch token", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", tts.NewError(tts.KindNetwork, "fetch token", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBody))
	if err != nil {
		return "", tts.NewError(tts.KindNetwork, "fetch token", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", tts.NewError(tts.KindAuth, "fetch token",
			fmt.Errorf("%w: status %d: %s", tts.ErrTokenRejected, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", tts.NewError(tts.KindAuth, "fetch token",
			fmt.Errorf("%w: empty response body", tts.ErrTokenRejected))
	}

	p.mu.Lock()
	p.token = token
	p.expiresAt = p.now().Add(tokenTTL)
	p.mu.Unlock()

	log.Debug("Bearer token refreshed", "expiresIn", tokenTTL)
	return token, nil
}

// SetClock overrides the provider's time source. Intended for tests.
func (p *TokenProvider) SetClock(now func() time.Time) {
	p.mu.Lock()
	p.now = now
	p.mu.Unlock()
}
