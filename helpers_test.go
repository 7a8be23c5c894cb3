package ebina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nozomi-hiragi/ebina-go/store"
)

const testSigningSecret = "test-secret"

func signToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()

	claims := tokenClaims{
		Name: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningSecret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

// fakeAuthenticator answers ceremonies with canned results or errors and
// records the options it saw.
type fakeAuthenticator struct {
	mu         sync.Mutex
	getErr     error
	createErr  error
	getCalls   []PublicKeyRequestOptions
	createCalls []PublicKeyCreationOptions
}

func (f *fakeAuthenticator) Get(_ context.Context, options PublicKeyRequestOptions) (*AssertionResult, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, options)
	f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	return &AssertionResult{ID: "cred-1", RawID: "cred-1", Type: "public-key"}, nil
}

func (f *fakeAuthenticator) Create(_ context.Context, options PublicKeyCreationOptions) (*AttestationResult, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, options)
	f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	return &AttestationResult{ID: "cred-new", RawID: "cred-new", Type: "public-key"}, nil
}

func (f *fakeAuthenticator) getCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.getCalls)
}

// fakePrompter feeds queued passwords and codes.
type fakePrompter struct {
	mu        sync.Mutex
	passwords []string
	codes     []string
	passErr   error
	prompts   int
}

func (f *fakePrompter) Password(context.Context, string, int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts++
	if f.passErr != nil {
		return "", f.passErr
	}
	if len(f.passwords) == 0 {
		return "", ErrPromptDismissed
	}
	secret := f.passwords[0]
	f.passwords = f.passwords[1:]
	return secret, nil
}

func (f *fakePrompter) Code(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.codes) == 0 {
		return "", ErrPromptDismissed
	}
	code := f.codes[0]
	f.codes = f.codes[1:]
	return code, nil
}

// gatedPrompter answers with a fixed secret once released, letting tests
// hold a recovery episode open.
type gatedPrompter struct {
	release chan struct{}
	secret  string
}

func (g *gatedPrompter) Password(ctx context.Context, _ string, _ int) (string, error) {
	select {
	case <-g.release:
		return g.secret, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *gatedPrompter) Code(context.Context, string) (string, error) {
	return "", ErrPromptDismissed
}

func (f *fakePrompter) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts
}

// pathCounter counts requests per path behind a mutex so concurrent
// tests can assert call counts.
type pathCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newPathCounter() *pathCounter {
	return &pathCounter{counts: map[string]int{}}
}

func (p *pathCounter) inc(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[path]++
}

func (p *pathCounter) get(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[path]
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response failed: %v", err)
	}
}

type clientOption func(*Builder)

func withAuthenticator(a Authenticator) clientOption {
	return func(b *Builder) { b.WithAuthenticator(a) }
}

func withPrompter(p Prompter) clientOption {
	return func(b *Builder) { b.WithPrompter(p) }
}

func withStore(st store.Store) clientOption {
	return func(b *Builder) { b.WithStore(st) }
}

func withConfigTweak(fn func(*Config)) clientOption {
	return func(b *Builder) {
		cfg := b.config
		fn(&cfg)
		b.config = cfg
	}
}

func newTestClient(t *testing.T, handler http.Handler, opts ...clientOption) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := defaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Metrics.Enabled = true

	builder := New().WithConfig(cfg)
	for _, opt := range opts {
		opt(builder)
	}

	client, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	return client, srv
}

// seedToken installs a token directly, bypassing login.
func seedToken(t *testing.T, c *Client, token string) {
	t.Helper()
	if err := c.tokens.Set(context.Background(), token); err != nil {
		t.Fatalf("seed token failed: %v", err)
	}
}
