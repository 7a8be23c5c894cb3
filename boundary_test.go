package ebina

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/nozomi-hiragi/ebina-go/internal/metrics"
	"go.uber.org/zap"
)

func newTestBoundary(t *testing.T, handler http.Handler, policy RetryPolicy, prompter Prompter) (*Boundary, *TokenState) {
	t.Helper()

	r, tokens := newTestReauth(t, handler, nil, prompter)
	return &Boundary{
		reauth:  r,
		policy:  policy,
		logger:  zap.NewNop(),
		metrics: r.metrics,
	}, tokens
}

// passwordRecoveryHandler serves a minimal recovery flow: method lookup
// answers Password, login answers a fresh token.
func passwordRecoveryHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case pathLoginOptions:
			writeJSON(t, w, http.StatusOK, map[string]any{"type": "Password"})
		case pathLoginPassword:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(signToken(t, "alice", time.Hour)))
		default:
			t.Errorf("unexpected path %q", req.URL.Path)
		}
	})
}

func TestBoundaryPassesThroughSuccess(t *testing.T) {
	b, _ := newTestBoundary(t, passwordRecoveryHandler(t), RetryOnce, nil)

	calls := 0
	err := b.Run(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("fn calls = %d, want 1", calls)
	}
}

// Business failures never trigger recovery.
func TestBoundaryPassesThroughOtherErrors(t *testing.T) {
	b, _ := newTestBoundary(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		t.Error("recovery should not run for a business error")
	}), RetryOnce, nil)

	sentinel := errors.New("conflict")
	calls := 0
	err := b.Run(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Run = %v, want business error unchanged", err)
	}
	if calls != 1 {
		t.Errorf("fn calls = %d, want 1", calls)
	}
}

func TestBoundaryRetryOnceReplays(t *testing.T) {
	prompter := &fakePrompter{passwords: []string{"hunter2"}}
	b, tokens := newTestBoundary(t, passwordRecoveryHandler(t), RetryOnce, prompter)
	seedTokenState(t, tokens)

	calls := 0
	err := b.Run(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return ErrAuthRequired
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("fn calls = %d, want replay exactly once", calls)
	}
	if b.metrics.Value(metrics.MetricRetryReplayed) != 1 {
		t.Error("replay counter should increment")
	}
}

// A second auth failure from the replay surfaces instead of looping.
func TestBoundaryRetryOnceDoesNotLoop(t *testing.T) {
	prompter := &fakePrompter{passwords: []string{"p1", "p2", "p3", "p4"}}
	b, tokens := newTestBoundary(t, passwordRecoveryHandler(t), RetryOnce, prompter)
	seedTokenState(t, tokens)

	calls := 0
	err := b.Run(context.Background(), func(context.Context) error {
		calls++
		return ErrAuthRequired
	})
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("Run = %v, want ErrAuthRequired from replay", err)
	}
	if calls != 2 {
		t.Errorf("fn calls = %d, want 2", calls)
	}
}

func TestBoundaryRetryNever(t *testing.T) {
	prompter := &fakePrompter{passwords: []string{"hunter2"}}
	b, tokens := newTestBoundary(t, passwordRecoveryHandler(t), RetryNever, prompter)
	seedTokenState(t, tokens)

	calls := 0
	err := b.Run(context.Background(), func(context.Context) error {
		calls++
		return ErrAuthRequired
	})
	if !errors.Is(err, ErrReauthenticated) {
		t.Fatalf("Run = %v, want ErrReauthenticated", err)
	}
	if calls != 1 {
		t.Errorf("fn calls = %d, want no replay", calls)
	}

	// The new token is installed even though nothing was replayed.
	if _, ok := tokens.Get(); !ok {
		t.Error("token should be installed after recovery")
	}
}

func TestBoundaryTerminalFailure(t *testing.T) {
	b, tokens := newTestBoundary(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), RetryOnce, nil)
	seedTokenState(t, tokens)

	calls := 0
	err := b.Run(context.Background(), func(context.Context) error {
		calls++
		return ErrAuthRequired
	})
	if !errors.Is(err, ErrSessionTerminated) {
		t.Fatalf("Run = %v, want ErrSessionTerminated", err)
	}
	if calls != 1 {
		t.Errorf("fn calls = %d, want no replay after terminal failure", calls)
	}
	if _, ok := tokens.Get(); ok {
		t.Error("token should be cleared after terminal failure")
	}
}
