package ebina

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy selects what [Boundary.Run] does with the original
// operation after a successful recovery.
type RetryPolicy uint8

const (
	// RetryOnce replays the failed operation exactly once with the new
	// token. Default.
	RetryOnce RetryPolicy = iota
	// RetryNever installs the new token but returns
	// [ErrReauthenticated]; the caller re-triggers the operation itself.
	RetryNever
)

// EventsConfig controls the asynchronous session event dispatcher.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process client metrics.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Config carries all client settings. Configure before [Builder.Build];
// treat as immutable afterwards.
type Config struct {
	// BaseURL is the root of the Ebina management API, e.g.
	// "https://ebina.example.com". Required.
	BaseURL string

	// HTTPClient performs the actual requests. Defaults to an
	// http.Client with a 30s timeout. Transport-level timeouts are the
	// only timeouts this layer applies; ceremony timeouts belong to the
	// authenticator.
	HTTPClient *http.Client

	// Logger receives structured client logs. Defaults to zap.NewNop.
	Logger *zap.Logger

	// ReauthRetry decides whether a boundary replays the operation that
	// triggered recovery.
	ReauthRetry RetryPolicy

	// PasswordAttemptLimit bounds re-prompting on invalid passwords
	// during recovery before the attempt turns terminal.
	PasswordAttemptLimit int

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	Events  EventsConfig
	Metrics MetricsConfig
}

func defaultConfig() Config {
	return Config{
		HTTPClient:           &http.Client{Timeout: 30 * time.Second},
		ReauthRetry:          RetryOnce,
		PasswordAttemptLimit: 3,
		Events:               EventsConfig{BufferSize: 64},
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.PasswordAttemptLimit <= 0 {
		cfg.PasswordAttemptLimit = 3
	}
	if cfg.Events.BufferSize <= 0 {
		cfg.Events.BufferSize = 64
	}
	return cfg
}
