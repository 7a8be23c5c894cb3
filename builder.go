package ebina

import (
	"context"
	"errors"
	"net/url"

	"github.com/nozomi-hiragi/ebina-go/internal/events"
	"github.com/nozomi-hiragi/ebina-go/internal/metrics"
	"github.com/nozomi-hiragi/ebina-go/store"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Client]. Construction is allocation-only until
// Build, which validates the configuration and hydrates the token from
// the persistent store.
type Builder struct {
	config        Config
	store         store.Store
	authenticator Authenticator
	prompter      Prompter
	sink          EventSink
	built         bool
}

// New creates a Builder with defaults.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the session persistence backend. Defaults to an
// in-memory store that does not survive restarts.
func (b *Builder) WithStore(st store.Store) *Builder {
	b.store = st
	return b
}

// WithRedis is a convenience for WithStore(store.NewRedisStore(...))
// with the default namespace and no TTL.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.store = store.NewRedisStore(client, "", 0)
	return b
}

// WithAuthenticator sets the platform WebAuthn authenticator. Without
// one, WebAuthn ceremonies fail locally as [ErrAuthenticator].
func (b *Builder) WithAuthenticator(a Authenticator) *Builder {
	b.authenticator = a
	return b
}

// WithPrompter sets the credential prompter for password and one-time
// code entry.
func (b *Builder) WithPrompter(p Prompter) *Builder {
	b.prompter = p
	return b
}

// WithEventSink sets the sink that receives session lifecycle events.
// Takes effect only when Config.Events.Enabled is true.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// Build validates the configuration, hydrates the last-known token from
// the store, and returns a ready Client. A Builder builds once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := normalizeConfig(b.config)

	if cfg.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.New("BaseURL must be an absolute URL")
	}

	if b.store == nil {
		b.store = store.NewMemoryStore()
	}

	m := metrics.New(metrics.Config{
		Enabled:       cfg.Metrics.Enabled,
		EnableLatency: cfg.Metrics.EnableLatencyHistograms,
	})
	ev := events.NewDispatcher(events.Config{
		Enabled:    cfg.Events.Enabled,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
	}, b.sink)

	tokens := newTokenState(b.store, cfg.Logger)
	if err := tokens.hydrate(context.Background()); err != nil {
		ev.Close()
		return nil, err
	}

	dispatch := &dispatcher{
		base:    base,
		http:    cfg.HTTPClient,
		tokens:  tokens,
		logger:  cfg.Logger,
		metrics: m,
		ua:      cfg.UserAgent,
	}
	cer := &ceremonies{
		dispatch:      dispatch,
		authenticator: b.authenticator,
		prompter:      b.prompter,
		logger:        cfg.Logger,
		metrics:       m,
	}
	reauth := &reauthenticator{
		tokens:     tokens,
		ceremonies: cer,
		prompter:   b.prompter,
		attempts:   cfg.PasswordAttemptLimit,
		logger:     cfg.Logger,
		metrics:    m,
		events:     ev,
	}
	boundary := &Boundary{
		reauth:  reauth,
		policy:  cfg.ReauthRetry,
		logger:  cfg.Logger,
		metrics: m,
	}

	return &Client{
		config:     cfg,
		tokens:     tokens,
		dispatch:   dispatch,
		ceremonies: cer,
		reauth:     reauth,
		boundary:   boundary,
		metrics:    m,
		events:     ev,
		logger:     cfg.Logger,
	}, nil
}
