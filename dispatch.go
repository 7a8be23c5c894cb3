package ebina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nozomi-hiragi/ebina-go/internal/metrics"
	"go.uber.org/zap"
)

// Response is a fully-read server response. The dispatcher never returns
// an unauthorized response as a Response; that case surfaces as
// [ErrAuthRequired] instead.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Text returns the body as trimmed text; token endpoints answer in plain
// text rather than JSON.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Body))
}

type dispatcher struct {
	base    *url.URL
	http    *http.Client
	tokens  *TokenState
	logger  *zap.Logger
	metrics *metrics.Metrics
	ua      string
}

// do sends an authenticated request: the current token (if any) rides in
// the Authorization header, and a 401 is converted to ErrAuthRequired
// without ever reaching the caller as a response. Every other status —
// 4xx and 5xx included — is returned for caller-specific interpretation;
// the dispatcher does not retry and does not interpret business errors.
func (d *dispatcher) do(ctx context.Context, method, path string, body any) (*Response, error) {
	token, _ := d.tokens.Get()
	resp, err := d.send(ctx, method, path, body, token)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized {
		d.metrics.Inc(metrics.MetricUnauthorized)
		d.logger.Debug("unauthorized response, raising auth-required",
			zap.String("method", method), zap.String("path", path))
		return nil, ErrAuthRequired
	}
	return resp, nil
}

// public sends an unauthenticated request. Login and ceremony endpoints
// use it; a 401 here is an ordinary response (wrong credential), not an
// auth-required signal.
func (d *dispatcher) public(ctx context.Context, method, path string, body any) (*Response, error) {
	return d.send(ctx, method, path, body, "")
}

func (d *dispatcher) send(ctx context.Context, method, path string, body any, token string) (*Response, error) {
	target := d.base.JoinPath(path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if d.ua != "" {
		req.Header.Set("User-Agent", d.ua)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	d.metrics.Inc(metrics.MetricDispatch)
	start := time.Now()

	httpResp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	d.metrics.Observe(time.Since(start))

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   data,
	}, nil
}
