// Package httpx sends gateway requests over HTTP. Credentials live in a cookie
// jar that is restored from and saved to a secret store so a session survives
// between CLI invocations.
package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/codex-platform/codex-cli/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"
)

const (
	RequestIDHeader = "X-Request-ID"

	// CookieSecretKey is where the cookie snapshot is kept in the secret store.
	CookieSecretKey = "codex-cli/session/cookies"

	maxResponseBytes = 8 << 20
	defaultTimeout   = 30 * time.Second
)

var errEmptyPath = errors.New("request path is required")

type Transport struct {
	baseURL    *url.URL
	client     *http.Client
	secrets    ports.SecretStore
	logger     zerolog.Logger
	newID      func() string
	now        func() time.Time
	propagator propagation.TextMapPropagator

	// saveMu orders snapshot writes: a snapshot is built and persisted under
	// it, so the stored snapshot is always the newest one.
	saveMu sync.Mutex

	mu       sync.Mutex
	jar      *cookiejar.Jar
	known    map[cookieKey]cookieRecord
	restored bool
	// generation is bumped by ForgetCredentials; cookies from responses to
	// requests sent under an older generation are discarded.
	generation uint64
}

var _ ports.Transport = (*Transport)(nil)

type Option func(*Transport)

// WithHTTPClient replaces the underlying client. Its Jar is ignored; cookies
// are managed by the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		if client != nil {
			t.client = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		if timeout > 0 {
			t.client = &http.Client{Transport: t.client.Transport, Timeout: timeout}
		}
	}
}

// WithCookieStore persists the cookie jar in store after every response that
// sets cookies.
func WithCookieStore(store ports.SecretStore) Option {
	return func(t *Transport) {
		t.secrets = store
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

func WithRequestIDs(newID func() string) Option {
	return func(t *Transport) {
		if newID != nil {
			t.newID = newID
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Transport) {
		if now != nil {
			t.now = now
		}
	}
}

// WithPropagator sets how the span in a request context is written into
// request headers. The default is W3C trace context.
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(t *Transport) {
		if propagator != nil {
			t.propagator = propagator
		}
	}
}

func New(baseURL string, opts ...Option) (*Transport, error) {
	parsed, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	jar, err := newJar()
	if err != nil {
		return nil, err
	}

	t := &Transport{
		baseURL:    parsed,
		client:     &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
		newID:      uuid.NewString,
		now:        time.Now,
		propagator: propagation.TraceContext{},
		jar:        jar,
		known:      map[cookieKey]cookieRecord{},
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

func (t *Transport) Send(ctx context.Context, req *ports.Request) (*ports.Response, error) {
	if req == nil || req.Path == "" {
		return nil, errEmptyPath
	}

	jar, generation, err := t.cookieJar(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := t.endpoint(req)
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, req.Path, err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	requestID := httpReq.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = t.newID()
		httpReq.Header.Set(RequestIDHeader, requestID)
	}
	t.propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	for _, cookie := range jar.Cookies(endpoint) {
		httpReq.AddCookie(cookie)
	}

	started := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, req.Path, err)
	}

	event := t.logger.Debug()
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		event = event.Str("trace_id", spanCtx.TraceID().String())
	}
	event.
		Str("method", method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("elapsed", time.Since(started)).
		Msg("api request")

	if cookies := resp.Cookies(); len(cookies) > 0 {
		if err := t.storeCookies(ctx, generation, jar, endpoint, cookies); err != nil {
			t.logger.Warn().Err(err).Msg("persist session cookies")
		}
	}

	return &ports.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// ForgetCredentials drops every cookie in memory and in the secret store.
func (t *Transport) ForgetCredentials(ctx context.Context) error {
	jar, err := newJar()
	if err != nil {
		return err
	}

	t.saveMu.Lock()
	defer t.saveMu.Unlock()

	t.mu.Lock()
	t.jar = jar
	t.known = map[cookieKey]cookieRecord{}
	t.restored = true
	t.generation++
	t.mu.Unlock()

	if t.secrets == nil {
		return nil
	}
	if err := t.secrets.Delete(ctx, CookieSecretKey); err != nil {
		return fmt.Errorf("delete session cookies: %w", err)
	}

	return nil
}

// HasCredentials reports whether any unexpired cookie is held for the API.
func (t *Transport) HasCredentials(ctx context.Context) (bool, error) {
	if _, _, err := t.cookieJar(ctx); err != nil {
		return false, err
	}

	return len(t.snapshot().Cookies) > 0, nil
}

// Cookie returns the value of the named unexpired cookie, if held.
func (t *Transport) Cookie(ctx context.Context, name string) (string, bool, error) {
	if _, _, err := t.cookieJar(ctx); err != nil {
		return "", false, err
	}

	for _, record := range t.snapshot().Cookies {
		if record.Name == name {
			return record.Value, true, nil
		}
	}

	return "", false, nil
}

func (t *Transport) cookieJar(ctx context.Context) (*cookiejar.Jar, uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.restored {
		if err := t.restoreCookies(ctx); err != nil {
			return nil, 0, err
		}
		t.restored = true
	}

	return t.jar, t.generation, nil
}

func (t *Transport) endpoint(req *ports.Request) *url.URL {
	endpoint := *t.baseURL
	endpoint.Path = strings.TrimRight(t.baseURL.Path, "/") + "/" + strings.TrimLeft(req.Path, "/")
	endpoint.RawPath = ""
	endpoint.RawQuery = req.Query.Encode()

	return &endpoint
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return jar, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("api base url is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return parsed, nil
}
