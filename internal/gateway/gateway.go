// Package gateway executes API requests on behalf of the CLI and recovers from
// expired credentials.
//
// When a request is answered with 401 the first caller to notice becomes the
// refresher: it calls the role's refresh endpoint while every other caller that
// hits 401 in the meantime waits for that same result. After a successful
// refresh each caller re-issues its original request exactly once. After a
// failed refresh the local session is cleared and callers get their original
// 401 back.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/codex-platform/codex-cli/internal/ports"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/codex-platform/codex-cli/internal/gateway"

var (
	errNilTransport    = errors.New("gateway transport is nil")
	errNilSessionStore = errors.New("gateway session store is nil")
	errNilRequest      = errors.New("gateway request is nil")
)

type Gateway struct {
	transport ports.Transport
	sessions  ports.SessionStore
	lock      *RefreshLock

	refreshTimeout          time.Duration
	retryAfterFailedRefresh bool

	logger  zerolog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

var _ ports.Executor = (*Gateway)(nil)

func New(transport ports.Transport, sessions ports.SessionStore, opts ...Option) (*Gateway, error) {
	if transport == nil {
		return nil, errNilTransport
	}
	if sessions == nil {
		return nil, errNilSessionStore
	}

	g := &Gateway{
		transport:      transport,
		sessions:       sessions,
		lock:           NewRefreshLock(),
		refreshTimeout: defaultRefreshTimeout,
		logger:         zerolog.Nop(),
		metrics:        NewMetrics(nil),
		tracer:         otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Lock returns the refresh lock this gateway coordinates on.
func (g *Gateway) Lock() *RefreshLock {
	return g.lock
}

// Execute issues req and returns the backend's answer. A failed refresh or a
// failed retry is not an error: the caller receives the response it would
// have seen anyway. Errors are transport errors or ctx cancellation.
func (g *Gateway) Execute(ctx context.Context, req *ports.Request) (*ports.Response, error) {
	if req == nil {
		return nil, errNilRequest
	}

	ctx, span := g.tracer.Start(ctx, "gateway.Execute", trace.WithAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
	))
	defer span.End()

	g.metrics.requests.Inc()

	seen, err := g.lock.waitIdle(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := g.transport.Send(ctx, req)
	if err != nil || !resp.Unauthorized() {
		return resp, err
	}

	span.AddEvent("unauthorized")
	t := g.lock.acquire(seen)
	switch t.kind {
	case ticketRefresher:
		if !g.refresh(ctx, t.window) {
			return resp, nil
		}
		return g.retry(ctx, req)
	case ticketWaiter:
		g.metrics.waiters.Inc()
		g.logger.Debug().Str("path", req.Path).Msg("waiting for credential refresh")
		result, err := t.window.wait(ctx)
		if err != nil {
			return nil, err
		}
		return g.afterWindow(ctx, req, resp, result)
	default:
		return g.afterWindow(ctx, req, resp, t.result)
	}
}

func (g *Gateway) afterWindow(ctx context.Context, req *ports.Request, original *ports.Response, result outcome) (*ports.Response, error) {
	if result == outcomeRefreshed || g.retryAfterFailedRefresh {
		return g.retry(ctx, req)
	}

	g.logger.Debug().Str("path", req.Path).Msg("credential refresh failed, returning original response")
	return original, nil
}

func (g *Gateway) retry(ctx context.Context, req *ports.Request) (*ports.Response, error) {
	g.metrics.retries.Inc()
	g.logger.Debug().Str("method", req.Method).Str("path", req.Path).Msg("retrying request after credential refresh")

	return g.transport.Send(ctx, req.Clone())
}

// refresh runs one refresh window and always releases it. It is detached from
// the caller's cancellation so waiters are never stranded by a caller that
// gave up; refreshTimeout bounds it instead.
func (g *Gateway) refresh(ctx context.Context, w *window) bool {
	started := time.Now()
	result := outcomeFailed
	defer func() {
		g.lock.release(w, result)
		g.metrics.refreshDuration.Observe(time.Since(started).Seconds())
	}()

	ctx = context.WithoutCancel(ctx)
	if g.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.refreshTimeout)
		defer cancel()
	}

	ctx, span := g.tracer.Start(ctx, "gateway.refresh")
	defer span.End()

	role, err := g.sessions.Role(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("read session role for credential refresh")
		g.metrics.refreshes.WithLabelValues(refreshSkipped).Inc()
		g.clearSession(ctx)
		span.SetStatus(codes.Error, "session role unavailable")
		return false
	}

	path, ok := role.RefreshPath()
	if !ok {
		g.logger.Info().Str("role", string(role)).Msg("no refreshable session, clearing")
		g.metrics.refreshes.WithLabelValues(refreshSkipped).Inc()
		g.clearSession(ctx)
		span.SetStatus(codes.Error, "unrecognized role")
		return false
	}
	span.SetAttributes(attribute.String("codex.role", string(role)))

	g.logger.Debug().Str("role", string(role)).Str("path", path).Msg("refreshing credentials")
	resp, err := g.transport.Send(ctx, &ports.Request{Method: http.MethodPost, Path: path})
	if err != nil || !resp.Success() {
		event := g.logger.Warn().Str("role", string(role))
		if err != nil {
			event = event.Err(err)
		} else {
			event = event.Int("status", resp.StatusCode)
		}
		event.Msg("credential refresh failed, clearing session")

		g.metrics.refreshes.WithLabelValues(refreshFailure).Inc()
		g.clearSession(ctx)
		span.SetStatus(codes.Error, "refresh failed")
		return false
	}

	g.metrics.refreshes.WithLabelValues(refreshSuccess).Inc()
	g.logger.Debug().Str("role", string(role)).Msg("credentials refreshed")
	result = outcomeRefreshed
	return true
}

// clearSession runs on its own deadline: the refresh context may already be
// past its own when the refresh timed out.
func (g *Gateway) clearSession(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clearTimeout)
	defer cancel()

	g.metrics.sessionClears.Inc()
	if err := g.sessions.Clear(ctx); err != nil {
		g.logger.Error().Err(err).Msg("clear session")
	}
}
