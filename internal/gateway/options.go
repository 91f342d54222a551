package gateway

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRefreshTimeout = 10 * time.Second
	clearTimeout          = 5 * time.Second
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithRefreshLock shares lock between gateways that talk to the same session.
func WithRefreshLock(lock *RefreshLock) Option {
	return func(g *Gateway) {
		if lock != nil {
			g.lock = lock
		}
	}
}

// WithRefreshTimeout bounds the refresh call. A timed-out refresh counts as failed.
// Zero or negative disables the bound.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.refreshTimeout = timeout
	}
}

// WithRetryAfterFailedRefresh makes callers that waited on a failed refresh
// still re-issue their request once instead of returning their own 401.
func WithRetryAfterFailedRefresh(retry bool) Option {
	return func(g *Gateway) {
		g.retryAfterFailedRefresh = retry
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(g *Gateway) {
		if metrics != nil {
			g.metrics = metrics
		}
	}
}

func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(g *Gateway) {
		if provider != nil {
			g.tracer = provider.Tracer(tracerName)
		}
	}
}
