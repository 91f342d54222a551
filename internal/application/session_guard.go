package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/codex-platform/codex-cli/internal/ports"
)

// SessionGuard is the session store handed to the gateway. Clearing it also
// drops the transport's cookies so a dead session leaves nothing behind.
type SessionGuard struct {
	sessions    ports.SessionStore
	credentials ports.Credentials
}

var _ ports.SessionStore = (*SessionGuard)(nil)

func NewSessionGuard(sessions ports.SessionStore, credentials ports.Credentials) *SessionGuard {
	return &SessionGuard{sessions: sessions, credentials: credentials}
}

func (g *SessionGuard) Role(ctx context.Context) (domain.Role, error) {
	return g.sessions.Role(ctx)
}

func (g *SessionGuard) Load(ctx context.Context) (domain.Session, error) {
	return g.sessions.Load(ctx)
}

func (g *SessionGuard) Save(ctx context.Context, session domain.Session) error {
	return g.sessions.Save(ctx, session)
}

func (g *SessionGuard) Clear(ctx context.Context) error {
	var errs []error
	if err := g.sessions.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear session: %w", err))
	}
	if g.credentials != nil {
		if err := g.credentials.ForgetCredentials(ctx); err != nil {
			errs = append(errs, fmt.Errorf("forget credentials: %w", err))
		}
	}

	return errors.Join(errs...)
}
