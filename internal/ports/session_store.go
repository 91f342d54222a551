package ports

import (
	"context"

	"github.com/codex-platform/codex-cli/internal/domain"
)

type SessionStore interface {
	// Role returns the current session role, or "" when no session is held.
	Role(ctx context.Context) (domain.Role, error)
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}
