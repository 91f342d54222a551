package application

import (
	"time"

	"github.com/codex-platform/codex-cli/internal/domain"
)

// Identity is what the CLI knows about the signed-in user without asking the
// backend.
type Identity struct {
	Session domain.Session
	// AccessTokenExpiresAt is zero when the access token is absent or carries
	// no exp claim.
	AccessTokenExpiresAt time.Time
	AccessTokenExpired   bool
}

type Dashboard struct {
	Metrics domain.DashboardMetrics
	Users   domain.UserPage
}
