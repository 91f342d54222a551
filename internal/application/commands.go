package application

import "github.com/codex-platform/codex-cli/internal/domain"

type LoginCommand struct {
	Role     domain.Role
	Email    string
	Password string
}

type SetUserBlockedCommand struct {
	ID      domain.UserID
	Blocked bool
}
