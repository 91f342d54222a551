package domain

import "time"

type UserID string

// Session is the caller's authentication state as known to this client.
type Session struct {
	Role          Role
	Authenticated bool
	UserID        UserID
	Email         string
	Name          string
	UpdatedAt     time.Time
}

func (s Session) IsZero() bool {
	return s == Session{}
}

// Active reports whether the session carries a role the backend can refresh.
func (s Session) Active() bool {
	return s.Authenticated && s.Role.Valid()
}
