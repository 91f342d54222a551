package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// refreshPaths is the closed set of roles the backend can refresh credentials for.
var refreshPaths = map[Role]string{
	RoleAdmin: "/ADMIN/auth/refresh-token",
	RoleUser:  "/USER/auth/refresh-token",
}

func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}

	return role, nil
}

func (r Role) Valid() bool {
	_, ok := refreshPaths[r]
	return ok
}

// RefreshPath returns the role-namespaced refresh endpoint. ok is false for
// roles outside the closed set, including the empty role.
func (r Role) RefreshPath() (path string, ok bool) {
	path, ok = refreshPaths[r]
	return path, ok
}

// Namespace is the leading path segment the backend uses for this role's
// endpoints, e.g. "/USER".
func (r Role) Namespace() string {
	return "/" + string(r)
}
