package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    Role
		wantErr bool
	}{
		{name: "admin", raw: "ADMIN", want: RoleAdmin},
		{name: "user lower case", raw: "user", want: RoleUser},
		{name: "padded", raw: "  USER ", want: RoleUser},
		{name: "empty", raw: "", wantErr: true},
		{name: "unknown", raw: "MODERATOR", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRole(tc.raw)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoleRefreshPathIsClosed(t *testing.T) {
	t.Parallel()

	path, ok := RoleAdmin.RefreshPath()
	assert.True(t, ok)
	assert.Equal(t, "/ADMIN/auth/refresh-token", path)

	path, ok = RoleUser.RefreshPath()
	assert.True(t, ok)
	assert.Equal(t, "/USER/auth/refresh-token", path)

	for _, role := range []Role{"", "GUEST", "admin"} {
		_, ok := role.RefreshPath()
		assert.False(t, ok, "role %q", role)
		assert.False(t, role.Valid(), "role %q", role)
	}
}

func TestSessionActive(t *testing.T) {
	t.Parallel()

	assert.False(t, Session{}.Active())
	assert.True(t, Session{}.IsZero())
	assert.False(t, Session{Role: RoleUser}.Active())
	assert.False(t, Session{Role: "GUEST", Authenticated: true}.Active())
	assert.True(t, Session{Role: RoleAdmin, Authenticated: true}.Active())
}

func TestAPIErrorMatchesSentinels(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("list problems: %w", &APIError{StatusCode: http.StatusUnauthorized, Message: "jwt expired"})
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.EqualError(t, err, "list problems: api status 401: jwt expired")

	assert.ErrorIs(t, &APIError{StatusCode: http.StatusNotFound}, ErrNotFound)
	assert.EqualError(t, &APIError{StatusCode: http.StatusBadGateway}, "api status 502")
}

func TestProblemFilterNormalize(t *testing.T) {
	t.Parallel()

	f := ProblemFilter{Limit: 500, Search: "  two sum "}
	f.Normalize()
	assert.Equal(t, ProblemFilter{Page: 1, Limit: 100, Search: "two sum"}, f)
}

func TestParseDifficulty(t *testing.T) {
	t.Parallel()

	got, err := ParseDifficulty("medium")
	require.NoError(t, err)
	assert.Equal(t, DifficultyMedium, got)
	assert.Equal(t, "Medium", got.Label())

	got, err = ParseDifficulty("")
	require.NoError(t, err)
	assert.Equal(t, Difficulty(""), got)

	_, err = ParseDifficulty("impossible")
	assert.ErrorContains(t, err, "unsupported difficulty")
}

func TestLeaderboardSortByRank(t *testing.T) {
	t.Parallel()

	board := Leaderboard{Entries: []LeaderboardEntry{
		{Rank: 0, Name: "unranked", Score: 999},
		{Rank: 2, Name: "bob", Score: 50},
		{Rank: 1, Name: "alice", Score: 90},
		{Rank: 2, Name: "carol", Score: 70},
	}}
	board.SortByRank()

	names := make([]string, 0, len(board.Entries))
	for _, entry := range board.Entries {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"alice", "carol", "bob", "unranked"}, names)
}

func TestDashboardMetricsActiveShare(t *testing.T) {
	t.Parallel()

	assert.Zero(t, DashboardMetrics{}.ActiveShare())
	assert.InDelta(t, 25.0, DashboardMetrics{TotalUsers: 40, ActiveUsers: 10}.ActiveShare(), 0.001)
}
