package application

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/codex-platform/codex-cli/internal/ports"
	"github.com/codex-platform/codex-cli/internal/ports/mocks"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	transport   *mocks.MockTransport
	api         *mocks.MockExecutor
	sessions    *mocks.MockSessionStore
	credentials *mocks.MockCredentials
	clock       *mocks.MockClock
	service     *AuthService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	f := authFixture{
		transport:   mocks.NewMockTransport(t),
		api:         mocks.NewMockExecutor(t),
		sessions:    mocks.NewMockSessionStore(t),
		credentials: mocks.NewMockCredentials(t),
		clock:       mocks.NewMockClock(t),
	}
	f.service = NewAuthService(f.transport, f.api, f.sessions, f.credentials, f.clock)
	return f
}

func TestAuthServiceLoginSavesSessionFromResponse(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.transport.EXPECT().Send(mockAnyContext(), mock.MatchedBy(func(req *ports.Request) bool {
		return req.Method == http.MethodPost &&
			req.Path == "/ADMIN/auth/login" &&
			string(req.Body) == `{"email":"ada@codex.dev","password":"hunter2"}`
	})).Return(jsonResponse(http.StatusOK, `{"role":"admin","user":{"id":"u-1","email":"ada@codex.dev","name":"Ada"}}`), nil).Once()

	want := domain.Session{Role: domain.RoleAdmin, Authenticated: true, UserID: "u-1", Email: "ada@codex.dev", Name: "Ada"}
	f.sessions.EXPECT().Save(mockAnyContext(), want).Return(nil).Once()
	stored := want
	stored.UpdatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.sessions.EXPECT().Load(mockAnyContext()).Return(stored, nil).Once()

	session, err := f.service.Login(context.Background(), LoginCommand{Role: domain.RoleAdmin, Email: " ada@codex.dev ", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, stored, session)
}

func TestAuthServiceLoginValidatesInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cmd     LoginCommand
		wantErr error
	}{
		{name: "unknown role", cmd: LoginCommand{Role: "GUEST", Email: "a@b.c", Password: "x"}, wantErr: domain.ErrUnknownRole},
		{name: "missing email", cmd: LoginCommand{Role: domain.RoleUser, Email: "  ", Password: "x"}, wantErr: ErrMissingEmail},
		{name: "missing password", cmd: LoginCommand{Role: domain.RoleUser, Email: "a@b.c"}, wantErr: ErrMissingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newAuthFixture(t)
			_, err := f.service.Login(context.Background(), tt.cmd)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthServiceLoginRejectedCredentialsDoNotRefresh(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.transport.EXPECT().Send(mockAnyContext(), mock.Anything).
		Return(jsonResponse(http.StatusUnauthorized, `{"message":"invalid email or password"}`), nil).Once()

	_, err := f.service.Login(context.Background(), LoginCommand{Role: domain.RoleUser, Email: "a@b.c", Password: "wrong"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorContains(t, err, "invalid email or password")
}

func TestAuthServiceLoginRollsBackCookiesWhenSaveFails(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.transport.EXPECT().Send(mockAnyContext(), mock.Anything).
		Return(jsonResponse(http.StatusOK, `{"role":"USER","user":{"id":"u-2"}}`), nil).Once()
	f.sessions.EXPECT().Save(mockAnyContext(), mock.Anything).Return(errors.New("disk full")).Once()
	f.credentials.EXPECT().ForgetCredentials(mockAnyContext()).Return(nil).Once()

	_, err := f.service.Login(context.Background(), LoginCommand{Role: domain.RoleUser, Email: "a@b.c", Password: "x"})
	require.ErrorContains(t, err, "disk full")
}

func TestAuthServiceLoginRejectsUnknownRoleFromBackend(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.transport.EXPECT().Send(mockAnyContext(), mock.Anything).
		Return(jsonResponse(http.StatusOK, `{"role":"MODERATOR","user":{"id":"u-3"}}`), nil).Once()
	f.credentials.EXPECT().ForgetCredentials(mockAnyContext()).Return(nil).Once()

	_, err := f.service.Login(context.Background(), LoginCommand{Role: domain.RoleUser, Email: "a@b.c", Password: "x"})
	require.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestAuthServiceLogoutNotifiesBackendAndClears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *ports.Response
		sendErr error
		wantErr string
	}{
		{name: "backend accepts", resp: jsonResponse(http.StatusNoContent, "")},
		{name: "session already gone", resp: jsonResponse(http.StatusUnauthorized, "")},
		{name: "backend down", sendErr: errors.New("connection refused"), wantErr: "notify backend of logout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newAuthFixture(t)
			f.sessions.EXPECT().Load(mockAnyContext()).Return(domain.Session{Role: domain.RoleUser, Authenticated: true}, nil).Once()
			f.api.EXPECT().Execute(mockAnyContext(), requestTo(http.MethodPost, "/USER/auth/logout")).Return(tt.resp, tt.sendErr).Once()
			f.sessions.EXPECT().Clear(mockAnyContext()).Return(nil).Once()
			f.credentials.EXPECT().ForgetCredentials(mockAnyContext()).Return(nil).Once()

			err := f.service.Logout(context.Background())
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestAuthServiceLogoutWithoutSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.sessions.EXPECT().Load(mockAnyContext()).Return(domain.Session{}, nil).Once()
	f.sessions.EXPECT().Clear(mockAnyContext()).Return(nil).Once()
	f.credentials.EXPECT().ForgetCredentials(mockAnyContext()).Return(nil).Once()

	err := f.service.Logout(context.Background())
	require.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-only-key"))
	require.NoError(t, err)
	return token
}

func TestAuthServiceWhoAmIReadsTokenExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := domain.Session{Role: domain.RoleUser, Authenticated: true, Email: "ada@codex.dev"}

	tests := []struct {
		name        string
		token       string
		ok          bool
		wantExpires time.Time
		wantExpired bool
	}{
		{name: "valid token", token: signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), ok: true, wantExpires: now.Add(time.Hour)},
		{name: "expired token", token: signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), ok: true, wantExpires: now.Add(-time.Minute), wantExpired: true},
		{name: "token without exp", token: signedToken(t, jwt.MapClaims{"sub": "u-1"}), ok: true},
		{name: "opaque token", token: "not-a-jwt", ok: true},
		{name: "no cookie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newAuthFixture(t)
			f.sessions.EXPECT().Load(mockAnyContext()).Return(session, nil).Once()
			f.credentials.EXPECT().Cookie(mockAnyContext(), AccessTokenCookie).Return(tt.token, tt.ok, nil).Once()
			f.clock.EXPECT().Now().Return(now).Maybe()

			identity, err := f.service.WhoAmI(context.Background())
			require.NoError(t, err)

			assert.Equal(t, session, identity.Session)
			assert.True(t, tt.wantExpires.Equal(identity.AccessTokenExpiresAt), "expires %s", identity.AccessTokenExpiresAt)
			assert.Equal(t, tt.wantExpired, identity.AccessTokenExpired)
		})
	}
}

func TestAuthServiceWhoAmIRequiresActiveSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.sessions.EXPECT().Load(mockAnyContext()).Return(domain.Session{Role: "GUEST", Authenticated: true}, nil).Once()

	_, err := f.service.WhoAmI(context.Background())
	require.ErrorIs(t, err, domain.ErrNotLoggedIn)
}
