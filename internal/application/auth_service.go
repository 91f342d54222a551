package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/codex-platform/codex-cli/internal/ports"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenCookie is the cookie the backend keeps the access JWT in.
const AccessTokenCookie = "accessToken"

var (
	ErrMissingEmail    = errors.New("email is required")
	ErrMissingPassword = errors.New("password is required")
)

type AuthService struct {
	// transport is used for login only: a 401 there means bad credentials,
	// not an expired session.
	transport   ports.Transport
	api         ports.Executor
	sessions    ports.SessionStore
	credentials ports.Credentials
	clock       ports.Clock
}

func NewAuthService(transport ports.Transport, api ports.Executor, sessions ports.SessionStore, credentials ports.Credentials, clock ports.Clock) *AuthService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &AuthService{
		transport:   transport,
		api:         api,
		sessions:    sessions,
		credentials: credentials,
		clock:       clock,
	}
}

func (s *AuthService) Login(ctx context.Context, cmd LoginCommand) (domain.Session, error) {
	if !cmd.Role.Valid() {
		return domain.Session{}, fmt.Errorf("login: %w: %q", domain.ErrUnknownRole, cmd.Role)
	}
	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		return domain.Session{}, ErrMissingEmail
	}
	if cmd.Password == "" {
		return domain.Session{}, ErrMissingPassword
	}

	path := cmd.Role.Namespace() + "/auth/login"
	var payload loginResponse
	if err := call(ctx, transportExecutor{s.transport}, http.MethodPost, path, nil, loginRequest{Email: email, Password: cmd.Password}, &payload); err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}

	role := cmd.Role
	if payload.Role != "" {
		parsed, err := domain.ParseRole(payload.Role)
		if err != nil {
			return domain.Session{}, errors.Join(fmt.Errorf("login: %w", err), s.forget(ctx))
		}
		role = parsed
	}

	session := domain.Session{
		Role:          role,
		Authenticated: true,
		UserID:        domain.UserID(payload.User.ID),
		Email:         payload.User.Email,
		Name:          payload.User.Name,
	}
	if session.Email == "" {
		session.Email = email
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, errors.Join(fmt.Errorf("save session: %w", err), s.forget(ctx))
	}

	return s.sessions.Load(ctx)
}

// Logout tells the backend to revoke the session and then drops local state
// regardless of the backend's answer. A 401 from the backend means the
// session was already gone and is not reported.
func (s *AuthService) Logout(ctx context.Context) error {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !session.Active() {
		if clearErr := s.clearLocal(ctx); clearErr != nil {
			return clearErr
		}
		return domain.ErrNotLoggedIn
	}

	var errs []error
	path := session.Role.Namespace() + "/auth/logout"
	if err := call(ctx, s.api, http.MethodPost, path, nil, nil, nil); err != nil && !errors.Is(err, domain.ErrUnauthorized) {
		errs = append(errs, fmt.Errorf("notify backend of logout: %w", err))
	}
	if err := s.clearLocal(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *AuthService) WhoAmI(ctx context.Context) (Identity, error) {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("load session: %w", err)
	}
	if !session.Active() {
		return Identity{}, domain.ErrNotLoggedIn
	}

	identity := Identity{Session: session}
	if s.credentials == nil {
		return identity, nil
	}

	token, ok, err := s.credentials.Cookie(ctx, AccessTokenCookie)
	if err != nil {
		return Identity{}, fmt.Errorf("read access token: %w", err)
	}
	if !ok {
		return identity, nil
	}

	expiresAt, err := accessTokenExpiry(token)
	if err != nil {
		return identity, nil
	}
	identity.AccessTokenExpiresAt = expiresAt
	identity.AccessTokenExpired = !expiresAt.IsZero() && !expiresAt.After(s.clock.Now())

	return identity, nil
}

// accessTokenExpiry reads the exp claim without verifying the signature; the
// CLI only uses it for display.
func accessTokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read access token expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}

	return exp.Time, nil
}

func (s *AuthService) clearLocal(ctx context.Context) error {
	var errs []error
	if err := s.sessions.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear session: %w", err))
	}
	if err := s.forget(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *AuthService) forget(ctx context.Context) error {
	if s.credentials == nil {
		return nil
	}
	if err := s.credentials.ForgetCredentials(ctx); err != nil {
		return fmt.Errorf("forget credentials: %w", err)
	}
	return nil
}

// transportExecutor sends without any refresh handling.
type transportExecutor struct {
	transport ports.Transport
}

func (e transportExecutor) Execute(ctx context.Context, req *ports.Request) (*ports.Response, error) {
	return e.transport.Send(ctx, req)
}
