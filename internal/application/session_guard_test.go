package application

import (
	"context"
	"errors"
	"testing"

	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/codex-platform/codex-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionGuardClearForgetsCredentials(t *testing.T) {
	t.Parallel()

	sessions := mocks.NewMockSessionStore(t)
	credentials := mocks.NewMockCredentials(t)
	guard := NewSessionGuard(sessions, credentials)

	sessions.EXPECT().Clear(mockAnyContext()).Return(nil).Once()
	credentials.EXPECT().ForgetCredentials(mockAnyContext()).Return(nil).Once()

	require.NoError(t, guard.Clear(context.Background()))
}

func TestSessionGuardClearJoinsErrors(t *testing.T) {
	t.Parallel()

	sessions := mocks.NewMockSessionStore(t)
	credentials := mocks.NewMockCredentials(t)
	guard := NewSessionGuard(sessions, credentials)

	sessions.EXPECT().Clear(mockAnyContext()).Return(errors.New("read-only filesystem")).Once()
	credentials.EXPECT().ForgetCredentials(mockAnyContext()).Return(errors.New("keyring locked")).Once()

	err := guard.Clear(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "read-only filesystem")
	assert.ErrorContains(t, err, "keyring locked")
}

func TestSessionGuardDelegatesReads(t *testing.T) {
	t.Parallel()

	sessions := mocks.NewMockSessionStore(t)
	guard := NewSessionGuard(sessions, nil)

	sessions.EXPECT().Role(mockAnyContext()).Return(domain.RoleUser, nil).Once()
	sessions.EXPECT().Clear(mockAnyContext()).Return(nil).Once()

	role, err := guard.Role(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)
	require.NoError(t, guard.Clear(context.Background()))
}
