package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	passstore "github.com/codex-platform/codex-cli/internal/adapters/secrets/pass"
	"github.com/codex-platform/codex-cli/internal/domain"
	portmocks "github.com/codex-platform/codex-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const cookieKey = "codex-cli/session/cookies"

func newChain(t *testing.T) (*Store, *portmocks.MockSecretStore, *portmocks.MockSecretStore) {
	t.Helper()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)
	return store, primary, fallback
}

func TestNewStoreRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, portmocks.NewMockSecretStore(t))
	require.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStore(portmocks.NewMockSecretStore(t), nil)
	require.ErrorIs(t, err, errNilFallbackStore)
}

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Get(mock.Anything, cookieKey).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), cookieKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBackWhenPrimaryUnavailable(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, cookieKey).Return("", passstore.ErrUnavailable).Once()
	fallback.EXPECT().Get(mock.Anything, cookieKey).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), cookieKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetMissingEverywhereIsNotFound(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, cookieKey).Return("", passstore.ErrUnavailable).Once()
	fallback.EXPECT().Get(mock.Anything, cookieKey).Return("", fmt.Errorf("file secret: %w", domain.ErrSecretNotFound)).Once()

	_, err := store.Get(context.Background(), cookieKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "primary backend")
	assert.ErrorContains(t, err, "fallback backend")
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Put(mock.Anything, cookieKey, "snapshot").Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Put(mock.Anything, cookieKey, "snapshot").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), cookieKey, "snapshot"))
}

func TestStorePutDoesNotCallFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Put(mock.Anything, cookieKey, "snapshot").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), cookieKey, "snapshot"))
}

func TestStoreDeleteClearsBothBackends(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Delete(mock.Anything, cookieKey).Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, cookieKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), cookieKey))
}

func TestStoreDeleteToleratesUnavailablePrimary(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Delete(mock.Anything, cookieKey).Return(passstore.ErrUnavailable).Once()
	fallback.EXPECT().Delete(mock.Anything, cookieKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), cookieKey))
}

func TestStoreDeleteReportsFallbackFailure(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Delete(mock.Anything, cookieKey).Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, cookieKey).Return(errors.New("permission denied")).Once()

	err := store.Delete(context.Background(), cookieKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "permission denied")
}

func TestStoreDoesNotFallbackOnCanceledContext(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Get(mock.Anything, cookieKey).Return("", context.Canceled).Once()
	primary.EXPECT().Delete(mock.Anything, cookieKey).Return(context.Canceled).Once()

	_, err := store.Get(context.Background(), cookieKey)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Delete(context.Background(), cookieKey), context.Canceled)
}
