package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchProgressShowsElapsedOnceSlow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := newFetchProgress("Loading problems", clock)

	model, _ := m.Update(spinner.TickMsg{})
	assert.Contains(t, model.View(), "Loading problems")
	assert.NotContains(t, model.View(), "(")

	now = now.Add(3*time.Second + 400*time.Millisecond)
	model, _ = model.Update(spinner.TickMsg{})
	assert.Contains(t, model.View(), "(3s)")
}

func TestFetchProgressFinishesOnFirstOutcome(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("boom")
	m := newFetchProgress("Loading", time.Now)

	model, cmd := m.Update(fetchCanceledMsg{err: context.Canceled})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, model.View())

	model, cmd = model.Update(fetchResultMsg{err: fetchErr})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, model.(fetchProgress).err, context.Canceled)
}

func TestRunFetchSpinnerReturnsFetchError(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("upstream down")
	err := runFetchSpinner(context.Background(), &bytes.Buffer{}, "Loading", func(context.Context) error {
		return fetchErr
	})
	assert.ErrorIs(t, err, fetchErr)
}

func TestRunFetchSpinnerStopsWhenContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	go func() {
		<-started
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		done <- runFetchSpinner(ctx, &bytes.Buffer{}, "Loading", func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("spinner kept waiting on a canceled fetch")
	}
}
