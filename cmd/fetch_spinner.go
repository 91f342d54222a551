package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Requests slower than this show how long they have been waiting, which is
// usually a credential refresh in progress.
const showElapsedAfter = time.Second

type (
	fetchResultMsg   struct{ err error }
	fetchCanceledMsg struct{ err error }
)

var elapsedStyle = lipgloss.NewStyle().Faint(true)

type fetchProgress struct {
	spinner spinner.Model
	label   string
	started time.Time
	now     func() time.Time
	elapsed time.Duration

	finished bool
	err      error
}

func newFetchProgress(label string, now func() time.Time) fetchProgress {
	return fetchProgress{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		label:   label,
		started: now(),
		now:     now,
	}
}

func (m fetchProgress) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m fetchProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.finished {
		return m, nil
	}

	switch msg := msg.(type) {
	case fetchResultMsg:
		return m.finish(msg.err)
	case fetchCanceledMsg:
		return m.finish(msg.err)
	case spinner.TickMsg:
		m.elapsed = m.now().Sub(m.started)
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m fetchProgress) finish(err error) (tea.Model, tea.Cmd) {
	m.finished = true
	m.err = err
	return m, tea.Quit
}

func (m fetchProgress) View() string {
	if m.finished {
		return ""
	}

	line := m.spinner.View() + " " + m.label
	if m.elapsed >= showElapsedAfter {
		line += " " + elapsedStyle.Render(fmt.Sprintf("(%s)", m.elapsed.Truncate(time.Second)))
	}
	return line
}

// runFetchSpinner shows label on output while fetch runs. It returns fetch's
// error, or ctx's error as soon as ctx is done without waiting for fetch.
func runFetchSpinner(ctx context.Context, output io.Writer, label string, fetch func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		newFetchProgress(label, time.Now),
		tea.WithInput(nil),
		tea.WithOutput(output),
	)

	go func() {
		p.Send(fetchResultMsg{err: fetch(ctx)})
	}()
	go func() {
		<-ctx.Done()
		p.Send(fetchCanceledMsg{err: ctx.Err()})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("render progress: %w", err)
	}

	progress, ok := final.(fetchProgress)
	if !ok {
		return fmt.Errorf("unexpected progress model %T", final)
	}
	return progress.err
}
