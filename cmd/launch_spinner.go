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

type launchDoneMsg struct{}

type launchSpinnerModel struct {
	spinner spinner.Model
	label   string
	started time.Time
	elapsed time.Duration
	done    bool
}

func newLaunchSpinnerModel(label string, started time.Time) launchSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return launchSpinnerModel{
		spinner: s,
		label:   label,
		started: started,
	}
}

func (m launchSpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m launchSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !msg.Time.IsZero() {
			m.elapsed = msg.Time.Sub(m.started).Truncate(time.Second)
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case launchDoneMsg:
		m.done = true
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m launchSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s %s", m.spinner.View(), m.label, m.elapsed)
}

// runLaunchSpinner shows a spinner with the elapsed wait while launch runs, and
// returns only after launch has. Interrupts reach launch through ctx; the program
// installs no signal handler of its own.
func runLaunchSpinner(ctx context.Context, output io.Writer, label string, launch func(context.Context) error) error {
	p := tea.NewProgram(
		newLaunchSpinnerModel(label, time.Now()),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithoutSignalHandler(),
	)

	result := make(chan error, 1)
	go func() {
		result <- launch(ctx)
		p.Send(launchDoneMsg{})
	}()

	_, runErr := p.Run()
	launchErr := <-result
	if launchErr != nil {
		return launchErr
	}
	if runErr != nil {
		return fmt.Errorf("launch spinner: %w", runErr)
	}

	return nil
}
