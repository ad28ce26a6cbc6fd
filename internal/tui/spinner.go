package tui

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

// doneMsg tells the spinner the wrapped call has returned
type doneMsg struct{}

type waitModel struct {
	spinner     spinner.Model
	label       string
	done        bool
	interrupted bool
}

func newWaitModel(label string) waitModel {
	return waitModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		label:   label,
	}
}

func (m waitModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m waitModel) View() string {
	if m.done || m.interrupted {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Wait calls fn and shows a spinner labelled label on out until it returns.
// When out is not a terminal fn runs without any output. Interrupting the
// spinner cancels the context passed to fn.
func Wait(ctx context.Context, out io.Writer, label string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if !IsTerminal(out) {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		body []byte
		err  error
	}
	resCh := make(chan result, 1)

	p := tea.NewProgram(newWaitModel(label), tea.WithContext(ctx), tea.WithOutput(out))
	go func() {
		body, err := fn(ctx)
		resCh <- result{body: body, err: err}
		p.Send(doneMsg{})
	}()

	final, err := p.Run()
	if m, ok := final.(waitModel); (ok && m.interrupted) || errors.Is(err, tea.ErrInterrupted) {
		cancel()
	}

	res := <-resCh
	return res.body, res.err
}
