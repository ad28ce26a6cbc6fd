// Package tui provides terminal user interface components for prompt-relay.
//
// The prompt command shows a spinner while the relay is generating:
//
//	body, err := tui.Wait(ctx, os.Stdout, "Waiting for the model", func(ctx context.Context) ([]byte, error) {
//	    return c.Prompt(ctx, text, attachment)
//	})
//
// The spinner only renders when the output is a terminal. Otherwise Wait
// simply calls the function.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - spinner component
//   - github.com/charmbracelet/lipgloss - Styling
package tui
