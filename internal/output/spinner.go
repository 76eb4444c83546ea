package output

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/term"
)

// SpinnerOption configures RunWithSpinner.
type SpinnerOption func(*spinner.Spinner)

// WithTitle sets the text shown next to the spinner.
func WithTitle(title string) SpinnerOption {
	return func(s *spinner.Spinner) {
		s.Title(title)
	}
}

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RunWithSpinner runs action while a spinner is shown and returns its error.
// Without a terminal the action runs directly. Cancelling ctx stops the
// spinner and returns the context error while the action keeps running.
func RunWithSpinner(ctx context.Context, action func() error, opts ...SpinnerOption) error {
	if !IsTTY() {
		return action()
	}

	s := spinner.New().Title("Working...").Context(ctx)
	for _, opt := range opts {
		opt(s)
	}

	done := make(chan error, 1)
	if err := s.Action(func() { done <- action() }).Run(); err != nil {
		return fmt.Errorf("spinner: %w", err)
	}
	select {
	case err := <-done:
		return err
	default:
		return ctx.Err()
	}
}
