// Package ui renders the operator-facing terminal output with pterm.
package ui

import (
	"errors"
	"strings"

	"github.com/pterm/pterm"

	"mapscout/internal/logger"
)

// ErrNoQuery is returned when the prompt gives up without an answer.
var ErrNoQuery = errors.New("no query entered")

// maxAttempts bounds how often a blank answer is re-asked.
const maxAttempts = 10

// AskFunc reads one answer from the operator.
type AskFunc func() (string, error)

// TerminalAsk reads the query from an interactive pterm text input.
func TerminalAsk() (string, error) {
	return pterm.DefaultInteractiveTextInput.Show("Search query (e.g. bakeries in Austin)")
}

// PromptQuery asks until a non-empty answer arrives.
func PromptQuery(ask AskFunc) (string, error) {
	log := logger.Named("ui")
	for i := 0; i < maxAttempts; i++ {
		answer, err := ask()
		if err != nil {
			return "", err
		}
		if q := strings.TrimSpace(answer); q != "" {
			return q, nil
		}
		log.Warn().Msg("query must not be empty")
	}
	return "", ErrNoQuery
}
