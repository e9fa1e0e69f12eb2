// Package ui provides terminal feedback for commands that block on the
// archive. Output goes to stderr so piped stdout stays clean.
package ui

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Spinner animates a short status message while a network call is in
// flight. When stderr is not a terminal or NO_COLOR is set it degrades
// to a single plain line.
type Spinner struct {
	chars    []string
	message  string
	mu       sync.Mutex
	active   bool
	animated bool
	done     chan struct{}
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
		done:    make(chan struct{}),
	}
}

// Start begins spinning, showing feedback within 100ms.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.animated = isTerminal() && os.Getenv("NO_COLOR") == ""
	s.mu.Unlock()

	if !s.animated {
		fmt.Fprintf(os.Stderr, "%s...\n", s.message)
		return
	}

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.done:
				// Clear the spinner line
				fmt.Fprint(os.Stderr, "\r\033[K")
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.active {
					fmt.Fprintf(os.Stderr, "\r%s %s", s.chars[i], s.message)
					i = (i + 1) % len(s.chars)
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop clears the spinner and optionally shows a final message.
func (s *Spinner) Stop(finalMessage string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	animated := s.animated
	s.mu.Unlock()

	if animated {
		close(s.done)
		time.Sleep(100 * time.Millisecond) // Allow goroutine to clean up
	}

	if finalMessage == "" {
		return
	}
	if animated {
		fmt.Fprintf(os.Stderr, "\r\033[K%s\n", finalMessage)
	} else {
		fmt.Fprintln(os.Stderr, finalMessage)
	}
}

// Update changes the spinner message while it's running.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// isTerminal checks if output is to a terminal
func isTerminal() bool {
	fileInfo, _ := os.Stderr.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShowSpinner runs fn behind a spinner and clears it when fn returns.
// Result reporting stays with the caller.
func ShowSpinner(message string, fn func() error) error {
	spinner := NewSpinner(message)
	spinner.Start()
	err := fn()
	spinner.Stop("")
	return err
}
