package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard is a set-only string sink.
type Clipboard interface {
	WriteAll(text string) error
}

// System writes to the operating system clipboard.
type System struct{}

func (System) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a system clipboard utility was found.
func Available() bool {
	return !clipboard.Unsupported
}

// Memory keeps the last written text. It stands in for the system clipboard
// on headless hosts.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.text = text

	return nil
}

// Text returns the last written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.text
}

// Default returns the system clipboard when available and an in-memory one otherwise.
func Default() Clipboard {
	if Available() {
		return System{}
	}

	return &Memory{}
}
