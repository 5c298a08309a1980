package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/eduxperience/eduxperience/internal/client/models"
)

// ConsoleNavigator is the terminal's notion of "the current view": it
// remembers the destination and announces every move.
type ConsoleNavigator struct {
	mu      sync.Mutex
	current models.Destination
	out     io.Writer
}

func NewConsoleNavigator(out io.Writer) *ConsoleNavigator {
	return &ConsoleNavigator{out: out}
}

func (n *ConsoleNavigator) Navigate(_ context.Context, to models.Destination) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == to {
		return nil
	}
	n.current = to
	_, err := fmt.Fprintf(n.out, "→ %s\n", to)
	return err
}

func (n *ConsoleNavigator) Current() models.Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
