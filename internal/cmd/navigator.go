package cmd

import (
	"sync"

	"github.com/instaintelli/cli/pkg/logger"
)

// terminalNav records the last navigation so the command layer can show
// the target view once the current command finishes. A terminal has no
// history, so replace only matters for logging.
type terminalNav struct {
	mu      sync.Mutex
	pending string
}

func (n *terminalNav) Navigate(path string, replace bool) {
	logger.Debug("Navigate", "path", path, "replace", replace)
	n.mu.Lock()
	n.pending = path
	n.mu.Unlock()
}

// Take returns and clears the pending navigation.
func (n *terminalNav) Take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	p := n.pending
	n.pending = ""
	return p
}

func (n *terminalNav) Peek() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending
}
