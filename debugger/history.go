package debugger

import "sync"

// CommandHistory remembers commands typed at the debugger prompt so an
// empty line can repeat the last one, matching common line debuggers.
type CommandHistory struct {
	mu       sync.RWMutex
	commands []string
	maxSize  int
	position int
}

// NewCommandHistory returns a history capped at 1000 entries.
func NewCommandHistory() *CommandHistory {
	return &CommandHistory{commands: make([]string, 0, 64), maxSize: 1000}
}

// Add records cmd unless it repeats the immediately preceding entry.
func (h *CommandHistory) Add(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cmd == "" {
		return
	}
	if n := len(h.commands); n > 0 && h.commands[n-1] == cmd {
		h.position = n
		return
	}

	h.commands = append(h.commands, cmd)
	if len(h.commands) > h.maxSize {
		h.commands = h.commands[len(h.commands)-h.maxSize:]
	}
	h.position = len(h.commands)
}

// Previous walks backward through history.
func (h *CommandHistory) Previous() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.commands) == 0 || h.position == 0 {
		return ""
	}
	h.position--
	return h.commands[h.position]
}

// Next walks forward through history.
func (h *CommandHistory) Next() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.commands) == 0 {
		return ""
	}
	if h.position >= len(h.commands)-1 {
		h.position = len(h.commands)
		return ""
	}
	h.position++
	return h.commands[h.position]
}

// GetLast returns the most recently added command.
func (h *CommandHistory) GetLast() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.commands) == 0 {
		return ""
	}
	return h.commands[len(h.commands)-1]
}

// All returns a copy of every recorded command, oldest first.
func (h *CommandHistory) All() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.commands))
	copy(out, h.commands)
	return out
}
