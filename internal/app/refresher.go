package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshAckTimeout bounds how long a refresh call waits for the model's
// acknowledgement. A program that is shutting down drops messages, and the
// scheduler must not wedge on one.
const refreshAckTimeout = 2 * time.Second

// ProgramRefresher marshals refresh requests onto the bubbletea loop and
// blocks until the model has applied them, the synchronous hand-off the
// decorator's scheduler relies on.
type ProgramRefresher struct {
	send    func(tea.Msg)
	timeout time.Duration
}

// NewProgramRefresher wraps a running program.
func NewProgramRefresher(p *tea.Program) *ProgramRefresher {
	return &ProgramRefresher{send: p.Send, timeout: refreshAckTimeout}
}

// RefreshAll implements decor.Refresher.
func (r *ProgramRefresher) RefreshAll() {
	done := make(chan struct{})
	r.send(refreshAllMsg{done: done})
	r.wait(done)
}

// Refresh implements decor.Refresher.
func (r *ProgramRefresher) Refresh(paths []string) {
	done := make(chan struct{})
	r.send(refreshPathsMsg{paths: paths, done: done})
	r.wait(done)
}

func (r *ProgramRefresher) wait(done chan struct{}) {
	select {
	case <-done:
	case <-time.After(r.timeout):
	}
}
