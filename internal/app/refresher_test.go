package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestProgramRefresher_BlocksUntilAck(t *testing.T) {
	acked := make(chan struct{})
	r := &ProgramRefresher{
		timeout: 2 * time.Second,
		send: func(msg tea.Msg) {
			m, ok := msg.(refreshAllMsg)
			if !ok {
				t.Errorf("unexpected message %T", msg)
				return
			}
			// Ack from another goroutine, like the program loop would.
			go func() {
				time.Sleep(20 * time.Millisecond)
				close(m.done)
				close(acked)
			}()
		},
	}

	start := time.Now()
	r.RefreshAll()
	if time.Since(start) < 20*time.Millisecond {
		t.Error("RefreshAll returned before the model acknowledged")
	}
	select {
	case <-acked:
	default:
		t.Error("ack never happened")
	}
}

func TestProgramRefresher_TimesOutWhenDropped(t *testing.T) {
	r := &ProgramRefresher{
		timeout: 30 * time.Millisecond,
		send:    func(tea.Msg) {}, // Program gone; message dropped.
	}

	done := make(chan struct{})
	go func() {
		r.Refresh([]string{"a.go"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Refresh wedged on a dropped message")
	}
}

func TestProgramRefresher_RefreshCarriesPaths(t *testing.T) {
	var got []string
	r := &ProgramRefresher{
		timeout: time.Second,
		send: func(msg tea.Msg) {
			m := msg.(refreshPathsMsg)
			got = m.paths
			close(m.done)
		},
	}

	r.Refresh([]string{"a.go", "b.go"})
	if len(got) != 2 || got[0] != "a.go" || got[1] != "b.go" {
		t.Errorf("paths = %v, want [a.go b.go]", got)
	}
}
