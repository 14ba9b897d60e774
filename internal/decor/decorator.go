// Package decor owns the freshness decoration lifecycle: a self-perpetuating
// refresh timer and a change-notification listener that pushes targeted
// refreshes, sharing one terminal stop flag.
package decor

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ember-tui/ember/internal/delta"
	"github.com/ember-tui/ember/internal/freshness"
)

// Refresher is the host rendering service. Both calls are synchronous: they
// return only after the redraw has been applied, so scheduler firings block
// until rendering completes before the next period starts.
type Refresher interface {
	// RefreshAll requests a full redecoration.
	RefreshAll()
	// Refresh requests redecoration of exactly the given paths.
	Refresh(paths []string)
}

// LabelEvent is a batched labels-changed notification. Paths may be empty.
type LabelEvent struct {
	Paths []string
}

// Observer receives label events. Observers are invoked synchronously in
// registration order on the notification dispatcher's goroutine.
type Observer func(LabelEvent)

type observerEntry struct {
	id int
	fn Observer
}

// Decorator classifies files by freshness and keeps decorations current via
// a periodic full refresh plus targeted refreshes on content changes.
// Configuration is fixed at construction; build a new instance to pick up
// changed settings.
type Decorator struct {
	thresholds freshness.Thresholds
	refresher  Refresher
	logger     *slog.Logger

	// stopped is one-way: once set, no further periodic work is scheduled
	// and change notifications are ignored.
	stopped atomic.Bool
	done    chan struct{}
	once    sync.Once

	mu        sync.Mutex
	observers []observerEntry
	nextID    int
}

// New builds a decorator and immediately arms the refresh loop with a period
// equal to the hot threshold. A nil logger falls back to slog.Default().
func New(th freshness.Thresholds, r Refresher, logger *slog.Logger) *Decorator {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Decorator{
		thresholds: th,
		refresher:  r,
		logger:     logger,
		done:       make(chan struct{}),
	}
	go d.loop()
	return d
}

// Thresholds returns the bucket boundaries in effect for this instance.
func (d *Decorator) Thresholds() freshness.Thresholds {
	return d.thresholds
}

// Classify maps a file's last-modified time into a freshness bucket.
func (d *Decorator) Classify(lastModified, now time.Time) freshness.Bucket {
	return d.thresholds.Classify(lastModified, now)
}

// loop is the self-perpetuating refresh timer. Each firing is a one-shot:
// the next delay is armed only after the refresh completes, so refresh
// latency is additive to the nominal period. The flag is checked both before
// sleeping and before acting.
func (d *Decorator) loop() {
	for {
		if d.stopped.Load() {
			return
		}
		select {
		case <-time.After(d.thresholds.Hot):
		case <-d.done:
			return
		}
		if d.stopped.Load() {
			return
		}
		d.refresher.RefreshAll()
	}
}

// Dispose stops all future periodic work. An in-flight firing completes its
// current refresh but does not re-arm. Dispose is idempotent; there is no
// way to resume a disposed instance.
func (d *Decorator) Dispose() {
	d.stopped.Store(true)
	d.once.Do(func() { close(d.done) })
}

// Stopped reports whether the terminal stop flag has been set.
func (d *Decorator) Stopped() bool {
	return d.stopped.Load()
}

// AddObserver registers a label-event observer and returns a handle for
// removal.
func (d *Decorator) AddObserver(fn Observer) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.observers = append(d.observers, observerEntry{id: d.nextID, fn: fn})
	return d.nextID
}

// RemoveObserver unregisters the observer with the given handle.
func (d *Decorator) RemoveObserver(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.observers {
		if e.id == id {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

// OnDelta handles one change notification. It filters the tree down to
// content-changed files, fans one batched label event out to every observer
// (even when the set is empty), and asks the host for a targeted refresh.
// A tree that cannot be traversed is fatal to the periodic subsystem: the
// stop flag is set, the failure is logged once, and nothing propagates to
// the dispatcher.
func (d *Decorator) OnDelta(root *delta.Node) {
	if d.stopped.Load() {
		return
	}

	changed, err := delta.ContentChanged(root)
	if err != nil {
		d.Dispose()
		d.logger.Error("change notification traversal failed, periodic refresh stopped", "err", err)
		return
	}

	d.mu.Lock()
	entries := make([]observerEntry, len(d.observers))
	copy(entries, d.observers)
	d.mu.Unlock()

	ev := LabelEvent{Paths: changed}
	for _, e := range entries {
		e.fn(ev)
	}

	d.refresher.Refresh(changed)
}
