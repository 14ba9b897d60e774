package decor

import (
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ember-tui/ember/internal/delta"
	"github.com/ember-tui/ember/internal/freshness"
)

// fakeRefresher records refresh requests.
type fakeRefresher struct {
	mu     sync.Mutex
	all    int
	scoped [][]string
}

func (f *fakeRefresher) RefreshAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all++
}

func (f *fakeRefresher) Refresh(paths []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoped = append(f.scoped, paths)
}

func (f *fakeRefresher) allCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all
}

func (f *fakeRefresher) scopedCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.scoped))
	copy(out, f.scoped)
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastThresholds keeps scheduler tests quick. Built directly rather than via
// NewThresholds, which works in whole seconds.
func fastThresholds() freshness.Thresholds {
	return freshness.Thresholds{
		Hot:  20 * time.Millisecond,
		Warm: 100 * time.Millisecond,
		Cool: time.Second,
	}
}

func TestScheduler_FiresRepeatedly(t *testing.T) {
	r := &fakeRefresher{}
	d := New(fastThresholds(), r, quietLogger())
	defer d.Dispose()

	deadline := time.After(2 * time.Second)
	for r.allCount() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d refreshes within deadline, want >= 3", r.allCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestScheduler_DisposeStopsRefreshes(t *testing.T) {
	r := &fakeRefresher{}
	d := New(fastThresholds(), r, quietLogger())

	// Let it fire at least once so we know the loop is running.
	deadline := time.After(2 * time.Second)
	for r.allCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("scheduler never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	d.Dispose()
	if !d.Stopped() {
		t.Error("Stopped() = false after Dispose")
	}

	// Allow any in-flight firing to finish, then observe several periods.
	time.Sleep(50 * time.Millisecond)
	before := r.allCount()
	time.Sleep(150 * time.Millisecond)
	if after := r.allCount(); after != before {
		t.Errorf("refreshes continued after Dispose: %d -> %d", before, after)
	}
}

func TestScheduler_DisposeIdempotent(t *testing.T) {
	d := New(fastThresholds(), &fakeRefresher{}, quietLogger())
	d.Dispose()
	d.Dispose()
}

func TestOnDelta_FiltersAndFansOut(t *testing.T) {
	r := &fakeRefresher{}
	d := New(fastThresholds(), r, quietLogger())
	defer d.Dispose()

	var events []LabelEvent
	d.AddObserver(func(ev LabelEvent) { events = append(events, ev) })

	tree := &delta.Node{
		Path: ".", Kind: delta.Changed, Dir: true,
		Children: []*delta.Node{
			{Path: "added.go", Kind: delta.Added},
			{Path: "removed.go", Kind: delta.Removed},
			{Path: "chmod.go", Kind: delta.Changed, Flags: delta.Metadata},
			{Path: "edited.go", Kind: delta.Changed, Flags: delta.Content},
		},
	}
	d.OnDelta(tree)

	if len(events) != 1 {
		t.Fatalf("got %d label events, want 1", len(events))
	}
	if want := []string{"edited.go"}; !reflect.DeepEqual(events[0].Paths, want) {
		t.Errorf("label event paths = %v, want %v", events[0].Paths, want)
	}
	if calls := r.scopedCalls(); len(calls) != 1 || !reflect.DeepEqual(calls[0], []string{"edited.go"}) {
		t.Errorf("scoped refresh calls = %v, want [[edited.go]]", calls)
	}
}

func TestOnDelta_EmptySetStillNotifies(t *testing.T) {
	d := New(fastThresholds(), &fakeRefresher{}, quietLogger())
	defer d.Dispose()

	notified := 0
	d.AddObserver(func(ev LabelEvent) {
		notified++
		if len(ev.Paths) != 0 {
			t.Errorf("paths = %v, want empty", ev.Paths)
		}
	})

	d.OnDelta(&delta.Node{
		Path: ".", Kind: delta.Changed, Dir: true,
		Children: []*delta.Node{{Path: "new.go", Kind: delta.Added}},
	})

	if notified != 1 {
		t.Errorf("observer invoked %d times, want 1", notified)
	}
}

func TestOnDelta_ObserverOrderAndRemoval(t *testing.T) {
	d := New(fastThresholds(), &fakeRefresher{}, quietLogger())
	defer d.Dispose()

	var order []string
	first := d.AddObserver(func(LabelEvent) { order = append(order, "first") })
	d.AddObserver(func(LabelEvent) { order = append(order, "second") })

	tree := &delta.Node{Path: ".", Kind: delta.Changed, Dir: true}
	d.OnDelta(tree)
	if !reflect.DeepEqual(order, []string{"first", "second"}) {
		t.Errorf("invocation order = %v", order)
	}

	d.RemoveObserver(first)
	order = nil
	d.OnDelta(tree)
	if !reflect.DeepEqual(order, []string{"second"}) {
		t.Errorf("after removal order = %v", order)
	}
}

func TestOnDelta_MalformedTreeStopsScheduler(t *testing.T) {
	r := &fakeRefresher{}
	d := New(fastThresholds(), r, quietLogger())

	notified := 0
	d.AddObserver(func(LabelEvent) { notified++ })

	malformed := &delta.Node{
		Path: ".", Kind: delta.Changed, Dir: true,
		Children: []*delta.Node{nil},
	}
	d.OnDelta(malformed)

	if !d.Stopped() {
		t.Error("decorator not stopped after malformed tree")
	}
	if notified != 0 {
		t.Errorf("observers notified %d times on failed walk, want 0", notified)
	}
	if calls := r.scopedCalls(); len(calls) != 0 {
		t.Errorf("scoped refresh issued on failed walk: %v", calls)
	}

	// No periodic refreshes after the fatal stop.
	time.Sleep(50 * time.Millisecond)
	before := r.allCount()
	time.Sleep(150 * time.Millisecond)
	if after := r.allCount(); after != before {
		t.Errorf("refreshes continued after fatal stop: %d -> %d", before, after)
	}
}

func TestOnDelta_IgnoredAfterDispose(t *testing.T) {
	r := &fakeRefresher{}
	d := New(fastThresholds(), r, quietLogger())
	d.Dispose()

	notified := 0
	d.AddObserver(func(LabelEvent) { notified++ })

	d.OnDelta(&delta.Node{Path: ".", Kind: delta.Changed, Dir: true})
	if notified != 0 {
		t.Errorf("observer invoked %d times after Dispose, want 0", notified)
	}
}

func TestClassify_UsesConstructionThresholds(t *testing.T) {
	d := New(freshness.NewThresholds(1), &fakeRefresher{}, quietLogger())
	defer d.Dispose()

	now := time.Unix(1_000_000, 0)
	if got := d.Classify(now, now); got != freshness.Hot {
		t.Errorf("fresh file: %v, want hot", got)
	}
	if got := d.Classify(now.Add(-15*time.Second), now); got != freshness.Cold {
		t.Errorf("15s old: %v, want cold", got)
	}
	if got := d.Classify(now.Add(-200*time.Second), now); got != freshness.None {
		t.Errorf("200s old: %v, want none", got)
	}
}
