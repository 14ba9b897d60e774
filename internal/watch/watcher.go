// Package watch turns raw fsnotify events into batched change-notification
// trees. Events arriving within the debounce window are folded into a single
// immutable delta tree rooted at the watched directory.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ember-tui/ember/internal/delta"
)

// debounceDelay is the quiet period before a batch of events becomes a tree.
const debounceDelay = 100 * time.Millisecond

// Watcher monitors a directory tree and emits delta trees on content changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	rootDir   string
	deltas    chan *delta.Node
	stop      chan struct{}

	mu       sync.Mutex
	pending  map[string]pendingChange // abs path -> folded change
	debounce *time.Timer
	closed   bool
}

type pendingChange struct {
	op  fsnotify.Op
	dir bool
}

// New creates a watcher over rootDir and all its subdirectories.
func New(rootDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		rootDir:   rootDir,
		deltas:    make(chan *delta.Node, 4),
		stop:      make(chan struct{}),
		pending:   make(map[string]pendingChange),
	}

	// fsnotify doesn't watch subdirectories automatically
	if err := w.addRecursive(rootDir); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

// addRecursive adds a directory and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil // Skip unreadable subdirectories
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == ".git" || name == "node_modules" || name == "vendor" ||
			name == "dist" || name == "build" || name == "__pycache__" {
			return filepath.SkipDir
		}
		if path != dir && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// run folds fsnotify events into the pending batch.
func (w *Watcher) run() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
		close(w.deltas)
	}()

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.fold(event)

			// Watch newly created directories
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			// Keep watching; the periodic refresh covers missed events.
		}
	}
}

// fold merges one raw event into the pending batch and re-arms the debounce.
func (w *Watcher) fold(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.pending[event.Name]
	p.op |= event.Op
	if info, err := os.Stat(event.Name); err == nil {
		p.dir = info.IsDir()
	}
	w.pending[event.Name] = p

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.flush)
}

// flush builds one delta tree from the pending batch and emits it. The send
// happens under the same mutex hold as the closed check so a concurrent Stop
// cannot close the channel in between.
func (w *Watcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || len(w.pending) == 0 {
		return
	}
	batch := w.pending
	w.pending = make(map[string]pendingChange)

	tree := buildTree(w.rootDir, batch)

	select {
	case w.deltas <- tree:
	default: // Consumer is behind; the periodic refresh covers the gap.
	}
}

// buildTree assembles an immutable delta tree from a batch of folded events.
// Interior directory nodes carry Kind Changed with no content flag.
func buildTree(rootDir string, batch map[string]pendingChange) *delta.Node {
	root := &delta.Node{Path: rootDir, Kind: delta.Changed, Dir: true}
	dirs := map[string]*delta.Node{rootDir: root}

	paths := make([]string, 0, len(batch))
	for p := range batch {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		parent := ensureDir(dirs, rootDir, filepath.Dir(p))
		if p == rootDir {
			continue
		}
		n := &delta.Node{Path: p, Dir: batch[p].dir}
		n.Kind, n.Flags = translate(batch[p].op)
		if n.Dir {
			// Directory nodes never carry the content flag.
			n.Flags &^= delta.Content
			dirs[p] = n
		}
		parent.Children = append(parent.Children, n)
	}
	return root
}

// ensureDir returns the tree node for dir, creating interior nodes up to the
// root as needed. Paths outside the root attach directly to the root.
func ensureDir(dirs map[string]*delta.Node, rootDir, dir string) *delta.Node {
	if n, ok := dirs[dir]; ok {
		return n
	}
	if !strings.HasPrefix(dir, rootDir+string(filepath.Separator)) {
		return dirs[rootDir]
	}
	parent := ensureDir(dirs, rootDir, filepath.Dir(dir))
	n := &delta.Node{Path: dir, Kind: delta.Changed, Dir: true}
	dirs[dir] = n
	parent.Children = append(parent.Children, n)
	return n
}

// translate maps folded fsnotify ops onto a delta kind and flags. A create
// within the window wins over later writes; a remove wins over everything
// else that survived the fold.
func translate(op fsnotify.Op) (delta.Kind, delta.Flags) {
	switch {
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return delta.Removed, 0
	case op&fsnotify.Create != 0:
		return delta.Added, 0
	case op&fsnotify.Write != 0:
		return delta.Changed, delta.Content
	default:
		return delta.Changed, delta.Metadata
	}
}

// Deltas returns the channel of batched change trees.
func (w *Watcher) Deltas() <-chan *delta.Node {
	return w.deltas
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() {
	close(w.stop)
	w.fsWatcher.Close()
}
