// Package app is the bubbletea front end: a file list decorated with
// freshness badges, kept current by the decorator's refresh requests.
package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ember-tui/ember/internal/config"
	"github.com/ember-tui/ember/internal/freshness"
	"github.com/ember-tui/ember/internal/ui"
)

// refreshAllMsg requests a full redecoration. done is closed once the model
// has applied the update, which is what makes the scheduler's hand-off
// synchronous.
type refreshAllMsg struct {
	done chan struct{}
}

// refreshPathsMsg requests redecoration scoped to the given paths.
type refreshPathsMsg struct {
	paths []string
	done  chan struct{}
}

// fileEntry is one row of the list. Only the identity is kept; the
// modification time is observed at render time, never cached.
type fileEntry struct {
	path string // absolute
	name string // relative to the root, used for display
}

// Model is the root bubbletea model.
type Model struct {
	cfg     *config.Config
	th      freshness.Thresholds
	styles  ui.Styles
	corner  ui.Corner
	rootDir string

	files  []fileEntry
	cursor int

	width  int
	height int

	showPreview bool
	preview     viewport.Model
	highlighter *Highlighter

	status  string
	onClose func()
}

// New builds the root model. onClose runs once when the user quits, giving
// main a place to dispose the decorator and stop the watcher.
func New(cfg *config.Config, th freshness.Thresholds, rootDir string, onClose func()) *Model {
	m := &Model{
		cfg:     cfg,
		th:      th,
		styles:  ui.NewStyles(ui.DefaultPalette()),
		corner:  ui.ParseCorner(cfg.Freshness.Corner),
		rootDir: rootDir,
		preview: viewport.New(0, 0),
		onClose: onClose,
	}
	m.files = scanFiles(rootDir)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.preview.Width = m.width / 2
		m.preview.Height = m.listHeight()
		return m, nil

	case refreshAllMsg:
		m.files = scanFiles(m.rootDir)
		m.clampCursor()
		close(msg.done)
		return m, nil

	case refreshPathsMsg:
		// The identity set only grows when a batch mentions a path we don't
		// know yet; content changes themselves need no bookkeeping because
		// rows stat at render time.
		for _, p := range msg.paths {
			if !m.hasFile(p) {
				m.files = scanFiles(m.rootDir)
				m.clampCursor()
				break
			}
		}
		close(msg.done)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.onClose != nil {
			m.onClose()
		}
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.files)-1 {
			m.cursor++
			m.refreshPreview()
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.refreshPreview()
		}

	case "g":
		m.cursor = 0
		m.refreshPreview()

	case "G":
		m.cursor = len(m.files) - 1
		m.clampCursor()
		m.refreshPreview()

	case "p":
		m.showPreview = !m.showPreview
		m.refreshPreview()

	case "y":
		if f, ok := m.selected(); ok {
			if err := clipboard.WriteAll(f.path); err != nil {
				m.status = "clipboard unavailable"
			} else {
				m.status = "copied " + f.name
			}
		}
	}
	return m, nil
}

// View implements tea.Model. Each row stats its file here so the badge
// always reflects the modification time at decoration time.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	now := time.Now()
	list := m.renderList(now)

	body := list
	if m.showPreview {
		left := lipgloss.NewStyle().Width(m.width / 2).Render(list)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, m.preview.View())
	}

	if m.cfg.UI.ShowLegend {
		body = ui.PlaceLegend(body, m.styles.Legend(), m.corner, m.width)
	}
	if m.cfg.UI.ShowFooter {
		body += "\n" + m.styles.Muted.Render(m.footer())
	}
	return body
}

func (m *Model) renderList(now time.Time) string {
	if len(m.files) == 0 {
		return m.styles.Muted.Render("no files under " + m.rootDir)
	}

	height := m.listHeight()
	start, end := window(m.cursor, len(m.files), height)

	var b strings.Builder
	for i := start; i < end; i++ {
		f := m.files[i]
		badge := " "
		age := ""
		if info, err := os.Stat(f.path); err == nil {
			badge = m.styles.Badge(m.th.Classify(info.ModTime(), now))
			age = m.styles.Muted.Render(formatAge(now.Sub(info.ModTime())))
		}

		name := f.name
		if i == m.cursor {
			name = m.styles.Selected.Render("> " + name)
		} else {
			name = "  " + name
		}
		fmt.Fprintf(&b, "%s %s %s", badge, name, age)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m *Model) footer() string {
	return "j/k move · p preview · y copy path · q quit  " + m.status
}

// listHeight leaves room for the legend and footer lines.
func (m *Model) listHeight() int {
	h := m.height
	if m.cfg.UI.ShowLegend {
		h--
	}
	if m.cfg.UI.ShowFooter {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) selected() (fileEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.files) {
		return fileEntry{}, false
	}
	return m.files[m.cursor], true
}

func (m *Model) hasFile(path string) bool {
	for _, f := range m.files {
		if f.path == path {
			return true
		}
	}
	return false
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.files) {
		m.cursor = len(m.files) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) refreshPreview() {
	if !m.showPreview {
		return
	}
	f, ok := m.selected()
	if !ok {
		m.preview.SetContent("")
		return
	}
	if m.highlighter == nil || m.highlighter.path != f.path {
		m.highlighter = NewHighlighter(f.path)
	}
	m.preview.SetContent(m.highlighter.Render(m.preview.Width))
	m.preview.GotoTop()
}

// scanFiles collects the files under root, skipping the same directories the
// watcher skips. Sorted by relative path.
func scanFiles(root string) []fileEntry {
	var files []fileEntry
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if name == ".git" || name == "node_modules" || name == "vendor" ||
				name == "dist" || name == "build" || name == "__pycache__" {
				return filepath.SkipDir
			}
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, fileEntry{path: path, name: rel})
		return nil
	})
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files
}

// window returns the [start, end) slice of rows to show so the cursor stays
// visible.
func window(cursor, total, height int) (int, int) {
	if total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

// formatAge renders a duration as a compact age like 12s, 4m or 3h.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
