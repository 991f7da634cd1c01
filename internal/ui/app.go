package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adriangreen/tm-list/internal/config"
	"github.com/adriangreen/tm-list/internal/logging"
	"github.com/adriangreen/tm-list/internal/tasks"
	"github.com/adriangreen/tm-list/internal/view"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// doubleClickWindow is the longest gap between two presses on the same row
// text that still counts as a double click
const doubleClickWindow = 400 * time.Millisecond

// focusArea is where typed keys go when no row is being edited
type focusArea int

const (
	focusList focusArea = iota
	focusInput
)

// click remembers the last press on row text for double click detection
type click struct {
	row int
	at  time.Time
}

// Model is the main TUI model
type Model struct {
	ctx           context.Context
	config        *config.Config
	configManager *config.ConfigManager
	logger        *slog.Logger

	renderer *view.Renderer

	// Input fields
	input  textinput.Model // new item
	editor textinput.Model // inline edit of the row being edited

	// UI state
	focus     focusArea
	cursor    int
	offset    int
	editing   bool
	lastClick click
	ready     bool
	width     int
	height    int
	showHelp  bool
	status    string
	statusErr bool

	keyMap   KeyMap
	styles   *Styles
	help     help.Model
	now      func() time.Time
	copyText func(string) error
}

// NewModel creates a new TUI model. load is run immediately and again on
// every refresh.
func NewModel(ctx context.Context, cfg *config.Config, configManager *config.ConfigManager, load view.Loader, logger *slog.Logger) Model {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.Prompt = ""
	input.CharLimit = 0

	editor := textinput.New()
	editor.Prompt = ""
	editor.CharLimit = 0

	m := Model{
		ctx:           ctx,
		config:        cfg,
		configManager: configManager,
		logger:        logger,
		renderer:      view.New(ctx, load),
		input:         input,
		editor:        editor,
		keyMap:        NewKeyMap(cfg),
		styles:        NewStyles(cfg.Theme),
		help:          help.New(),
		now:           time.Now,
		copyText:      clipboard.WriteAll,
	}
	m.resetFocus()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.configManager != nil {
		cmds = append(cmds, WaitForConfigReload(m.configManager))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.input.Width = m.inputWidth()
		m.editor.Width = m.textWidth() - 1
		m.clampCursor()
		return m, nil

	case ConfigReloadedMsg:
		if m.configManager == nil {
			return m, nil
		}
		m.config = m.configManager.GetConfig()
		m.keyMap = NewKeyMap(m.config)
		m.styles = NewStyles(m.config.Theme)
		m.setStatus("Config reloaded")
		m.logger.Info("config reloaded", "path", m.configManager.Path())
		return m, WaitForConfigReload(m.configManager)

	case WatcherErrorMsg:
		m.setError(fmt.Errorf("config watcher: %w", msg.Err))
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

// updateFocused forwards other messages, such as cursor blinks, to the
// field that has focus
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.editing:
		m.editor, cmd = m.editor.Update(msg)
	case m.focus == focusInput:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Help overlay has highest priority
	if m.showHelp {
		if key.Matches(msg, m.keyMap.Help) || key.Matches(msg, m.keyMap.Cancel) || key.Matches(msg, m.keyMap.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	// Refresh works from anywhere, as long as it cannot be typed
	if msg.Type != tea.KeyRunes && key.Matches(msg, m.keyMap.Refresh) {
		return m.refresh()
	}

	switch {
	case m.editing:
		return m.handleEditKey(msg)
	case m.focus == focusInput:
		return m.handleInputKey(msg)
	}
	return m.handleListKey(msg)
}

// handleEditKey routes keys to the inline editor
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.apply(m.renderer.KeyEnter())
		return m, nil
	case tea.KeyEsc:
		m.apply(m.renderer.Blur())
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.renderer.SetDraft(m.editor.Value())
	return m, cmd
}

// handleInputKey routes keys to the new item field
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Append):
		m.addItem(m.renderer.Append)
		return m, nil
	case key.Matches(msg, m.keyMap.Submit):
		m.addItem(m.renderer.Submit)
		return m, nil
	case msg.Type == tea.KeyEsc, msg.Type == tea.KeyTab:
		m.focusRows()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.renderer.SetInput(m.input.Value())
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.renderer.Rows()

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.FocusInput), msg.Type == tea.KeyTab:
		return m, m.focusField()

	case key.Matches(msg, m.keyMap.ClearCompleted):
		m.clearCompleted()
		return m, nil

	case key.Matches(msg, m.keyMap.Refresh):
		return m.refresh()

	case key.Matches(msg, m.keyMap.Up):
		m.cursor--
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.cursor++
		m.clampCursor()
		return m, nil
	}

	if len(rows) == 0 {
		return m, nil
	}
	row := rows[m.cursor]

	switch {
	case key.Matches(msg, m.keyMap.Select):
		m.apply(m.renderer.ClickRow(row.Position))

	case key.Matches(msg, m.keyMap.Check):
		m.apply(m.renderer.ClickCheckbox(row.Position, !row.Completed))

	case key.Matches(msg, m.keyMap.MoveUp):
		if !row.ShowReorder() {
			m.setStatus("Deselect the row to move it")
			break
		}
		err := m.renderer.ClickReorder(row.Position)
		if m.apply(err) || errors.Is(err, tasks.ErrPersist) {
			// keep the cursor on the task that moved
			m.cursor = int(row.Position) - 1
			m.clampCursor()
		}

	case key.Matches(msg, m.keyMap.Delete):
		if !row.ShowDelete() {
			m.setStatus("Select the row first to delete it")
			break
		}
		m.apply(m.renderer.ClickDelete(row.Position))

	case key.Matches(msg, m.keyMap.Edit):
		m.apply(m.renderer.DoubleClickText(row.Position))

	case key.Matches(msg, m.keyMap.CopyText):
		if err := m.copyText(row.Description); err != nil {
			m.setError(fmt.Errorf("copy to clipboard: %w", err))
		} else {
			m.setStatus("Copied to clipboard")
		}
	}

	return m, nil
}

// handleMouse maps a left press to the control or row column under it
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	l := m.layout()
	switch {
	case l.refresh.contains(msg.X, msg.Y):
		return m.refresh()
	case l.append.contains(msg.X, msg.Y):
		m.addItem(m.renderer.Append)
		return m, nil
	case l.clear.contains(msg.X, msg.Y):
		m.clearCompleted()
		return m, nil
	case msg.Y == inputRow:
		if m.editing {
			m.apply(m.renderer.Blur())
		}
		return m, m.focusField()
	}

	i, ok := l.rowAt(msg.Y)
	if !ok {
		// empty space takes focus away from the inline editor
		if m.editing {
			m.apply(m.renderer.Blur())
		}
		return m, nil
	}

	row := m.renderer.Rows()[i]
	m.cursor = i
	if !m.editing {
		m.focusRows()
	}

	switch x := msg.X; {
	case x >= cursorWidth && x < cursorWidth+checkboxWidth:
		m.apply(m.renderer.ClickCheckbox(row.Position, !row.Completed))

	case x == l.affordanceX:
		if row.State == view.Selected {
			m.apply(m.renderer.ClickDelete(row.Position))
		} else {
			m.apply(m.renderer.ClickReorder(row.Position))
		}

	case x >= textColumn && x < textColumn+l.textWidth:
		if row.State == view.Editing {
			// presses inside the editor only move its caret
			return m, nil
		}
		now := m.now()
		if m.lastClick.row == i && !m.lastClick.at.IsZero() && now.Sub(m.lastClick.at) <= doubleClickWindow {
			m.lastClick = click{}
			m.apply(m.renderer.DoubleClickText(row.Position))
			return m, nil
		}
		m.lastClick = click{row: i, at: now}
		m.apply(m.renderer.ClickRow(row.Position))

	default:
		m.apply(m.renderer.ClickRow(row.Position))
	}

	return m, nil
}

// apply reports the outcome of a row event and brings the cursor and inline
// editor in line with the rebuilt rows. It returns true on success.
func (m *Model) apply(err error) bool {
	m.syncEditor()
	m.clampCursor()
	if err != nil {
		m.setError(err)
		return false
	}
	m.status = ""
	m.statusErr = false
	return true
}

// addItem runs submit or append and mirrors the field text the renderer kept
func (m *Model) addItem(add func() error) {
	field := m.renderer.Input()
	ok := m.apply(add())
	m.input.SetValue(m.renderer.Input())
	m.input.CursorEnd()
	// the field is cleared only when a task was added
	if ok && field != "" && m.renderer.Input() == "" {
		m.cursor = len(m.renderer.Rows()) - 1
		m.clampCursor()
	}
}

func (m *Model) clearCompleted() {
	n, err := m.renderer.ClearCompleted()
	if m.apply(err) {
		m.setStatus(fmt.Sprintf("Cleared %d completed", n))
	}
}

// refresh commits an edit in progress, throws away everything on screen and
// loads again from storage
func (m Model) refresh() (tea.Model, tea.Cmd) {
	if err := m.renderer.Refresh(); err != nil {
		m.logger.Warn("edit not saved before refresh", "error", err)
	}
	m.input.SetValue("")
	m.editor.SetValue("")
	m.editor.Blur()
	m.editing = false
	m.cursor = 0
	m.offset = 0
	m.lastClick = click{}
	m.showHelp = false
	m.resetFocus()
	m.setStatus("Reloaded from storage")
	m.logger.Debug("refreshed", "rows", len(m.renderer.Rows()))
	return m, nil
}

// syncEditor focuses the inline editor when a row enters editing and
// releases it when editing ends
func (m *Model) syncEditor() {
	row, ok := m.renderer.Editing()
	switch {
	case ok && !m.editing:
		m.editing = true
		m.cursor = int(row.Position)
		m.input.Blur()
		m.editor.SetValue(row.Draft)
		m.editor.CursorEnd()
		m.editor.Focus()
	case !ok && m.editing:
		m.editing = false
		m.editor.Blur()
		m.editor.SetValue("")
	}
}

// resetFocus puts focus on the new item field when there is nothing to
// select, and on the rows otherwise
func (m *Model) resetFocus() {
	if len(m.renderer.Rows()) == 0 {
		m.focus = focusInput
		m.input.Focus()
		return
	}
	m.focusRows()
}

func (m *Model) focusRows() {
	m.focus = focusList
	m.input.Blur()
}

func (m *Model) focusField() tea.Cmd {
	m.focus = focusInput
	return m.input.Focus()
}

// clampCursor keeps the cursor on an existing row and scrolls it into view
func (m *Model) clampCursor() {
	n := len(m.renderer.Rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	limit := m.maxRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+limit {
		m.offset = m.cursor - limit + 1
	}
	if m.offset > n-limit {
		m.offset = n - limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	level := slog.LevelInfo
	if errors.Is(err, tasks.ErrPersist) {
		level = slog.LevelWarn
	}
	m.logger.Log(m.ctx, level, "event failed", "error", err)
}

func (m Model) inputWidth() int {
	w := m.width - 2 - lipgloss.Width(m.styles.Button.Render("+ append")) - 2
	if w < minTextWidth {
		w = minTextWidth
	}
	return w
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	l := m.layout()
	rows := m.renderer.Rows()

	lines := []string{l.header, l.inputLine, ""}
	if len(rows) == 0 {
		lines = append(lines, m.styles.Subtle.Render("  Nothing here yet. Type above and press enter."))
	}
	for i := l.first; i < l.first+l.visible; i++ {
		lines = append(lines, m.renderRow(i, rows[i], l.textWidth))
	}
	lines = append(lines, "", l.footer, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderStatusBar() string {
	if m.status != "" {
		if m.statusErr {
			return m.styles.Error.Render(m.status)
		}
		return m.styles.Success.Render(m.status)
	}
	return m.styles.StatusBar.Render(m.help.ShortHelpView(m.keyMap.ShortHelp()))
}

// describeRow is used by the help overlay to show which row keys act on
func (m Model) describeRow() string {
	rows := m.renderer.Rows()
	if len(rows) == 0 || m.focus != focusList {
		return ""
	}
	row := rows[m.cursor]
	return strings.TrimSpace(fmt.Sprintf("#%d %s (%s)", row.Position, row.Description, row.State))
}
