package knot

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"

	"github.com/Paintersrp/knot/internal/cache"
	"github.com/Paintersrp/knot/internal/config"
	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/editor"
	"github.com/Paintersrp/knot/internal/state"
	"github.com/Paintersrp/knot/internal/storage"
	"github.com/Paintersrp/knot/internal/textstats"
	"github.com/Paintersrp/knot/internal/watcher"
)

const (
	statusTimeout = 4 * time.Second
	noteCacheSize = 64
	nameCharLimit = 128
)

type Options struct {
	Store    storage.Store
	Launcher editor.Launcher
	Config   *config.Config
	Logger   logrus.FieldLogger
	Watcher  *watcher.VaultWatcher
}

// noteEntry is the cached content of one note. preview was rendered at
// width and is redone when the layout changes.
type noteEntry struct {
	content string
	stats   textstats.Stats
	preview string
	width   int
}

type status struct {
	text string
	err  bool
	id   int
}

type clearStatusMsg struct {
	id int
}

type Model struct {
	store    storage.Store
	launcher editor.Launcher
	cfg      *config.Config
	log      logrus.FieldLogger
	watcher  *watcher.VaultWatcher

	nav   Nav
	mode  mode
	input textinput.Model
	keys  keyMap
	help  help.Model

	notes   *cache.LRU[string, noteEntry]
	palette []lipgloss.Style
	status  status
	editing bool
	width   int
	height  int

	startup tea.Cmd

	exec   func(*editor.Handoff, func(error) tea.Msg) tea.Cmd
	copy   func(string) error
	render func(content string, width int) (string, error)
}

// New lists the vault and selects the first category and note. A storage
// failure here is returned so startup can abort.
func New(opts Options) (Model, error) {
	if opts.Store == nil {
		return Model{}, errors.New("knot: a store is required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default("")
	}
	palette := cfg.Palette
	if len(palette) == 0 {
		palette = constants.Palette[:]
	}

	log := opts.Logger
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}

	launcher := opts.Launcher
	if launcher == nil {
		launcher = editor.NewCommandLauncher(cfg, opts.Store.Root())
	}

	input := textinput.New()
	input.CharLimit = nameCharLimit

	m := Model{
		store:    opts.Store,
		launcher: launcher,
		cfg:      cfg,
		log:      log,
		watcher:  opts.Watcher,
		nav:      NewNav(),
		mode:     normalMode{},
		input:    input,
		keys:     newKeyMap(),
		help:     help.New(),
		notes:    cache.NewLRU[string, noteEntry](noteCacheSize),
		palette:  paletteStyles(palette),
		exec:     editor.Exec,
		copy:     clipboard.WriteAll,
		render:   renderMarkdown,
	}

	cats, err := m.store.Categories()
	if err != nil {
		return Model{}, fmt.Errorf("list categories: %w", err)
	}
	m.nav.SetCategories(cats)

	if c, ok := m.nav.SelectedCategory(); ok {
		notes, err := m.store.Notes(c.Name)
		if err != nil {
			return Model{}, fmt.Errorf("list notes: %w", err)
		}
		m.nav.SetNotes(notes, false)
	}
	m.startup = m.loadSelected()

	return m, nil
}

// Run starts the interactive program on the alternate screen.
func Run(s *state.State) error {
	m, err := New(Options{
		Store:    s.Store,
		Launcher: s.Launcher,
		Config:   s.Config,
		Logger:   s.Logger,
		Watcher:  s.Watcher,
	})
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startup, m.watcher.Start())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, m.loadSelected()

	case tea.KeyMsg:
		// The editor owns the terminal until editorFinishedMsg arrives.
		if m.editing {
			return m, nil
		}
		return m.handleKey(msg)

	case editorFinishedMsg:
		return m.handleEditorFinished(msg)

	case clearStatusMsg:
		if msg.id == m.status.id {
			m.status.text = ""
		}
		return m, nil

	case watcher.ChangedMsg:
		return m, tea.Batch(m.handleVaultChange(msg), m.watcher.Start())

	case watcher.ErrMsg:
		m.log.WithError(msg.Err).Warn("vault watcher error")
		return m, m.watcher.Start()
	}

	return m, nil
}

// Mode reports the active mode.
func (m Model) Mode() ModeKind { return m.mode.kind() }

// Nav returns a copy of the navigation state.
func (m Model) Nav() Nav { return m.nav }

// Status returns the transient message, if any.
func (m Model) Status() string { return m.status.text }

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch md := m.mode.(type) {
	case normalMode:
		return m.updateNormal(msg)
	case zenMode:
		return m.updateZen(msg)
	case filteringMode:
		return m.updateFiltering(msg)
	case creatingNoteMode:
		return m.updateCreatingNote(msg, md)
	case creatingCategoryMode:
		return m.updateCreatingCategory(msg)
	case confirmDeleteMode:
		return m.updateConfirmDelete(msg, md)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.zen) {
		m.mode = zenMode{}
		return m, m.loadSelected()
	}
	return m.browse(msg)
}

func (m Model) updateZen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.zen) {
		m.mode = normalMode{}
		return m, m.loadSelected()
	}
	return m.browse(msg)
}

// browse handles the keys shared by Normal and Zen.
func (m Model) browse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.switchFocus):
		m.nav.SwitchFocus()

	case key.Matches(msg, m.keys.up):
		return m, m.afterSelection(m.nav.MoveUp())

	case key.Matches(msg, m.keys.down):
		return m, m.afterSelection(m.nav.MoveDown())

	case key.Matches(msg, m.keys.open):
		return m.openSelected()

	case key.Matches(msg, m.keys.filter):
		m.nav.StartFilter()
		return m, m.enterInput(filteringMode{}, "/ ", "filter "+m.nav.Focus().String())

	case key.Matches(msg, m.keys.newNote):
		c, ok := m.nav.SelectedCategory()
		if !ok {
			return m, nil
		}
		return m, m.enterInput(creatingNoteMode{category: c.Name}, "New note in "+c.Name+": ", "name")

	case key.Matches(msg, m.keys.newCategory):
		return m, m.enterInput(creatingCategoryMode{}, "New category: ", "name")

	case key.Matches(msg, m.keys.delete):
		t, ok := m.deleteTarget()
		if !ok {
			return m, nil
		}
		m.mode = confirmDeleteMode{target: t}

	case key.Matches(msg, m.keys.yank):
		n, ok := m.nav.SelectedNote()
		if !ok {
			return m, nil
		}
		if err := m.copy(n.Path); err != nil {
			return m, m.fail("copy path", err)
		}
		return m, m.notify("copied " + n.Path)
	}

	return m, nil
}

func (m Model) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel, m.keys.forceQuitInput):
		changed := m.nav.CancelFilter()
		m.exitInput()
		return m, m.afterSelection(changed)

	case key.Matches(msg, m.keys.submit):
		retain := m.cfg.FilterCommit == constants.FilterCommitRetain
		changed := m.nav.CommitFilter(retain)
		m.exitInput()
		return m, m.afterSelection(changed)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	changed := m.nav.SetFilterQuery(m.input.Value())
	return m, tea.Batch(cmd, m.afterSelection(changed))
}

func (m Model) updateCreatingNote(msg tea.KeyMsg, md creatingNoteMode) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel, m.keys.forceQuitInput):
		m.exitInput()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m.commitNote(md.category)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateCreatingCategory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel, m.keys.forceQuitInput):
		m.exitInput()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m.commitCategory()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg, md confirmDeleteMode) (tea.Model, tea.Cmd) {
	m.mode = normalMode{}
	if !key.Matches(msg, m.keys.confirm) {
		return m, m.notify("delete cancelled")
	}
	return m.commitDelete(md.target)
}

func (m Model) commitNote(category string) (tea.Model, tea.Cmd) {
	note, err := m.store.CreateNote(category, m.input.Value())
	if err != nil {
		if !keepsInput(err) {
			m.exitInput()
		}
		return m, m.fail("create note", err)
	}
	m.exitInput()

	m.log.WithFields(logrus.Fields{"category": category, "note": note.Name}).Info("created note")

	cmds := []tea.Cmd{m.reloadNotes(true)}
	if !m.nav.SelectNoteNamed(note.Name) {
		m.nav.ClearFilter()
		m.nav.SelectNoteNamed(note.Name)
	}
	cmds = append(cmds, m.loadSelected(), m.notify("created "+category+"/"+note.Name))
	return m, tea.Batch(cmds...)
}

func (m Model) commitCategory() (tea.Model, tea.Cmd) {
	cat, err := m.store.CreateCategory(m.input.Value())
	if err != nil {
		if !keepsInput(err) {
			m.exitInput()
		}
		return m, m.fail("create category", err)
	}
	m.exitInput()

	m.log.WithField("category", cat.Name).Info("created category")

	_, cmd := m.reloadCategories()
	if !m.nav.SelectCategoryNamed(cat.Name) {
		m.nav.ClearFilter()
		m.nav.SelectCategoryNamed(cat.Name)
	}
	return m, tea.Batch(cmd, m.reloadNotes(false), m.loadSelected(), m.notify("created "+cat.Name))
}

func (m Model) commitDelete(t deleteTarget) (tea.Model, tea.Cmd) {
	fields := logrus.Fields{"target": t.label(), "pane": t.pane.String()}

	if t.pane == FocusNotes {
		if err := m.store.DeleteNote(t.category, t.note); err != nil {
			return m, m.fail("delete note", err)
		}
		m.notes.Invalidate(t.path)
		m.log.WithFields(fields).Info("deleted note")

		cmd := m.reloadNotes(true)
		m.nav.SelectNote(max(t.position-1, 0))
		return m, tea.Batch(cmd, m.loadSelected(), m.notify("deleted "+t.label()))
	}

	if err := m.store.DeleteCategory(t.category); err != nil {
		return m, m.fail("delete category", err)
	}
	m.notes.Purge()
	m.log.WithFields(fields).Info("deleted category")

	_, cmd := m.reloadCategories()
	m.nav.SelectCategory(max(t.position-1, 0))
	return m, tea.Batch(cmd, m.reloadNotes(false), m.loadSelected(), m.notify("deleted "+t.label()))
}

func (m *Model) deleteTarget() (deleteTarget, bool) {
	if m.nav.Focus() == FocusNotes {
		n, ok := m.nav.SelectedNote()
		if !ok {
			return deleteTarget{}, false
		}
		return deleteTarget{
			pane:     FocusNotes,
			category: n.Category,
			note:     n.Name,
			path:     n.Path,
			position: m.nav.NoteIndex(),
		}, true
	}

	c, ok := m.nav.SelectedCategory()
	if !ok {
		return deleteTarget{}, false
	}
	return deleteTarget{
		pane:     FocusCategories,
		category: c.Name,
		path:     c.Path,
		position: m.nav.CategoryIndex(),
	}, true
}

func keepsInput(err error) bool {
	return errors.Is(err, storage.ErrInvalidName) || errors.Is(err, storage.ErrNameConflict)
}

func (m *Model) enterInput(md mode, prompt, placeholder string) tea.Cmd {
	m.mode = md
	m.input.Reset()
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m *Model) exitInput() {
	m.input.Blur()
	m.input.Reset()
	m.mode = normalMode{}
}

// afterSelection reloads the notes when the category changed and loads the
// selected note.
func (m *Model) afterSelection(categoryChanged bool) tea.Cmd {
	var cmd tea.Cmd
	if categoryChanged {
		cmd = m.reloadNotes(false)
	}
	return tea.Batch(cmd, m.loadSelected())
}

func (m *Model) reloadCategories() (bool, tea.Cmd) {
	cats, err := m.store.Categories()
	if err != nil {
		return false, m.fail("list categories", err)
	}
	return m.nav.SetCategories(cats), nil
}

func (m *Model) reloadNotes(keep bool) tea.Cmd {
	c, ok := m.nav.SelectedCategory()
	if !ok {
		m.nav.SetNotes(nil, keep)
		return nil
	}

	notes, err := m.store.Notes(c.Name)
	if err != nil {
		m.nav.SetNotes(nil, keep)
		return m.fail("list notes", err)
	}
	m.nav.SetNotes(notes, keep)
	return nil
}

// loadSelected makes sure the selected note's content, stats and preview
// are cached for the current layout.
func (m *Model) loadSelected() tea.Cmd {
	n, ok := m.nav.SelectedNote()
	if !ok {
		return nil
	}

	entry, hit := m.notes.Get(n.Path)
	if !hit {
		data, err := m.store.ReadNote(n.Path)
		if err != nil {
			return m.fail("read note", err)
		}
		entry = noteEntry{
			content: string(data),
			stats:   textstats.Compute(string(data), m.cfg.ReadingWPM),
			width:   -1,
		}
	}

	if width := m.layout().previewText; entry.width != width {
		preview, err := m.render(entry.content, width)
		if err != nil {
			m.log.WithError(err).WithField("path", n.Path).Warn("preview render failed")
			preview = entry.content
		}
		entry.preview = preview
		entry.width = width
	}

	m.notes.Put(n.Path, entry)
	return nil
}

func (m *Model) handleVaultChange(msg watcher.ChangedMsg) tea.Cmd {
	if !msg.Category {
		m.notes.Invalidate(filepath.Join(m.store.Root(), filepath.FromSlash(msg.Path)))
	}

	changed, cmd := m.reloadCategories()
	return tea.Batch(cmd, m.reloadNotes(!changed), m.loadSelected())
}

func (m *Model) notify(text string) tea.Cmd {
	return m.setStatus(text, false)
}

func (m *Model) fail(op string, err error) tea.Cmd {
	m.log.WithError(err).WithField("op", op).Error("operation failed")
	return m.setStatus(fmt.Sprintf("%s: %v", op, err), true)
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	id := m.status.id + 1
	m.status = status{text: text, err: isErr, id: id}
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func renderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}
