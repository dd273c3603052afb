package knot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/knot/internal/config"
	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/editor"
	"github.com/Paintersrp/knot/internal/storage"
	"github.com/Paintersrp/knot/internal/watcher"
)

type harness struct {
	root     string
	launched []string
	copied   []string
	launch   func(path string) (int, error)
}

// vault lays out categories and notes below a temp root. Each note gets a
// heading line as content.
func vault(t *testing.T, layout map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	for cat, notes := range layout {
		require.NoError(t, os.Mkdir(filepath.Join(root, cat), 0o755))
		for _, n := range notes {
			path := filepath.Join(root, cat, n+constants.NoteExt)
			require.NoError(t, os.WriteFile(path, []byte("# "+n+"\n"), 0o644))
		}
	}
	return root
}

func newTestModel(t *testing.T, layout map[string][]string, mutate func(*config.Config)) (Model, *harness) {
	t.Helper()

	h := &harness{root: vault(t, layout)}
	store, err := storage.NewFS(h.root)
	require.NoError(t, err)

	cfg := config.Default(t.TempDir())
	if mutate != nil {
		mutate(cfg)
	}

	m, err := New(Options{
		Store:  store,
		Config: cfg,
		Launcher: editor.LauncherFunc(func(path string, _ editor.Stdio) (int, error) {
			h.launched = append(h.launched, path)
			if h.launch != nil {
				return h.launch(path)
			}
			return 0, nil
		}),
	})
	require.NoError(t, err)

	m.exec = func(hd *editor.Handoff, fn func(error) tea.Msg) tea.Cmd {
		return func() tea.Msg { return fn(hd.Run()) }
	}
	m.copy = func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}
	m.render = func(s string, _ int) (string, error) { return s, nil }

	// Normalise to the store's resolved root.
	h.root = store.Root()
	return m, h
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return nm, cmd
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = send(t, m, keyMsg(k))
	}
	return m
}

func visibleCategories(m Model) []string {
	nav := m.Nav()
	var names []string
	for _, c := range nav.VisibleCategories() {
		names = append(names, c.Name)
	}
	return names
}

func visibleNotes(m Model) []string {
	nav := m.Nav()
	var names []string
	for _, n := range nav.VisibleNotes() {
		names = append(names, n.Name)
	}
	return names
}

func selected(m Model) (string, string) {
	nav := m.Nav()
	c, _ := nav.SelectedCategory()
	n, _ := nav.SelectedNote()
	return c.Name, n.Name
}

func TestNewSelectsFirstCategoryAndNote(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{
		"Work":     {"b", "a"},
		"Personal": {"z"},
	}, nil)

	cat, note := selected(m)
	assert.Equal(t, "Personal", cat)
	assert.Equal(t, "z.md", note)
	assert.Equal(t, ModeNormal, m.Mode())

	nav := m.Nav()
	assert.Equal(t, FocusCategories, nav.Focus())
}

func TestNewEmptyVault(t *testing.T) {
	m, _ := newTestModel(t, nil, nil)

	nav := m.Nav()
	assert.Equal(t, -1, nav.CategoryIndex())
	assert.Equal(t, -1, nav.NoteIndex())

	m = press(t, m, "j", "k", "d", "n", "enter")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.NotContains(t, m.View(), "›")
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestTabTwiceRestoresFocus(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)

	m = press(t, m, "tab")
	nav := m.Nav()
	assert.Equal(t, FocusNotes, nav.Focus())

	m = press(t, m, "tab")
	nav = m.Nav()
	assert.Equal(t, FocusCategories, nav.Focus())
}

func TestMovingCategoryReloadsNotes(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{
		"Alpha": {"one"},
		"Beta":  {"two", "three"},
	}, nil)

	m = press(t, m, "j")
	cat, note := selected(m)
	assert.Equal(t, "Beta", cat)
	assert.Equal(t, "three.md", note)
	assert.Equal(t, []string{"three.md", "two.md"}, visibleNotes(m))

	m = press(t, m, "j")
	cat, _ = selected(m)
	assert.Equal(t, "Beta", cat, "moving past the end stays on the last item")
}

func TestCreateNoteSelectsIt(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a", "b"}}, nil)

	m = press(t, m, "tab", "n")
	require.Equal(t, ModeCreatingNote, m.Mode())

	m = press(t, m, "c", "enter")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, visibleNotes(m))

	_, note := selected(m)
	assert.Equal(t, "c.md", note)

	data, err := os.ReadFile(filepath.Join(h.root, "Work", "c.md"))
	require.NoError(t, err)
	assert.Equal(t, "# c\n", string(data))
	assert.Contains(t, m.Status(), "created Work/c.md")
}

func TestCreateNoteInvalidNameKeepsMode(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)

	m = press(t, m, "n", "x/y", "enter")
	assert.Equal(t, ModeCreatingNote, m.Mode())
	assert.Contains(t, m.Status(), "invalid name")

	m = press(t, m, "a", "enter")
	assert.Equal(t, ModeCreatingNote, m.Mode(), "input keeps the typed value")
	assert.Contains(t, m.Status(), "invalid name")

	m = press(t, m, "esc")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, []string{"a.md"}, visibleNotes(m))
}

func TestCreateNoteConflictKeepsMode(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)
	path := filepath.Join(h.root, "Work", "a.md")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

	m = press(t, m, "n", "a", "enter")
	assert.Equal(t, ModeCreatingNote, m.Mode())
	assert.Contains(t, m.Status(), "name already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestCreateCategorySelectsIt(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)

	m = press(t, m, "c", "  Archive ", "enter")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, []string{"Archive", "Work"}, visibleCategories(m))

	cat, note := selected(m)
	assert.Equal(t, "Archive", cat)
	assert.Empty(t, note)
	assert.DirExists(t, filepath.Join(h.root, "Archive"))
}

func TestCreateCategoryClearsHidingFilter(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{"Work": nil, "Wombat": nil}, func(c *config.Config) {
		c.FilterCommit = constants.FilterCommitRetain
	})

	m = press(t, m, "/", "wo", "enter")
	nav := m.Nav()
	require.True(t, nav.FilterActive())

	m = press(t, m, "c", "Zeta", "enter")
	nav = m.Nav()
	assert.False(t, nav.FilterActive())
	cat, _ := selected(m)
	assert.Equal(t, "Zeta", cat)
}

func TestFilterNarrowsCategories(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{
		"Work":     nil,
		"Personal": nil,
		"Wombat":   nil,
	}, nil)

	m = press(t, m, "/")
	require.Equal(t, ModeFiltering, m.Mode())

	m = press(t, m, "w", "o")
	assert.Equal(t, []string{"Wombat", "Work"}, visibleCategories(m))
	cat, _ := selected(m)
	assert.Equal(t, "Wombat", cat)

	m = press(t, m, "backspace", "backspace")
	assert.Equal(t, []string{"Personal", "Wombat", "Work"}, visibleCategories(m))
}

func TestFilterSpaceMatchesOnlyNamesWithSpaces(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{
		"Work":     nil,
		"Personal": nil,
		"My Notes": nil,
	}, nil)

	m = press(t, m, "/", "space")
	assert.Equal(t, []string{"My Notes"}, visibleCategories(m))
	cat, _ := selected(m)
	assert.Equal(t, "My Notes", cat)

	m = press(t, m, "space")
	assert.Empty(t, visibleCategories(m))

	nav := m.Nav()
	assert.Equal(t, -1, nav.CategoryIndex())
}

func TestFilterCommitClear(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{
		"Work":     nil,
		"Personal": nil,
		"Wombat":   nil,
	}, nil)

	m = press(t, m, "/", "wor", "enter")
	assert.Equal(t, ModeNormal, m.Mode())

	nav := m.Nav()
	assert.False(t, nav.FilterActive())
	assert.Equal(t, []string{"Personal", "Wombat", "Work"}, visibleCategories(m))
	cat, _ := selected(m)
	assert.Equal(t, "Work", cat)
}

func TestFilterCommitRetain(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{
		"Work":     nil,
		"Personal": nil,
		"Wombat":   nil,
	}, func(c *config.Config) {
		c.FilterCommit = constants.FilterCommitRetain
	})

	m = press(t, m, "/", "wo", "enter")
	assert.Equal(t, ModeNormal, m.Mode())

	nav := m.Nav()
	assert.True(t, nav.FilterActive())
	assert.Equal(t, []string{"Wombat", "Work"}, visibleCategories(m))
	assert.Contains(t, m.View(), `filter "wo"`)
}

func TestFilterEscRestoresSelection(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{
		"Work":     nil,
		"Personal": nil,
		"Wombat":   nil,
	}, nil)

	m = press(t, m, "j", "j")
	cat, _ := selected(m)
	require.Equal(t, "Work", cat)

	m = press(t, m, "/", "wom", "esc")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, []string{"Personal", "Wombat", "Work"}, visibleCategories(m))
	cat, _ = selected(m)
	assert.Equal(t, "Work", cat)
}

func TestOpenNoteRecomputesStats(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)
	path := filepath.Join(h.root, "Work", "a.md")

	h.launch = func(p string) (int, error) {
		return 0, os.WriteFile(p, []byte("one two three four five\n\n- [x] done\n- [ ] todo\n"), 0o644)
	}

	m, cmd := send(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)

	// Keys are dropped while the editor owns the terminal.
	m = press(t, m, "tab")
	nav := m.Nav()
	assert.Equal(t, FocusCategories, nav.Focus())

	m, _ = send(t, m, cmd())
	assert.Equal(t, []string{path}, h.launched)

	entry, ok := m.notes.Peek(path)
	require.True(t, ok)
	assert.Equal(t, 12, entry.stats.Words)
	assert.Equal(t, 2, entry.stats.Tasks)
	assert.Equal(t, 1, entry.stats.TasksDone)
	assert.Empty(t, m.Status())

	m = press(t, m, "tab")
	nav = m.Nav()
	assert.Equal(t, FocusNotes, nav.Focus(), "keys are handled again once the editor exits")
}

func TestOpenLaunchFailure(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a", "b"}}, nil)
	h.launch = func(string) (int, error) { return -1, errors.New("executable file not found") }

	m = press(t, m, "tab", "j")
	before := m.Nav()

	m, cmd := send(t, m, keyMsg("e"))
	m, _ = send(t, m, cmd())

	after := m.Nav()
	assert.Equal(t, before.CategoryIndex(), after.CategoryIndex())
	assert.Equal(t, before.NoteIndex(), after.NoteIndex())
	assert.Contains(t, m.Status(), "open editor")
	assert.True(t, m.status.err)
	assert.False(t, m.editing)
}

func TestOpenAbnormalExit(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)
	h.launch = func(string) (int, error) { return 2, nil }

	m, cmd := send(t, m, keyMsg("enter"))
	m, _ = send(t, m, cmd())

	assert.True(t, m.status.err)
	assert.NotEmpty(t, m.Status())
	assert.Equal(t, ModeNormal, m.Mode())
}

func TestDeleteCancelled(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Alpha": nil, "Beta": nil}, nil)

	m = press(t, m, "j", "d")
	require.Equal(t, ModeConfirmingDelete, m.Mode())
	assert.Contains(t, m.View(), "Delete category Beta")

	m = press(t, m, "x")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, "delete cancelled", m.Status())
	assert.DirExists(t, filepath.Join(h.root, "Beta"))
	assert.Equal(t, []string{"Alpha", "Beta"}, visibleCategories(m))
}

func TestDeleteCategorySelectsPrevious(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{
		"Alpha": {"one"},
		"Beta":  {"two"},
		"Gamma": nil,
	}, nil)

	m = press(t, m, "j", "d", "y")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.NoDirExists(t, filepath.Join(h.root, "Beta"))
	assert.Equal(t, []string{"Alpha", "Gamma"}, visibleCategories(m))

	cat, note := selected(m)
	assert.Equal(t, "Alpha", cat)
	assert.Equal(t, "one.md", note)
}

func TestDeleteNoteSelectsPrevious(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a", "b", "c"}}, nil)

	m = press(t, m, "tab", "j", "j", "d", "enter")
	assert.NoFileExists(t, filepath.Join(h.root, "Work", "c.md"))
	assert.Equal(t, []string{"a.md", "b.md"}, visibleNotes(m))

	_, note := selected(m)
	assert.Equal(t, "b.md", note)

	m = press(t, m, "k", "d", "y")
	_, note = selected(m)
	assert.Equal(t, "b.md", note, "deleting the first note selects the new first")
}

func TestZenTogglesAndHidesSidebars(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)
	assert.Contains(t, m.View(), "Categories")

	m = press(t, m, "z")
	assert.Equal(t, ModeZen, m.Mode())
	view := m.View()
	assert.NotContains(t, view, "Categories")
	assert.Contains(t, view, "ZEN")

	m = press(t, m, "z")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Contains(t, m.View(), "Categories")
}

func TestZenWidensPreview(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	normal := m.layout()
	m = press(t, m, "z")
	zen := m.layout()

	assert.Greater(t, zen.previewText, normal.previewText)

	nav := m.Nav()
	n, _ := nav.SelectedNote()
	entry, ok := m.notes.Peek(n.Path)
	require.True(t, ok)
	assert.Equal(t, zen.previewText, entry.width)
}

func TestYankCopiesPath(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)

	m = press(t, m, "Y")
	assert.Equal(t, []string{filepath.Join(h.root, "Work", "a.md")}, h.copied)
	assert.True(t, strings.HasPrefix(m.Status(), "copied "))
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil, nil)

	_, cmd := send(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestStatusClearsOnlyForLatestID(t *testing.T) {
	m, _ := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)

	m = press(t, m, "Y")
	first := m.status.id
	m = press(t, m, "d", "n")
	require.Equal(t, "delete cancelled", m.Status())

	m, _ = send(t, m, clearStatusMsg{id: first})
	assert.Equal(t, "delete cancelled", m.Status())

	m, _ = send(t, m, clearStatusMsg{id: m.status.id})
	assert.Empty(t, m.Status())
}

func TestVaultChangeRefreshesLists(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)

	require.NoError(t, os.Mkdir(filepath.Join(h.root, "Zeta"), 0o755))
	m, _ = send(t, m, watcher.ChangedMsg{Path: "Zeta", Category: true})
	assert.Equal(t, []string{"Work", "Zeta"}, visibleCategories(m))

	path := filepath.Join(h.root, "Work", "b.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	m, _ = send(t, m, watcher.ChangedMsg{Path: "Work/b.md"})
	assert.Equal(t, []string{"a.md", "b.md"}, visibleNotes(m))

	_, note := selected(m)
	assert.Equal(t, "a.md", note, "selection survives a refresh")
}

func TestVaultChangeInvalidatesCachedNote(t *testing.T) {
	m, h := newTestModel(t, map[string][]string{"Work": {"a"}}, nil)
	path := filepath.Join(h.root, "Work", "a.md")

	require.NoError(t, os.WriteFile(path, []byte("one two three"), 0o644))
	m, _ = send(t, m, watcher.ChangedMsg{Path: "Work/a.md"})

	entry, ok := m.notes.Peek(path)
	require.True(t, ok)
	assert.Equal(t, 3, entry.stats.Words)
}

func TestListWindow(t *testing.T) {
	tests := []struct {
		count, selected, height int
		start, end              int
	}{
		{count: 3, selected: 0, height: 10, start: 0, end: 3},
		{count: 20, selected: 0, height: 5, start: 0, end: 5},
		{count: 20, selected: 4, height: 5, start: 0, end: 5},
		{count: 20, selected: 5, height: 5, start: 1, end: 6},
		{count: 20, selected: 19, height: 5, start: 15, end: 20},
		{count: 4, selected: -1, height: 0, start: 0, end: 4},
	}

	for _, tt := range tests {
		start, end := listWindow(tt.count, tt.selected, tt.height)
		assert.Equal(t, tt.start, start, "%+v", tt)
		assert.Equal(t, tt.end, end, "%+v", tt)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long…", truncate("longer name", 5))
	assert.Equal(t, "…", truncate("abc", 1))
	assert.Equal(t, "", truncate("abc", 0))
}
