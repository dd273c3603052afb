package knot

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/knot/internal/constants"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	// header, input/status line, help line
	chromeLines = 3
	paneBorder  = 2
)

type layout struct {
	zen          bool
	catWidth     int
	noteWidth    int
	previewWidth int
	paneHeight   int
	previewText  int
}

func (m Model) layout() layout {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	fw, fh := appStyle.GetFrameSize()
	inner := max(width-fw, 40)

	l := layout{paneHeight: max(height-fh-chromeLines-paneBorder, 3)}
	if _, ok := m.mode.(zenMode); ok {
		l.zen = true
		l.previewWidth = inner
	} else {
		l.catWidth = max(inner/5, 16)
		l.noteWidth = max(inner/4, 20)
		l.previewWidth = max(inner-l.catWidth-l.noteWidth, 20)
	}
	l.previewText = max(l.previewWidth-paneStyle.GetHorizontalFrameSize(), 10)
	return l
}

func (m Model) View() string {
	l := m.layout()

	var body string
	if l.zen {
		body = m.previewView(l)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.categoriesView(l),
			m.notesView(l),
			m.previewView(l),
		)
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		body,
		m.footerView(),
	))
}

func (m Model) headerView() string {
	parts := []string{
		titleStyle.Render(constants.AppName),
		modeStyle.Render(m.mode.kind().String()),
		dimStyle.Render(m.store.Root()),
	}
	if _, filtering := m.mode.(filteringMode); !filtering && m.nav.FilterActive() {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("filter %q on %s", m.nav.FilterQuery(), m.nav.FilterPane())))
	}
	return strings.Join(parts, " ")
}

func (m Model) categoriesView(l layout) string {
	focused := m.nav.Focus() == FocusCategories
	visible := m.nav.VisibleCategories()
	textWidth := l.catWidth - paneStyle.GetHorizontalFrameSize() - 2

	var lines []string
	if len(visible) == 0 {
		lines = append(lines, dimStyle.Render("empty, c to create"))
	}

	start, end := listWindow(len(visible), m.nav.CategoryIndex(), l.paneHeight-1)
	for i := start; i < end; i++ {
		color := m.palette[m.nav.CategoryPosition(i)%len(m.palette)]
		name := truncate(visible[i].Name, textWidth)

		switch {
		case i == m.nav.CategoryIndex() && focused:
			lines = append(lines, "› "+selectedStyle.Copy().Foreground(color.GetForeground()).Render(name))
		case i == m.nav.CategoryIndex():
			lines = append(lines, "› "+color.Render(name))
		default:
			lines = append(lines, "  "+color.Render(name))
		}
	}

	return renderPane("Categories", lines, l.catWidth, l.paneHeight, focused)
}

func (m Model) notesView(l layout) string {
	focused := m.nav.Focus() == FocusNotes
	visible := m.nav.VisibleNotes()
	textWidth := l.noteWidth - paneStyle.GetHorizontalFrameSize() - 2

	title := "Notes"
	if c, ok := m.nav.SelectedCategory(); ok {
		title += " · " + c.Name
	}

	var lines []string
	if len(visible) == 0 {
		lines = append(lines, dimStyle.Render("empty, n to create"))
	}

	start, end := listWindow(len(visible), m.nav.NoteIndex(), l.paneHeight-1)
	for i := start; i < end; i++ {
		name := truncate(visible[i].Title, textWidth)

		switch {
		case i == m.nav.NoteIndex() && focused:
			lines = append(lines, "› "+selectedStyle.Render(name))
		case i == m.nav.NoteIndex():
			lines = append(lines, "› "+name)
		default:
			lines = append(lines, "  "+name)
		}
	}

	return renderPane(title, lines, l.noteWidth, l.paneHeight, focused)
}

func (m Model) previewView(l layout) string {
	n, ok := m.nav.SelectedNote()
	if !ok {
		return renderPane("Preview", []string{dimStyle.Render("no note selected")}, l.previewWidth, l.paneHeight, false)
	}

	entry, ok := m.notes.Peek(n.Path)
	if !ok {
		return renderPane(n.Title, []string{dimStyle.Render("loading…")}, l.previewWidth, l.paneHeight, false)
	}

	lines := []string{statsStyle.Render(statsLine(entry))}
	body := strings.Split(strings.TrimRight(entry.preview, "\n"), "\n")
	if room := l.paneHeight - 2; len(body) > room {
		body = body[:max(room, 0)]
	}
	lines = append(lines, body...)

	return renderPane(n.Title, lines, l.previewWidth, l.paneHeight, false)
}

func (m Model) footerView() string {
	var line string
	switch md := m.mode.(type) {
	case filteringMode, creatingNoteMode, creatingCategoryMode:
		line = m.input.View()
	case confirmDeleteMode:
		what := "note " + md.target.label()
		if md.target.pane == FocusCategories {
			what = "category " + md.target.label() + " and all of its notes"
		}
		line = promptStyle.Render(fmt.Sprintf("Delete %s? (y/N)", what))
	}

	if m.status.text != "" {
		style := statusStyle
		if m.status.err {
			style = errorStyle
		}
		if line != "" {
			line += "  "
		}
		line += style.Render(m.status.text)
	}

	helpView := m.help.View(normalHelp(m.keys))
	switch m.mode.(type) {
	case filteringMode, creatingNoteMode, creatingCategoryMode:
		helpView = m.help.View(inputHelp(m.keys))
	}

	return lipgloss.JoinVertical(lipgloss.Left, line, helpView)
}

func statsLine(e noteEntry) string {
	line := fmt.Sprintf("%d words · %d min read", e.stats.Words, e.stats.Minutes)
	if e.stats.Tasks > 0 {
		line += fmt.Sprintf(" · %d/%d tasks", e.stats.TasksDone, e.stats.Tasks)
	}
	return line
}

func renderPane(title string, lines []string, width, height int, focused bool) string {
	style := paneStyle
	if focused {
		style = focusedPaneStyle
	}

	content := titleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return style.
		Width(max(width-paneBorder, 1)).
		Height(height).
		MaxHeight(height + paneBorder).
		Render(content)
}

// listWindow returns the slice bounds of a list of count items that keeps
// selected visible within height rows.
func listWindow(count, selected, height int) (int, int) {
	if height <= 0 || count <= height {
		return 0, count
	}
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	return start, start + height
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
