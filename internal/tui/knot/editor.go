package knot

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/Paintersrp/knot/internal/editor"
)

// editorFinishedMsg arrives once the editor has exited and the terminal is
// back under the program's control.
type editorFinishedMsg struct {
	path string
	err  error
}

// openSelected hands the selected note to the editor. Key input is dropped
// until editorFinishedMsg arrives.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	n, ok := m.nav.SelectedNote()
	if !ok {
		return m, nil
	}

	m.editing = true
	m.log.WithField("path", n.Path).Info("handing off to editor")

	path := n.Path
	h := editor.NewHandoff(m.launcher, path)
	return m, m.exec(h, func(err error) tea.Msg {
		return editorFinishedMsg{path: path, err: err}
	})
}

// handleEditorFinished refreshes everything the editor may have changed:
// the cached content and stats for the note, then the note list.
func (m Model) handleEditorFinished(msg editorFinishedMsg) (tea.Model, tea.Cmd) {
	m.editing = false
	m.notes.Invalidate(msg.path)

	cmds := []tea.Cmd{m.reloadNotes(true), m.loadSelected()}

	switch {
	case msg.err == nil:
		m.log.WithField("path", msg.path).Debug("editor closed")
	case errors.Is(msg.err, editor.ErrLaunchFailed):
		cmds = append(cmds, m.fail("open editor", msg.err))
	default:
		m.log.WithFields(logrus.Fields{"path": msg.path, "error": msg.err}).Warn("editor exited abnormally")
		cmds = append(cmds, m.setStatus(msg.err.Error(), true))
	}

	return m, tea.Batch(cmds...)
}
