package editor

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Handoff is a tea.ExecCommand. bubbletea releases the terminal before Run
// and restores it afterwards, whatever Run returns. Run always waits for the
// editor so the note is only reloaded once editing is over.
type Handoff struct {
	launcher Launcher
	path     string
	stdio    Stdio
}

var _ tea.ExecCommand = (*Handoff)(nil)

func NewHandoff(l Launcher, path string) *Handoff {
	stdio := DefaultStdio()
	stdio.Block = true
	return &Handoff{launcher: l, path: path, stdio: stdio}
}

func (h *Handoff) Path() string { return h.path }

func (h *Handoff) Run() error {
	code, err := h.launcher.Launch(h.path, h.stdio)
	return Classify(h.path, code, err)
}

func (h *Handoff) SetStdin(r io.Reader) {
	if r != nil {
		h.stdio.In = r
	}
}

func (h *Handoff) SetStdout(w io.Writer) {
	if w != nil {
		h.stdio.Out = w
	}
}

func (h *Handoff) SetStderr(w io.Writer) {
	if w != nil {
		h.stdio.Err = w
	}
}

// Exec suspends the program for the handoff and reports the result through
// fn once the terminal is back.
func Exec(h *Handoff, fn func(error) tea.Msg) tea.Cmd {
	return tea.Exec(h, fn)
}
