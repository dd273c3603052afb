package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/pathutil"
)

// ChangedMsg reports a change below the notes root. Path is relative to the
// root with forward slashes. Category is set when the entry is a category
// directory rather than a note.
type ChangedMsg struct {
	Path     string
	Category bool
}

type ErrMsg struct {
	Err error
}

// VaultWatcher watches the notes root and every category directory. It never
// touches application state; Start returns a command whose message the event
// loop handles.
type VaultWatcher struct {
	watcher *fsnotify.Watcher
	root    string
	done    chan struct{}
	once    sync.Once
}

func New(root string) (*VaultWatcher, error) {
	normalized := pathutil.NormalizePath(root)
	if normalized == "" {
		return nil, errors.New("notes root cannot be empty")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	vw := &VaultWatcher{
		watcher: w,
		root:    normalized,
		done:    make(chan struct{}),
	}

	if err := vw.addTree(); err != nil {
		_ = vw.Close()
		return nil, err
	}

	return vw, nil
}

// Start waits for the next relevant event. Callers issue it again after
// handling each message to keep listening.
func (w *VaultWatcher) Start() tea.Cmd {
	if w == nil {
		return nil
	}

	return func() tea.Msg {
		for {
			select {
			case <-w.done:
				return nil
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if msg, ok := w.translate(event); ok {
					return msg
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					return ErrMsg{Err: err}
				}
			}
		}
	}
}

func (w *VaultWatcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.watcher.Close()
	})
	return closeErr
}

func (w *VaultWatcher) addTree() error {
	if err := w.watcher.Add(w.root); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := w.watcher.Add(filepath.Join(w.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (w *VaultWatcher) translate(event fsnotify.Event) (ChangedMsg, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return ChangedMsg{}, false
	}

	rel, err := pathutil.Relative(w.root, event.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ChangedMsg{}, false
	}

	parts := strings.Split(rel, "/")
	for _, part := range parts {
		if strings.HasPrefix(part, ".") || part == constants.TrashDir {
			return ChangedMsg{}, false
		}
	}

	switch len(parts) {
	case 1:
		if event.Has(fsnotify.Write) {
			return ChangedMsg{}, false
		}
		if event.Has(fsnotify.Create) {
			info, err := os.Stat(event.Name)
			if err != nil || !info.IsDir() {
				return ChangedMsg{}, false
			}
			_ = w.watcher.Add(event.Name)
		}
		return ChangedMsg{Path: rel, Category: true}, true
	case 2:
		if !strings.EqualFold(filepath.Ext(rel), constants.NoteExt) {
			return ChangedMsg{}, false
		}
		return ChangedMsg{Path: rel}, true
	}
	return ChangedMsg{}, false
}
