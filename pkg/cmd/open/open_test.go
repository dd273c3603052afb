package open

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/knot/internal/storage"
)

func testStore(t *testing.T) *storage.FS {
	t.Helper()
	root := t.TempDir()
	for _, p := range []string{"Work/b.md", "Work/a.md", "Alpha/x.md", "Empty/"} {
		full := filepath.Join(root, p)
		if strings.HasSuffix(p, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("# note\n\nsome body text"), 0o644))
	}

	store, err := storage.NewFS(root)
	require.NoError(t, err)
	return store
}

func TestCollectListsEveryNoteInOrder(t *testing.T) {
	notes, err := Collect(testStore(t))
	require.NoError(t, err)

	var labels []string
	for _, n := range notes {
		labels = append(labels, Label(n))
	}
	assert.Equal(t, []string{"Alpha/x", "Work/a", "Work/b"}, labels)
}

func TestPreviewIncludesStats(t *testing.T) {
	store := testStore(t)
	notes, err := Collect(store)
	require.NoError(t, err)

	f := &finder{store: store, notes: notes}
	assert.Empty(t, f.preview(-1, 80, 20))

	out := f.preview(0, 80, 20)
	assert.Contains(t, out, "5 words")
	assert.Contains(t, out, "body")
}

func TestPreviewMissingNote(t *testing.T) {
	store := testStore(t)
	notes, err := Collect(store)
	require.NoError(t, err)
	require.NoError(t, os.Remove(notes[0].Path))

	f := &finder{store: store, notes: notes}
	assert.Equal(t, "Error reading note", f.preview(0, 80, 20))
}
