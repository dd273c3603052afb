package storage

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/pathutil"
)

// FS implements Store on the local filesystem.
type FS struct {
	root  string
	trash bool
	now   func() time.Time
}

type Option func(*FS)

// WithTrash makes deletes move entries into the hidden trash directory
// instead of removing them.
func WithTrash() Option {
	return func(f *FS) { f.trash = true }
}

// NewFS opens the notes root. The directory must already exist and be
// readable.
func NewFS(root string, opts ...Option) (*FS, error) {
	abs, err := filepath.Abs(pathutil.NormalizePath(root))
	if err != nil {
		return nil, fmt.Errorf("resolve notes root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, wrapFS("open", abs, err)
	}
	if !info.IsDir() {
		return nil, &Error{Op: "open", Path: abs, Kind: ErrNotFound, Err: errors.New("not a directory")}
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, wrapFS("open", abs, err)
	}

	f := &FS{root: abs, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *FS) Root() string {
	return f.root
}

func (f *FS) Categories() ([]Category, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, wrapFS("list", f.root, err)
	}

	var cats []Category
	for _, e := range entries {
		if !e.IsDir() || hidden(e.Name()) {
			continue
		}
		cats = append(cats, Category{Name: e.Name(), Path: filepath.Join(f.root, e.Name())})
	}

	slices.SortFunc(cats, func(a, b Category) int { return compareNames(a.Name, b.Name) })
	return cats, nil
}

func (f *FS) Notes(category string) ([]Note, error) {
	dir, err := f.categoryPath("list", category)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrapFS("list", dir, err)
	}

	var notes []Note
	for _, e := range entries {
		if e.IsDir() || hidden(e.Name()) || !isNote(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		notes = append(notes, Note{
			Category: category,
			Name:     e.Name(),
			Title:    noteTitle(e.Name()),
			Path:     filepath.Join(dir, e.Name()),
			ModTime:  info.ModTime(),
		})
	}

	slices.SortFunc(notes, func(a, b Note) int { return compareNames(a.Name, b.Name) })
	return notes, nil
}

func (f *FS) CreateCategory(name string) (Category, error) {
	name, err := ValidateName(name)
	if err != nil {
		return Category{}, &Error{Op: "create category", Path: name, Kind: ErrInvalidName, Err: err}
	}

	path, err := f.join("create category", name)
	if err != nil {
		return Category{}, err
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		return Category{}, wrapFS("create category", name, err)
	}

	return Category{Name: name, Path: path}, nil
}

func (f *FS) CreateNote(category, name string) (Note, error) {
	dir, err := f.categoryPath("create note", category)
	if err != nil {
		return Note{}, err
	}

	name, err = ValidateName(name)
	if err != nil {
		return Note{}, &Error{Op: "create note", Path: filepath.Join(category, name), Kind: ErrInvalidName, Err: err}
	}
	if !isNote(name) {
		name += constants.NoteExt
	}

	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Note{}, wrapFS("create note", filepath.Join(category, name), err)
	}

	title := noteTitle(name)
	_, werr := file.WriteString("# " + title + "\n")
	cerr := file.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(path)
		return Note{}, wrapFS("create note", filepath.Join(category, name), errors.Join(werr, cerr))
	}

	info, err := os.Stat(path)
	if err != nil {
		return Note{}, wrapFS("create note", filepath.Join(category, name), err)
	}

	return Note{
		Category: category,
		Name:     name,
		Title:    title,
		Path:     path,
		ModTime:  info.ModTime(),
	}, nil
}

func (f *FS) DeleteCategory(name string) error {
	path, err := f.categoryPath("delete category", name)
	if err != nil {
		return err
	}

	if f.trash {
		return f.moveToTrash("delete category", path)
	}
	if err := os.RemoveAll(path); err != nil {
		return wrapFS("delete category", name, err)
	}
	return nil
}

func (f *FS) DeleteNote(category, name string) error {
	dir, err := f.categoryPath("delete note", category)
	if err != nil {
		return err
	}

	checked, err := ValidateName(name)
	if err != nil || checked != name {
		return &Error{Op: "delete note", Path: filepath.Join(category, name), Kind: ErrInvalidName, Err: err}
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return wrapFS("delete note", filepath.Join(category, name), err)
	}
	if info.IsDir() {
		return &Error{Op: "delete note", Path: filepath.Join(category, name), Kind: ErrNotFound, Err: errors.New("is a directory")}
	}

	if f.trash {
		return f.moveToTrash("delete note", path)
	}
	if err := os.Remove(path); err != nil {
		return wrapFS("delete note", filepath.Join(category, name), err)
	}
	return nil
}

// ReadNote returns the raw content of a note. path must live below the
// notes root.
func (f *FS) ReadNote(path string) ([]byte, error) {
	path = pathutil.NormalizePath(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.root, path)
	}
	if !pathutil.Within(f.root, path) || path == f.root {
		return nil, &Error{Op: "read", Path: path, Kind: ErrInvalidName, Err: errors.New("outside notes root")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapFS("read", path, err)
	}
	return data, nil
}

func (f *FS) categoryPath(op, category string) (string, error) {
	checked, err := ValidateName(category)
	if err != nil || checked != category {
		return "", &Error{Op: op, Path: category, Kind: ErrInvalidName, Err: err}
	}

	path, err := f.join(op, category)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", wrapFS(op, category, err)
	}
	if !info.IsDir() {
		return "", &Error{Op: op, Path: category, Kind: ErrNotFound, Err: errors.New("not a directory")}
	}
	return path, nil
}

// join resolves elem below the root and rejects anything that escapes it.
func (f *FS) join(op string, elem ...string) (string, error) {
	path, err := pathutil.Join(f.root, elem...)
	if err != nil {
		return "", &Error{Op: op, Path: filepath.Join(elem...), Kind: ErrInvalidName, Err: err}
	}
	return path, nil
}

func (f *FS) moveToTrash(op, path string) error {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}

	dest := filepath.Join(f.root, constants.TrashDir, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return wrapFS(op, rel, err)
	}
	if _, err := os.Lstat(dest); err == nil {
		dest = dest + "-" + f.now().Format("20060102150405")
	}

	if err := os.Rename(path, dest); err != nil {
		return wrapFS(op, rel, err)
	}
	return nil
}

// ValidateName trims name and rejects values that cannot be used as a single
// directory entry below the notes root.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return trimmed, errors.New("name is empty")
	case trimmed == "." || trimmed == "..":
		return trimmed, fmt.Errorf("%q is reserved", trimmed)
	case strings.ContainsAny(trimmed, `/\`) || strings.ContainsRune(trimmed, os.PathSeparator):
		return trimmed, errors.New("name contains a path separator")
	case strings.ContainsRune(trimmed, 0):
		return trimmed, errors.New("name contains a NUL byte")
	case hidden(trimmed):
		return trimmed, errors.New("name starts with a dot")
	}
	return trimmed, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isNote(name string) bool {
	return strings.EqualFold(filepath.Ext(name), constants.NoteExt)
}

func noteTitle(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// compareNames orders case-insensitively, falling back to byte order so the
// result is total.
func compareNames(a, b string) int {
	if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}
