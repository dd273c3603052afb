// Package storage is the filesystem boundary for the notes root: one
// directory per category, one Markdown file per note.
package storage

import "time"

// Category is a directory directly below the notes root.
type Category struct {
	Name string
	Path string
}

// Note is a Markdown file inside a category directory.
type Note struct {
	Category string
	Name     string
	Title    string
	Path     string
	ModTime  time.Time
}

// Store lists, creates, deletes and reads categories and notes. Listings are
// returned in a deterministic order.
type Store interface {
	Root() string
	Categories() ([]Category, error)
	Notes(category string) ([]Note, error)
	CreateCategory(name string) (Category, error)
	CreateNote(category, name string) (Note, error)
	DeleteCategory(name string) error
	DeleteNote(category, name string) error
	ReadNote(path string) ([]byte, error)
}
