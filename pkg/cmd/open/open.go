/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package open

import (
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/glamour"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/knot/internal/editor"
	"github.com/Paintersrp/knot/internal/state"
	"github.com/Paintersrp/knot/internal/storage"
	"github.com/Paintersrp/knot/internal/textstats"
)

func NewCmdOpen(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "open [query]",
		Aliases: []string{"o"},
		Short:   "Fuzzy-find a note and open it in the editor.",
		Long: heredoc.Doc(`
			Lists every note in the vault in a fuzzy finder with a rendered
			preview. The selected note opens in the configured editor.

			Examples:
			  knot open           // Browse all notes
			  knot o standup      // Start with a query
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return run(s, query)
		},
	}

	return cmd
}

func run(s *state.State, query string) error {
	notes, err := Collect(s.Store)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return fmt.Errorf("no notes in %s", s.Vault)
	}

	f := &finder{store: s.Store, notes: notes}
	idx, err := f.find(query)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return nil
	}
	if err != nil {
		return err
	}

	path := notes[idx].Path
	s.Logger.WithField("path", path).Info("opening note from finder")
	return editor.Open(s.Launcher, path)
}

// Collect lists every note of every category in listing order.
func Collect(store storage.Store) ([]storage.Note, error) {
	cats, err := store.Categories()
	if err != nil {
		return nil, err
	}

	var notes []storage.Note
	for _, c := range cats {
		n, err := store.Notes(c.Name)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n...)
	}
	return notes, nil
}

// Label is the finder line for a note.
func Label(n storage.Note) string {
	return n.Category + "/" + n.Title
}

type finder struct {
	store storage.Store
	notes []storage.Note
}

func (f *finder) find(query string) (int, error) {
	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.preview),
		fuzzyfinder.WithHeader("Select a note to open"),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}

	return fuzzyfinder.Find(f.notes, func(i int) string {
		return Label(f.notes[i])
	}, options...)
}

func (f *finder) preview(i, w, h int) string {
	if i == -1 {
		return ""
	}

	content, err := f.store.ReadNote(f.notes[i].Path)
	if err != nil {
		return "Error reading note"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(max(w-4, 20)),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return string(content)
	}

	markdown, err := r.Render(string(content))
	if err != nil {
		return "Error rendering markdown"
	}

	stats := textstats.Compute(string(content), 0)
	return fmt.Sprintf("%d words · %d min read\n%s", stats.Words, stats.Minutes, markdown)
}
