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
package list

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/araddon/dateparse"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/knot/internal/config"
	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/state"
	"github.com/Paintersrp/knot/internal/storage"
	"github.com/Paintersrp/knot/internal/textstats"
)

type Options struct {
	Category string
	Since    time.Time
	WPM      int
	Palette  []string
}

func NewCmdList(s *state.State) *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:     "list [category]",
		Aliases: []string{"ls"},
		Short:   "Print categories and notes with word counts.",
		Long: heredoc.Doc(`
			Prints every category, or only the given one, with its notes and
			their word count, reading time and task progress.

			--since accepts most date formats, for example 2024-05-01,
			"May 1 2024" or "05/01/2024 14:00". Notes modified before it are
			left out.

			Examples:
			  knot list
			  knot ls Work --since 2024-05-01
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := Options{WPM: s.Config.ReadingWPM, Palette: s.Config.Palette}
			if len(args) > 0 {
				opts.Category = args[0]
			}
			if since != "" {
				t, err := dateparse.ParseLocal(since)
				if err != nil {
					return fmt.Errorf("invalid --since value %q: %w", since, err)
				}
				opts.Since = t
			}
			return Run(cmd.OutOrStdout(), s.Store, opts)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only list notes modified after this date.")

	return cmd
}

// Run writes the listing for opts to out.
func Run(out io.Writer, store storage.Store, opts Options) error {
	cats, err := store.Categories()
	if err != nil {
		return err
	}

	palette := opts.Palette
	if len(palette) == 0 {
		palette = config.Default("").Palette
	}

	found := opts.Category == ""
	for i, c := range cats {
		if opts.Category != "" && c.Name != opts.Category {
			continue
		}
		found = true

		notes, err := store.Notes(c.Name)
		if err != nil {
			return err
		}
		notes = since(notes, opts.Since)

		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(palette[i%len(palette)]))
		fmt.Fprintf(out, "%s (%d)\n", header.Render(c.Name), len(notes))

		if err := writeNotes(out, store, notes, opts.WPM); err != nil {
			return err
		}
	}

	if !found {
		return &storage.Error{Op: "list", Path: opts.Category, Kind: storage.ErrNotFound, Err: fmt.Errorf("no category named %q", opts.Category)}
	}
	return nil
}

func writeNotes(out io.Writer, store storage.Store, notes []storage.Note, wpm int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, n := range notes {
		data, err := store.ReadNote(n.Path)
		if err != nil {
			return err
		}

		st := textstats.Compute(string(data), wpm)
		tasks := "-"
		if st.Tasks > 0 {
			tasks = fmt.Sprintf("%d/%d", st.TasksDone, st.Tasks)
		}
		fmt.Fprintf(w, "  %s\t%d words\t%d min\t%s\t%s\n",
			n.Title, st.Words, st.Minutes, tasks, n.ModTime.Format(constants.ListTimeFormat))
	}
	return w.Flush()
}

func since(notes []storage.Note, cutoff time.Time) []storage.Note {
	if cutoff.IsZero() {
		return notes
	}
	kept := notes[:0:0]
	for _, n := range notes {
		if !n.ModTime.Before(cutoff) {
			kept = append(kept, n)
		}
	}
	return kept
}
