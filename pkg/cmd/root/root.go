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
package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/state"
	"github.com/Paintersrp/knot/internal/tui/knot"
	"github.com/Paintersrp/knot/pkg/cmd/initialize"
	"github.com/Paintersrp/knot/pkg/cmd/list"
	"github.com/Paintersrp/knot/pkg/cmd/open"
	"github.com/Paintersrp/knot/pkg/cmd/syncVault"
)

var (
	vaultDir string
	editor   string
	logLevel string
)

// NewCmdRoot builds the command tree. s is filled in before any command
// that needs it runs, after flags have been parsed.
func NewCmdRoot(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "Browse a folder of markdown notes by category.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			knot is a two-pane terminal browser for a notes folder. Every
			sub-directory is a category and every markdown file inside it is a note.

			Run without a command to start the browser. Notes open in your
			configured editor and the preview refreshes when you return.

			Examples:
			  knot                      // Browse the configured vault
			  knot -v ~/notes -e helix  // Override vault and editor
			  knot open meeting         // Fuzzy-find and open a note
		`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, skip := cmd.Annotations[constants.SkipStateAnnotation]; skip {
				return nil
			}

			loaded, err := state.NewState()
			if err != nil {
				return err
			}
			*s = *loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return knot.Run(s)
		},
	}

	cmd.SetUsageTemplate(constants.Help)

	cmd.PersistentFlags().StringVarP(&vaultDir, "vault", "v", "", "Notes directory to use for this run.")
	cmd.PersistentFlags().StringVarP(&editor, "editor", "e", "", "Editor to open notes with.")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error).")
	viper.BindPFlag("vaultdir", cmd.PersistentFlags().Lookup("vault"))
	viper.BindPFlag("editor", cmd.PersistentFlags().Lookup("editor"))
	viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(
		initialize.NewCmdInit(),
		open.NewCmdOpen(s),
		list.NewCmdList(s),
		syncVault.NewCmdSync(s),
	)

	return cmd
}
