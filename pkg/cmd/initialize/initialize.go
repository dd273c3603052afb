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
package initialize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/erikgeiser/promptkit/textinput"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/knot/internal/config"
	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/state"
)

// Prompter asks the questions needed to build a config.
type Prompter interface {
	VaultDir(current string) (string, error)
	Editor(current string, choices []string) (string, error)
	EditorExec(current string) (string, error)
}

func NewCmdInit() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i", "initialize"},
		Short:   "Create or repair the knot configuration.",
		Long: heredoc.Doc(`
			Walks you through choosing a notes directory and an editor, then
			writes ~/.knot/config.yaml. An existing config is used for the
			defaults; a broken one is replaced.
		`),
		Example: "knot init",
		Annotations: map[string]string{
			constants.SkipStateAnnotation: "true",
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("init needs an interactive terminal")
			}

			home, err := state.GetHomeDir()
			if err != nil {
				return err
			}
			return Run(cmd.OutOrStdout(), home, promptkitPrompter{})
		},
	}

	return cmd
}

// Run writes a config for home from the answers p gives and creates the
// notes directory.
func Run(out io.Writer, home string, p Prompter) error {
	cfg, err := config.Load(home)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "Existing config is invalid and will be replaced: %v\n", err)
		}
		cfg = config.Default(home)
	}

	vault, err := p.VaultDir(cfg.VaultDir)
	if err != nil {
		return err
	}
	cfg.VaultDir = strings.TrimSpace(vault)

	editor, err := p.Editor(cfg.Editor, config.EditorNames())
	if err != nil {
		return err
	}
	cfg.Editor = editor

	if editor == "custom" {
		exec, err := p.EditorExec(cfg.EditorTemplate.Exec)
		if err != nil {
			return err
		}
		cfg.EditorTemplate.Exec = strings.TrimSpace(exec)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid answers: %w", err)
	}

	path, err := cfg.VaultPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("cannot create notes directory: %w", err)
	}
	if err := cfg.Save(home); err != nil {
		return err
	}

	fmt.Fprintf(out, "Saved %s\nNotes live in %s and open with %s.\n", config.GetConfigPath(home), path, cfg.Editor)
	return nil
}

type promptkitPrompter struct{}

func (promptkitPrompter) VaultDir(current string) (string, error) {
	input := textinput.New("Where should your notes live?")
	input.InitialValue = current
	input.Validate = func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New("notes directory cannot be empty")
		}
		return nil
	}
	return input.RunPrompt()
}

func (promptkitPrompter) Editor(current string, choices []string) (string, error) {
	// Put the current editor first so Enter keeps it.
	if i := slices.Index(choices, current); i > 0 {
		choices = append([]string{current}, slices.Delete(slices.Clone(choices), i, i+1)...)
	}

	sel := selection.New("Which editor should open notes?", choices)
	sel.PageSize = len(choices)
	return sel.RunPrompt()
}

func (promptkitPrompter) EditorExec(current string) (string, error) {
	input := textinput.New("Executable for the custom editor:")
	input.InitialValue = current
	input.Placeholder = "emacsclient"
	return input.RunPrompt()
}
