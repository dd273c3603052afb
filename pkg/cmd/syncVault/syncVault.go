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
package syncVault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/knot/internal/backup"
	"github.com/Paintersrp/knot/internal/state"
)

// Syncer is the part of backup.Syncer the command drives.
type Syncer interface {
	Plan() ([]backup.Object, error)
	Sync(ctx context.Context, objects []backup.Object) (backup.Result, error)
}

// Confirm asks whether the planned upload should go ahead.
type Confirm func(prompt string) (bool, error)

func NewCmdSync(s *state.State) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload the vault to S3 compatible storage.",
		Long: heredoc.Doc(`
			Uploads every note to the bucket configured under sync in
			~/.knot/config.yaml. Keys mirror the vault layout below the
			configured prefix. Set sync.endpoint to use an S3 compatible
			service such as MinIO.

			Examples:
			  knot sync
			  knot sync --yes   // Skip the confirmation
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			syncer, err := backup.NewS3(ctx, s.Config.Sync, s.Store, s.Logger)
			if err != nil {
				return err
			}

			confirm := promptConfirm
			if yes {
				confirm = nil
			} else if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("refusing to sync without --yes outside an interactive terminal")
			}

			target := "s3://" + s.Config.Sync.Bucket + "/" + s.Config.Sync.Prefix
			return Run(ctx, cmd.OutOrStdout(), syncer, target, confirm, s.Logger)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Upload without asking for confirmation.")

	return cmd
}

// Run plans the upload, asks confirm when it is set and uploads.
func Run(ctx context.Context, out io.Writer, syncer Syncer, target string, confirm Confirm, log logrus.FieldLogger) error {
	objects, err := syncer.Plan()
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		fmt.Fprintln(out, "Nothing to upload.")
		return nil
	}

	if confirm != nil {
		ok, err := confirm(fmt.Sprintf("Upload %d notes to %s?", len(objects), target))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Sync cancelled.")
			return nil
		}
	}

	result, err := syncer.Sync(ctx, objects)
	if err != nil {
		log.WithError(err).WithField("uploaded", result.Uploaded).Error("sync failed")
		return fmt.Errorf("sync failed after %d of %d notes: %w", result.Uploaded, len(objects), err)
	}

	fmt.Fprintf(out, "Uploaded %d notes (%d bytes) to %s\n", result.Uploaded, result.Bytes, target)
	return nil
}

func promptConfirm(prompt string) (bool, error) {
	return confirmation.New(prompt, confirmation.No).RunPrompt()
}
