package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/extmodel/internal/cli/ui"
	"github.com/conduit-lang/extmodel/internal/utils"
	"github.com/conduit-lang/extmodel/persistence"
)

func newValidateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|dir>...",
		Short: "Check that documents are readable and consistent",
		Long: `Deserialize each document and validate the resulting extension model.
Directories are searched recursively for .json files. Every file is checked;
the command fails if any of them is invalid.`,
		Example: `  extmodel validate fleet.json
  extmodel validate plugins/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			s, err := persistence.NewSerializer(
				persistence.WithLogger(a.logger),
				persistence.WithValidation(true),
			)
			if err != nil {
				return err
			}

			paths, err := utils.ExpandPaths(args)
			if err != nil {
				return err
			}

			failed := 0
			for _, path := range paths {
				data, err := readInput(cmd, path)
				if err == nil {
					_, err = s.Deserialize(data)
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s:\n%s", path, formatError(err, a.noColor))
					continue
				}
				ui.WriteSuccess(cmd.OutOrStdout(), path+" is valid", a.noColor)
			}

			if failed > 0 {
				return &reportedError{fmt.Errorf("%d of %d documents are invalid", failed, len(paths))}
			}
			return nil
		},
	}
}
