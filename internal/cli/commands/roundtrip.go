package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/extmodel/persistence"
)

func newRoundtripCommand(opts *globalOptions) *cobra.Command {
	var (
		output     string
		indent     bool
		legacyKeys bool
	)

	cmd := &cobra.Command{
		Use:   "roundtrip <file>",
		Short: "Read a document and write it back in canonical form",
		Long: `Deserialize an extension model document and serialize it again. The output
uses the canonical key order and the configured legacy keys, which makes it
useful to normalize documents produced by older writers.`,
		Example: `  extmodel roundtrip fleet.json
  extmodel roundtrip --legacy-keys=false -o fleet.canonical.json fleet.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}

			s := a.serializer
			if cmd.Flags().Changed("indent") || cmd.Flags().Changed("legacy-keys") {
				if !cmd.Flags().Changed("indent") {
					indent = a.cfg.Output.Indent
				}
				if !cmd.Flags().Changed("legacy-keys") {
					legacyKeys = a.cfg.Output.LegacyKeys
				}
				s, err = persistence.NewSerializer(
					persistence.WithLogger(a.logger),
					persistence.WithIndent(indent),
					persistence.WithLegacyKeys(legacyKeys),
				)
				if err != nil {
					return err
				}
			}

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			ext, err := s.Deserialize(data)
			if err != nil {
				return err
			}
			out, err := s.Serialize(ext)
			if err != nil {
				return err
			}
			a.logger.Debug("round trip complete",
				zap.String("extension", ext.Name),
				zap.Int("inputBytes", len(data)),
				zap.Int("outputBytes", len(out)))
			return writeOutput(cmd, output, out)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&indent, "indent", true, "Indent the output (overrides output.indent)")
	cmd.Flags().BoolVar(&legacyKeys, "legacy-keys", true, "Write legacy keys (overrides output.legacy_keys)")
	return cmd
}
