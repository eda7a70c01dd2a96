package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/extmodel/internal/cli/ui"
	"github.com/conduit-lang/extmodel/registry"
	"github.com/conduit-lang/extmodel/store"
)

func newStoreCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored extension model documents",
		Long: `Push, pull, list and search documents in the configured store
(store.backend: memory, file or redis).`,
	}

	cmd.AddCommand(newStorePushCommand(opts))
	cmd.AddCommand(newStorePullCommand(opts))
	cmd.AddCommand(newStoreListCommand(opts))
	cmd.AddCommand(newStoreFindCommand(opts))
	cmd.AddCommand(newStoreDeleteCommand(opts))
	return cmd
}

func newStorePushCommand(opts *globalOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Store a document under its extension name",
		Example: `  extmodel store push fleet.json
  extmodel store push --name fleet-2.3 fleet.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			ext, err := a.serializer.Deserialize(data)
			if err != nil {
				return err
			}
			if name == "" {
				name = ext.Name
			}

			s, release, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := s.Put(cmd.Context(), name, data); err != nil {
				return err
			}
			a.logger.Debug("stored document", zap.String("name", name), zap.Int("bytes", len(data)))
			ui.WriteSuccess(cmd.OutOrStdout(),
				fmt.Sprintf("stored %s (%d operations, %d errors)", name, len(ext.AllOperations()), len(ext.Errors)), a.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Store under this name instead of the extension name")
	return cmd
}

func newStorePullCommand(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "pull <name>",
		Short:   "Print a stored document",
		Example: `  extmodel store pull fleet -o fleet.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			s, release, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			data, err := s.Get(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				names, listErr := s.List(cmd.Context())
				if listErr != nil {
					return err
				}
				return &notFoundError{name: args[0], suggestions: ui.Suggest(args[0], names, 3)}
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newStoreListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			reg, err := a.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}

			exts := reg.Extensions()
			if len(exts) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), ui.FormatError(ui.ErrorOptions{
					Level:   ui.ErrorLevelInfo,
					Problem: "No documents stored yet. Add one with: extmodel store push <file>",
					NoColor: a.noColor,
				}))
				return nil
			}

			table := ui.NewTable(cmd.OutOrStdout(), a.noColor, "NAME", "VERSION", "VENDOR", "OPERATIONS", "ERRORS")
			for _, ext := range exts {
				table.AddRow(ext.Name, ext.Version, ext.Vendor,
					strconv.Itoa(len(ext.AllOperations())), strconv.Itoa(len(ext.Errors)))
			}
			table.Render()
			return nil
		},
	}
}

func newStoreFindCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <pattern>",
		Short: "Find operations across stored documents",
		Long: `Search the operations of every stored extension by name. The pattern
supports "*" wildcards.`,
		Example: `  extmodel store find 'get*'
  extmodel store find '*Car'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			reg, err := a.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}

			refs := reg.FindOperations(args[0])
			if len(refs) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), ui.Warning(fmt.Sprintf("no operation matches %q", args[0]), a.noColor))
				return nil
			}
			table := ui.NewTable(cmd.OutOrStdout(), a.noColor, "EXTENSION", "CONFIGURATION", "OPERATION", "PARAMETERS")
			for _, ref := range refs {
				table.AddRow(ref.Extension, ref.Configuration, ref.Operation.Name,
					strconv.Itoa(len(ref.Operation.AllParameters())))
			}
			table.Render()
			return nil
		},
	}
}

func newStoreDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			s, release, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			ui.WriteSuccess(cmd.OutOrStdout(), "deleted "+args[0], a.noColor)
			return nil
		},
	}
}

// loadRegistry decodes every stored document into a registry.
func (a *app) loadRegistry(ctx context.Context) (*registry.Registry, error) {
	s, release, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	reg, err := registry.New(
		registry.WithLogger(a.logger),
		registry.WithSerializer(a.serializer),
		registry.WithCacheSize(a.cfg.Registry.CacheSize),
	)
	if err != nil {
		return nil, err
	}

	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		data, err := s.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		if _, err := reg.Register(data); err != nil {
			return nil, fmt.Errorf("stored document %s: %w", name, err)
		}
	}
	return reg, nil
}
