package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/extmodel/internal/cli/config"
	"github.com/conduit-lang/extmodel/internal/cli/ui"
	"github.com/conduit-lang/extmodel/internal/logging"
	"github.com/conduit-lang/extmodel/persistence"
	"github.com/conduit-lang/extmodel/store"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalOptions holds the persistent flags of the root command.
type globalOptions struct {
	configFile string
	logLevel   string
	noColor    bool
}

// app is what a command needs once flags and configuration are resolved.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	serializer *persistence.Serializer
	noColor    bool
}

func (o *globalOptions) load(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, &configError{err: err}
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	logCfg := cfg.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, &configError{err: err}
	}

	s, err := persistence.NewSerializer(
		persistence.WithLogger(logger),
		persistence.WithIndent(cfg.Output.Indent),
		persistence.WithLegacyKeys(cfg.Output.LegacyKeys),
	)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, serializer: s, noColor: o.noColor}, nil
}

// openStore opens the configured store. The returned func releases it.
func (a *app) openStore(ctx context.Context) (store.Store, func(), error) {
	s, err := store.Open(ctx, a.cfg.StoreOptions())
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if closer, ok := s.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				a.logger.Warn("failed to close store", zap.Error(err))
			}
		}
	}
	return s, release, nil
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(&globalOptions{})
}

func newRootCommand(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "extmodel",
		Short: "Inspect, convert and store extension model documents",
		Long: color.CyanString(`extmodel - extension model documents

Reads and writes the JSON description of an extension: its configurations,
operations, sources, functions, constructs, errors, notifications and the
type catalog they share.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default ./extmodel.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newInspectCommand(opts))
	rootCmd.AddCommand(newRoundtripCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newStoreCommand(opts))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the extmodel version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)
			for _, line := range [][2]string{
				{"extmodel version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, line[0])
				fmt.Fprintln(out, line[1])
			}
		},
	}
}

// Execute runs the root command
func Execute() error {
	opts := &globalOptions{}
	rootCmd := newRootCommand(opts)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), formatError(err, opts.noColor))
		return err
	}
	return nil
}

// configError marks failures to load the configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// notFoundError is a store miss with the closest stored names.
type notFoundError struct {
	name        string
	suggestions []string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("extension %s is not stored", e.name)
}

func (e *notFoundError) Unwrap() error { return store.ErrNotFound }

// reportedError is returned once a command already printed its failures.
type reportedError struct {
	error
}

func formatError(err error, noColor bool) string {
	var (
		reported *reportedError
		cfgErr   *configError
		missing  *notFoundError
		parseErr *persistence.ParseError
	)
	switch {
	case errors.As(err, &reported):
		return ""
	case errors.As(err, &cfgErr):
		return ui.ConfigError(cfgErr.Error(), noColor)
	case errors.As(err, &missing):
		return ui.DocumentNotFoundError(missing.name, missing.suggestions, noColor)
	case errors.As(err, &parseErr):
		location := parseErr.Code
		if parseErr.Path != "" {
			location += " at " + parseErr.Path
		}
		return ui.DocumentError(location, parseErr.Err.Error(), noColor)
	default:
		errorColor := color.New(color.FgRed, color.Bold)
		if noColor {
			errorColor.DisableColor()
		}
		return errorColor.Sprintf("Error: %v\n", err)
	}
}

// readInput reads a document from path, or from stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to the command output when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
