package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/roach88/joinery/internal/config"
	"github.com/roach88/joinery/internal/conn"
	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/schema"
)

// RootOptions holds global flags and the state resolved from them.
type RootOptions struct {
	ConfigFile string

	// Fs is the filesystem for config, .env and schema files.
	Fs afero.Fs

	// Config is resolved before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger

	// Open connects to the database. Tests replace it.
	Open func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (conn.Querier, io.Closer, error)
}

// NewRootCommand creates the root command for the joinery CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Fs: afero.NewOsFs(), Open: openDatabase})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joinery",
		Short: "Compose and run joined SQL queries over a declared schema",
		Long: `joinery composes SELECT statements over tables declared in a schema
file, joins them along their foreign keys, and prints each row as one record
per joined table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.Fs, opts.ConfigFile, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Config = cfg

			logLevel := slog.LevelInfo
			if cfg.Verbose {
				logLevel = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: logLevel,
			})
			opts.Logger = slog.New(handler)
			slog.SetDefault(opts.Logger)

			if cfg.File != "" {
				opts.Logger.Debug("config loaded", "file", cfg.File)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default ./joinery.yaml)")
	flags.String(config.KeyDriver, "sqlite3", "database driver (sqlite3|sqlite|postgres|mysql)")
	flags.String(config.KeyDSN, "joinery.db", "data source name")
	flags.String(config.KeySchema, "schema.yaml", "schema file (.yaml|.yml|.cue)")
	flags.String(config.KeyFormat, "text", "output format (text|json|csv|msgpack)")
	flags.BoolP(config.KeyVerbose, "v", false, "verbose output")

	cmd.AddCommand(newQueryCommand(opts))
	cmd.AddCommand(newSQLCommand(opts))
	cmd.AddCommand(newRawCommand(opts))
	cmd.AddCommand(newSchemaCommand(opts))

	return cmd
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (conn.Querier, io.Closer, error) {
	db, err := conn.Open(ctx, cfg.Driver, cfg.DSN, conn.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return db, db, nil
}

func (o *RootOptions) loadSchema() (*schema.Registry, error) {
	reg, err := schema.Load(o.Fs, o.Config.Schema)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load schema", err)
	}
	return reg, nil
}

func (o *RootOptions) connect(ctx context.Context) (conn.Querier, func(), error) {
	q, closer, err := o.Open(ctx, o.Config, o.Logger)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "failed to open database", err)
	}
	return q, func() {
		if closer == nil {
			return
		}
		if err := closer.Close(); err != nil {
			o.Logger.Error("error closing database", "error", err)
		}
	}, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Config.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Config.Verbose,
		Color:     !color.NoColor,
	}
}

// Execute runs the CLI with args and returns the process exit code.
// Failures are reported on stderr, or on stdout as a JSON envelope when
// --format json is in effect.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{Fs: afero.NewOsFs(), Open: openDatabase}
	return execute(ctx, opts, args, stdout, stderr)
}

func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: "text", Writer: stderr}
	if opts.Config != nil && opts.Config.Format == "json" {
		f = &OutputFormatter{Format: "json", Writer: stdout}
	}
	code := string(errs.CodeOf(err))
	if code == "" {
		code = "COMMAND_ERROR"
	}
	_ = f.Error(code, err.Error(), nil)
	return GetExitCode(err)
}
