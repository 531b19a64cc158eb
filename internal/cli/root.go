package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/plusminus/internal/config"
	"github.com/roach88/plusminus/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string
	Locale     string
	DefsDir    string

	// Config is the loaded plusminus.toml, or defaults when none was found.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.Formats

// NewRootCommand creates the root command for the plusminus CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "plusminus",
		Short:   "plusminus - variadic block mutator",
		Long:    "Grow and shrink blocks with a variable number of inputs through plus and minus affordances.",
		Version: fmt.Sprintf("%s (schema %s)", ir.EngineVersion, ir.SchemaVersion),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.loadConfig(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.Locale, "locale", "", "label language for built-in blocks (default from config)")
	cmd.PersistentFlags().StringVar(&opts.DefsDir, "defs", "", "directory of CUE block definitions (default from config)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewClickCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// loadConfig reads the config file and lets explicitly set flags win over it.
func (o *RootOptions) loadConfig(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.Load(o.ConfigPath)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return WrapExitError(ExitCommandError, "cannot determine working directory", wdErr)
		}
		cfg, err = config.FindAndLoad(wd)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg

	if !cmd.Flags().Changed("format") {
		o.Format = cfg.Output.Format
	}

	// Validate format flag
	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}
	return nil
}

// cfg returns the loaded config, falling back to defaults for commands
// executed without the root command.
func (o *RootOptions) cfg() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

func (o *RootOptions) databasePath() string {
	if o.Database != "" {
		return o.Database
	}
	return o.cfg().Store.Path
}

func (o *RootOptions) locale() string {
	if o.Locale != "" {
		return o.Locale
	}
	return o.cfg().Locale.Tag
}

func (o *RootOptions) definitionsDir() string {
	if o.DefsDir != "" {
		return o.DefsDir
	}
	return o.cfg().Definitions.Dir
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
