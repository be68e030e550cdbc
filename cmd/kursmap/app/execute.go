package app

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute runs the kursmap CLI with the given arguments. This is the
// main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "kursmap",
		Short:   "Course catalog extraction and reconciliation",
		Version: a.version,
		Long: `Kursmap builds a structured course catalog from unstructured
course catalog documents.

It segments source text into candidate blocks, normalizes them into
course events through an external language model, deduplicates events
across catalogs and years, and incrementally enriches course templates
with descriptive information found in the sources.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.kursmap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&a.config.DataPath, "data", a.config.DataPath, "catalog data directory")

	rootCmd.SetVersionTemplate("kursmap {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")
	format, _ := cmd.Flags().GetString("format")
	logLevel, _ := cmd.Flags().GetString("log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewExtractCommand())
	rootCmd.AddCommand(a.NewEnrichCommand())
	rootCmd.AddCommand(a.NewImportCommand())
	rootCmd.AddCommand(a.NewListCommand())
}
