// Package cli implements the deploygraph command-line interface.
//
// # Commands
//
//   - graph: compile a document and print its deployment graph
//   - serve: serve deployment graphs over HTTP
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Settings are read from deploygraph.toml in the working directory, or from
// the file named by --config. Flags override file values. Setting cache_dir
// (or --cache-dir) lets the graph command reuse graphs of unchanged
// documents.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// also attached to the command context.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deploygraph/pkg/buildinfo"
	"github.com/matzehuels/deploygraph/pkg/builder"
)

// appName is the application name used for files and display.
const appName = "deploygraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Out receives command results. Defaults to os.Stdout.
	Out io.Writer
	// Err receives summaries meant for humans. Defaults to os.Stderr.
	Err io.Writer

	config     Config
	configPath string
	verbose    bool
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Err:    os.Stderr,
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Deploygraph shows what a deployment document deploys",
		Long:          `Deploygraph compiles HCL deployment documents and their local modules into a graph of resources, modules and the dependencies between them.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+defaultConfigFile+" if present)")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration, applies the log level and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg

	level := cfg.level()
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// buildOptions returns builder options from the loaded configuration.
func (c *CLI) buildOptions() builder.Options {
	return builder.Options{
		Concurrency: c.config.Concurrency,
		MaxDepth:    c.config.MaxDepth,
		Logger:      c.Logger,
	}
}
