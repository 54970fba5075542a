package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/deploygraph/pkg/compiler"
	"github.com/matzehuels/deploygraph/pkg/errors"
	"github.com/matzehuels/deploygraph/pkg/graph"
)

// graphOptions holds flags of the graph command.
type graphOptions struct {
	output   string
	format   string
	quiet    bool
	validate bool

	concurrency int
	maxDepth    int
	cacheDir    string
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOptions

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Print the deployment graph of a document",
		Long: `Compile a deployment document and its local modules and print the
resulting deployment graph.

Formats:
  json  the graph exactly as served to clients
  yaml  the same structure as YAML
  dot   Graphviz DOT text with one cluster per module`,
		Example: `  deploygraph graph main.tf
  deploygraph graph infra/main.tf -f dot -o graph.dot
  deploygraph graph main.tf -f yaml --concurrency 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("format") {
				opts.format = c.config.Format
			}
			if flags.Changed("concurrency") {
				c.config.Concurrency = opts.concurrency
			}
			if flags.Changed("max-depth") {
				c.config.MaxDepth = opts.maxDepth
			}
			if flags.Changed("cache-dir") {
				c.config.CacheDir = opts.cacheDir
			}
			return c.runGraph(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the graph to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json, yaml or dot")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print a summary")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "check the graph's structural invariants before writing it")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "models analyzed in parallel per nesting level (default from config)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum module nesting depth, 0 for unlimited (default from config)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "reuse graphs built from unchanged documents, stored in this directory")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, path string, opts graphOptions) error {
	if err := errors.ValidateFormat(opts.format); err != nil {
		return err
	}
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	comp, err := compiler.Compile(ctx, path, compiler.Options{Logger: c.Logger})
	if err != nil {
		return err
	}
	g, err := c.buildGraph(ctx, comp)
	if err != nil {
		return err
	}
	if opts.validate {
		if err := g.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "graph failed validation")
		}
	}

	if opts.output != "" {
		if err := graph.WriteFile(g, opts.format, opts.output); err != nil {
			return err
		}
	} else if err := graph.Write(g, opts.format, c.Out); err != nil {
		return err
	}

	prog.done("built deployment graph", "documents", len(comp.Files()), "nodes", len(g.Nodes))
	if !opts.quiet {
		printSummary(c.Err, path, opts.output, g)
	}
	return nil
}
