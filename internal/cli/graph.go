package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imagehub/pkg/core/relations"
)

const (
	graphFormatDOT = "dot"
	graphFormatSVG = "svg"
)

// graphCommand creates the "graph" command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags  runFlags
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the related-works graph",
		Long: `Run every stage up to relation closure and write the resulting graph of
related works as Graphviz DOT or SVG. Works without relations are left out.
Nothing is written to the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != graphFormatDOT && format != graphFormatSVG {
				return fmt.Errorf("unknown format %q (want %s or %s)", format, graphFormatDOT, graphFormatSVG)
			}
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := runOptions(cfg, flags)
			if err != nil {
				return err
			}
			backend, err := openCache(ctx, cfg, flags.noCache)
			if err != nil {
				return err
			}
			defer backend.Close()

			runner, err := c.newRunner(cfg, backend, nil, flags)
			if err != nil {
				return err
			}
			res, err := runner.Collect(ctx, opts)
			if err != nil {
				return err
			}

			dot := relations.NewGraph(res.Records).ToDOT()
			data := []byte(dot)
			if format == graphFormatSVG {
				prog := newProgress(c.Logger)
				if data, err = relations.RenderSVG(ctx, dot); err != nil {
					return err
				}
				prog.done("Rendered SVG")
			}

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote relation graph")
			printFile(output)
			printDetail("%d groups of related works", len(relations.Components(res.Records)))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", graphFormatDOT, "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
