package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// generateCommand creates the "generate" command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags  runFlags
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Rebuild all manifests and canvases",
		Long: `Fetch every resource from the catalog, look up image dimensions, harvest
the metadata records, link related works and write one manifest per work.
The store is cleared before the new manifests are written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			st, err := openStore(ctx, cfg, dryRun)
			if err != nil {
				return err
			}
			defer st.Close(context.WithoutCancel(ctx))

			runner, err := c.newRunner(cfg, backend, st, flags)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			res, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			prog.done("Generated manifests")

			printRunSummary(res)
			if dryRun {
				printInfo("Dry run: the %s store was not touched", cfg.Store.Backend)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build manifests in memory without writing to the store")
	return cmd
}
