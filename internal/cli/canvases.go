package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/componentscope/pkg/pipeline"
)

// canvasesCommand creates the canvases command, which lists the canvases a
// design file contains in the numbering --canvas expects.
func (c *CLI) canvasesCommand() *cobra.Command {
	var opts analyzeOpts
	var counts bool

	cmd := &cobra.Command{
		Use:   "canvases [file-key | file-url]",
		Short: "List the canvases of a design file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			popts, err := c.pipelineOptions(args, &opts)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(nil, nil, c.Logger)
			if popts.Document == nil {
				client, err := c.newFigmaClient(ctx, opts.noCache)
				if err != nil {
					return err
				}
				runner.Fetcher = client
			}

			spinner := newSpinnerWithContext(ctx, "Loading design file...")
			spinner.Start()
			f, err := runner.Fetch(ctx, popts)
			spinner.Stop()
			if err != nil {
				return err
			}

			canvases, err := f.Canvases()
			if err != nil {
				return err
			}
			for _, it := range canvasItems(canvases) {
				line := fmt.Sprintf("%d: %s", it.Position, it.Name)
				if counts {
					line += StyleDim.Render(fmt.Sprintf("  (%d components)", it.Declarations))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "read a saved design file (JSON) instead of calling the API")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&counts, "counts", false, "show the number of declared components per canvas")

	return cmd
}
