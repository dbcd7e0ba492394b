package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/componentscope/pkg/storage"
)

// runsCommand creates the runs command for inspecting recorded analyses.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded analysis runs",
		Long: `Every analyze invocation is recorded in the run store (a directory by
default, or MongoDB when storage.backend = "mongo").`,
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsReportCommand())
	cmd.AddCommand(c.runsDeleteCommand())

	return cmd
}

// withStore opens the run store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(storage.Store) error) error {
	store, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) runsListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := newPrinter(cmd.OutOrStdout())
			return c.withStore(ctx, func(store storage.Store) error {
				runs, err := store.List(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return p.json(runs)
				}
				if len(runs) == 0 {
					p.info("No runs recorded")
					return nil
				}
				for _, r := range runs {
					fmt.Fprintf(p.w, "%s  %s  %s  %s\n",
						StyleHighlight.Render(r.ID),
						StyleDim.Render(r.CreatedAt.Local().Format("2006-01-02 15:04")),
						StyleValue.Render(runTitle(r)),
						StyleDim.Render(fmt.Sprintf("%d components", r.Components)))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")
	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run's summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := newPrinter(cmd.OutOrStdout())
			return c.withStore(ctx, func(store storage.Store) error {
				run, err := store.Load(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return p.json(run)
				}

				p.success("Run %s", run.ID)
				if run.FileName != "" {
					p.keyValue("File", run.FileName)
				}
				if run.FileKey != "" {
					p.keyValue("File key", run.FileKey)
				}
				p.keyValue("Canvas", fmt.Sprintf("%d: %s", run.CanvasIndex, run.Canvas))
				p.keyValue("Components", fmt.Sprintf("%d", run.Components))
				if run.Cycles > 0 {
					p.keyValue("Cycles", fmt.Sprintf("%d", run.Cycles))
				}
				p.estimate(run.Estimate)
				p.keyValue("Created", run.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
				if run.Artifacts.Hierarchy == nil {
					p.detail("JSON artifacts were not kept for this run")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func (c *CLI) runsReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report <run-id>",
		Short: "Print a run's text report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := newPrinter(cmd.OutOrStdout())
			return c.withStore(ctx, func(store storage.Store) error {
				run, err := store.Load(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = p.w.Write(run.Artifacts.Report)
				return err
			})
		},
	}
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>...",
		Short: "Delete runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := newPrinter(cmd.OutOrStdout())
			return c.withStore(ctx, func(store storage.Store) error {
				for _, id := range args {
					if err := store.Delete(ctx, id); err != nil {
						return err
					}
					p.success("Deleted %s", id)
				}
				return nil
			})
		},
	}
}

// runTitle describes what a run analyzed.
func runTitle(r *storage.Run) string {
	if r.FileName == "" {
		return r.Canvas
	}
	return r.FileName + " / " + r.Canvas
}
