package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/history"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// layoutRun holds the non-layout flags of the layout command.
type layoutRun struct {
	output        string
	inPlace       bool
	format        string
	noPositions   bool
	keepPositions bool
	noCache       bool
	refresh       bool
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		lf  layoutFlags
		run layoutRun
	)

	cmd := &cobra.Command{
		Use:   "layout [file|-]",
		Short: "Compute task positions for a workflow document",
		Long: `Compute task positions for a workflow document.

Every task is assigned a level (its longest dependency chain from a root) and
levels are placed left to right (LR) or top to bottom (TB). The document is
written back with a position on every task, to stdout unless -o or
--in-place is given.

Results are cached, keyed by the document and the layout options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.layoutOptions(cmd, &lf)
			return c.runLayout(cmd, args[0], opts, run)
		},
	}

	lf.register(cmd)
	cmd.Flags().StringVarP(&run.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVarP(&run.inPlace, "in-place", "i", false, "overwrite the input file")
	cmd.Flags().StringVarP(&run.format, "format", "f", "", "output format: json or yaml (default: from the output name or input)")
	cmd.Flags().BoolVar(&run.noPositions, "no-positions", false, "omit positions from the output")
	cmd.Flags().BoolVar(&run.keepPositions, "keep-positions", false, "only analyze when every task already has a position")
	cmd.Flags().BoolVar(&run.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&run.refresh, "refresh", false, "recompute even when a cached layout exists")

	return cmd
}

// runLayout loads the document, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts pipeline.Options, run layoutRun) error {
	ctx := cmd.Context()

	target := run.output
	if run.inPlace {
		if input == stdio {
			return errors.New(errors.ErrCodeInvalidInput, "--in-place needs a file, not stdin")
		}
		target = input
	}

	data, err := readInput(input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	format, err := outputFormat(run.format, target, data)
	if err != nil {
		return err
	}
	opts.Format = string(format)
	opts.IncludePositions = !run.noPositions
	opts.KeepPositions = run.keepPositions
	opts.Refresh = run.refresh

	runner, err := c.newRunner(ctx, run.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	doc, _, err := runner.Load(ctx, data)
	if err != nil {
		return fmt.Errorf("load %s: %w", displayName(input), err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Direction))
	spinner.Start()

	result, err := runner.Layout(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeOutput(target, result.Output, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	c.reportLayout(result, input, target)
	c.remember(ctx, displayName(input), history.SourceFile, result.Document)
	return nil
}

func (c *CLI) reportLayout(result *pipeline.Result, input, target string) {
	if target != "" && target != stdio {
		printSuccess("Layout complete")
		printFile(target)
	}
	printStats(result.Stats.TaskCount, result.Stats.EdgeCount, result.CacheHit)

	a := result.Analysis
	if n := len(a.Unleveled); n > 0 {
		printWarning("%s in a dependency cycle placed on level 0", plural(n, "task"))
	}
	if n := len(a.Crossings); n > 0 {
		printWarning("%s through unrelated tasks", plural(n, "edge crossing"))
		printNextStep("Inspect", fmt.Sprintf("%s analyze %s", appName, input))
	}
}
