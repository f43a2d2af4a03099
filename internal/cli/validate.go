package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check that a workflow document is well formed",
		Long: `Check that a workflow document is well formed.

The document may be JSON or YAML, either an object with a "tasks" array or a
bare task array. Use "-" to read from stdin. Dependency cycles are reported
as a warning: they are valid input but cannot be leveled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), cmd.InOrStdin(), args[0])
		},
	}
}

func (c *CLI) runValidate(ctx context.Context, stdin io.Reader, input string) error {
	data, err := readInput(input, stdin)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
	defer runner.Close()

	doc, g, err := runner.Load(ctx, data)
	if err != nil {
		printError("%s is not a valid workflow", displayName(input))
		return err
	}

	printSuccess("%s is valid", displayName(input))
	printStats(len(doc.Tasks), g.EdgeCount(), false)
	if cycle := g.FindCycle(); len(cycle) > 0 {
		printWarning("dependency cycle: %s", strings.Join(cycle, " -> "))
		printNextStep("Level anyway", fmt.Sprintf("%s layout --break-cycles %s", appName, input))
	}
	return nil
}
