package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/history"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// exampleCommand creates the example command.
func (c *CLI) exampleCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print a sample workflow document",
		Long: `Print a sample workflow document.

The sample has two tasks with parameters and outputs; the second runs
after the first and is gated by a pre-check. It is a starting point for new
documents:

  flowlayout example -o etl.json
  flowlayout layout -i etl.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := workflow.FormatJSON
			if format != "" || workflow.FormatForPath(output) != "" {
				var err error
				if f, err = outputFormat(format, output, nil); err != nil {
					return err
				}
			}
			doc := workflow.Example()
			data, err := workflow.Marshal(doc, f, workflow.ExportOptions{})
			if err != nil {
				return err
			}
			if err := writeOutput(output, data, cmd.OutOrStdout()); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Wrote example workflow")
				printFile(output)
				printNextStep("Lay it out", appName+" layout -i "+output)
				c.remember(cmd.Context(), "example", history.SourceExample, doc)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json (default) or yaml")

	return cmd
}
