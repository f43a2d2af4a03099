package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/layout"
)

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		lf       layoutFlags
		relayout bool
		asJSON   bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Report edge crossings, cycles and redundant dependencies",
		Long: `Report edge crossings, cycles and redundant dependencies.

By default the document is inspected at its saved positions; tasks without a
position get a provisional one. Use --relayout to compute a fresh layout
first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.layoutOptions(cmd, &lf)

			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache || !relayout)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			doc, _, err := runner.Load(ctx, data)
			if err != nil {
				return fmt.Errorf("load %s: %w", displayName(args[0]), err)
			}

			var analysis layout.Analysis
			if relayout {
				spinner := newSpinnerWithContext(ctx, "Computing layout...")
				spinner.Start()
				result, err := runner.Layout(ctx, doc, opts)
				if err != nil {
					spinner.StopWithError("Layout failed")
					return fmt.Errorf("compute layout: %w", err)
				}
				spinner.Stop()
				analysis = result.Analysis
			} else {
				_, analysis, err = runner.Analyze(ctx, doc, opts)
				if err != nil {
					return fmt.Errorf("analyze: %w", err)
				}
			}

			if asJSON {
				out, err := json.MarshalIndent(analysis, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			}
			printAnalysis(cmd.OutOrStdout(), analysis)
			return nil
		},
	}

	lf.register(cmd)
	cmd.Flags().BoolVar(&relayout, "relayout", false, "compute a fresh layout before analyzing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// printAnalysis renders a human-readable report.
func printAnalysis(w io.Writer, a layout.Analysis) {
	fmt.Fprintln(w, StyleTitle.Render("Layout analysis"))
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%s · %s · %.0f×%.0f",
		plural(a.TotalNodes, "task"), plural(a.TotalEdges, "edge"), a.Bounds.Width, a.Bounds.Height)))
	fmt.Fprintln(w)

	if len(a.Crossings) == 0 {
		fmt.Fprintln(w, StyleSuccess.Render(iconSuccess)+" no edge passes through an unrelated task")
	} else {
		fmt.Fprintln(w, crossingTable(a.Crossings))
		fmt.Fprintf(w, "%s  %s  %s\n",
			StyleError.Render(fmt.Sprintf("high %d", a.Summary.High)),
			StyleWarning.Render(fmt.Sprintf("medium %d", a.Summary.Medium)),
			StyleDim.Render(fmt.Sprintf("low %d", a.Summary.Low)))
	}
	if a.LayerCrossings > 0 {
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%s between adjacent levels", plural(a.LayerCrossings, "edge crossing"))))
	}

	if len(a.Cycle) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleError.Render(iconError)+" cycle: "+strings.Join(a.Cycle, " -> "))
	}
	if len(a.Redundant) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleWarning.Render(iconWarning)+" redundant dependencies:")
		for _, id := range a.Redundant {
			fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+id)
		}
	}

	if len(a.Suggestions) > 0 {
		fmt.Fprintln(w)
		for _, s := range a.Suggestions {
			fmt.Fprintln(w, StyleHighlight.Render(iconInfo)+" "+s)
		}
	}
}

func crossingTable(crossings []layout.Crossing) string {
	rows := make([][]string, len(crossings))
	for i, c := range crossings {
		rows[i] = []string{c.EdgeID, strings.Join(c.CrossedNodes, ", "), c.Severity.String()}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Edge", "Crosses", "Severity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 && row < len(crossings) {
				return severityStyle(crossings[row].Severity)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
