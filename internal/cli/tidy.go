package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/dag/transform"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// tidyCommand creates the tidy command.
func (c *CLI) tidyCommand() *cobra.Command {
	var (
		output    string
		inPlace   bool
		format    string
		prune     bool
		grid      float64
		alignment string
		tasks     []string
	)

	cmd := &cobra.Command{
		Use:   "tidy [file|-]",
		Short: "Clean up a laid-out workflow without re-arranging it",
		Long: `Clean up a laid-out workflow without re-arranging it.

  --prune-redundant  drop dependencies already implied by a longer path
  --align TYPE       line tasks up: ` + alignTypeList() + `
  --snap SIZE        snap every position to a grid

Edits run in that order. --tasks restricts --align to the named tasks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if !prune && alignment == "" && grid == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to do: pass --prune-redundant, --align or --snap")
			}
			target := output
			if inPlace {
				if input == stdio {
					return errors.New(errors.ErrCodeInvalidInput, "--in-place needs a file, not stdin")
				}
				target = input
			}

			data, err := readInput(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			doc, err := workflow.Parse(data)
			if err != nil {
				return err
			}
			g, err := dag.FromDocument(doc)
			if err != nil {
				return err
			}
			p := newProgress(c.Logger)

			if prune {
				removed := 0
				for _, e := range transform.RedundantEdges(g) {
					if doc.Disconnect(e.From, e.To) {
						removed++
					}
				}
				printInfo("pruned %s", plural(removed, "redundant edge"))
			}

			moved := false
			if alignment != "" {
				how, err := layout.ParseAlignType(alignment)
				if err != nil {
					return err
				}
				nodes, err := selectNodes(g, tasks)
				if err != nil {
					return err
				}
				l := c.Config.Layout.Options()
				if err := layout.AlignNodes(nodes, how, l.NodeWidth, l.NodeHeight); err != nil {
					return err
				}
				printInfo("aligned %s %s", plural(len(nodes), "task"), how)
				moved = true
			}
			if grid > 0 {
				layout.SnapToGrid(g, grid)
				printInfo("snapped to a %s grid", formatCoord(grid))
				moved = true
			}
			if moved {
				doc.SetPositions(g.TaskPositions())
			}
			p.done(fmt.Sprintf("tidied %s", plural(len(doc.Tasks), "task")))

			f, err := outputFormat(format, target, data)
			if err != nil {
				return err
			}
			out, err := workflow.Marshal(doc, f, workflow.ExportOptions{IncludePositions: true})
			if err != nil {
				return err
			}
			if err := writeOutput(target, out, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if target != "" {
				printSuccess("Tidied %s", displayName(input))
				printFile(target)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "overwrite the input file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json or yaml")
	cmd.Flags().BoolVar(&prune, "prune-redundant", false, "remove dependencies implied by other paths")
	cmd.Flags().Float64Var(&grid, "snap", 0, "snap positions to a grid of this size")
	cmd.Flags().StringVar(&alignment, "align", "", "align tasks: "+alignTypeList())
	cmd.Flags().StringSliceVar(&tasks, "tasks", nil, "tasks to align (default: all)")

	return cmd
}

// selectNodes returns the nodes named by ids, or every node when ids is
// empty.
func selectNodes(g *dag.DAG, ids []string) ([]*dag.Node, error) {
	if len(ids) == 0 {
		return g.Nodes(), nil
	}
	nodes := make([]*dag.Node, 0, len(ids))
	for _, id := range ids {
		n, ok := g.Node(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeTaskNotFound, "task %q does not exist", id)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func alignTypeList() string {
	names := make([]string, len(layout.AlignTypes))
	for i, t := range layout.AlignTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
