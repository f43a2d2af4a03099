package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// snapCommand creates the snap command.
func (c *CLI) snapCommand() *cobra.Command {
	var (
		gridSize     float64
		snapDistance float64
		noGrid       bool
		noNodes      bool
		write        bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "snap <file> <task> <x> <y>",
		Short: "Show where a task dropped at (x, y) would land",
		Long: `Show where a task dropped at (x, y) would land.

The position is snapped to the grid and then to the nearest edge or center
line of another task within the snap distance. With --write the snapped
position is saved into the file.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, task := args[0], args[1]
			x, err := parseCoord("x", args[2])
			if err != nil {
				return err
			}
			y, err := parseCoord("y", args[3])
			if err != nil {
				return err
			}

			opts := c.Config.Align
			if cmd.Flags().Changed("grid-size") {
				opts.GridSize = gridSize
			}
			if cmd.Flags().Changed("snap-distance") {
				opts.SnapDistance = snapDistance
			}
			if noGrid {
				opts.SnapToGrid = false
			}
			if noNodes {
				opts.SnapToNodes = false
			}

			data, err := readInput(path, cmd.InOrStdin())
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
			dragged, ok := g.Node(task)
			if !ok {
				return errors.New(errors.ErrCodeTaskNotFound, "task %q does not exist", task)
			}
			dragged.X, dragged.Y = x, y
			a := layout.Snap(dragged, g.Nodes(), opts)

			if asJSON {
				out, err := json.MarshalIndent(a, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatCoord(a.X), formatCoord(a.Y))
				if a.AlignedX != "" {
					printKeyValue("x aligned", a.AlignedX)
				}
				if a.AlignedY != "" {
					printKeyValue("y aligned", a.AlignedY)
				}
				if a.AlignedTo == "grid" {
					printKeyValue("snapped", "grid")
				}
			}

			if !write {
				return nil
			}
			if path == stdio {
				return errors.New(errors.ErrCodeInvalidInput, "--write needs a file, not stdin")
			}
			if err := doc.SetPosition(task, workflow.Position{X: a.X, Y: a.Y}); err != nil {
				return err
			}
			out, err := workflow.Marshal(doc, workflow.DetectFormat(data), workflow.ExportOptions{IncludePositions: true})
			if err != nil {
				return err
			}
			if err := writeOutput(path, out, cmd.OutOrStdout()); err != nil {
				return err
			}
			printSuccess("Moved %s to (%s, %s)", task, formatCoord(a.X), formatCoord(a.Y))
			return nil
		},
	}

	cmd.Flags().Float64Var(&gridSize, "grid-size", 0, "grid size (default from config)")
	cmd.Flags().Float64Var(&snapDistance, "snap-distance", 0, "how close another task must be to snap to it")
	cmd.Flags().BoolVar(&noGrid, "no-grid", false, "do not snap to the grid")
	cmd.Flags().BoolVar(&noNodes, "no-nodes", false, "do not snap to other tasks")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "save the snapped position into the file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the alignment as JSON")

	return cmd
}

func parseCoord(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", name, s)
	}
	return v, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
