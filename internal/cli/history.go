package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/history"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// historyCommand creates the history command and its subcommands.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recently laid-out workflows",
		Long: `Browse recently laid-out workflows.

Every successful layout is remembered with its positions. Entries are
addressed by ID; any unique ID prefix works.`,
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyPickCommand())
	cmd.AddCommand(c.historyRemoveCommand())
	cmd.AddCommand(c.historyClearCommand())

	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List remembered workflows, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), func(store history.Store) error {
				entries, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					printInfo("History is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), historyTable(entries))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many entries")
	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a remembered workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), func(store history.Store) error {
				e, err := findEntry(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				return writeEntry(cmd.OutOrStdout(), e, format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func (c *CLI) historyPickCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a remembered workflow interactively and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), func(store history.Store) error {
				entries, err := store.List(cmd.Context(), 0)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					printInfo("History is empty")
					return nil
				}

				p := tea.NewProgram(NewHistoryListModel(entries),
					tea.WithContext(cmd.Context()),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(statusOut))
				final, err := p.Run()
				if err != nil {
					return fmt.Errorf("history picker: %w", err)
				}
				m, ok := final.(HistoryListModel)
				if !ok || m.Selected == nil {
					return nil
				}
				return writeEntry(cmd.OutOrStdout(), *m.Selected, format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func (c *CLI) historyRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Forget one remembered workflow",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), func(store history.Store) error {
				e, err := findEntry(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				if err := store.Delete(cmd.Context(), e.ID); err != nil {
					return err
				}
				printSuccess("Removed %s", e.Name)
				return nil
			})
		},
	}
}

func (c *CLI) historyClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every remembered workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), func(store history.Store) error {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				printSuccess("Cleared history (%d removed)", n)
				return nil
			})
		},
	}
}

// withHistory opens the history store for the duration of fn.
func (c *CLI) withHistory(ctx context.Context, fn func(history.Store) error) error {
	store, err := c.openHistory(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// findEntry resolves a full ID or a unique ID prefix.
func findEntry(ctx context.Context, store history.Store, id string) (history.Entry, error) {
	e, err := store.Get(ctx, id)
	if err == nil {
		return e, nil
	}
	if !errors.IsNotFound(err) {
		return history.Entry{}, err
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		return history.Entry{}, err
	}
	var matches []history.Entry
	for _, e := range entries {
		if strings.HasPrefix(e.ID, id) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return history.Entry{}, errors.New(errors.ErrCodeEntryNotFound, "no history entry %q", id)
	case 1:
		return matches[0], nil
	}
	return history.Entry{}, errors.New(errors.ErrCodeInvalidInput, "history id %q is ambiguous (%d matches)", id, len(matches))
}

// writeEntry re-encodes the stored document in the requested format.
func writeEntry(w io.Writer, e history.Entry, format string) error {
	f, err := workflow.ParseFormat(format)
	if err != nil {
		return err
	}
	doc, err := workflow.ParseAs(e.Data, workflow.FormatJSON)
	if err != nil {
		return fmt.Errorf("history entry %s: %w", shortID(e.ID), err)
	}
	data, err := workflow.Marshal(doc, f, workflow.ExportOptions{IncludePositions: true})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func historyTable(entries []history.Entry) string {
	now := time.Now()
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{shortID(e.ID), e.Name, string(e.Source), formatRelativeTime(e.CreatedAt, now)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Source", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 || col == 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
