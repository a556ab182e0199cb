package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"filefield/cmd/filefield/ui"
	"filefield/internal/config"
	"filefield/internal/history"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyForget string
)

// historyCmd lists remembered paths
var historyCmd = &cobra.Command{
	Use:   "history TYPE",
	Short: "List recently used paths for a field type",
	Long: `Lists the paths confirmed for a field type, most recent first. These are
the suggestions the form offers while typing.

Example:
  filefield history input
  filefield history output --forget /tmp/old.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum entries (default history.limit)")
	historyCmd.Flags().StringVar(&historyForget, "forget", "", "Remove a path from the history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !cfg.History.Enabled {
		return errors.New("history is disabled (history.enabled: false)")
	}
	store, err := history.Open(config.ExpandHome(cfg.History.Path))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if historyForget != "" {
		if err := store.Forget(ctx, args[0], historyForget); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "forgot %s\n", historyForget)
		return nil
	}

	limit := historyLimit
	if limit <= 0 {
		limit = cfg.History.Limit
	}
	styles := ui.NewStyles(ui.ThemeNamed(cfg.UI.Theme))
	return listHistory(ctx, store, args[0], limit, styles, cmd.OutOrStdout())
}

// listHistory prints the recent paths for fieldType as a table.
func listHistory(ctx context.Context, store *history.Store, fieldType string, limit int, styles ui.Styles, out io.Writer) error {
	entries, err := store.Recent(ctx, fieldType, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No paths remembered for %q\n", fieldType)
		return nil
	}

	table := ui.NewTable(fmt.Sprintf("Recent %s paths", fieldType), "Path", "Uses", "Last used")
	table.RightAlign = map[int]bool{1: true}
	for _, e := range entries {
		table.AddRow(e.Path, strconv.Itoa(e.Uses), e.UsedAt.Format("2006-01-02 15:04"))
	}
	_, err = io.WriteString(out, table.View(styles))
	return err
}
