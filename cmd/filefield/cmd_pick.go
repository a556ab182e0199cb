package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"filefield/cmd/filefield/ui"
	"filefield/internal/config"
	"filefield/internal/history"
	"filefield/internal/host"

	"github.com/spf13/cobra"
)

var (
	pickTUI  bool
	pickType string
)

// pickCmd opens a file picker and prints the choice
var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Open a file picker and print the chosen path",
	Long: `Opens the native file dialog (or the remote host's, when host.url is set)
and prints the chosen path on stdout. --tui uses a terminal file browser
instead. Cancelling exits non-zero without output.

With --type the choice is validated for that field type and remembered in
history.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	pickCmd.Flags().BoolVar(&pickTUI, "tui", false, "Use the terminal file browser")
	pickCmd.Flags().StringVarP(&pickType, "type", "t", "", "Validate and remember the path for this field type")
}

func runPick(cmd *cobra.Command, args []string) error {
	var caps host.Capabilities
	if pickTUI {
		caps = newLocalHost(cfg, ui.TerminalPicker{Options: pickerOptions(cfg)})
	} else {
		var err error
		if caps, err = newCapabilities(cfg); err != nil {
			return err
		}
	}

	var store *history.Store
	if pickType != "" {
		store = openHistory(cfg)
		if store != nil {
			defer store.Close()
		}
	}

	err := pickAndPrint(cmd.Context(), caps, pickType, store, cmd.OutOrStdout())
	if host.IsCancelled(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "cancelled")
	}
	return err
}

// pickAndPrint runs the picker, optionally validates and records the result,
// and prints it.
func pickAndPrint(ctx context.Context, caps host.Capabilities, fieldType string, store *history.Store, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path, err := caps.PickFile(ctx)
	if err != nil {
		return err
	}

	if fieldType != "" {
		ok, err := caps.FileExists(ctx, path, fieldType)
		if err != nil {
			return fmt.Errorf("check %s: %w", path, err)
		}
		if !ok {
			return fmt.Errorf("%s is not a valid %s path", path, fieldType)
		}
		if store != nil {
			if err := store.Record(ctx, fieldType, path); err != nil {
				return err
			}
		}
	}

	_, err = fmt.Fprintln(out, path)
	return err
}

// pickerOptions maps the dialog settings onto the terminal browser.
func pickerOptions(cfg *config.Config) ui.PickerOptions {
	opts := ui.PickerOptions{
		Title:    cfg.Host.DialogTitle,
		StartDir: config.ExpandHome(cfg.Host.StartDir),
	}
	for _, f := range cfg.Host.Filters {
		for _, ext := range f.Extensions {
			if ext == "" || ext == "*" {
				continue
			}
			opts.Extensions = append(opts.Extensions, "."+strings.TrimPrefix(ext, "."))
		}
	}
	styles := ui.NewStyles(ui.ThemeNamed(cfg.UI.Theme))
	opts.Styles = &styles
	return opts
}
