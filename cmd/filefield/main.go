package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"filefield/cmd/filefield/ui"
	"filefield/internal/bridge"
	"filefield/internal/config"
	"filefield/internal/history"
	"filefield/internal/host"
	"filefield/internal/logging"
	"filefield/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "filefield",
	Short: "Validated file path fields for the terminal",
	Long: `filefield shows a form of file path fields. Each field can be typed into
or filled from a file picker, and is checked against the host every time it
changes: a green border means the path exists for that field's purpose.

Run without arguments to open the form. Confirmed values are saved to the
settings file and remembered as suggestions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.ExpandHome(configPath))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = logging.Initialize(cfg.Logging.Logging(verbose))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Get(logging.CategoryBoot).Debug("config loaded",
			zap.String("path", configPath), zap.Int("fields", len(cfg.Fields)))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runForm,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "~/.filefield/config.yaml", "Config file")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runForm opens the interactive form.
func runForm(cmd *cobra.Command, args []string) error {
	boot := logging.Get(logging.CategoryBoot)

	caps, err := newCapabilities(cfg)
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return err
	}

	store := openHistory(cfg)
	if store != nil {
		defer store.Close()
	}

	opts := ui.FormOptions{
		Title:        cfg.Name,
		Fields:       cfg.Fields,
		Settings:     settings,
		SettingsPath: cfg.SettingsPath,
		Suggestions:  suggestions(cmd.Context(), store, cfg),
		FieldWidth:   cfg.UI.FieldWidth,
		CheckTimeout: cfg.GetCheckTimeout(),
		ShowHelp:     cfg.UI.ShowHelp,
		StaticCursor: cfg.UI.StaticCursor,
		OnSubmit:     submitter(cfg, store),
	}
	styles := ui.NewStyles(ui.ThemeNamed(cfg.UI.Theme))
	opts.Styles = &styles

	if cfg.Watch.Enabled {
		w, err := watch.New(cfg.GetWatchDebounce())
		if err != nil {
			boot.Warn("watcher unavailable, paths will not be rechecked on change", zap.Error(err))
		} else {
			defer w.Close()
			opts.Watcher = w
		}
	}

	p := tea.NewProgram(ui.NewForm(caps, opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}

	if form, ok := final.(ui.Form); ok && form.Submitted() {
		printValues(form.Values())
	}
	return nil
}

// newCapabilities returns the remote bridge client when a host URL is set,
// otherwise the local filesystem host with a native dialog.
func newCapabilities(cfg *config.Config) (host.Capabilities, error) {
	if cfg.Host.URL != "" {
		logging.Get(logging.CategoryBoot).Info("using remote host", zap.String("url", cfg.Host.URL))
		return bridge.NewClient(cfg.Host.URL, &http.Client{Timeout: cfg.GetCheckTimeout() + 5*time.Second}), nil
	}
	return newLocalHost(cfg, nativePicker(cfg)), nil
}

func newLocalHost(cfg *config.Config, picker host.Picker) *host.Local {
	return host.NewLocal(ruleSet(cfg), host.WithPicker(picker), host.WithLogger(logging.Get(logging.CategoryHost)))
}

// ruleSet converts the configured rules.
func ruleSet(cfg *config.Config) host.RuleSet {
	rules := make(host.RuleSet, len(cfg.Rules))
	for name, r := range cfg.Rules {
		kind := host.RuleKind(r.Kind)
		if kind == "" {
			kind = host.KindExists
		}
		rules[name] = host.Rule{Kind: kind, Marker: r.Marker, Glob: r.Glob, MinMatches: r.MinMatches}
	}
	return rules
}

func nativePicker(cfg *config.Config) host.NativePicker {
	p := host.NativePicker{
		Title:    cfg.Host.DialogTitle,
		StartDir: config.ExpandHome(cfg.Host.StartDir),
	}
	for _, f := range cfg.Host.Filters {
		p.Filters = append(p.Filters, host.Filter{Name: f.Name, Extensions: f.Extensions})
	}
	return p
}

// openHistory opens the history store. Failures only cost suggestions.
func openHistory(cfg *config.Config) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(config.ExpandHome(cfg.History.Path))
	if err != nil {
		logging.Get(logging.CategoryHistory).Warn("history unavailable", zap.Error(err))
		return nil
	}
	return store
}

func suggestions(ctx context.Context, store *history.Store, cfg *config.Config) map[string][]string {
	if store == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	out := make(map[string][]string, len(cfg.Fields))
	for _, f := range cfg.Fields {
		paths, err := store.Paths(ctx, f.ID, cfg.History.Limit)
		if err != nil {
			logging.Get(logging.CategoryHistory).Warn("failed to load suggestions", zap.String("field", f.ID), zap.Error(err))
			continue
		}
		out[f.ID] = paths
	}
	return out
}

// submitter saves the confirmed values and remembers them in history.
func submitter(cfg *config.Config, store *history.Store) func(map[string]string) error {
	return func(values map[string]string) error {
		if err := config.SaveSettings(cfg.SettingsPath, config.Settings{Values: values}); err != nil {
			return err
		}
		if store == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for id, path := range values {
			if err := store.Record(ctx, id, path); err != nil {
				logging.Get(logging.CategoryHistory).Warn("failed to record path", zap.String("field", id), zap.Error(err))
			}
		}
		return nil
	}
}

func printValues(values map[string]string) {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("%s=%s\n", id, values[id])
	}
}
