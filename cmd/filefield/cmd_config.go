package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"filefield/internal/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ErrAborted is returned when the user interrupts the wizard.
var ErrAborted = errors.New("aborted")

var configForce bool

// configCmd groups configuration helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file interactively",
	Long: `Asks for each field's label and starting path, the host to use, the theme
and the optional features, then writes the config file (--config).`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file without asking")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// prompter abstracts the wizard's questions so it can run without a terminal.
type prompter interface {
	Input(message, def, help string, suggest func(string) []string) (string, error)
	Select(message string, options []string, def string) (string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def, help string, suggest func(string) []string) (string, error) {
	var out string
	prompt := &survey.Input{Message: message, Default: def, Help: help, Suggest: suggest}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	var out string
	prompt := &survey.Select{Message: message, Options: options, Default: def}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ExpandHome(configPath)
	p := surveyPrompter{}

	if _, err := os.Stat(path); err == nil && !configForce {
		overwrite, err := p.Confirm(fmt.Sprintf("%s exists. Overwrite?", path), false)
		if err != nil {
			return err
		}
		if !overwrite {
			return ErrAborted
		}
	}

	next, err := configWizard(p, cfg)
	if err != nil {
		return err
	}
	if err := next.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

// configWizard asks for the user-facing settings, starting from base.
func configWizard(p prompter, base *config.Config) (*config.Config, error) {
	next := *base
	next.Fields = append([]config.FieldConfig(nil), base.Fields...)

	for i, f := range next.Fields {
		label, err := p.Input(fmt.Sprintf("Label for %q", f.ID), f.Label, "", nil)
		if err != nil {
			return nil, err
		}
		value, err := p.Input(fmt.Sprintf("Starting path for %q", f.ID), f.Value,
			"Leave empty to start blank. Tab completes paths.", completePath)
		if err != nil {
			return nil, err
		}
		next.Fields[i].Label = strings.TrimSpace(label)
		next.Fields[i].Value = strings.TrimSpace(value)
	}

	url, err := p.Input("Remote host URL", base.Host.URL,
		"A `filefield serve` address. Leave empty to check paths on this machine.", nil)
	if err != nil {
		return nil, err
	}
	next.Host.URL = strings.TrimSpace(url)

	theme := base.UI.Theme
	if theme == "" {
		theme = "auto"
	}
	theme, err = p.Select("Theme", []string{"auto", "light", "dark"}, theme)
	if err != nil {
		return nil, err
	}
	if theme == "auto" {
		theme = ""
	}
	next.UI.Theme = theme

	if next.Watch.Enabled, err = p.Confirm("Re-check paths when they change on disk?", base.Watch.Enabled); err != nil {
		return nil, err
	}
	if next.History.Enabled, err = p.Confirm("Remember confirmed paths as suggestions?", base.History.Enabled); err != nil {
		return nil, err
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// completePath offers filesystem completions for a partial path.
func completePath(toComplete string) []string {
	matches, _ := filepath.Glob(config.ExpandHome(toComplete) + "*")
	for i, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			matches[i] = m + string(filepath.Separator)
		}
	}
	return matches
}
