// Package cli provides the dayplan command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/app"
	"github.com/sandeepkv93/dayplan/internal/config"
)

// Command group IDs.
const (
	groupPlan = "plan"
	groupView = "view"
	groupHost = "host"
)

// Opener builds the container once the config is resolved. Tests swap it for one
// with a fixed clock.
type Opener func(ctx context.Context, cfg config.RuntimeConfig) (*app.Container, error)

// session lazily opens the container for whichever subcommand runs.
type session struct {
	open       Opener
	configPath string
	container  *app.Container
}

func (s *session) app(cmd *cobra.Command) (*app.Container, error) {
	if s.container != nil {
		return s.container, nil
	}
	path := s.configPath
	required := path != ""
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c, err := s.open(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open dayplan: %w", err)
	}
	s.container = c
	return c, nil
}

func (s *session) close() error {
	if s.container == nil {
		return nil
	}
	err := s.container.Close()
	s.container = nil
	return err
}

// NewRootCommand creates the root command. A nil open uses app.Open.
func NewRootCommand(open Opener, version string) *cobra.Command {
	if open == nil {
		open = app.Open
	}
	s := &session{open: open}

	root := &cobra.Command{
		Use:   "dayplan",
		Short: "Plan study time around classes and deadlines",
		Long: `dayplan ranks pending tasks by deadline, effort and learned preference,
then packs them into the working-hours block left over after classes.

Running dayplan with no subcommand opens the interactive TUI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, s)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return s.close()
		},
	}
	root.PersistentFlags().StringVar(&s.configPath, "config", "", "Path to config.toml (default: $XDG_CONFIG_HOME/dayplan/config.toml)")

	root.AddGroup(
		&cobra.Group{ID: groupPlan, Title: "Planning Commands:"},
		&cobra.Group{ID: groupView, Title: "Schedule Commands:"},
		&cobra.Group{ID: groupHost, Title: "Front Ends:"},
	)

	for _, cmd := range []*cobra.Command{
		newTaskCommand(s),
		newClassCommand(s),
		newWorkCommand(s),
		newDoneCommand(s),
		newImportCommand(s),
		newAdaptCommand(s),
	} {
		cmd.GroupID = groupPlan
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		newScheduleCommand(s),
		newNextCommand(s),
		newSummaryCommand(s),
	} {
		cmd.GroupID = groupView
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		newServeCommand(s),
		newTUICommand(s),
	} {
		cmd.GroupID = groupHost
		root.AddCommand(cmd)
	}
	return root
}
