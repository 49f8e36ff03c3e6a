package cli

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/httpapi"
	"github.com/sandeepkv93/dayplan/internal/update"
)

// launchTUIFunc runs the bubbletea program, allowing it to be replaced in tests.
var launchTUIFunc = func(m update.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func newServeCommand(s *session) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduler over HTTP",
		Long: `Start the JSON HTTP API.

Routes:
  GET  /health
  GET|POST|DELETE /tasks
  GET|POST /classes
  GET|POST /work-hours
  GET  /schedule?date=YYYY-MM-DD
  POST /next
  POST /complete
  GET  /summary/daily?date=YYYY-MM-DD
  GET  /summary/weekly?start=YYYY-MM-DD`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			cfg := c.Config()
			if addr == "" {
				addr = cfg.Server.ListenAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return httpapi.New(c, c.Logger(), cfg.Server.AllowedOrigins).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func newTUICommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive TUI",
		Long:  `Launch the interactive terminal user interface (same as running dayplan without arguments).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, s)
		},
	}
}

func runTUI(cmd *cobra.Command, s *session) error {
	c, err := s.app(cmd)
	if err != nil {
		return err
	}
	return launchTUIFunc(update.NewModel(cmd.Context(), c, update.Options{}))
}
