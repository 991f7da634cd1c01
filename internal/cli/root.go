package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adriangreen/tm-list/internal/tasks"
	"github.com/adriangreen/tm-list/internal/ui"
	"github.com/adriangreen/tm-list/internal/view"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every command
type options struct {
	configPath string
	backend    string
	dataDir    string
	key        string
	debug      bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "tm-list",
		Short: "tm-list - a personal list manager for the terminal",
		Long: `tm-list keeps a short ordered list of things to do. Add, edit, reorder,
complete and clear items interactively, or script it with the subcommands.
The list is stored in a single key of a local key-value store.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tm-list/config.json)")
	flags.StringVar(&opts.backend, "backend", "", "storage backend: badger, json, sqlite or memory")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory holding the durable store")
	flags.StringVar(&opts.key, "key", "", "storage key the list is kept under")
	flags.BoolVar(&opts.debug, "debug", false, "write a JSON debug log to the configured log path")

	cmd.AddCommand(
		newAddCommand(opts),
		newListCommand(opts),
		newDoneCommand(opts),
		newClearCommand(opts),
		newExportCommand(opts),
		newSlotCommand(opts),
	)

	return cmd
}

// runTUI starts the Bubble Tea TUI application
func runTUI(cmd *cobra.Command, opts *options) error {
	// Create context that can be cancelled
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals for clean shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	load := func(ctx context.Context) view.Controller {
		return tasks.Open(ctx, s.store)
	}

	ui.ApplyColorProfile()
	m := ui.NewModel(ctx, s.cfg, s.manager, load, s.logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// The watcher is optional; the list works without it
	if err := s.manager.StartWatcher(ctx, func(err error) {
		p.Send(ui.WatcherErrorMsg{Err: err})
	}); err != nil {
		s.logger.Warn("config watcher not started", "error", err)
	}
	defer s.manager.StopWatcher()

	s.logger.Info("starting tui", "backend", s.cfg.Storage.Backend, "key", s.store.Key())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}
