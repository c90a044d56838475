package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tonhe/hostwatch/internal/config"
	"github.com/tonhe/hostwatch/internal/logging"
	"github.com/tonhe/hostwatch/internal/notify"
	"github.com/tonhe/hostwatch/tui"
)

// dashboardCommand runs the full-screen dashboard until the user quits.
// The TUI owns the terminal, so logs go to the log file only.
func dashboardCommand(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.EnsureDirs(); err != nil {
		return err
	}
	logPath, err := config.GetLogPath()
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if debugFlag {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, File: logPath})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	center := notify.NewCenter(nil, 5)
	notifier := notify.WithDefaultTTL(center, cfg.NotifyDuration)
	a := newApp(logger, notifier)
	poller := a.poller()
	defer poller.Close()

	logger.Info("dashboard starting",
		zap.String("server", cfg.Server),
		zap.Duration("interval", cfg.PollInterval),
		zap.String("version", version),
	)

	model := tui.NewAppModel(tui.Options{
		Context:  ctx,
		Config:   cfg,
		Poller:   poller,
		Registry: a.registry(),
		Center:   center,
		Notifier: notifier,
		Catalog:  a.catalog,
		Logger:   logger,
		Version:  formatVersion(version),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
