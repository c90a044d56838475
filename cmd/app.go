package cmd

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/tonhe/hostwatch/internal/api"
	"github.com/tonhe/hostwatch/internal/engine"
	"github.com/tonhe/hostwatch/internal/i18n"
	"github.com/tonhe/hostwatch/internal/logging"
	"github.com/tonhe/hostwatch/internal/notify"
	"github.com/tonhe/hostwatch/internal/registry"
)

// app bundles what every command needs to talk to the server.
type app struct {
	logger   *zap.Logger
	catalog  *i18n.Catalog
	client   *api.Client
	notifier notify.Notifier
}

func newApp(logger *zap.Logger, n notify.Notifier) *app {
	transport := api.NewHTTPTransport(cfg.Server, cfg.RequestTimeout, logger)
	return &app{
		logger:   logger,
		catalog:  i18n.New(cfg.Language),
		client:   api.NewClient(transport, logger),
		notifier: n,
	}
}

// newCLIApp logs to stderr at warn, or debug with --debug, and prints
// notifications to out.
func newCLIApp(out io.Writer) (*app, error) {
	level := "warn"
	if debugFlag {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Console: true})
	if err != nil {
		return nil, err
	}
	return newApp(logger, notify.NewWriter(out)), nil
}

func (a *app) registry() *registry.Registry {
	return registry.New(a.client, registry.Options{
		Logger:   a.logger,
		Notifier: a.notifier,
		Catalog:  a.catalog,
	})
}

func (a *app) poller() *engine.Poller {
	return engine.NewPoller(a.client, engine.Options{
		Interval:    cfg.PollInterval,
		HistorySize: cfg.HistorySize,
		Logger:      a.logger,
		Notifier:    a.notifier,
		Catalog:     a.catalog,
	})
}

// reportedError marks an error the notifier has already shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// IsReported reports whether err was already printed as a notification, so
// main only needs to set the exit status.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
