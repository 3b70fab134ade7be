package main

import (
	"cemeterycore/internal/config"
	"cemeterycore/internal/core"
	"cemeterycore/internal/ledger"
	"cemeterycore/internal/localstore"
	"cemeterycore/internal/session"
	"cemeterycore/pkg/domain"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// app holds the stores a single invocation works against.
type app struct {
	svc      *core.Service
	ledger   *ledger.Ledger
	sessions *session.Store
	metrics  *prometheus.Registry
	logger   *slog.Logger
	out      io.Writer
	errOut   io.Writer
	closers  []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out, errOut io.Writer) (*app, error) {
	snapshots, err := localstore.Open(ctx, cfg.LocalStoreConfig())
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	a := &app{metrics: prometheus.NewRegistry(), logger: logger, out: out, errOut: errOut}
	recorder, err := core.NewPrometheusMetricsRecorder(a.metrics)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	store, err := core.OpenPersistentStore(ctx, cfg.StorageConfig(), core.NewDefaultRulesEngine())
	if err != nil {
		return nil, fmt.Errorf("open inventory store: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	a.svc = core.NewService(store, core.WithLogger(logger), core.WithMetricsRecorder(recorder))
	if cfg.Seed {
		if _, err := a.svc.Seed(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("seed inventory: %w", err)
		}
	}

	a.ledger, err = ledger.Open(ctx, snapshots, ledger.WithLogger(logger))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := a.metrics.Register(a.ledger.Collector()); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("register ledger metrics: %w", err)
	}
	a.sessions = session.NewStore(snapshots, nil)
	return a, nil
}

// Close releases durable stores.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// authorize returns the session user when their role grants capability.
func (a *app) authorize(ctx context.Context, capability domain.Capability) (session.User, error) {
	u, err := a.sessions.Require(ctx)
	if err != nil {
		return session.User{}, fmt.Errorf("%w; run: cemeteryctl session start", err)
	}
	if err := core.Authorize(u.Role, capability); err != nil {
		return session.User{}, err
	}
	return u, nil
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
