package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aalvaropc/pdu-exporter/internal/buildinfo"
	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/infra/logger"
	"github.com/aalvaropc/pdu-exporter/internal/infra/metricsserver"
	"github.com/aalvaropc/pdu-exporter/internal/infra/pduclient"
	"github.com/aalvaropc/pdu-exporter/internal/infra/promexport"
	"github.com/aalvaropc/pdu-exporter/internal/infra/snapshotstore"
	"github.com/aalvaropc/pdu-exporter/internal/ports"
	"github.com/aalvaropc/pdu-exporter/internal/usecase"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Poll the PDU and expose Prometheus metrics (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

type serveOptions struct {
	snapshotDir string
	// onListen receives the bound metrics address before polling starts.
	onListen func(addr string)
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	cleanup, err := logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, serveOptions{snapshotDir: opts.snapshotDir})
}

// serve runs the poller and the metrics server until ctx is cancelled or
// either of them fails.
func serve(ctx context.Context, cfg domain.Config, so serveOptions) error {
	log := logger.L()

	reg := promexport.NewRegistry()
	exp, err := promexport.New(reg, promexport.WithDropStale(cfg.Metrics.DropStale))
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	src := pduclient.New(cfg.PDU, pduclient.WithLogger(log))
	scrape := usecase.NewScrape(src, exp, usecase.WithLogger(log))

	var pollOpts []usecase.PollerOption
	if so.snapshotDir != "" {
		pollOpts = append(pollOpts, usecase.WithOnSnapshot(archiver(snapshotstore.NewJSONStore(so.snapshotDir, snapshotstore.WithIndex(true)))))
	}
	poller := usecase.NewPoller(scrape, cfg.Polling.Interval, pollOpts...)

	srv := metricsserver.New(cfg.Listen.ListenAddr(), reg, src.URL(), log)
	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	log.Info("exporter.started",
		"version", buildinfo.Version,
		"target", src.URL(),
		"listen", ln.Addr().String(),
		"interval", cfg.Polling.Interval.String(),
		"drop_stale", cfg.Metrics.DropStale,
		"log_file", logger.Path(),
	)
	if so.onListen != nil {
		so.onListen(ln.Addr().String())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, ln) })
	g.Go(func() error { return poller.Run(gctx) })

	err = g.Wait()
	log.Info("exporter.stopped", "error", err)
	return err
}

func archiver(store ports.SnapshotStore) func(domain.Snapshot) {
	return func(s domain.Snapshot) {
		id, err := store.SaveSnapshot(s)
		if err != nil {
			logger.L().Warn("snapshot.save_failed", "error", err)
			return
		}
		logger.L().Debug("snapshot.saved", "id", id)
	}
}
