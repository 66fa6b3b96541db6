package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/scaffold-api/internal/task"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// errWorkerNeedsBroker is returned when the worker is started against the
// in-process broker, whose queue only the serve process can reach.
var errWorkerNeedsBroker = errors.New("the worker command requires tasks.broker=kafka; the memory broker runs inside serve")

func newWorkerCmd(opts *rootOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume background tasks from Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := loadAppConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Tasks.Broker != task.BrokerKafka {
				return errWorkerNeedsBroker
			}

			db, dialect, err := openDatabase(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			app, err := newApplication(cfg, logger, db, dialect)
			if err != nil {
				return err
			}
			defer app.cleanup()

			return app.runWorker(ctx, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address (disabled when empty)")
	return cmd
}

// runWorker consumes tasks until ctx is done. When metricsAddr is set, the
// task metrics are exposed there.
func (app *application) runWorker(ctx context.Context, metricsAddr string) error {
	var ln net.Listener
	if metricsAddr != "" {
		var err error
		ln, err = net.Listen("tcp", metricsAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on metrics address: %w", err)
		}
	}

	consumer := app.tasks.Consumer()
	consumer.SetObserver(app.metrics.ObserveTask)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(gctx)
	})

	if ln != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.metrics.Handler())
		server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		g.Go(func() error {
			if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	app.logger.Info("worker started", "queues", app.tasks.Router.Queues())
	if err := g.Wait(); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	app.logger.Info("worker stopped")
	return nil
}
