package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/snowflake"
	apiserver "github.com/dtapi/booking-coordinator/internal/api_server"
	"github.com/dtapi/booking-coordinator/internal/config"
	"github.com/dtapi/booking-coordinator/internal/events"
	v1 "github.com/dtapi/booking-coordinator/internal/handlers/v1"
	"github.com/dtapi/booking-coordinator/internal/notification"
	"github.com/dtapi/booking-coordinator/internal/service"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/pkg/metrics"
	"github.com/dtapi/booking-coordinator/pkg/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the booking api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, flush, err := setup()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		defer flush()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		s, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		matcher := service.NewMatcher(s)
		dispatcher := notification.NewDispatcher(s, matcher, notification.NewLogSink(), cfg.Notification.Timeout, cfg.Notification.Concurrency)

		var (
			writer   events.Writer = &events.StdoutWriter{}
			consumer *events.Consumer
		)
		if cfg.Notification.Transport != events.TransportLog {
			logger := events.NewZapLogger(zap.S().Named("watermill"))
			transport, err := events.NewTransport(cfg, logger)
			if err != nil {
				return err
			}
			defer transport.Close()

			consumer, err = events.NewConsumer(transport, cfg.Notification.Topic, dispatcher, logger)
			if err != nil {
				return fmt.Errorf("creating event consumer: %w", err)
			}
			writer = events.NewPublisherWriter(transport.Publisher)
		}

		producer := events.NewEventProducer(writer, events.WithOutputTopic(cfg.Notification.Topic))
		defer func() {
			if err := producer.Close(); err != nil {
				zap.S().Errorw("failed to close event producer", "error", err)
			}
		}()

		handler := v1.NewServiceHandler(
			service.NewJobService(s, producer),
			matcher,
			service.NewAcceptanceService(s, matcher, producer),
			service.NewLifecycleService(s, producer),
			service.NewAdminService(s),
			service.NewNotificationService(s, dispatcher),
		)

		g, gctx := errgroup.WithContext(ctx)

		if consumer != nil {
			g.Go(func() error {
				return consumer.Run(gctx)
			})

			select {
			case <-consumer.Running():
			case <-gctx.Done():
				return g.Wait()
			}
		}

		g.Go(func() error {
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				return fmt.Errorf("creating listener: %w", err)
			}
			return apiserver.New(cfg, handler, listener).Run(gctx)
		})

		g.Go(func() error {
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				return fmt.Errorf("creating metrics listener: %w", err)
			}
			reporter := metrics.NewStatusReporter(s.Job(), cfg.Service.StatusReportInterval)
			return apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener, reporter).Run(gctx)
		})

		if err := g.Wait(); err != nil {
			zap.S().Errorw("API service failed", "error", err)
			return err
		}
		return nil
	},
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	zap.S().Info("Initializing data store")
	db, err := store.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing data store: %w", err)
	}

	node, err := snowflake.NewNode(cfg.Service.NodeID)
	if err != nil {
		return nil, fmt.Errorf("creating id generator: %w", err)
	}

	if cfg.Database.Type == "pgsql" {
		if err := migrations.MigrateStore(db); err != nil {
			return nil, fmt.Errorf("running schema migrations: %w", err)
		}
	}

	s := store.NewStore(db, node)
	if err := s.InitialMigration(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("running initial migration: %w", err)
	}
	return s, nil
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
