package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sheikh-saqib/gold-token-ledger/internal/api"
	"github.com/sheikh-saqib/gold-token-ledger/internal/config"
	"github.com/sheikh-saqib/gold-token-ledger/internal/events/kafka"
	eventsmemory "github.com/sheikh-saqib/gold-token-ledger/internal/events/memory"
	interfaces "github.com/sheikh-saqib/gold-token-ledger/internal/interfaces"
	"github.com/sheikh-saqib/gold-token-ledger/internal/ledger"
	"github.com/sheikh-saqib/gold-token-ledger/internal/logging"
	"github.com/sheikh-saqib/gold-token-ledger/internal/metrics"
	"github.com/sheikh-saqib/gold-token-ledger/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(root *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.EnvFiles...)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		publisher   interfaces.EventPublisher
		handlerOpts = []api.Option{api.WithLogger(logger), api.WithGatherer(reg)}
	)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	} else {
		recorder := eventsmemory.NewRecorder()
		publisher = recorder
		handlerOpts = append(handlerOpts, api.WithEventSource(recorder))
		logger.Info("no kafka brokers configured, keeping events in memory")
	}

	l, err := ledger.NewLedger(ctx, store, cfg.TokenOwner,
		ledger.WithPublisher(publisher),
		ledger.WithEventTopic(cfg.KafkaTopic),
		ledger.WithLogger(logger.Named("ledger")),
		ledger.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		return err
	}

	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewHandler(l, handlerOpts...).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
