package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poagov/internal/ballot"
	"poagov/internal/chain"
	"poagov/internal/config"
	"poagov/internal/metrics"
	"poagov/internal/notify"
	"poagov/internal/notify/postgres"
	"poagov/internal/scanner"
)

const metricsNamespace = "poagov"

func runScanner(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	scanMetrics := metrics.NewScanMetrics(reg, metricsNamespace)

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, cfg.RPCTimeout)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	registry, err := ballot.NewRegistry(ballot.Config{Signatures: cfg.Signatures})
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	fanout, err := buildSinks(ctx, cfg, reg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := fanout.Close(); err != nil {
			logger.Warn("close sinks", zap.Error(err))
		}
	}()
	if fanout.Len() == 0 {
		logger.Warn("no notification outputs configured, notifications are only counted")
	}

	contracts := make([]scanner.Contract, 0, len(cfg.Contracts))
	for _, c := range cfg.Contracts {
		contracts = append(contracts, scanner.Contract{Type: c.Type, Address: c.Address})
	}

	opts := []scanner.Option{scanner.WithMetrics(scanMetrics)}
	if cfg.DeadLetter != "" {
		opts = append(opts, scanner.WithDeadLetter(notify.NewJSONLFile(cfg.DeadLetter)))
	}

	engine, err := scanner.NewEngine(scanner.Config{
		Network:        cfg.Network,
		Version:        cfg.Version,
		Endpoint:       chainClient.Endpoint(),
		Contracts:      contracts,
		Start:          cfg.Start,
		PollInterval:   cfg.BlockTime,
		Limit:          cfg.Limit,
		MaxRange:       cfg.MaxRange,
		StartupRetries: cfg.StartupRetries,
		RetryBackoff:   cfg.RetryBackoff,
	}, chainClient, registry, fanout, logger, opts...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// the limit ends the run the same way a signal does
		defer stop()
		return engine.Run(gctx)
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsHandler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("metrics server start", zap.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

// buildSinks assembles every configured notification output.
func buildSinks(ctx context.Context, cfg config.Settings, reg *prometheus.Registry, logger *zap.Logger) (*notify.Fanout, error) {
	var sinks []notify.Sink

	if cfg.LogEmails {
		sinks = append(sinks, notify.NewLogSink(logger))
	}

	if cfg.Email.Enabled {
		emailSink, err := notify.NewEmailSink(notify.EmailConfig{
			Host:       cfg.Email.Host,
			Port:       cfg.Email.Port,
			Username:   cfg.Email.Username,
			Password:   cfg.Email.Password,
			From:       cfg.Email.From,
			Recipients: cfg.Email.Recipients,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("%w: email: %v", config.ErrInvalidConfig, err)
		}
		sinks = append(sinks, emailSink)
	}

	if cfg.Archive != "" {
		sinks = append(sinks, notify.NewArchiveSink(cfg.Archive))
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			closeSinks(sinks, logger)
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			closeSinks(sinks, logger)
			return nil, err
		}
		sinks = append(sinks, store)
	}

	if len(cfg.KafkaBrokers) > 0 {
		m := kprom.NewMetrics(metricsNamespace+"_kafka",
			kprom.Registerer(reg),
			kprom.Gatherer(reg))
		kcl, err := kgo.NewClient(
			kgo.WithHooks(m),
			kgo.SeedBrokers(cfg.KafkaBrokers...),
			kgo.DefaultProduceTopic(cfg.KafkaTopic),
		)
		if err != nil {
			closeSinks(sinks, logger)
			return nil, fmt.Errorf("create kafka client: %w", err)
		}
		sinks = append(sinks, notify.NewKafkaSink(kcl, cfg.KafkaTopic))
	}

	logger.Info("notification outputs",
		zap.Bool("log", cfg.LogEmails),
		zap.Bool("email", cfg.Email.Enabled),
		zap.String("archive", cfg.Archive),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
	)
	return notify.NewFanout(sinks...), nil
}

func closeSinks(sinks []notify.Sink, logger *zap.Logger) {
	if err := notify.NewFanout(sinks...).Close(); err != nil {
		logger.Warn("close sinks", zap.Error(err))
	}
}
