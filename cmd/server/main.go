package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tomoru/internal/config"
	"tomoru/internal/logger"
	"tomoru/internal/metrics"
	"tomoru/internal/reporter"
	"tomoru/internal/server"
	"tomoru/internal/stats"
	"tomoru/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.ParseFlags()

	if err := logger.Init(cfg.LogFile, cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()
	log := logger.L()

	log.Debug("configuration loaded",
		zap.String("addr", cfg.HTTPAddr()),
		zap.Duration("report_interval", cfg.ReportInterval),
		zap.Bool("metrics", cfg.MetricsEnabled),
		zap.String("redis_addr", cfg.RedisAddr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	counter := stats.NewRequestCounter()

	var sinks []reporter.Sink
	if cfg.RedisEnabled() {
		publisher := storage.NewReportPublisher(storage.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
			TTL:      cfg.RedisTTL,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := publisher.CheckConnection(pingCtx)
		cancel()
		if err != nil {
			log.Error("redis unavailable", zap.Error(err))
			return 1
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	collector := metrics.NewCollector(counter)
	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collector,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		gatherer = reg
	}

	srv := &http.Server{
		Handler:           server.NewServer(counter, gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddr())
	if err != nil {
		log.Error(fmt.Sprintf("failed to bind to port %d", cfg.Port), zap.Error(err))
		return 1
	}
	fmt.Printf("Server running on http://%s\n", listener.Addr())
	logger.Log("reporting request counts every %s", cfg.ReportInterval)

	rep := reporter.New(counter, os.Stdout, cfg.ReportInterval, sinks...)
	rep.OnReport = collector.ReportDone
	go func() {
		if err := rep.Run(ctx); err != nil {
			log.Error("stats reporter stopped", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		exitCode = 1
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
	return exitCode
}
