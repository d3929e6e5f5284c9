package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"spreadwatch/internal/api/rest"
	"spreadwatch/internal/config"
	"spreadwatch/internal/exchange/buda"
	"spreadwatch/internal/infra/health"
	"spreadwatch/internal/infra/http/middleware"
	"spreadwatch/internal/infra/log"
	"spreadwatch/internal/infra/metrics"
	"spreadwatch/internal/infra/netutil"
	"spreadwatch/internal/infra/runner"
	"spreadwatch/internal/infra/version"
	"spreadwatch/internal/spread"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := log.NewLogger(cfg)
	registry := metrics.Init(logger)

	svc := spread.New(buda.New(cfg, logger), logger, cfg.Upstream.MaxConcurrency)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newHandler(cfg, logger, registry, svc),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	g := &runner.Group{}
	serverErrCh := g.Go(ctx, func(ctx context.Context) error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	health.SetReady(true)
	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("upstream", cfg.Upstream.BaseURL).
		Str("version", version.Version).
		Msg("spread service started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case s := <-sigCh:
		logger.Info().Str("signal", s.String()).Msg("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server error")
		}
	}

	health.SetReady(false)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	g.Wait()
	logger.Info().Msg("shutdown complete")
}

// newHandler mounts the API next to the probe and admin endpoints and wraps
// everything with request id and access logging.
func newHandler(cfg config.Config, logger log.Logger, reg *prometheus.Registry, svc *spread.Service) http.Handler {
	adminCIDRs, invalid := netutil.ParseCIDRs(cfg.Server.AdminAllowCIDRs)
	for _, s := range invalid {
		logger.Warn().Str("cidr", s).Msg("ignoring invalid admin cidr")
	}

	mux := http.NewServeMux()
	mux.Handle("/", rest.New(svc, logger).Handler())
	mux.Handle("/metrics", middleware.AdminGate(adminCIDRs, metrics.Handler(reg)))
	mux.HandleFunc("/healthz", health.Healthz)
	mux.HandleFunc("/readyz", health.Readyz)
	mux.HandleFunc("/version", version.Handler)
	if cfg.Server.Pprof {
		mux.Handle("/debug/pprof/", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Index)))
		mux.Handle("/debug/pprof/cmdline", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("/debug/pprof/profile", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Profile)))
		mux.Handle("/debug/pprof/symbol", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Symbol)))
		mux.Handle("/debug/pprof/trace", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Trace)))
	}
	return middleware.RequestID(middleware.Logger(logger)(mux))
}
