package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ib-77/vrcdecode/internal/config"
	"github.com/ib-77/vrcdecode/internal/httpapi"
	"github.com/ib-77/vrcdecode/internal/metrics"
	"github.com/ib-77/vrcdecode/pkg/vrc"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP decode service",
		Flags: []cli.Flag{
			configFlag,
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides http.port)",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if c.IsSet("port") {
		cfg.HTTP.Port = c.Int("port")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := (&net.ListenConfig{}).Listen(ctx, "tcp", cfg.Addr())
	if err != nil {
		return err
	}

	handler, err := newHandler(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		l.Close()
		return err
	}
	return serve(ctx, l, handler, logger)
}

// newHandler wires the decode API, health and metrics on one router.
func newHandler(cfg config.Config, logger *zap.Logger, reg *prometheus.Registry) (http.Handler, error) {
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.DecoderOptions(), vrc.WithLogger(logger), vrc.WithObserver(collector))
	svc := httpapi.NewService(vrc.NewDecoder(opts...),
		httpapi.WithLogger(logger),
		httpapi.WithWorkers(cfg.Batch.Workers),
		httpapi.WithMaxRequestBody(cfg.MaxRequestBytes()))

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/health", svc.HandleHealth).Methods(http.MethodGet)
	svc.RegisterRoutes(router)
	return router, nil
}

// serve runs handler on l until ctx ends, then shuts the server down.
func serve(ctx context.Context, l net.Listener, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server started", zap.String("addr", l.Addr().String()))
		if err := srv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
