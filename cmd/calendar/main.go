package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lomoval/weekcal/internal/app"
	"github.com/lomoval/weekcal/internal/config"
	"github.com/lomoval/weekcal/internal/logger"
	"github.com/lomoval/weekcal/internal/metrics"
	"github.com/lomoval/weekcal/internal/rabbit"
	internalgrpc "github.com/lomoval/weekcal/internal/server/grpc"
	internalhttp "github.com/lomoval/weekcal/internal/server/http"
	"github.com/lomoval/weekcal/internal/storagebuilder"
	"github.com/lomoval/weekcal/internal/tracing"
	"github.com/lomoval/weekcal/internal/websocket"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 3 * time.Second

var (
	configFile string
	envFile    string
)

func init() {
	flag.StringVar(&configFile, "config", "./configs/config.yaml", "Path to configuration file")
	flag.StringVar(&envFile, "env", ".env", "Path to .env file, skipped when missing")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	if flag.Arg(0) == "version" {
		printVersion()
		return
	}

	if err := run(); err != nil {
		log.Errorf("calendar stopped: %v", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := NewConfig(configFile)
	if err != nil {
		return err
	}
	if err := logger.PrepareLogger(cfg.Logger); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer shutdown("tracing", shutdownTracing)

	stor, err := storagebuilder.New(cfg.Storage)
	if err != nil {
		return err
	}
	defer shutdown("storage", stor.Close)

	m := metrics.New()
	hub := websocket.NewHub()
	notifiers := []app.Notifier{m, hub, app.NotifierFunc(logChange)}
	if cfg.Rabbit.Host != "" {
		r := rabbit.New(cfg.Rabbit)
		if err := r.Connect(); err != nil {
			return err
		}
		defer r.Close()
		notifiers = append(notifiers, rabbit.NewChangePublisher(r))
	}
	calendar := app.New(stor, notifiers...)

	httpServer := internalhttp.NewServer(cfg.HTTPServer, calendar, internalhttp.Deps{Metrics: m, Hub: hub})
	var grpcServer *internalgrpc.Server
	if cfg.GrpcServer.Port != 0 {
		grpcServer = internalgrpc.NewServer(cfg.GrpcServer, calendar)
	}

	errs := make(chan error, 2)
	go func() {
		errs <- httpServer.Start(ctx)
	}()
	if grpcServer != nil {
		go func() {
			errs <- grpcServer.Start(ctx)
		}()
	}
	log.Infof("calendar is running for owner %q", cfg.Owner)

	select {
	case <-ctx.Done():
	case err = <-errs:
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if stopErr := httpServer.Stop(stopCtx); stopErr != nil {
		log.Errorf("failed to stop http server: %v", stopErr)
	}
	if grpcServer != nil {
		grpcServer.Stop(stopCtx) //nolint:errcheck
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func logChange(_ context.Context, change app.Change) {
	log.WithField("action", change.Action).WithField("id", change.Event.ID).
		WithField("owner", change.Event.OwnerID).Debug("event changed")
}

func shutdown(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Errorf("failed to close %s: %v", name, err)
	}
}
