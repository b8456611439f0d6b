package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lomoval/weekcal/internal/app"
	"github.com/lomoval/weekcal/internal/config"
	"github.com/lomoval/weekcal/internal/logger"
	"github.com/lomoval/weekcal/internal/rabbit"
	"github.com/lomoval/weekcal/internal/scheduler"
	"github.com/lomoval/weekcal/internal/storagebuilder"
	log "github.com/sirupsen/logrus"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "./configs/scheduler_config.yaml", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	cfg, err := NewConfig(configFile)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	err = logger.PrepareLogger(cfg.Logger)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}

	r := rabbit.New(cfg.Rabbit)
	if err := r.Connect(); err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	defer r.Close()

	stor, err := storagebuilder.New(cfg.Storage)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		if err := stor.Close(ctx); err != nil {
			log.Errorf("failed to close storage: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	log.Infof("scheduler is running, checking every %s", cfg.Scheduler.CheckInterval)
	scheduler.New(cfg.Scheduler, app.New(stor), r, cfg.Owner).Run(ctx)
}
