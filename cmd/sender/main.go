package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lomoval/weekcal/internal/config"
	"github.com/lomoval/weekcal/internal/logger"
	"github.com/lomoval/weekcal/internal/rabbit"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "./configs/sender_config.yaml", "Path to configuration file")
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	err = r.Consume(ctx, func(msg amqp.Delivery) {
		m, err := rabbit.Decode(msg.Body)
		if err != nil {
			log.Errorf("skipping message: %v", err)
			return
		}
		entry := log.WithField("kind", m.Kind).WithField("id", m.ID).WithField("owner", m.OwnerID).
			WithField("start", m.Start)
		if m.Kind == rabbit.KindChange {
			entry = entry.WithField("action", m.Action)
		}
		entry.Infof("sending notification %q", m.Title)
	})
	if err != nil {
		log.Errorf("consumer stopped: %v", err)
	}
}
