package main

import (
	"time"

	"github.com/lomoval/weekcal/internal/config"
	"github.com/lomoval/weekcal/internal/identity"
	"github.com/lomoval/weekcal/internal/logger"
	"github.com/lomoval/weekcal/internal/rabbit"
	"github.com/lomoval/weekcal/internal/scheduler"
	"github.com/lomoval/weekcal/internal/storagebuilder"
	"github.com/spf13/viper"
)

type Config struct {
	Owner     string
	Logger    logger.Config
	Rabbit    rabbit.Config
	Storage   storagebuilder.Config
	Scheduler scheduler.Config
}

func NewConfig(configFile string) (Config, error) {
	cfg := Config{}
	v := viper.New()

	v.SetDefault("owner", identity.DefaultOwner)
	v.SetDefault("rabbit.host", "127.0.0.1")
	v.SetDefault("rabbit.port", 5672)
	v.SetDefault("rabbit.user", "user")
	v.SetDefault("rabbit.password", "pass")
	v.SetDefault("rabbit.queue", "calendar.notify")
	v.SetDefault("logger.level", "WARN")
	v.SetDefault("storage.storageType", "memory")
	v.SetDefault("storage.mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("scheduler.checkInterval", time.Minute)
	v.SetDefault("scheduler.lead", 15*time.Minute)

	err := config.Load(v, configFile, &cfg)
	return cfg, err
}
