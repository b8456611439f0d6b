package main

import (
	"github.com/lomoval/weekcal/internal/config"
	"github.com/lomoval/weekcal/internal/logger"
	"github.com/lomoval/weekcal/internal/rabbit"
	"github.com/spf13/viper"
)

type Config struct {
	Logger logger.Config
	Rabbit rabbit.Config
}

func NewConfig(configFile string) (Config, error) {
	cfg := Config{}
	v := viper.New()

	v.SetDefault("rabbit.host", "127.0.0.1")
	v.SetDefault("rabbit.port", 5672)
	v.SetDefault("rabbit.user", "user")
	v.SetDefault("rabbit.password", "pass")
	v.SetDefault("rabbit.queue", "calendar.notify")
	v.SetDefault("logger.level", "INFO")

	err := config.Load(v, configFile, &cfg)
	return cfg, err
}
