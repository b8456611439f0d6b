package main

import (
	"fmt"

	"github.com/lomoval/weekcal/internal/config"
	"github.com/lomoval/weekcal/internal/identity"
	"github.com/lomoval/weekcal/internal/logger"
	"github.com/lomoval/weekcal/internal/rabbit"
	internalgrpc "github.com/lomoval/weekcal/internal/server/grpc"
	internalhttp "github.com/lomoval/weekcal/internal/server/http"
	"github.com/lomoval/weekcal/internal/storagebuilder"
	"github.com/lomoval/weekcal/internal/tracing"
	"github.com/spf13/viper"
)

type Config struct {
	// Owner is the identity every request is scoped to.
	Owner      string
	HTTPServer internalhttp.Config
	// GrpcServer is disabled with port 0.
	GrpcServer internalgrpc.Config
	Logger     logger.Config
	Storage    storagebuilder.Config
	// Rabbit publishing of changes is disabled with an empty host.
	Rabbit  rabbit.Config
	Tracing tracing.Config
}

func NewConfig(configFile string) (Config, error) {
	cfg := Config{}
	v := viper.New()

	v.SetDefault("owner", identity.DefaultOwner)
	v.SetDefault("httpServer.host", "0.0.0.0")
	v.SetDefault("httpServer.port", 3002)
	v.SetDefault("httpServer.basePath", internalhttp.DefaultBasePath)
	v.SetDefault("httpServer.allowedOrigins", []string{"*"})
	v.SetDefault("grpcServer.host", "127.0.0.1")
	v.SetDefault("grpcServer.port", 3003)
	v.SetDefault("logger.level", "INFO")
	v.SetDefault("logger.format", "text")
	v.SetDefault("storage.storageType", "memory")
	v.SetDefault("storage.mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("storage.mongo.database", "calendar")
	v.SetDefault("storage.database.driver", "postgres")
	v.SetDefault("storage.database.path", "calendar.db")
	v.SetDefault("rabbit.port", 5672)
	v.SetDefault("rabbit.queue", "calendar.notify")
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.serviceName", "calendar")

	// conventional variables of the deployment, a config file may still redirect them with $env:
	if err := v.BindEnv("httpServer.port", "PORT"); err != nil {
		return cfg, fmt.Errorf("failed to prepare config: %w", err)
	}
	if err := v.BindEnv("storage.mongo.uri", "MONGO_URI"); err != nil {
		return cfg, fmt.Errorf("failed to prepare config: %w", err)
	}

	if err := config.Load(v, configFile, &cfg); err != nil {
		return cfg, err
	}
	cfg.HTTPServer.Owner = cfg.Owner
	cfg.GrpcServer.Owner = cfg.Owner
	return cfg, nil
}
