package logger

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	Level string
	// Format is "text" (default) or "json".
	Format string
}

// PrepareLogger configures the global logrus logger.
func PrepareLogger(config Config) error {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(config.Level)))
	if err != nil {
		return fmt.Errorf("incorrect logger level %q: %w", config.Level, err)
	}

	switch strings.ToLower(config.Format) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("incorrect logger format %q", config.Format)
	}

	log.SetOutput(os.Stdout)
	log.SetLevel(level)
	return nil
}
