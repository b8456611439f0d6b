// Package config reads yaml configuration with viper. A value written as
// "$env:NAME" is taken from the environment variable NAME.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

// LoadDotEnv loads variables from files into the environment without
// overriding those already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load %q: %w", f, err)
		}
		log.Debugf("environment loaded from %s", f)
	}
	return nil
}

// Load reads configFile into out. Defaults and env bindings must already be
// registered on v, an empty configFile uses only them.
func Load(v *viper.Viper, configFile string, out interface{}) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %q: %w", configFile, err)
		}
	}

	for _, key := range v.AllKeys() {
		env := v.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			if err := v.BindEnv(key, env[len(envConfigPrefix):]); err != nil {
				return fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return nil
}
