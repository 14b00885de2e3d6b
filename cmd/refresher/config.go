package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/cachebuilder"
	"github.com/kcmi-rcc/eventboard/internal/ingest"
	"github.com/kcmi-rcc/eventboard/internal/logger"
	"github.com/kcmi-rcc/eventboard/internal/rabbit"
	"github.com/kcmi-rcc/eventboard/internal/source"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type Config struct {
	Logger   logger.Config
	Rabbit   rabbit.Config
	Cache    cachebuilder.Config
	Source   source.Config
	Ingest   ingest.Config
	Interval time.Duration
}

func NewConfig(configFile string) (Config, error) {
	config := Config{}
	viper.SetConfigFile(configFile)

	viper.SetDefault("rabbit.host", "127.0.0.1")
	viper.SetDefault("rabbit.port", "5672")
	viper.SetDefault("rabbit.user", "user")
	viper.SetDefault("rabbit.password", "pass")
	viper.SetDefault("rabbit.queue", "eventboard.refresh")
	viper.SetDefault("logger.level", "WARN")
	viper.SetDefault("cache.storeType", "memory")
	viper.SetDefault("cache.ttl", "30m")
	viper.SetDefault("source.type", "sheet")
	viper.SetDefault("source.timeout", "15s")
	viper.SetDefault("ingest.cacheKey", "kcmi_events_cache")
	viper.SetDefault("interval", "15m")

	err := viper.ReadInConfig()
	if err != nil {
		return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
	}
	keys := viper.AllKeys()
	for _, key := range keys {
		env := viper.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			err := viper.BindEnv(key, env[len(envConfigPrefix):])
			if err != nil {
				return config, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return config, nil
}
