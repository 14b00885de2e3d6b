package main

import (
	"fmt"
	"strings"

	"github.com/kcmi-rcc/eventboard/internal/cachebuilder"
	"github.com/kcmi-rcc/eventboard/internal/ingest"
	"github.com/kcmi-rcc/eventboard/internal/logger"
	internalhttp "github.com/kcmi-rcc/eventboard/internal/server/http"
	"github.com/kcmi-rcc/eventboard/internal/source"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type Config struct {
	HTTPServer internalhttp.Config
	Logger     logger.Config
	Cache      cachebuilder.Config
	Source     source.Config
	Ingest     ingest.Config
}

func NewConfig(configFile string) (Config, error) {
	config := Config{}
	viper.SetConfigFile(configFile)

	viper.SetDefault("httpServer.host", "127.0.0.1")
	viper.SetDefault("httpServer.port", "8005")
	viper.SetDefault("logger.level", "WARN")
	viper.SetDefault("cache.storeType", "memory")
	viper.SetDefault("cache.ttl", "30m")
	viper.SetDefault("source.type", "sheet")
	viper.SetDefault("source.timeout", "15s")
	viper.SetDefault("ingest.cacheKey", "kcmi_events_cache")
	viper.SetDefault("ingest.backgroundRefresh", true)
	viper.SetDefault("ingest.refreshDelay", "2s")

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
				return Config{}, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return config, nil
}
