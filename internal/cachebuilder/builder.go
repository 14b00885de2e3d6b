package cachebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/cache"
	memorycache "github.com/kcmi-rcc/eventboard/internal/cache/memory"
	sqlcache "github.com/kcmi-rcc/eventboard/internal/cache/sql"
)

type Config struct {
	StoreType string
	TTL       time.Duration
	Database  sqlcache.Config
}

func New(config Config) (cache.Store, error) {
	switch config.StoreType {
	case "memory":
		return memorycache.New(config.TTL), nil
	case "sql":
		s := sqlcache.New(config.Database, config.TTL)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := s.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database %s %d: %w", config.Database.Host, config.Database.Port, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache store type %s", config.StoreType)
	}
}
