package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/kcmi-rcc/eventboard/internal/cachebuilder"
	"github.com/kcmi-rcc/eventboard/internal/ingest"
	"github.com/kcmi-rcc/eventboard/internal/logger"
	"github.com/kcmi-rcc/eventboard/internal/rabbit"
	"github.com/kcmi-rcc/eventboard/internal/render"
	"github.com/kcmi-rcc/eventboard/internal/source"
	log "github.com/sirupsen/logrus"
)

var configFile string

const refreshTimeout = 30 * time.Second

func init() {
	flag.StringVar(&configFile, "config", "./configs/refresher_config.yaml", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

// digestRenderer publishes a refresh digest for every successful cycle.
type digestRenderer struct {
	provider *rabbit.Provider
	slot     string
	source   string
}

func (d digestRenderer) Render(cards []render.Card, _ string) {
	m := rabbit.Message{
		Slot:        d.slot,
		Source:      d.source,
		EventCount:  len(cards),
		RefreshedAt: time.Now(),
	}
	data, _ := json.Marshal(m)
	if err := d.provider.Publish(data); err != nil {
		log.Errorf("failed to publish refresh digest: %v", err)
	}
}

func (d digestRenderer) RenderError(message string) {
	log.Errorf("scheduled refresh failed: %s", message)
}

func main() {
	flag.Parse()

	config, err := NewConfig(configFile)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	err = logger.PrepareLogger(config.Logger)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}

	r := rabbit.New(config.Rabbit)
	if err := r.Connect(); err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	defer r.Close()

	store, err := cachebuilder.New(config.Cache)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		store.Close(ctx)
	}()

	src, err := source.NewFromConfig(config.Source)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	loader := ingest.New(src, store, config.Ingest)
	renderer := digestRenderer{provider: r, slot: config.Ingest.CacheKey, source: src.Name()}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	refresh := func() {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()
		loader.Refresh(ctx, renderer)
	}

	log.Info("refresher is running...")
	refresh()

	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
