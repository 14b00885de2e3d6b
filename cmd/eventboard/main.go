package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/cachebuilder"
	"github.com/kcmi-rcc/eventboard/internal/ingest"
	"github.com/kcmi-rcc/eventboard/internal/logger"
	internalhttp "github.com/kcmi-rcc/eventboard/internal/server/http"
	"github.com/kcmi-rcc/eventboard/internal/source"
	log "github.com/sirupsen/logrus"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "./configs/config.yaml", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	if flag.Arg(0) == "version" {
		printVersion()
		return
	}

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
	store, err := cachebuilder.New(config.Cache)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	src, err := source.NewFromConfig(config.Source)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}

	loader := ingest.New(src, store, config.Ingest)
	server := internalhttp.NewServer(config.HTTPServer, loader)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			log.Error("failed to stop http server: " + err.Error())
		}
	}()

	log.Info("eventboard is running...")

	if err := server.Start(ctx); err != nil {
		log.Error("failed to start http server: " + err.Error())
		cancel()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		err := store.Close(ctx)
		if err != nil {
			log.Errorf("failed to close cache store: %v", err)
		}
		os.Exit(1) //nolint:gocritic
	}
	ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	err = store.Close(ctx)
	if err != nil {
		log.Errorf("failed to close cache store: %v", err)
	}
}
