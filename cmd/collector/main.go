// cmd/collector/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/collector"
	"github.com/tamzrod/d6t-agent/internal/config"
	"github.com/tamzrod/d6t-agent/internal/logging"
)

const defaultListen = ":3000"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run serves the development collector: collector [listen] [config_path].
// Thresholds come from the same config file the agent reads.
func run(args []string) int {
	listen := defaultListen
	cfgPath := config.DefaultConfigPath
	if len(args) > 0 && args[0] != "" {
		listen = args[0]
	}
	if len(args) > 1 && args[1] != "" {
		cfgPath = args[1]
	}

	envErr := config.LoadDotenv(config.DotenvPath)
	cfg, loadErr := config.Load(cfgPath)

	log, lvlErr := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if lvlErr != nil {
		log.WithError(lvlErr).Warn("invalid log level, using info")
	}
	if envErr != nil {
		log.WithError(envErr).Warn("env file ignored")
	}
	if loadErr != nil {
		log.WithError(loadErr).Warn("config unavailable, using defaults")
	}
	for _, w := range config.Normalize(cfg) {
		log.Warn(w)
	}

	rt := cfg.Runtime()
	store := collector.NewStore(alert.Thresholds{High: rt.HighThreshold, Low: rt.LowThreshold})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := collector.NewHub(log)
	go hub.Run(ctx)

	access := log.WriterLevel(logrus.DebugLevel)
	defer access.Close()

	srv := &http.Server{
		Addr: listen,
		Handler: handlers.RecoveryHandler(handlers.RecoveryLogger(log))(
			handlers.LoggingHandler(access, collector.NewServer(store, hub, log).Router()),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithFields(logrus.Fields{
		"addr": listen,
		"high": rt.HighThreshold,
		"low":  rt.LowThreshold,
	}).Info("collector listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("collector failed")
		return 1
	}

	log.Info("collector stopped")
	return 0
}
