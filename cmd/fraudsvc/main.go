package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/cfg"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/metrics"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/ml"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/schema"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/scoring"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/server"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/storage"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	setupLogging(c.LogLevel)

	m := metrics.New()

	sch, err := schema.Load(c.StatsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", c.StatsPath).Msg("feature stats load failed")
	}
	log.Info().Int("features", sch.Len()).Msg("feature schema loaded")

	clf, version, hasModel := initializeClassifier(c, sch.Len(), m)
	session := scoring.NewSession(sch, clf, version, m)

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	thresholdPath := filepath.Join(c.DataPath, "config.json")
	threshold := cfg.LoadThreshold(thresholdPath, c.DefaultThreshold)

	srv := server.New(server.Options{
		Port:          c.Port,
		Session:       session,
		Metrics:       m,
		Store:         store,
		HasModel:      hasModel,
		Threshold:     threshold,
		ThresholdPath: thresholdPath,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	waitForShutdown(srv, c.ShutdownGrace)
}

func setupLogging(levelName string) {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// initializeClassifier picks the classifier in preference order: remote
// service, local coefficients artifact, demo fallback. The service stays up
// without an artifact so the API surface can be exercised before a model is
// trained.
func initializeClassifier(c cfg.Settings, featureCount int, m *metrics.Metrics) (ml.Classifier, string, bool) {
	if c.RemoteModelURL != "" {
		log.Info().Str("url", c.RemoteModelURL).Msg("using remote classifier")
		return ml.NewRemote(c.RemoteModelURL, c.RESTTimeout), "remote", true
	}

	model, err := ml.LoadLogistic(c.ModelPath, featureCount)
	if err != nil {
		log.Warn().Err(err).Str("path", c.ModelPath).
			Msg("model artifact unavailable, falling back to demo classifier")
		return ml.DemoClassifier{}, "demo", false
	}

	if info, err := os.Stat(c.ModelPath); err == nil {
		m.ModelAge.Set(time.Since(info.ModTime()).Seconds())
	}

	log.Info().Str("version", model.Version()).Msg("model loaded")
	return model, model.Version(), true
}

// initializeStorage opens the score audit log if DATA_PATH is configured.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}

	if err := os.MkdirAll(c.DataPath, 0o755); err != nil {
		log.Warn().Err(err).Msg("data directory unavailable, continuing without audit log")
		return nil
	}

	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without audit log")
		return nil
	}
	return store
}

// waitForShutdown blocks until a shutdown signal arrives, then drains the
// server within the configured grace period.
func waitForShutdown(srv *server.Server, grace time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutdown signal received, draining")

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown incomplete, forcing exit")
	}
	log.Info().Msg("server stopped")
}
