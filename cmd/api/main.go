package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/config"
	"github.com/gemsales/voice-trainer/backend/internal/handler"
	"github.com/gemsales/voice-trainer/backend/internal/logging"
	"github.com/gemsales/voice-trainer/backend/internal/metrics"
	"github.com/gemsales/voice-trainer/backend/internal/model/persona"
	"github.com/gemsales/voice-trainer/backend/internal/service/grading"
	"github.com/gemsales/voice-trainer/backend/internal/service/realtime"
	"github.com/gemsales/voice-trainer/backend/internal/service/report"
	"github.com/gemsales/voice-trainer/backend/internal/service/session"
	"github.com/gemsales/voice-trainer/backend/internal/service/speech"
	"github.com/gemsales/voice-trainer/backend/internal/service/training"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	if envErr != nil {
		logger.WithError(envErr).Debug("no .env file; using process environment only")
	}

	if cfg.Metrics.Enabled {
		metrics.Init(logger)
	}

	items, err := persona.LoadFile(cfg.Server.PersonasFile)
	if err != nil {
		logger.WithError(err).Fatal("failed to load persona catalog")
	}
	personaStore := persona.NewMemoryStore(items)
	logger.WithField("count", len(items)).Info("persona catalog loaded")

	grader, err := grading.FromConfig(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize grader")
	}
	logger.WithField("provider", grader.Provider()).Info("grader initialized")

	reports, err := report.NewRenderer(cfg.Server.ReportsDir, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to prepare reports directory")
	}

	var transcriber speech.Transcriber
	if cfg.OpenAI.Enabled() {
		transcriber = speech.NewService(cfg.OpenAI, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set; voice credentials and server-side transcription disabled")
	}

	svc := training.NewService(training.Deps{
		Personas:    personaStore,
		Sessions:    session.NewStore(personaStore),
		Broker:      realtime.NewBroker(cfg.OpenAI, logger),
		Transcriber: transcriber,
		Grader:      grader,
		Reports:     reports,
		Logger:      logger,
	})

	router := handler.NewRouter(handler.Options{
		Personas:       personaStore,
		Training:       svc,
		MaxUploadBytes: cfg.Server.MaxUploadBytes(),
		MetricsPath:    cfg.Metrics.Path,
		Logger:         logger,
	})

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger logrus.FieldLogger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.WithField("addr", addr).Info("voice trainer backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.WithError(err).Fatal("server error")
	}
	logger.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		// Grading runs detached from request contexts; give in-flight calls
		// time to finish before the process exits.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
