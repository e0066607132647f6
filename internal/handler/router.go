package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/handler/page"
	"github.com/gemsales/voice-trainer/backend/internal/handler/persona"
	"github.com/gemsales/voice-trainer/backend/internal/handler/report"
	"github.com/gemsales/voice-trainer/backend/internal/handler/session"
	"github.com/gemsales/voice-trainer/backend/internal/metrics"
	middlewarePkg "github.com/gemsales/voice-trainer/backend/internal/middleware"
	personaModel "github.com/gemsales/voice-trainer/backend/internal/model/persona"
	"github.com/gemsales/voice-trainer/backend/internal/service/training"
	"github.com/gemsales/voice-trainer/backend/pkg/utils"
)

// Options configures NewRouter.
type Options struct {
	Personas       personaModel.Store
	Training       *training.Service
	MaxUploadBytes int64
	MetricsPath    string
	Logger         logrus.FieldLogger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(opts.Personas)
	sessionHandler := session.New(opts.Training, opts.MaxUploadBytes, opts.Logger)
	reportHandler := report.New(opts.Training, opts.Logger)

	r.Method(http.MethodGet, "/", page.New(opts.Personas, opts.Logger))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics.Enabled() && opts.MetricsPath != "" {
		r.Method(http.MethodGet, opts.MetricsPath, metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api)
		reportHandler.RegisterRoutes(api)
	})

	return r
}
