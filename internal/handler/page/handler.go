package page

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/model/persona"
)

//go:embed index.html.tmpl
var indexSource string

var index = template.Must(template.New("index").Parse(indexSource))

// Handler renders the trainer page with the persona catalog inlined.
type Handler struct {
	personas persona.Store
	logger   logrus.FieldLogger
}

// New creates a page handler.
func New(personas persona.Store, logger logrus.FieldLogger) *Handler {
	return &Handler{personas: personas, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Personas []persona.Summary
	}{
		Personas: persona.Summaries(h.personas.List()),
	}
	if err := index.Execute(w, data); err != nil {
		h.logger.WithError(err).Error("render index page")
	}
}
