package report

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/handler/apierror"
	reportsvc "github.com/gemsales/voice-trainer/backend/internal/service/report"
	"github.com/gemsales/voice-trainer/backend/internal/service/training"
	"github.com/gemsales/voice-trainer/backend/pkg/utils"
)

// Reports is the report side of the training service.
type Reports interface {
	Report(ctx context.Context, id string) (string, error)
	ListReports(ctx context.Context) []training.ReportSummary
}

// Handler serves report downloads and listings.
type Handler struct {
	svc    Reports
	logger logrus.FieldLogger
}

// New creates a report handler.
func New(svc Reports, logger logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, logger: logger.WithField("component", "report_handler")}
}

// RegisterRoutes mounts the report routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/report/{sessionID}", h.handleDownload)
	r.Get("/reports", h.handleList)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	log := h.logger.WithField("session_id", id)

	path, err := h.svc.Report(r.Context(), id)
	if err != nil {
		apierror.Respond(w, log, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		apierror.Respond(w, log, reportsvc.ErrRenderFailure)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		apierror.Respond(w, log, reportsvc.ErrRenderFailure)
		return
	}

	name := "training_report_" + id + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

type listResponse struct {
	Success bool                     `json:"success"`
	Reports []training.ReportSummary `json:"reports"`
	Count   int                      `json:"count"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reports := h.svc.ListReports(r.Context())
	utils.RespondJSON(w, http.StatusOK, listResponse{
		Success: true,
		Reports: reports,
		Count:   len(reports),
	})
}
