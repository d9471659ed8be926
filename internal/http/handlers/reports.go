package handlers

import (
	"net/http"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

type reportsResponse struct {
	Stats   models.Reports       `json:"stats"`
	Summary models.ReportSummary `json:"summary"`
}

func (h *Handlers) Reports(w http.ResponseWriter, r *http.Request) {
	rep, err := h.API.Reports(r.Context())
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reportsResponse{Stats: rep, Summary: rep.Summary()})
}

// ExportReports — /rapports/export?format=excel|pdf.
func (h *Handlers) ExportReports(w http.ResponseWriter, r *http.Request) {
	format := models.ExportFormat(r.URL.Query().Get("format"))
	if format != models.ExportExcel && format != models.ExportPDF {
		gwerrors.WriteError(w, r, gwerrors.Invalid("format must be one of: excel pdf"))
		return
	}

	d, err := h.API.ExportReports(r.Context(), format)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeDownload(w, d)
}

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Dashboard.Dashboard(r.Context())
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}
