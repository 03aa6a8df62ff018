package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/stats"
)

type StatsHandler struct {
	service stats.Service
	now     func() time.Time
}

func NewStatsHandler(service stats.Service) *StatsHandler {
	return &StatsHandler{service: service, now: time.Now}
}

func (h *StatsHandler) RegisterRoutes(router chi.Router) {
	router.Get("/statistics", h.handleStatistics)
	router.Get("/export/csv", h.handleExportCSV)
	router.Get("/export/pdf", h.handleExportPDF)
}

// report parses the statistics query and runs it, writing any error response itself.
func (h *StatsHandler) report(w http.ResponseWriter, r *http.Request) (*stats.Report, bool) {
	q := r.URL.Query()

	var (
		query stats.Query
		err   error
	)
	if query.Start, err = parseDateParam(q, "start_date"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if query.End, err = parseDateParam(q, "end_date"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if query.EquipmentIDs, err = parseIDParams(q, "equipment_id", "equipment_ids"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if query.UserIDs, err = parseIDParams(q, "user_id", "user_ids"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	report, err := h.service.Report(r.Context(), query)
	if err != nil {
		respondWithServiceError(w, err, "Failed to compute statistics")
		return nil, false
	}
	return report, true
}

func (h *StatsHandler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

func (h *StatsHandler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}

	groupBy := r.URL.Query().Get("group_by")
	if groupBy == "" {
		groupBy = stats.GroupByEquipment
	}

	var buf bytes.Buffer
	if err := stats.WriteCSV(&buf, report, groupBy); err != nil {
		log.Error().Err(err).Msg("Failed to render CSV export")
		respondWithError(w, http.StatusInternalServerError, "Failed to export statistics")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+stats.ExportFilename(h.now()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("Failed to write CSV export")
	}
}

func (h *StatsHandler) handleExportPDF(w http.ResponseWriter, _ *http.Request) {
	respondWithError(w, http.StatusNotImplemented, "PDF export is not implemented yet, use the CSV export instead")
}
