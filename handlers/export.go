package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/peisong-zhang/Human-AI-comparison/exporter"
)

type ExportHandler struct {
	db *sql.DB
}

func NewExportHandler(conn *sql.DB) *ExportHandler {
	return &ExportHandler{db: conn}
}

// ExportCSV handles GET /api/export/csv
// Streams all matching records as a CSV attachment, row by row, ordered by
// session start time then item order index.
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := exporter.Filter{
		SessionID:     q.Get("session_id"),
		ParticipantID: q.Get("participant_id"),
		GroupID:       q.Get("group_id"),
		ModeID:        q.Get("mode_id"),
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="experiment_records.csv"`)

	if err := exporter.WriteRecords(w, h.db, filter); err != nil {
		// Headers are already on the wire; all that is left is to log.
		slog.Error("csv export failed", "error", err)
	}
}
