package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/peisong-zhang/Human-AI-comparison/auth"
	"github.com/peisong-zhang/Human-AI-comparison/cliparse"
	"github.com/peisong-zhang/Human-AI-comparison/db"
	"github.com/peisong-zhang/Human-AI-comparison/exporter"
	"github.com/peisong-zhang/Human-AI-comparison/middleware"
	"github.com/peisong-zhang/Human-AI-comparison/models"
)

type RecordHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewRecordHandler(conn *sql.DB, cfg cliparse.Config) *RecordHandler {
	return &RecordHandler{db: conn, cfg: cfg}
}

// SubmitRecord handles POST /api/record
// Upserts the participant's answer for one (session, image): a resubmission
// overwrites the mutable fields in place, so exactly one record per item
// survives. Every successful write triggers a best-effort CSV snapshot.
func (h *RecordHandler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	var req models.RecordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.ImageID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "image_id is required")
		return
	}

	var participantID string
	err := h.db.QueryRow(`
		SELECT participant_id FROM sessions WHERE session_id = $1
	`, req.SessionID).Scan(&participantID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var item models.Item
	err = h.db.QueryRow(`
		SELECT session_id, image_id, filename, order_index, subset_id, stage_index, mode_id
		FROM items
		WHERE session_id = $1 AND image_id = $2
		ORDER BY order_index ASC
		LIMIT 1
	`, req.SessionID, req.ImageID).Scan(&item.SessionID, &item.ImageID, &item.Filename,
		&item.OrderIndex, &item.SubsetID, &item.StageIndex, &item.ModeID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Image not part of session")
		return
	}
	if err != nil {
		slog.Error("failed to query item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	orderIndex := item.OrderIndex
	if req.OrderIndex != nil {
		orderIndex = *req.OrderIndex
	}
	rec := models.Record{
		SessionID:       req.SessionID,
		ImageID:         req.ImageID,
		Answer:          req.Answer,
		OrderIndex:      &orderIndex,
		ElapsedMsItem:   req.ElapsedMsItem,
		ElapsedMsGlobal: req.ElapsedMsGlobal,
		Skipped:         req.Skipped,
		ItemTimeout:     req.ItemTimeout,
		TsServer:        time.Now(),
		TsClient:        req.TsClient,
		SubsetID:        &item.SubsetID,
		StageIndex:      &item.StageIndex,
		ModeID:          &item.ModeID,
	}
	if ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSecret); ipHash != "" {
		rec.IPHash = &ipHash
	}
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}
	if userAgent != "" {
		rec.UserAgent = &userAgent
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`
		SELECT COUNT(1) FROM records WHERE session_id = $1 AND image_id = $2
	`, req.SessionID, req.ImageID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check existing record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if exists > 0 {
		_, err = tx.Exec(`
			UPDATE records
			SET answer = $1, order_index = $2, elapsed_ms_item = $3, elapsed_ms_global = $4,
			    skipped = $5, item_timeout = $6, ts_server = $7, ts_client = $8,
			    user_agent = $9, ip_hash = $10, subset_id = $11, stage_index = $12, mode_id = $13
			WHERE session_id = $14 AND image_id = $15
		`, rec.Answer, rec.OrderIndex, rec.ElapsedMsItem, rec.ElapsedMsGlobal,
			boolToInt(rec.Skipped), boolToInt(rec.ItemTimeout), db.FormatTime(rec.TsServer), db.NullableTime(rec.TsClient),
			rec.UserAgent, rec.IPHash, rec.SubsetID, rec.StageIndex, rec.ModeID,
			rec.SessionID, rec.ImageID)
	} else {
		_, err = tx.Exec(`
			INSERT INTO records (session_id, image_id, answer, order_index, elapsed_ms_item, elapsed_ms_global,
			                     skipped, item_timeout, ts_server, ts_client, user_agent, ip_hash,
			                     subset_id, stage_index, mode_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`, rec.SessionID, rec.ImageID, rec.Answer, rec.OrderIndex, rec.ElapsedMsItem, rec.ElapsedMsGlobal,
			boolToInt(rec.Skipped), boolToInt(rec.ItemTimeout), db.FormatTime(rec.TsServer), db.NullableTime(rec.TsClient),
			rec.UserAgent, rec.IPHash, rec.SubsetID, rec.StageIndex, rec.ModeID)
	}
	if err != nil {
		slog.Error("failed to write record", "error", err, "session_id", req.SessionID, "image_id", req.ImageID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save record")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save record")
		return
	}

	// Best-effort mirror; a snapshot failure never fails the write.
	if err := exporter.Snapshot(h.db, h.cfg, exporter.Filter{
		SessionID:     req.SessionID,
		ParticipantID: participantID,
		ModeID:        item.ModeID,
	}); err != nil {
		slog.Warn("csv snapshot failed", "error", err, "session_id", req.SessionID)
	}

	slog.Info("record saved", "session_id", req.SessionID, "image_id", req.ImageID, "updated", exists > 0)
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
