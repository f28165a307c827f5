package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peisong-zhang/Human-AI-comparison/auth"
	"github.com/peisong-zhang/Human-AI-comparison/cliparse"
	"github.com/peisong-zhang/Human-AI-comparison/db"
	"github.com/peisong-zhang/Human-AI-comparison/experiment"
	"github.com/peisong-zhang/Human-AI-comparison/exporter"
	"github.com/peisong-zhang/Human-AI-comparison/middleware"
	"github.com/peisong-zhang/Human-AI-comparison/models"
)

type SessionHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	loader *experiment.Loader
}

func NewSessionHandler(conn *sql.DB, cfg cliparse.Config, loader *experiment.Loader) *SessionHandler {
	return &SessionHandler{db: conn, cfg: cfg, loader: loader}
}

// StartSession handles POST /api/session/start
// Resumes the participant's latest unfinished session for the group when the
// config allows it; otherwise materializes a fresh deterministic item list,
// one stage at a time, and persists session plus items in one transaction.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	expCfg, err := h.loader.Load()
	if err != nil {
		slog.Error("failed to load experiment config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Experiment config unavailable")
		return
	}

	var req models.SessionStartRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	participantID := strings.TrimSpace(req.ParticipantID)
	if participantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	group, ok := expCfg.Groups[req.GroupID]
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown group_id")
		return
	}
	role := strings.TrimSpace(req.ParticipantRole)
	if role != "" && !expCfg.HasRole(role) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown participant_role")
		return
	}
	if len(group.Sequence) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Group has no stage sequence")
		return
	}

	// Known race: two concurrent starts for the same (participant, group) can
	// both miss here and create two sessions. (participant_id, group_id) is
	// legitimately non-unique across finished sessions, so no constraint
	// closes the window; the latest-session lookup keeps behavior stable.
	if expCfg.AllowResume {
		resp, found, err := h.resumeSession(expCfg, group, participantID, req.GroupID)
		if err != nil {
			slog.Error("failed to check resumable session", "error", err, "participant_id", participantID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if found {
			slog.Info("session resumed", "session_id", resp.SessionID, "participant_id", participantID)
			middleware.JSONResponse(w, http.StatusOK, resp)
			return
		}
	}

	lang := middleware.RequestLanguage(r)
	root := h.loader.ProjectRoot()
	sessionID := uuid.NewString()

	var stages []models.SessionStage
	var items []models.SessionItem
	orderIndex := 0
	for stageIndex, stage := range group.Sequence {
		mode, ok := expCfg.Modes[stage.ModeID]
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest,
				fmt.Sprintf("Stage %d references unknown mode '%s'", stageIndex, stage.ModeID))
			return
		}
		dir, err := expCfg.ImageDir(stage.SubsetID, stage.ModeID, lang, root)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest,
				fmt.Sprintf("Stage %d has no image directory for subset '%s' mode '%s'", stageIndex, stage.SubsetID, stage.ModeID))
			return
		}
		entries, err := experiment.ListImages(dir, stage.SubsetID, stage.ModeID)
		if err != nil {
			slog.Error("failed to list stage images", "error", err, "dir", dir)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list images")
			return
		}
		if len(entries) == 0 {
			middleware.ErrorResponse(w, http.StatusNotFound,
				fmt.Sprintf("No images configured for subset '%s' mode '%s'", stage.SubsetID, stage.ModeID))
			return
		}

		if mode.Randomize {
			experiment.ShuffleEntries(entries, auth.ShuffleSeed(sessionID, stageIndex))
		}

		stages = append(stages, models.SessionStage{
			StageIndex:         stageIndex,
			SubsetID:           stage.SubsetID,
			ModeID:             stage.ModeID,
			Label:              stage.Label,
			ModeName:           mode.Name,
			TaskMarkdown:       mode.TaskMarkdown,
			GuidelinesMarkdown: mode.GuidelinesMarkdown,
			Randomize:          mode.Randomize,
			AIEnabled:          mode.AIEnabled,
			PerItemSeconds:     expCfg.PerItemSecondsFor(group, mode),
			ItemCount:          len(entries),
		})
		for _, entry := range entries {
			items = append(items, models.SessionItem{
				ImageID:    entry.ImageID,
				Filename:   entry.Filename,
				Title:      entry.Title,
				OrderIndex: orderIndex,
				SubsetID:   stage.SubsetID,
				StageIndex: stageIndex,
				ModeID:     stage.ModeID,
				URL:        entry.URL,
			})
			orderIndex++
		}
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSecret)
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}
	startedAt := db.FormatTime(time.Now())

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sessions (session_id, participant_id, group_id, participant_role, batch_id, started_at, user_agent, ip_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sessionID, participantID, req.GroupID, nullString(role), expCfg.BatchID, startedAt, nullString(userAgent), nullString(ipHash))
	if err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	for _, item := range items {
		_, err = tx.Exec(`
			INSERT INTO items (session_id, image_id, filename, order_index, subset_id, stage_index, mode_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, sessionID, item.ImageID, item.Filename, item.OrderIndex, item.SubsetID, item.StageIndex, item.ModeID)
		if err != nil {
			slog.Error("failed to insert item", "error", err, "order_index", item.OrderIndex)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session items")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session started",
		"session_id", sessionID,
		"participant_id", participantID,
		"group_id", req.GroupID,
		"stages", len(stages),
		"items", len(items),
	)

	middleware.JSONResponse(w, http.StatusOK, models.SessionStartResponse{
		SessionID:       sessionID,
		BatchID:         expCfg.BatchID,
		GroupID:         req.GroupID,
		ParticipantID:   participantID,
		ParticipantRole: role,
		AllowResume:     expCfg.AllowResume,
		Resumed:         false,
		Stages:          stages,
		Items:           items,
	})
}

// resumeSession returns the participant's latest unfinished session for the
// group, with its stored items verbatim. Stage labels and markdown come from
// the live config; item counts and ordering come from the stored rows.
func (h *SessionHandler) resumeSession(expCfg *experiment.Config, group experiment.GroupConfig, participantID, groupID string) (models.SessionStartResponse, bool, error) {
	var (
		sess             models.Session
		role, finishedAt sql.NullString
		startedAt        string
	)
	err := h.db.QueryRow(`
		SELECT session_id, batch_id, participant_role, started_at, finished_at
		FROM sessions
		WHERE participant_id = $1 AND group_id = $2
		ORDER BY started_at DESC
		LIMIT 1
	`, participantID, groupID).Scan(&sess.SessionID, &sess.BatchID, &role, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return models.SessionStartResponse{}, false, nil
	}
	if err != nil {
		return models.SessionStartResponse{}, false, fmt.Errorf("query latest session: %w", err)
	}
	sess.ParticipantID = participantID
	sess.GroupID = groupID
	if role.Valid {
		sess.ParticipantRole = &role.String
	}
	if sess.StartedAt, err = db.ParseTime(startedAt); err != nil {
		return models.SessionStartResponse{}, false, fmt.Errorf("parse started_at: %w", err)
	}
	if sess.FinishedAt, err = db.ParseNullTime(finishedAt); err != nil {
		return models.SessionStartResponse{}, false, fmt.Errorf("parse finished_at: %w", err)
	}
	if sess.FinishedAt != nil {
		return models.SessionStartResponse{}, false, nil
	}

	rows, err := h.db.Query(`
		SELECT session_id, image_id, filename, order_index, subset_id, stage_index, mode_id
		FROM items
		WHERE session_id = $1
		ORDER BY order_index ASC
	`, sess.SessionID)
	if err != nil {
		return models.SessionStartResponse{}, false, fmt.Errorf("query session items: %w", err)
	}
	defer rows.Close()

	items := []models.SessionItem{}
	stageCounts := map[int]int{}
	stageSubset := map[int]string{}
	stageMode := map[int]string{}
	maxStage := -1
	for rows.Next() {
		var row models.Item
		if err := rows.Scan(&row.SessionID, &row.ImageID, &row.Filename, &row.OrderIndex, &row.SubsetID, &row.StageIndex, &row.ModeID); err != nil {
			return models.SessionStartResponse{}, false, fmt.Errorf("scan session item: %w", err)
		}
		items = append(items, models.SessionItem{
			ImageID:    row.ImageID,
			Filename:   row.Filename,
			Title:      experiment.TitleFromPath(row.Filename),
			OrderIndex: row.OrderIndex,
			SubsetID:   row.SubsetID,
			StageIndex: row.StageIndex,
			ModeID:     row.ModeID,
			URL:        "/images/subsets/" + row.SubsetID + "/" + row.ModeID + "/" + row.Filename,
		})

		stageCounts[row.StageIndex]++
		stageSubset[row.StageIndex] = row.SubsetID
		stageMode[row.StageIndex] = row.ModeID
		if row.StageIndex > maxStage {
			maxStage = row.StageIndex
		}
	}
	if err := rows.Err(); err != nil {
		return models.SessionStartResponse{}, false, fmt.Errorf("iterate session items: %w", err)
	}

	stages := []models.SessionStage{}
	for stageIndex := 0; stageIndex <= maxStage; stageIndex++ {
		count, ok := stageCounts[stageIndex]
		if !ok {
			continue
		}
		stage := models.SessionStage{
			StageIndex: stageIndex,
			SubsetID:   stageSubset[stageIndex],
			ModeID:     stageMode[stageIndex],
			ItemCount:  count,
		}
		if stageIndex < len(group.Sequence) {
			stage.Label = group.Sequence[stageIndex].Label
		}
		if mode, ok := expCfg.Modes[stage.ModeID]; ok {
			stage.ModeName = mode.Name
			stage.TaskMarkdown = mode.TaskMarkdown
			stage.GuidelinesMarkdown = mode.GuidelinesMarkdown
			stage.Randomize = mode.Randomize
			stage.AIEnabled = mode.AIEnabled
			stage.PerItemSeconds = expCfg.PerItemSecondsFor(group, mode)
		}
		stages = append(stages, stage)
	}

	resumedRole := ""
	if sess.ParticipantRole != nil {
		resumedRole = *sess.ParticipantRole
	}
	return models.SessionStartResponse{
		SessionID:       sess.SessionID,
		BatchID:         sess.BatchID,
		GroupID:         sess.GroupID,
		ParticipantID:   sess.ParticipantID,
		ParticipantRole: resumedRole,
		AllowResume:     true,
		Resumed:         true,
		Stages:          stages,
		Items:           items,
	}, true, nil
}

// FinishSession handles POST /api/session/finish
// Sets finished_at once; finishing an already-finished session leaves the
// timestamp untouched but still reports ok.
func (h *SessionHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	var req models.SessionFinishRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	var participantID string
	var finishedAt sql.NullString
	err := h.db.QueryRow(`
		SELECT participant_id, finished_at FROM sessions WHERE session_id = $1
	`, req.SessionID).Scan(&participantID, &finishedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !finishedAt.Valid {
		if _, err := h.db.Exec(`
			UPDATE sessions SET finished_at = $1 WHERE session_id = $2
		`, db.FormatTime(time.Now()), req.SessionID); err != nil {
			slog.Error("failed to set finished_at", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to finish session")
			return
		}
	}
	if req.TotalElapsedMs != nil {
		if _, err := h.db.Exec(`
			UPDATE sessions SET total_elapsed_ms = $1 WHERE session_id = $2
		`, *req.TotalElapsedMs, req.SessionID); err != nil {
			slog.Error("failed to set total_elapsed_ms", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to finish session")
			return
		}
	}

	if err := exporter.Snapshot(h.db, h.cfg, exporter.Filter{
		SessionID:     req.SessionID,
		ParticipantID: participantID,
	}); err != nil {
		slog.Warn("csv snapshot failed", "error", err, "session_id", req.SessionID)
	}

	slog.Info("session finished", "session_id", req.SessionID)
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
