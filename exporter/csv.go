package exporter

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peisong-zhang/Human-AI-comparison/cliparse"
)

// Header is the fixed column order of every export and snapshot.
var Header = []string{
	"session_id",
	"participant_id",
	"participant_role",
	"group_id",
	"mode_id",
	"stage_index",
	"subset_id",
	"batch_id",
	"image_id",
	"answer",
	"order_index",
	"elapsed_ms_item",
	"elapsed_ms_global",
	"skipped",
	"item_timeout",
	"ts_server",
	"ts_client",
	"user_agent",
	"ip_hash",
	"started_at",
	"finished_at",
	"total_elapsed_ms",
}

// Filter narrows an export. Empty fields match everything.
type Filter struct {
	SessionID     string
	ParticipantID string
	GroupID       string
	ModeID        string
}

const baseQuery = `
	SELECT s.session_id, s.participant_id, s.participant_role, s.group_id,
	       r.mode_id, r.stage_index, r.subset_id, s.batch_id,
	       r.image_id, r.answer, r.order_index,
	       r.elapsed_ms_item, r.elapsed_ms_global, r.skipped, r.item_timeout,
	       r.ts_server, r.ts_client, r.user_agent, r.ip_hash,
	       s.started_at, s.finished_at, s.total_elapsed_ms
	FROM records r
	JOIN sessions s ON s.session_id = r.session_id`

func buildQuery(f Filter) (string, []any) {
	query := baseQuery
	var conds []string
	var args []any

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("s.session_id", f.SessionID)
	add("s.participant_id", f.ParticipantID)
	add("s.group_id", f.GroupID)
	add("r.mode_id", f.ModeID)

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.started_at ASC, r.order_index ASC"
	return query, args
}

// WriteRecords streams all records matching f to w as CSV, row by row, so an
// export never buffers the whole result set.
func WriteRecords(w io.Writer, conn *sql.DB, f Filter) error {
	query, args := buildQuery(f)
	rows, err := conn.Query(query, args...)
	if err != nil {
		return fmt.Errorf("query export rows: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	cw.Flush()

	for rows.Next() {
		var (
			sessionID, participantID, groupID, batchID string
			imageID, answer, tsServer, startedAt       string
			participantRole, modeID, subsetID          sql.NullString
			tsClient, userAgent, ipHash, finishedAt    sql.NullString
			stageIndex, orderIndex                     sql.NullInt64
			elapsedItem, elapsedGlobal, totalElapsed   sql.NullInt64
			skipped, itemTimeout                       int
		)
		if err := rows.Scan(
			&sessionID, &participantID, &participantRole, &groupID,
			&modeID, &stageIndex, &subsetID, &batchID,
			&imageID, &answer, &orderIndex,
			&elapsedItem, &elapsedGlobal, &skipped, &itemTimeout,
			&tsServer, &tsClient, &userAgent, &ipHash,
			&startedAt, &finishedAt, &totalElapsed,
		); err != nil {
			return fmt.Errorf("scan export row: %w", err)
		}

		row := []string{
			sessionID,
			participantID,
			nullStr(participantRole),
			groupID,
			nullStr(modeID),
			nullInt(stageIndex),
			nullStr(subsetID),
			batchID,
			imageID,
			answer,
			nullInt(orderIndex),
			nullInt(elapsedItem),
			nullInt(elapsedGlobal),
			strconv.Itoa(skipped),
			strconv.Itoa(itemTimeout),
			tsServer,
			nullStr(tsClient),
			nullStr(userAgent),
			nullStr(ipHash),
			startedAt,
			nullStr(finishedAt),
			nullInt(totalElapsed),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("flush csv row: %w", err)
		}
	}
	return rows.Err()
}

// Snapshot writes the filtered records to the auto-export directory. The
// filename combines the configured stem with the sanitized participant id and
// mode id, so a running experiment can be inspected per participant. A
// snapshot overwrites its previous version; it is a best-effort mirror, never
// part of the write transaction.
func Snapshot(conn *sql.DB, cfg cliparse.Config, f Filter) error {
	if !cfg.AutoExportEnabled {
		return nil
	}
	if err := os.MkdirAll(cfg.AutoExportDir, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	ext := filepath.Ext(cfg.AutoExportFilename)
	stem := strings.TrimSuffix(cfg.AutoExportFilename, ext)
	if stem == "" {
		stem = "records"
	}
	if ext == "" {
		ext = ".csv"
	}
	parts := []string{stem}
	if s := Sanitize(f.ParticipantID); s != "" {
		parts = append(parts, s)
	}
	if s := Sanitize(f.ModeID); s != "" {
		parts = append(parts, s)
	}
	path := filepath.Join(cfg.AutoExportDir, strings.Join(parts, "_")+ext)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer file.Close()

	if err := WriteRecords(file, conn, f); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// Sanitize makes a value safe for use in a filename: lowercased, spaces to
// dashes, everything but alphanumerics, dash and underscore stripped.
func Sanitize(value string) string {
	lower := strings.ReplaceAll(strings.ToLower(value), " ", "-")
	var b strings.Builder
	for _, r := range lower {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_")
}

func nullStr(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func nullInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
