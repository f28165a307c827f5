package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/peisong-zhang/Human-AI-comparison/cliparse"
	"github.com/peisong-zhang/Human-AI-comparison/db"
	"github.com/peisong-zhang/Human-AI-comparison/experiment"
)

// SetupTestDB creates a fresh sqlite database with the full schema applied.
// Each test gets its own file under t.TempDir, so tests stay independent.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration. Auto export is off by
// default; tests that exercise snapshots flip it on.
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		Port:               8000,
		DatabaseURL:        "test.db",
		DatabaseType:       "sqlite",
		IPHashSecret:       "test-ip-secret",
		AllowOrigins:       []string{"*"},
		AutoExportEnabled:  false,
		AutoExportDir:      filepath.Join(t.TempDir(), "exports"),
		AutoExportFilename: "records.csv",
	}
}

// WriteExperiment materializes a project root containing
// config/experiment.json with the given document and returns its loader.
// Relative image dirs in the document resolve against the returned root.
func WriteExperiment(t *testing.T, configJSON string) (*experiment.Loader, string) {
	t.Helper()

	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	path := filepath.Join(configDir, "experiment.json")
	if err := os.WriteFile(path, []byte(configJSON), 0644); err != nil {
		t.Fatalf("Failed to write experiment config: %v", err)
	}
	return experiment.NewLoader(path, ""), root
}

// TouchImage creates a placeholder image file under the project root.
func TouchImage(t *testing.T, root string, relPath string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create image dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("png-bytes"), 0644); err != nil {
		t.Fatalf("Failed to write image file: %v", err)
	}
}

// CreateTestSession inserts a session row and returns its id.
func CreateTestSession(t *testing.T, conn *sql.DB, sessionID, participantID, groupID string, startedAt time.Time) {
	t.Helper()
	_, err := conn.Exec(`
		INSERT INTO sessions (session_id, participant_id, group_id, batch_id, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sessionID, participantID, groupID, "test-batch", db.FormatTime(startedAt))
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
}

// CreateTestItem inserts one item row for a session.
func CreateTestItem(t *testing.T, conn *sql.DB, sessionID, imageID string, orderIndex int, subsetID string, stageIndex int, modeID string) {
	t.Helper()
	_, err := conn.Exec(`
		INSERT INTO items (session_id, image_id, filename, order_index, subset_id, stage_index, mode_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sessionID, imageID, imageID+".png", orderIndex, subsetID, stageIndex, modeID)
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}
}

// CreateTestRecord inserts one record row for a session item.
func CreateTestRecord(t *testing.T, conn *sql.DB, sessionID, imageID, answer string, orderIndex int, modeID string) {
	t.Helper()
	_, err := conn.Exec(`
		INSERT INTO records (session_id, image_id, answer, order_index, ts_server, mode_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sessionID, imageID, answer, orderIndex, db.FormatTime(time.Now()), modeID)
	if err != nil {
		t.Fatalf("Failed to create test record: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
