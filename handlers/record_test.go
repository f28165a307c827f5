package handlers

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/peisong-zhang/Human-AI-comparison/models"
	"github.com/peisong-zhang/Human-AI-comparison/testutil"
)

func TestSubmitRecord(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)
	handler := NewRecordHandler(conn, cfg)

	testutil.CreateTestSession(t, conn, "sess-1", "p-001", "G", time.Now())
	testutil.CreateTestItem(t, conn, "sess-1", "case_01", 0, "A", 0, "human")
	testutil.CreateTestItem(t, conn, "sess-1", "case_02", 1, "A", 0, "human")

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "valid record",
			requestBody: models.RecordRequest{
				SessionID: "sess-1",
				ImageID:   "case_01",
				Answer:    "malignant",
			},
			expectedStatus: 200,
		},
		{
			name:           "missing session_id",
			requestBody:    models.RecordRequest{ImageID: "case_01", Answer: "x"},
			expectedStatus: 400,
		},
		{
			name:           "missing image_id",
			requestBody:    models.RecordRequest{SessionID: "sess-1", Answer: "x"},
			expectedStatus: 400,
		},
		{
			name:           "unknown session",
			requestBody:    models.RecordRequest{SessionID: "nope", ImageID: "case_01", Answer: "x"},
			expectedStatus: 404,
		},
		{
			name:           "image not part of session",
			requestBody:    models.RecordRequest{SessionID: "sess-1", ImageID: "stranger", Answer: "x"},
			expectedStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.SubmitRecord(w, testutil.MakeRequest("POST", "/api/record", tt.requestBody, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	// The valid submission above inherits the item's position and tags.
	var (
		answer, subsetID, modeID string
		orderIndex, stageIndex   int
		skipped, itemTimeout     int
	)
	err := conn.QueryRow(`
		SELECT answer, order_index, subset_id, stage_index, mode_id, skipped, item_timeout
		FROM records WHERE session_id = 'sess-1' AND image_id = 'case_01'
	`).Scan(&answer, &orderIndex, &subsetID, &stageIndex, &modeID, &skipped, &itemTimeout)
	if err != nil {
		t.Fatalf("Failed to query record: %v", err)
	}
	if answer != "malignant" {
		t.Errorf("Expected answer malignant, got %s", answer)
	}
	if orderIndex != 0 {
		t.Errorf("Expected order_index defaulted from item to 0, got %d", orderIndex)
	}
	if subsetID != "A" || stageIndex != 0 || modeID != "human" {
		t.Errorf("Record missed item tags: subset=%s stage=%d mode=%s", subsetID, stageIndex, modeID)
	}
	if skipped != 0 || itemTimeout != 0 {
		t.Errorf("Expected flags 0/0, got %d/%d", skipped, itemTimeout)
	}
}

func TestSubmitRecordUpsert(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)
	handler := NewRecordHandler(conn, cfg)

	testutil.CreateTestSession(t, conn, "sess-1", "p-001", "G", time.Now())
	testutil.CreateTestItem(t, conn, "sess-1", "case_01", 0, "A", 0, "human")

	elapsed := int64(2500)
	first := models.RecordRequest{
		SessionID:     "sess-1",
		ImageID:       "case_01",
		Answer:        "benign",
		ElapsedMsItem: &elapsed,
	}
	w := httptest.NewRecorder()
	handler.SubmitRecord(w, testutil.MakeRequest("POST", "/api/record", first, nil))
	testutil.AssertStatus(t, w, 200)

	override := 7
	second := models.RecordRequest{
		SessionID:  "sess-1",
		ImageID:    "case_01",
		Answer:     "malignant",
		OrderIndex: &override,
		Skipped:    true,
	}
	w = httptest.NewRecorder()
	handler.SubmitRecord(w, testutil.MakeRequest("POST", "/api/record", second, nil))
	testutil.AssertStatus(t, w, 200)

	var count int
	if err := conn.QueryRow("SELECT COUNT(1) FROM records WHERE session_id = 'sess-1'").Scan(&count); err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected a single record after resubmission, got %d", count)
	}

	var (
		answer     string
		orderIndex int
		skipped    int
	)
	err := conn.QueryRow(`
		SELECT answer, order_index, skipped FROM records
		WHERE session_id = 'sess-1' AND image_id = 'case_01'
	`).Scan(&answer, &orderIndex, &skipped)
	if err != nil {
		t.Fatalf("Failed to query record: %v", err)
	}
	if answer != "malignant" {
		t.Errorf("Expected resubmitted answer to win, got %s", answer)
	}
	if orderIndex != 7 {
		t.Errorf("Expected explicit order_index 7, got %d", orderIndex)
	}
	if skipped != 1 {
		t.Errorf("Expected skipped flag set, got %d", skipped)
	}
}

func TestSubmitRecordWritesSnapshot(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)
	cfg.AutoExportEnabled = true
	handler := NewRecordHandler(conn, cfg)

	testutil.CreateTestSession(t, conn, "sess-1", "Dr Alice", "G", time.Now())
	testutil.CreateTestItem(t, conn, "sess-1", "case_01", 0, "A", 0, "human")

	w := httptest.NewRecorder()
	handler.SubmitRecord(w, testutil.MakeRequest("POST", "/api/record",
		models.RecordRequest{SessionID: "sess-1", ImageID: "case_01", Answer: "benign"}, nil))
	testutil.AssertStatus(t, w, 200)

	path := filepath.Join(cfg.AutoExportDir, "records_dr-alice_human.csv")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected snapshot at %s: %v", path, err)
	}
	if len(data) == 0 {
		t.Error("Snapshot file is empty")
	}
}
