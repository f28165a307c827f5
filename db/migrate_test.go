package db

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMigrateCreatesTables(t *testing.T) {
	conn, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite database: %v", err)
	}
	defer conn.Close()

	if err := Migrate(conn); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	for _, table := range []string{"sessions", "items", "records", "schema_migrations"} {
		var name string
		err := conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name = $1", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}

	// participant_role arrives in migration 0002
	if _, err := conn.Exec(
		"INSERT INTO sessions (session_id, participant_id, group_id, batch_id, started_at, participant_role) VALUES ($1, $2, $3, $4, $5, $6)",
		"s1", "p1", "g1", "b1", FormatTime(time.Now()), "rater",
	); err != nil {
		t.Errorf("Expected participant_role column: %v", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	conn, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite database: %v", err)
	}
	defer conn.Close()

	if err := Migrate(conn); err != nil {
		t.Fatalf("First Migrate failed: %v", err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("Second Migrate failed: %v", err)
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 recorded migrations, got %d", count)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	parsed, err := ParseTime(FormatTime(now))
	if err != nil {
		t.Fatalf("ParseTime failed: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("Round trip mismatch: %v != %v", parsed, now)
	}
}

func TestFormatTimeTextOrderMatchesTimeOrder(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	// 120ms vs 123ms: with trimmed fractional zeros ".12" would sort after
	// ".123" even though it is earlier.
	earlier := base.Add(120 * time.Millisecond)
	later := base.Add(123 * time.Millisecond)

	if FormatTime(earlier) >= FormatTime(later) {
		t.Errorf("Text order diverges from time order: %q >= %q",
			FormatTime(earlier), FormatTime(later))
	}
	if len(FormatTime(earlier)) != len(FormatTime(later)) {
		t.Errorf("Expected fixed-width encoding, got %q and %q",
			FormatTime(earlier), FormatTime(later))
	}
}

func TestParseTimeLegacyTrimmedFraction(t *testing.T) {
	parsed, err := ParseTime("2026-03-14T09:26:53.12Z")
	if err != nil {
		t.Fatalf("ParseTime failed: %v", err)
	}
	if parsed.Nanosecond() != 120000000 {
		t.Errorf("Expected 120ms fraction, got %d ns", parsed.Nanosecond())
	}
}

func TestParseTimeEmpty(t *testing.T) {
	if _, err := ParseTime(""); err == nil {
		t.Error("Expected error for empty timestamp")
	}
}

func TestOpenUnsupportedType(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("Expected error for unsupported database type")
	}
}
