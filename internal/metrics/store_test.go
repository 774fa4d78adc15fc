package metrics

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	// Each pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE consolidation_metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			input_items INTEGER NOT NULL,
			output_items INTEGER NOT NULL,
			dropped_items INTEGER NOT NULL,
			cache_hit INTEGER NOT NULL DEFAULT 0,
			latency_us INTEGER NOT NULL,
			timestamp TEXT NOT NULL
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestStore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	records := []RunMetric{
		{Source: "api", InputItems: 4, OutputItems: 2, DroppedItems: 1, Latency: 300 * time.Microsecond, Timestamp: now},
		{Source: "telegram", InputItems: 6, OutputItems: 3, CacheHit: true, Latency: 100 * time.Microsecond, Timestamp: now},
		{Source: "cli", InputItems: 1, OutputItems: 1, Latency: time.Millisecond, Timestamp: now.AddDate(0, 0, -40)},
	}
	for _, m := range records {
		if err := store.Record(ctx, m); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	t.Run("GetDailyStats", func(t *testing.T) {
		stats, err := store.GetDailyStats(ctx, 7)
		if err != nil {
			t.Fatalf("GetDailyStats failed: %v", err)
		}
		if len(stats) != 1 {
			t.Fatalf("Expected 1 day of stats, got %d", len(stats))
		}
		d := stats[0]
		if d.Date != now.Format("2006-01-02") {
			t.Errorf("Expected date %s, got %s", now.Format("2006-01-02"), d.Date)
		}
		if d.Runs != 2 || d.InputItems != 10 || d.OutputItems != 5 || d.DroppedItems != 1 {
			t.Errorf("Unexpected totals: %+v", d)
		}
		if d.CacheHits != 1 {
			t.Errorf("Expected 1 cache hit, got %d", d.CacheHits)
		}
		if d.AvgLatency != 200*time.Microsecond {
			t.Errorf("Expected average latency 200µs, got %v", d.AvgLatency)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		n, err := store.Cleanup(ctx, 30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 row removed, got %d", n)
		}

		stats, err := store.GetDailyStats(ctx, 60)
		if err != nil {
			t.Fatalf("GetDailyStats failed: %v", err)
		}
		if len(stats) != 1 {
			t.Errorf("Expected only today's stats to remain, got %d days", len(stats))
		}
	})
}

func TestRecordDefaultsTimestamp(t *testing.T) {
	store := setupStore(t)

	if err := store.Record(context.Background(), RunMetric{Source: "api"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	var ts string
	if err := store.db.QueryRow(`SELECT timestamp FROM consolidation_metrics`).Scan(&ts); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if _, err := time.Parse(timeLayout, ts); err != nil {
		t.Errorf("Expected timestamp in %q layout, got %q", timeLayout, ts)
	}
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shopping.db"), make([]byte, 2048), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	h := GetSysHealth(dir)
	if h.DataSize != "2.0 KB" {
		t.Errorf("Expected '2.0 KB', got '%s'", h.DataSize)
	}
	if h.Goroutines < 1 {
		t.Errorf("Expected at least one goroutine, got %d", h.Goroutines)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KB",
		1536:        "1.5 KB",
		5 * 1 << 20: "5.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d): expected '%s', got '%s'", in, want, got)
		}
	}
}
