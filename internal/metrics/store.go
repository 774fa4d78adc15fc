package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// RunMetric records metadata for a single consolidation run.
type RunMetric struct {
	Source       string
	InputItems   int
	OutputItems  int
	DroppedItems int
	CacheHit     bool
	Latency      time.Duration
	Timestamp    time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m RunMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO consolidation_metrics
		 (source, input_items, output_items, dropped_items, cache_hit, latency_us, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Source, m.InputItems, m.OutputItems, m.DroppedItems, m.CacheHit, m.Latency.Microseconds(),
		ts.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record consolidation metric: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DailyStats represents consolidation totals for a single day.
type DailyStats struct {
	Date         string
	Runs         int
	InputItems   int
	OutputItems  int
	DroppedItems int
	CacheHits    int
	AvgLatency   time.Duration
}

// GetDailyStats retrieves totals for the last N days, newest day first.
func (s *Store) GetDailyStats(ctx context.Context, days int) ([]DailyStats, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(timeLayout)
	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(timestamp, 1, 10) AS day,
		        COUNT(*),
		        COALESCE(SUM(input_items), 0),
		        COALESCE(SUM(output_items), 0),
		        COALESCE(SUM(dropped_items), 0),
		        COALESCE(SUM(cache_hit), 0),
		        COALESCE(AVG(latency_us), 0)
		 FROM consolidation_metrics
		 WHERE timestamp >= ?
		 GROUP BY day
		 ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var results []DailyStats
	for rows.Next() {
		var d DailyStats
		var avgMicros float64
		if err := rows.Scan(&d.Date, &d.Runs, &d.InputItems, &d.OutputItems, &d.DroppedItems, &d.CacheHits, &avgMicros); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		d.AvgLatency = time.Duration(avgMicros * float64(time.Microsecond))
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily stats: %w", err)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM consolidation_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
