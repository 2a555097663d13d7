package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id         TEXT PRIMARY KEY,
  profile    TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_profile ON runs(profile, created_at);
CREATE TABLE IF NOT EXISTS run_results (
  id           INTEGER PRIMARY KEY,
  run_id       TEXT NOT NULL,
  badge_name   TEXT NOT NULL,
  appid        INTEGER NOT NULL,
  rarity       TEXT NOT NULL CHECK (rarity IN ('normal','foil')),
  progress     TEXT NOT NULL,
  set_price    TEXT NOT NULL,
  availability INTEGER NOT NULL,
  unmatched    INTEGER NOT NULL DEFAULT 0,
  position     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_run ON run_results(run_id);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// RecordRun stores one ranked scan as a new run row plus its results in
// rank order.
func (d *DB) RecordRun(ctx context.Context, profile string, results []RunResult) (string, error) {
	runID := uuid.NewString()

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `INSERT INTO runs(id, profile) VALUES(?, ?)`, runID, profile); err != nil {
		return "", err
	}
	for i, r := range results {
		if _, err = tx.ExecContext(ctx, `INSERT INTO run_results(run_id, badge_name, appid, rarity, progress, set_price, availability, unmatched, position) VALUES(?,?,?,?,?,?,?,?,?)`,
			runID, r.Badge, r.AppID, r.Rarity, r.Progress, r.SetPrice, r.Availability, r.Unmatched, i); err != nil {
			return "", err
		}
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// LatestRuns returns up to n runs for the profile, newest first.
func (d *DB) LatestRuns(ctx context.Context, profile string, n int) ([]Run, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, profile, created_at FROM runs WHERE profile = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, profile, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAtStr string
		if err := rows.Scan(&r.ID, &r.Profile, &createdAtStr); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTimestamp(createdAtStr)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunStats summarizes up to n of the profile's runs, newest first. The top
// badge is each run's rank-one row, which the scan ordered cheapest first.
func (d *DB) RunStats(ctx context.Context, profile string, n int) ([]RunStat, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT r.id, r.created_at, COUNT(rr.id), COALESCE(top.badge_name, ''), COALESCE(top.set_price, '')
FROM runs r
LEFT JOIN run_results rr ON rr.run_id = r.id
LEFT JOIN run_results top ON top.run_id = r.id AND top.position = 0
WHERE r.profile = ?
GROUP BY r.id
ORDER BY r.created_at DESC, r.rowid DESC
LIMIT ?`, profile, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []RunStat
	for rows.Next() {
		var s RunStat
		var createdAtStr string
		if err := rows.Scan(&s.ID, &createdAtStr, &s.Badges, &s.TopBadge, &s.TopPrice); err != nil {
			return nil, err
		}
		s.CreatedAt = parseTimestamp(createdAtStr)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// parseTimestamp reads SQLite's CURRENT_TIMESTAMP format, falling back to
// RFC3339 for rows written by other tools.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

// runResults loads one run's rows keyed by badge identity.
func (d *DB) runResults(ctx context.Context, runID string) (map[string]RunResult, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT badge_name, appid, rarity, progress, set_price, availability, unmatched, position FROM run_results WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]RunResult)
	for rows.Next() {
		var r RunResult
		if err := rows.Scan(&r.Badge, &r.AppID, &r.Rarity, &r.Progress, &r.SetPrice, &r.Availability, &r.Unmatched, &r.Position); err != nil {
			return nil, err
		}
		out[identityKey(r.AppID, r.Rarity)] = r
	}
	return out, rows.Err()
}

// PriceChanges diffs the two most recent runs recorded for the profile.
// Badges are identified by (appid, rarity); renamed games therefore keep
// their history.
func (d *DB) PriceChanges(ctx context.Context, profile string) ([]PriceChange, error) {
	runs, err := d.LatestRuns(ctx, profile, 2)
	if err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, errors.New("need at least two recorded runs to diff")
	}

	newResults, err := d.runResults(ctx, runs[0].ID)
	if err != nil {
		return nil, err
	}
	oldResults, err := d.runResults(ctx, runs[1].ID)
	if err != nil {
		return nil, err
	}

	var changes []PriceChange
	for key, nr := range newResults {
		or, ok := oldResults[key]
		if !ok {
			changes = append(changes, PriceChange{Badge: nr.Badge, AppID: nr.AppID, Rarity: nr.Rarity, ChangeType: ChangeAdded, NewPrice: nr.SetPrice, NewAvailability: nr.Availability})
			continue
		}
		if or.SetPrice != nr.SetPrice || or.Availability != nr.Availability {
			changes = append(changes, PriceChange{Badge: nr.Badge, AppID: nr.AppID, Rarity: nr.Rarity, ChangeType: ChangeUpdated, OldPrice: or.SetPrice, NewPrice: nr.SetPrice, OldAvailability: or.Availability, NewAvailability: nr.Availability})
		}
	}
	for key, or := range oldResults {
		if _, ok := newResults[key]; !ok {
			changes = append(changes, PriceChange{Badge: or.Badge, AppID: or.AppID, Rarity: or.Rarity, ChangeType: ChangeRemoved, OldPrice: or.SetPrice, OldAvailability: or.Availability})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Badge != changes[j].Badge {
			return changes[i].Badge < changes[j].Badge
		}
		return changes[i].Rarity < changes[j].Rarity
	})
	return changes, nil
}

func identityKey(appID int64, rarity string) string {
	return fmt.Sprintf("%d/%s", appID, rarity)
}
