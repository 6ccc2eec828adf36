package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelcam/internal/config"
)

// ErrNotFound reports a missing ledger entry.
var ErrNotFound = errors.New("recording not found")

// Entry is one completed recording.
type Entry struct {
	ID           int64
	SessionID    string
	Handle       string
	Format       string
	DetectedType string
	SizeBytes    int64
	Camera       string
	Quality      string
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}

// Summary aggregates the ledger.
type Summary struct {
	Recordings    int
	TotalDuration time.Duration
	TotalBytes    int64
}

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the database at path.
func OpenPath(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends entry and returns it with its assigned ID. A zero Duration
// is derived from the timestamps.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	if strings.TrimSpace(entry.Handle) == "" {
		return Entry{}, errors.New("history: handle required")
	}
	if entry.Duration == 0 && !entry.StartedAt.IsZero() && !entry.EndedAt.IsZero() {
		entry.Duration = entry.EndedAt.Sub(entry.StartedAt)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO recordings (
            session_id, handle, format, detected_type, size_bytes,
            camera, quality, started_at, ended_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Handle,
		entry.Format,
		entry.DetectedType,
		entry.SizeBytes,
		entry.Camera,
		entry.Quality,
		formatTime(entry.StartedAt),
		formatTime(entry.EndedAt),
		entry.Duration.Milliseconds(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert recording: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// Get fetches one entry by ID.
func (s *Store) Get(ctx context.Context, id int64) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return entry, err
}

// List returns the newest entries first. limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := selectColumns + " ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recordings: %w", err)
	}
	return entries, nil
}

// Summarize totals the ledger.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var (
		summary Summary
		ms      int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COALESCE(SUM(duration_ms), 0), COALESCE(SUM(size_bytes), 0) FROM recordings",
	).Scan(&summary.Recordings, &ms, &summary.TotalBytes)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize recordings: %w", err)
	}
	summary.TotalDuration = time.Duration(ms) * time.Millisecond
	return summary, nil
}

// Clear removes every entry and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recordings")
	if err != nil {
		return 0, fmt.Errorf("clear recordings: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT id, session_id, handle, format, detected_type, size_bytes,
    camera, quality, started_at, ended_at, duration_ms FROM recordings`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry          Entry
		started, ended string
		durationMillis int64
	)
	if err := row.Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.Handle,
		&entry.Format,
		&entry.DetectedType,
		&entry.SizeBytes,
		&entry.Camera,
		&entry.Quality,
		&started,
		&ended,
		&durationMillis,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan recording: %w", err)
	}
	entry.StartedAt = parseTime(started)
	entry.EndedAt = parseTime(ended)
	entry.Duration = time.Duration(durationMillis) * time.Millisecond
	return entry, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
