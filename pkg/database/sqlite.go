package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Database stores dispatch outcomes in SQLite. It never stores trigger
// configuration.
type Database struct {
	db *sql.DB
}

// NewDatabase opens (creating if needed) the database at dbPath
func NewDatabase(dbPath string) (*Database, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, ErrInvalidDatabasePath
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := initDatabase(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Database{db: db}, nil
}

// initDatabase creates the necessary tables
func initDatabase(db *sql.DB) error {
	createDispatchTable := `
	CREATE TABLE IF NOT EXISTS reaction_dispatches (
		id TEXT PRIMARY KEY,
		guild_id TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL DEFAULT '',
		trigger_word TEXT NOT NULL,
		reaction_type TEXT NOT NULL,
		provider TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	`

	createIndexes := `
	CREATE INDEX IF NOT EXISTS idx_dispatch_reaction ON reaction_dispatches(reaction_type);
	CREATE INDEX IF NOT EXISTS idx_dispatch_created ON reaction_dispatches(created_at);
	`

	for _, query := range []string{createDispatchTable, createIndexes} {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// RecordDispatch stores one dispatch outcome
func (d *Database) RecordDispatch(ctx context.Context, dispatch Dispatch) error {
	if d == nil || d.db == nil {
		return ErrDatabaseNotOpen
	}
	if !ValidOutcome(dispatch.Outcome) {
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, dispatch.Outcome)
	}
	if dispatch.CreatedAt.IsZero() {
		dispatch.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO reaction_dispatches
		(id, guild_id, channel_id, trigger_word, reaction_type, provider, outcome, attempts, duration_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.ExecContext(ctx, query,
		dispatch.ID,
		dispatch.GuildID,
		dispatch.ChannelID,
		dispatch.Trigger,
		dispatch.ReactionType,
		dispatch.Provider,
		dispatch.Outcome,
		dispatch.Attempts,
		dispatch.Duration.Milliseconds(),
		dispatch.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record dispatch: %w", err)
	}
	return nil
}

// ReactionSummary returns per-reaction outcome counts, most used first
func (d *Database) ReactionSummary(ctx context.Context) ([]ReactionCount, error) {
	if d == nil || d.db == nil {
		return nil, ErrDatabaseNotOpen
	}

	query := `
	SELECT reaction_type,
		SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		MAX(created_at)
	FROM reaction_dispatches
	GROUP BY reaction_type
	ORDER BY COUNT(*) DESC, reaction_type ASC
	`

	rows, err := d.db.QueryContext(ctx, query, OutcomeSent, OutcomeNotFound, OutcomeSendFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to query reaction summary: %w", err)
	}
	defer rows.Close()

	var counts []ReactionCount
	for rows.Next() {
		var c ReactionCount
		var lastSeen int64
		if err := rows.Scan(&c.ReactionType, &c.Sent, &c.NotFound, &c.SendFailed, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan reaction summary: %w", err)
		}
		c.LastSeenAt = time.UnixMilli(lastSeen)
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// PurgeBefore deletes dispatches created before cutoff and returns how many were removed
func (d *Database) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if d == nil || d.db == nil {
		return 0, ErrDatabaseNotOpen
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM reaction_dispatches WHERE created_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge dispatches: %w", err)
	}
	return result.RowsAffected()
}

// Ping checks the connection
func (d *Database) Ping(ctx context.Context) error {
	if d == nil || d.db == nil {
		return ErrDatabaseNotOpen
	}
	return d.db.PingContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}
