package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/wricardo/tank-tactics/game/service"
)

// SQLitePersistence implements SessionPersistence on a single SQLite table
type SQLitePersistence struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLitePersistence opens (or creates) the database at path
func NewSQLitePersistence(path string, logger zerolog.Logger) (*SQLitePersistence, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping session db: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY COLLATE NOCASE,
		config_name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		last_accessed_at TEXT NOT NULL,
		snapshot BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &SQLitePersistence{
		db:     db,
		logger: logger.With().Str("component", "SQLitePersistence").Logger(),
	}, nil
}

// Save upserts a session row
func (sp *SQLitePersistence) Save(session *service.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	_, err = sp.db.Exec(`INSERT INTO sessions (id, config_name, created_at, last_accessed_at, snapshot)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_name = excluded.config_name,
			last_accessed_at = excluded.last_accessed_at,
			snapshot = excluded.snapshot`,
		data.ID,
		data.ConfigName,
		data.CreatedAt.UTC().Format(time.RFC3339Nano),
		data.LastAccessedAt.UTC().Format(time.RFC3339Nano),
		[]byte(data.Snapshot),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", data.ID, err)
	}

	sp.logger.Debug().Str("session", data.ID).Int("turn", session.Game.Turn).Msg("session saved")
	return nil
}

// Load reads a session row and restores its game
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	var (
		data                  PersistedSessionData
		createdAt, accessedAt string
		snapshot              []byte
	)
	err := sp.db.QueryRow(
		`SELECT id, config_name, created_at, last_accessed_at, snapshot FROM sessions WHERE id = ?`,
		id,
	).Scan(&data.ID, &data.ConfigName, &createdAt, &accessedAt, &snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	if data.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("session %s: bad created_at: %w", id, err)
	}
	if data.LastAccessedAt, err = time.Parse(time.RFC3339Nano, accessedAt); err != nil {
		return nil, fmt.Errorf("session %s: bad last_accessed_at: %w", id, err)
	}
	data.Snapshot = snapshot

	return decodeSession(&data, sp.logger)
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs ordered by creation
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	return err == nil
}

// Close closes the underlying database
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}
