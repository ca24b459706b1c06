package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/tank-tactics/game/engine"
	"github.com/wricardo/tank-tactics/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. Snapshot holds the
// engine snapshot; queued actions and the random seed are not kept.
type PersistedSessionData struct {
	ID             string          `json:"id"`
	ConfigName     string          `json:"config_name"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	Snapshot       json.RawMessage `json:"snapshot"`
}

// encodeSession builds the persisted form shared by every backend. It takes
// the session lock, so callers must not hold it.
func encodeSession(session *service.Session) (*PersistedSessionData, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if session.Game == nil {
		return nil, fmt.Errorf("session %s has no game", session.ID)
	}
	session.Lock()
	snapshot, err := engine.EncodeSnapshot(session.Game)
	session.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return &PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.ConfigName,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Snapshot:       snapshot,
	}, nil
}

// decodeSession restores a session; the game draws a fresh seed
func decodeSession(data *PersistedSessionData, logger zerolog.Logger) (*service.Session, error) {
	game, err := engine.DecodeSnapshot(data.Snapshot, engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}
	return &service.Session{
		ID:             data.ID,
		ConfigName:     data.ConfigName,
		Game:           game,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
