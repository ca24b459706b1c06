package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/tank-tactics/game/engine"
	"github.com/wricardo/tank-tactics/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxIDAttempts bounds the search for a free generated id
const maxIDAttempts = 16

// Manager keeps live games in memory, keyed case-insensitively by session id,
// and mirrors them to a SessionPersistence when one is configured. Sessions
// missing from memory are restored from persistence on first access.
type Manager struct {
	mu          sync.RWMutex
	games       map[string]*service.Session
	persistence SessionPersistence
	logger      zerolog.Logger
}

// NewManager creates a session manager that keeps games in memory only
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		games:  make(map[string]*service.Session),
		logger: logger.With().Str("component", "SessionManager").Logger(),
	}
}

// NewManagerWithPersistence creates a session manager that saves every game
func NewManagerWithPersistence(persistence SessionPersistence, logger zerolog.Logger) *Manager {
	m := NewManager(logger)
	m.persistence = persistence
	return m
}

func key(id string) string {
	return strings.ToLower(id)
}

// Create builds a game from config and registers it. An empty id gets a
// generated 4-character one.
func (m *Manager) Create(id, configName string, config *engine.GameConfig) (*service.Session, error) {
	if strings.ContainsAny(id, `/\ `) {
		return nil, ErrInvalidSessionID
	}

	game, err := engine.NewGameFromConfig(config, engine.WithLogger(m.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	m.mu.Lock()
	if id == "" {
		if id, err = m.freeID(); err != nil {
			m.mu.Unlock()
			return nil, err
		}
	} else if _, taken := m.games[key(id)]; taken {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		ConfigName:     configName,
		Game:           game,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.games[key(id)] = sess
	m.mu.Unlock()

	m.logger.Info().
		Str("session", id).
		Str("config", configName).
		Int("tanks", len(game.Board.Tanks())).
		Int64("seed", game.Seed()).
		Msg("session created")

	m.store(sess)
	return sess, nil
}

// freeID draws ids until one is neither live nor persisted. Callers hold m.mu.
func (m *Manager) freeID() (string, error) {
	buf := make([]byte, 2)
	for i := 0; i < maxIDAttempts; i++ {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate session id: %w", err)
		}
		id := hex.EncodeToString(buf)
		if _, taken := m.games[id]; taken {
			continue
		}
		if m.persistence != nil && m.persistence.Exists(id) {
			continue
		}
		return id, nil
	}
	return "", fmt.Errorf("no free session id after %d attempts", maxIDAttempts)
}

// Get returns a live session, restoring it from persistence if needed. A
// restored game has an empty action queue and a fresh random seed.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	sess, ok := m.games[key(id)]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	restored, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}
	return m.adopt(restored), nil
}

// adopt registers a restored session unless another caller got there first
func (m *Manager) adopt(restored *service.Session) *service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if live, ok := m.games[key(restored.ID)]; ok {
		return live
	}
	m.games[key(restored.ID)] = restored
	m.logger.Debug().
		Str("session", restored.ID).
		Int("turn", restored.Game.Turn).
		Str("day", string(restored.Game.Day)).
		Msg("session restored")
	return restored
}

// GetOrCreate returns the session with id, creating it from config when absent
func (m *Manager) GetOrCreate(id, configName string, config *engine.GameConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, configName, config)
	}
	return sess, err
}

// List returns every live session
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*service.Session, 0, len(m.games))
	for _, sess := range m.games {
		out = append(out, sess)
	}
	return out
}

// Delete drops a session from memory and from persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, live := m.games[key(id)]
	delete(m.games, key(id))

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		live = true
	}
	if !live {
		return ErrSessionNotFound
	}

	m.logger.Info().Str("session", id).Msg("session deleted")
	return nil
}

// DeleteFromMemory evicts a session but leaves its save in place
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.games, key(id))
	return nil
}

// UpdateLastAccessed marks a session as used now
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.games[key(id)]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// Save writes one live session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sess, ok := m.games[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.persistence.Save(sess)
}

// store saves a session, logging rather than returning failures
func (m *Manager) store(sess *service.Session) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(sess); err != nil {
		m.logger.Warn().Err(err).Str("session", sess.ID).Msg("failed to persist session")
	}
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge and
// returns how many went. Queued actions are never persisted, so a session
// with actions waiting for resolution stays in memory. Evicted sessions are
// saved first and can be restored later.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.RLock()
	var idle []*service.Session
	for _, sess := range m.games {
		if sess.LastAccessedAt.Before(cutoff) {
			idle = append(idle, sess)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, sess := range idle {
		sess.Lock()
		pending := len(sess.Game.PendingActions())
		sess.Unlock()
		if pending > 0 {
			m.logger.Debug().Str("session", sess.ID).Int("pending", pending).Msg("idle session kept for its queued actions")
			continue
		}

		m.store(sess)

		m.mu.Lock()
		if live, ok := m.games[key(sess.ID)]; ok && live == sess && live.LastAccessedAt.Before(cutoff) {
			delete(m.games, key(sess.ID))
			removed++
		}
		m.mu.Unlock()
	}

	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("expired sessions evicted")
	}
	return removed
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// LoadPersistedSessions restores every saved session that is not already live
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loaded := 0
	for _, id := range ids {
		m.mu.RLock()
		_, live := m.games[key(id)]
		m.mu.RUnlock()
		if live {
			continue
		}

		sess, err := m.persistence.Load(id)
		if err != nil {
			m.logger.Warn().Err(err).Str("session", id).Msg("failed to load persisted session")
			continue
		}
		if m.adopt(sess) == sess {
			loaded++
		}
	}

	if loaded > 0 {
		m.logger.Info().Int("count", loaded).Msg("loaded persisted sessions")
	}
	return nil
}

// SaveAllSessions writes every live session and reports all failures together
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	var errs []error
	for _, sess := range m.List() {
		if err := m.persistence.Save(sess); err != nil {
			m.logger.Warn().Err(err).Str("session", sess.ID).Msg("failed to save session")
			errs = append(errs, fmt.Errorf("session %s: %w", sess.ID, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to save %d sessions: %w", len(errs), errors.Join(errs...))
	}
	return nil
}
