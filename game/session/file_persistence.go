package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wricardo/tank-tactics/game/service"
)

const sessionExt = ".json"

// FilePersistence keeps one indented JSON document per session in a
// directory. File names are the lower-cased session id, so lookups ignore
// case the same way the SQLite store does.
type FilePersistence struct {
	dir    string
	logger zerolog.Logger
}

// NewFilePersistence creates dir if needed and stores sessions under it
func NewFilePersistence(dir string, logger zerolog.Logger) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{
		dir:    dir,
		logger: logger.With().Str("component", "FilePersistence").Logger(),
	}, nil
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.dir, strings.ToLower(id)+sessionExt)
}

// Save writes the session's board through a temp file and a rename, so a
// crash mid-write keeps the previous turn's save intact
func (fp *FilePersistence) Save(session *service.Session) error {
	record, err := encodeSession(session)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	target := fp.path(session.ID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	fp.logger.Debug().Str("session", session.ID).Int("bytes", len(data)).Msg("session saved")
	return nil
}

// Load reads a session back; its game gets a fresh random seed
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	data, err := os.ReadFile(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var record PersistedSessionData
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	return decodeSession(&record, fp.logger)
}

func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns the ids of every session file. Leftover temp files and
// anything that is not a session document are skipped.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != sessionExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, sessionExt))
	}
	return ids, nil
}

func (fp *FilePersistence) Exists(id string) bool {
	info, err := os.Stat(fp.path(id))
	return err == nil && !info.IsDir()
}
