package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/tank-tactics/game/engine"
	"github.com/wricardo/tank-tactics/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Lookup order for a bare config id
var configExtensions = []string{".json", ".yaml", ".yml"}

// preferredDefault is used as the default board when present
const preferredDefault = "classic"

type cachedConfig struct {
	config  *engine.GameConfig
	path    string
	modTime time.Time
}

// Manager reads board configurations from one directory. Parsed configs are
// cached by id and re-read when their file changes on disk.
type Manager struct {
	dir    string
	logger zerolog.Logger

	mu       sync.RWMutex
	cache    map[string]cachedConfig
	fallback *engine.GameConfig
}

func NewManager(configDir string, logger zerolog.Logger) (*Manager, error) {
	info, err := os.Stat(configDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		dir:    configDir,
		cache:  make(map[string]cachedConfig),
		logger: logger.With().Str("component", "ConfigManager").Logger(),
	}
	m.pickDefault()
	return m, nil
}

// LoadConfig returns the config named name, with or without its extension.
// Without one, .json then .yaml then .yml are tried.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	path, info, err := m.locate(name)
	if err != nil {
		return nil, err
	}
	id := configID(name)

	m.mu.RLock()
	hit, ok := m.cache[id]
	m.mu.RUnlock()
	if ok && hit.path == path && hit.modTime.Equal(info.ModTime()) {
		return hit.config, nil
	}

	config, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have parsed the same revision meanwhile
	if hit, ok := m.cache[id]; ok && hit.path == path && hit.modTime.Equal(info.ModTime()) {
		return hit.config, nil
	}
	m.cache[id] = cachedConfig{config: config, path: path, modTime: info.ModTime()}
	m.logger.Debug().Str("config", id).Str("path", path).Msg("config loaded")
	return config, nil
}

func readConfig(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config, err := engine.ParseGameConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}

// locate finds the file backing name in the config directory
func (m *Manager) locate(name string) (string, os.FileInfo, error) {
	candidates := []string{name}
	if !isConfigFile(name) {
		candidates = make([]string, 0, len(configExtensions))
		for _, ext := range configExtensions {
			candidates = append(candidates, name+ext)
		}
	}
	for _, c := range candidates {
		path := filepath.Join(m.dir, c)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, info, nil
		}
	}
	return "", nil, ErrConfigNotFound
}

// ListConfigs summarises every loadable config in the directory, sorted by
// id. Files that fail to parse or validate are logged and left out. When the
// same id exists with several extensions the first in lookup order wins.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	ids := make(map[string]bool)
	for _, entry := range entries {
		if !entry.IsDir() && isConfigFile(entry.Name()) {
			ids[configID(entry.Name())] = true
		}
	}

	out := make([]*service.ConfigInfo, 0, len(ids))
	for id := range ids {
		config, err := m.LoadConfig(id)
		if err != nil {
			m.logger.Warn().Err(err).Str("config", id).Msg("skipping invalid config")
			continue
		}
		path, _, _ := m.locate(id)
		out = append(out, &service.ConfigInfo{
			Filename:    filepath.Base(path),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Border:      config.Rules.Border,
			Tanks:       len(config.Tanks),
			Walls:       len(config.Walls) + len(config.ReinforcedWalls),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ConfigID < out[j].ConfigID })
	return out, nil
}

// GetDefault returns the board used when a session names no config
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fallback
}

func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.fallback = config
	m.mu.Unlock()
	return nil
}

// ReloadConfig forgets the cached copy of name and parses it again
func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	delete(m.cache, configID(name))
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

// RefreshCache forgets every cached config and picks the default again
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.cache = make(map[string]cachedConfig)
	m.mu.Unlock()

	m.pickDefault()
	return nil
}

// Count returns the number of cached configs
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

// pickDefault uses classic when present, otherwise the first valid config by
// id, otherwise the built-in empty board
func (m *Manager) pickDefault() {
	config, err := m.LoadConfig(preferredDefault)
	if err != nil {
		config = engine.DefaultGameConfig()
		if listed, listErr := m.ListConfigs(); listErr == nil && len(listed) > 0 {
			if first, err := m.LoadConfig(listed[0].ConfigID); err == nil {
				config = first
			}
		}
	}

	m.mu.Lock()
	m.fallback = config
	m.mu.Unlock()
	m.logger.Debug().Str("name", config.Name).Msg("default config selected")
}

// SaveConfig validates config and writes it under name. Names ending in
// .yaml or .yml are written as YAML, anything else as indented JSON.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config cannot be nil", ErrInvalidConfig)
	}
	if err := checkName(name); err != nil {
		return err
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	if !isConfigFile(filename) {
		filename += ".json"
	}

	data, err := encodeConfig(filename, config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(m.dir, filename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Drop the cached copy; the next load picks up the new file
	m.mu.Lock()
	delete(m.cache, configID(name))
	m.mu.Unlock()

	m.logger.Info().Str("config", configID(name)).Str("path", path).Msg("config saved")
	return nil
}

func encodeConfig(filename string, config *engine.GameConfig) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return yaml.Marshal(config)
	}
	return json.MarshalIndent(config, "", "  ")
}

// checkName keeps config names inside the config directory
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}
	return nil
}

func isConfigFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range configExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// configID is the file name without its config extension
func configID(name string) string {
	if isConfigFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
