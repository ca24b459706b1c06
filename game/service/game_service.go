package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/tank-tactics/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Turn Operations
	AddTank(ctx context.Context, sessionID string, spec engine.TankSpec) (*TankView, error)
	SubmitAction(ctx context.Context, sessionID string, req engine.ActionRequest) (*SubmitResult, error)
	PendingActions(ctx context.Context, sessionID string) ([]engine.ActionRequest, error)
	ResolveTurn(ctx context.Context, sessionID string) (*TurnResult, error)

	// Board State
	GetBoard(ctx context.Context, sessionID string) (*BoardView, error)
	DescribeCell(ctx context.Context, sessionID string, at engine.Coordinates) (*CellView, error)
	GetPrices(ctx context.Context, sessionID, tankRef string) (*engine.PriceSheet, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configName string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, configName string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session. ConfigName is the config
// identifier the board was built from; the board itself lives in Game.
// Hold the session lock while reading or mutating Game.
type Session struct {
	ID             string
	ConfigName     string
	Game           *engine.Game
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }
