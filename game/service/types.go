package service

import (
	"time"

	"github.com/wricardo/tank-tactics/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string         `json:"id"`
	ConfigName     string         `json:"config_name"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	Day            engine.Weekday `json:"day"`
	Turn           int            `json:"turn"`
	Tanks          int            `json:"tanks"`
	DeadTanks      int            `json:"dead_tanks"`
	PendingActions int            `json:"pending_actions"`
}

// TankView is the public state of a living tank
type TankView struct {
	ID            engine.EntityID     `json:"id"`
	Name          string              `json:"name"`
	Position      engine.Coordinates  `json:"position"`
	Health        int                 `json:"health"`
	Defense       int                 `json:"defense"`
	Fuel          int                 `json:"fuel"`
	Metal         int                 `json:"metal"`
	MovementRange int                 `json:"movement_range"`
	MovementCost  int                 `json:"movement_cost"`
	GunRange      int                 `json:"gun_range"`
	GunDamage     int                 `json:"gun_damage"`
	GunCost       int                 `json:"gun_cost"`
	HighSight     int                 `json:"high_sight"`
	LowSight      int                 `json:"low_sight"`
	RadarSight    int                 `json:"radar_sight"`
	Kills         int                 `json:"kills"`
	Essence       int                 `json:"essence"`
	Modules       []engine.ModuleView `json:"modules,omitempty"`
	PendingCard   *engine.CardView    `json:"pending_card,omitempty"`
	DailyMessage  string              `json:"daily_message,omitempty"`
}

// DeadTankView is the public state of a dead tank
type DeadTankView struct {
	ID       engine.EntityID    `json:"id"`
	Name     string             `json:"name"`
	Position engine.Coordinates `json:"position"`
	KilledBy engine.EntityID    `json:"killed_by,omitempty"`
	Essence  int                `json:"essence"`
	Energy   int                `json:"energy"`
}

// BoardView is a full read of a session's board
type BoardView struct {
	SessionID         string            `json:"session_id"`
	Name              string            `json:"name"`
	Day               engine.Weekday    `json:"day"`
	Turn              int               `json:"turn"`
	Border            int               `json:"border"`
	Phase             engine.Phase      `json:"phase"`
	ModuleOffer       engine.ModuleKind `json:"module_offer"`
	OfferPrice        int               `json:"offer_price"`
	PendingActions    int               `json:"pending_actions"`
	Tanks             []TankView        `json:"tanks"`
	DeadTanks         []DeadTankView    `json:"dead_tanks"`
	Entities          []*engine.Entity  `json:"entities"`
	EventCardsToPrint []engine.CardDraw `json:"event_cards_to_print,omitempty"`
}

// CellView describes every entity on one cell
type CellView struct {
	Position engine.Coordinates `json:"position"`
	InBounds bool               `json:"in_bounds"`
	Solid    bool               `json:"solid"`
	Entities []*engine.Entity   `json:"entities"`
	Summary  []string           `json:"summary"`
}

// SubmitResult acknowledges a queued action
type SubmitResult struct {
	Queued      bool                 `json:"queued"`
	Action      engine.ActionRequest `json:"action"`
	ActorName   string               `json:"actor_name"`
	PendingSize int                  `json:"pending_size"`
	Message     string               `json:"message"`
}

// TurnResult is a resolved turn plus the board it produced
type TurnResult struct {
	Report *engine.TurnReport `json:"report"`
	Board  *BoardView         `json:"board"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Border      int    `json:"border"`
	Tanks       int    `json:"tanks"`
	Walls       int    `json:"walls"`
}
