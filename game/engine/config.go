package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TankTemplate is the stat line every new tank starts with
type TankTemplate struct {
	Health        int `json:"health" yaml:"health"`
	Defense       int `json:"defense" yaml:"defense"`
	Fuel          int `json:"fuel" yaml:"fuel"`
	Metal         int `json:"metal" yaml:"metal"`
	MovementRange int `json:"movement_range" yaml:"movement_range"`
	MovementCost  int `json:"movement_cost" yaml:"movement_cost"`
	GunRange      int `json:"gun_range" yaml:"gun_range"`
	GunDamage     int `json:"gun_damage" yaml:"gun_damage"`
	GunCost       int `json:"gun_cost" yaml:"gun_cost"`
	HighSight     int `json:"high_sight" yaml:"high_sight"`
	LowSight      int `json:"low_sight" yaml:"low_sight"`
	RadarSight    int `json:"radar_sight" yaml:"radar_sight"`
}

// State converts the template into tank attributes
func (t TankTemplate) State() TankState {
	return TankState{
		Fuel:          t.Fuel,
		Metal:         t.Metal,
		MovementRange: t.MovementRange,
		MovementCost:  t.MovementCost,
		GunRange:      t.GunRange,
		GunDamage:     t.GunDamage,
		GunCost:       t.GunCost,
		HighSight:     t.HighSight,
		LowSight:      t.LowSight,
		RadarSight:    t.RadarSight,
	}
}

// DefaultTankTemplate returns the standard starting stats
func DefaultTankTemplate() TankTemplate {
	return TankTemplate{
		Health:        MaxHealth,
		Fuel:          10,
		Metal:         10,
		MovementRange: 1,
		MovementCost:  10,
		GunRange:      1,
		GunDamage:     10,
		GunCost:       10,
		HighSight:     2,
		LowSight:      3,
	}
}

// TankSpec places one player's tank
type TankSpec struct {
	Name        string      `json:"name" yaml:"name"`
	Position    Coordinates `json:"position" yaml:"position"`
	Email       string      `json:"email,omitempty" yaml:"email,omitempty"`
	Phone       string      `json:"phone,omitempty" yaml:"phone,omitempty"`
	Demographic string      `json:"demographic,omitempty" yaml:"demographic,omitempty"`
	Science     bool        `json:"science,omitempty" yaml:"science,omitempty"`
}

// GiftPlacement places a gift on the opening board
type GiftPlacement struct {
	Position Coordinates `json:"position" yaml:"position"`
	Fuel     int         `json:"fuel" yaml:"fuel"`
	Metal    int         `json:"metal" yaml:"metal"`
	Deluxe   bool        `json:"deluxe,omitempty" yaml:"deluxe,omitempty"`
	Module   ModuleKind  `json:"module,omitempty" yaml:"module,omitempty"`
}

// GameConfig describes a game's rules and opening board
type GameConfig struct {
	Name            string          `json:"name" yaml:"name"`
	Description     string          `json:"description" yaml:"description"`
	Rules           Rules           `json:"rules" yaml:"rules"`
	StartingTank    TankTemplate    `json:"starting_tank" yaml:"starting_tank"`
	Walls           []Coordinates   `json:"walls,omitempty" yaml:"walls,omitempty"`
	ReinforcedWalls []Coordinates   `json:"reinforced_walls,omitempty" yaml:"reinforced_walls,omitempty"`
	Gifts           []GiftPlacement `json:"gifts,omitempty" yaml:"gifts,omitempty"`
	Tanks           []TankSpec      `json:"tanks,omitempty" yaml:"tanks,omitempty"`
}

// DefaultGameConfig returns an empty standard board
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:         "default",
		Description:  "Empty standard board",
		Rules:        DefaultRules(),
		StartingTank: DefaultTankTemplate(),
	}
}

// ValidateGameConfig checks a configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	r := config.Rules
	if r.Border < MinBorder || r.Border > MaxBorder {
		return fmt.Errorf("config validation: border must be between %d and %d, got %d", MinBorder, MaxBorder, r.Border)
	}
	if r.CollisionDamage < 0 || r.FallDamage < 0 || r.DeluxeThreshold < 0 || r.DailyGifts < 0 ||
		r.DailyGiftFuel < 0 || r.DailyGiftMetal < 0 || r.StorageFuel < 0 || r.DroneRange < 0 ||
		r.ExtractYield < 0 || r.BaseGunDamage < 0 {
		return fmt.Errorf("config validation: rules must not be negative")
	}

	t := config.StartingTank
	if t.Health <= 0 || t.Health > MaxHealth {
		return fmt.Errorf("config validation: starting_tank.health must be between 1 and %d, got %d", MaxHealth, t.Health)
	}
	if t.MovementRange < 1 || t.GunRange < 1 {
		return fmt.Errorf("config validation: starting_tank ranges must be at least 1")
	}
	if t.MovementCost < MinMovementCost || t.GunCost < MinGunCost {
		return fmt.Errorf("config validation: starting_tank costs must be at least 1")
	}
	if t.Fuel < 0 || t.Metal < 0 || t.GunDamage < 0 || t.Defense < 0 {
		return fmt.Errorf("config validation: starting_tank resources must not be negative")
	}

	occupied := make(map[Coordinates]string)
	claim := func(c Coordinates, what string) error {
		if !InBounds(c, r.Border) {
			return fmt.Errorf("config validation: %s at %s is out of bounds", what, c)
		}
		if prev, ok := occupied[c]; ok {
			return fmt.Errorf("config validation: %s at %s overlaps %s", what, c, prev)
		}
		occupied[c] = what
		return nil
	}
	for _, c := range config.Walls {
		if err := claim(c, "wall"); err != nil {
			return err
		}
	}
	for _, c := range config.ReinforcedWalls {
		if err := claim(c, "reinforced wall"); err != nil {
			return err
		}
	}
	names := make(map[string]bool)
	for _, spec := range config.Tanks {
		if spec.Name == "" {
			return fmt.Errorf("config validation: every tank needs a name")
		}
		if names[strings.ToLower(spec.Name)] {
			return fmt.Errorf("config validation: duplicate tank name %q", spec.Name)
		}
		names[strings.ToLower(spec.Name)] = true
		if err := claim(spec.Position, "tank "+spec.Name); err != nil {
			return err
		}
	}
	for _, gp := range config.Gifts {
		if !InBounds(gp.Position, r.Border) {
			return fmt.Errorf("config validation: gift at %s is out of bounds", gp.Position)
		}
		if gp.Fuel < 0 || gp.Metal < 0 {
			return fmt.Errorf("config validation: gift at %s has negative loot", gp.Position)
		}
		if gp.Module != "" && !gp.Module.Valid() {
			return fmt.Errorf("config validation: gift at %s carries unknown module %q", gp.Position, gp.Module)
		}
	}

	return nil
}

// LoadGameConfig reads a JSON or YAML configuration file, chosen by extension
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	config, err := ParseGameConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseGameConfig decodes config bytes; ext selects YAML for ".yaml"/".yml".
// Missing rules and starting stats fall back to the defaults.
func ParseGameConfig(data []byte, ext string) (*GameConfig, error) {
	config := &GameConfig{
		Rules:        DefaultRules(),
		StartingTank: DefaultTankTemplate(),
	}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}
	return config, nil
}
