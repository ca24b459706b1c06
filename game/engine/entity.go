package engine

import "github.com/google/uuid"

// Entity is any object on the board. Shared attributes live on the struct
// itself; exactly one payload pointer is set for the kinds that carry one.
type Entity struct {
	ID            EntityID    `json:"id"`
	Kind          Kind        `json:"kind"`
	Appearance    Appearance  `json:"appearance"`
	Position      Coordinates `json:"position"`
	Health        int         `json:"health"`
	Defense       int         `json:"defense"`
	FuelDropped   int         `json:"fuel_dropped,omitempty"`
	MetalDropped  int         `json:"metal_dropped,omitempty"`
	LastDamagedBy EntityID    `json:"last_damaged_by,omitempty"`

	Tank  *TankState     `json:"tank,omitempty"`
	Dead  *DeadTankState `json:"dead,omitempty"`
	Gift  *GiftState     `json:"gift,omitempty"`
	Drone *DroneState    `json:"drone,omitempty"`
}

// NewEntityID returns a fresh opaque identifier
func NewEntityID() EntityID {
	return EntityID(uuid.NewString())
}

// NewWall creates a plain wall
func NewWall(at Coordinates) *Entity {
	return &Entity{
		ID:         NewEntityID(),
		Kind:       KindWall,
		Appearance: Appearance{Fill: "#7F7F7F", Stroke: "#000000", Glyph: "wall"},
		Position:   at,
		Health:     DefaultWallHealth,
	}
}

// NewReinforcedWall creates a wall no standard weapon can break
func NewReinforcedWall(at Coordinates) *Entity {
	return &Entity{
		ID:         NewEntityID(),
		Kind:       KindReinforcedWall,
		Appearance: Appearance{Fill: "#3F3F3F", Stroke: "#000000", Glyph: "reinforced_wall"},
		Position:   at,
		Health:     DefaultWallHealth,
		Defense:    UnkillableDefense,
	}
}

// NewGift creates a gift holding the given loot
func NewGift(at Coordinates, fuel, metal int) *Entity {
	return &Entity{
		ID:           NewEntityID(),
		Kind:         KindGift,
		Appearance:   Appearance{Fill: SentinelGiftFill, Stroke: "#000000", Glyph: "gift"},
		Position:     at,
		Health:       1,
		FuelDropped:  fuel,
		MetalDropped: metal,
		Gift:         &GiftState{},
	}
}

// NewDeluxeGift creates a gift that also heals and armors whoever collects it
func NewDeluxeGift(at Coordinates, fuel, metal int) *Entity {
	e := NewGift(at, fuel, metal)
	e.Kind = KindDeluxeGift
	e.Appearance.Glyph = "deluxe_gift"
	return e
}

// NewDrone creates a drone operated by owner
func NewDrone(at Coordinates, owner EntityID) *Entity {
	return &Entity{
		ID:         NewEntityID(),
		Kind:       KindDrone,
		Appearance: Appearance{Fill: "#00AAFF", Stroke: "#000000", Glyph: "drone"},
		Position:   at,
		Health:     1,
		Drone:      &DroneState{OwnerID: owner},
	}
}

// NewTank creates a tank from a stat template
func NewTank(name string, at Coordinates, stats TankState, health int) *Entity {
	stats.Name = name
	stats.Modules = append([]Module(nil), stats.Modules...)
	if health <= 0 {
		health = MaxHealth
	}
	return &Entity{
		ID:         NewEntityID(),
		Kind:       KindTank,
		Appearance: Appearance{Fill: "#00FF00", Stroke: "#000000", Symbol: "#000000", Glyph: "tank"},
		Position:   at,
		Health:     health,
		Tank:       &stats,
	}
}

// Solid entities block movement and construction
func (e *Entity) Solid() bool {
	switch e.Kind {
	case KindWall, KindReinforcedWall, KindTank:
		return true
	}
	return false
}

// Rigid entities never move
func (e *Entity) Rigid() bool {
	return e.Kind == KindWall || e.Kind == KindReinforcedWall
}

// GiftLike entities are collected on contact and broken by any hit
func (e *Entity) GiftLike() bool {
	return e.Kind == KindGift || e.Kind == KindDeluxeGift
}

// Alive reports whether the entity survives the next lifecycle pass
func (e *Entity) Alive() bool {
	return e.Health > 0
}

// Name returns a display name for reports
func (e *Entity) Name() string {
	switch {
	case e.Tank != nil:
		return e.Tank.Name
	case e.Dead != nil:
		return e.Dead.Name + " (dead)"
	}
	return string(e.Kind)
}

// Damage subtracts amount from health and remembers source when the hit is fatal
func (e *Entity) Damage(amount int, source EntityID) {
	wasAlive := e.Health > 0
	e.Health -= amount
	if wasAlive && e.Health <= 0 {
		e.LastDamagedBy = source
	}
}

// Destroy zeroes health; used for gifts, which break on any contact
func (e *Entity) Destroy(source EntityID) {
	e.Damage(e.Health, source)
}

// Clone returns a deep copy of the entity
func (e *Entity) Clone() *Entity {
	c := *e
	if e.Tank != nil {
		t := *e.Tank
		t.Modules = append([]Module(nil), e.Tank.Modules...)
		c.Tank = &t
	}
	if e.Dead != nil {
		d := *e.Dead
		c.Dead = &d
	}
	if e.Gift != nil {
		g := *e.Gift
		if e.Gift.Module != nil {
			m := *e.Gift.Module
			g.Module = &m
		}
		c.Gift = &g
	}
	if e.Drone != nil {
		d := *e.Drone
		c.Drone = &d
	}
	return &c
}
