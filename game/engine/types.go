package engine

// Kind identifies the variant of a board entity
type Kind string

const (
	KindWall           Kind = "wall"
	KindReinforcedWall Kind = "reinforced_wall"
	KindGift           Kind = "gift"
	KindDeluxeGift     Kind = "deluxe_gift"
	KindDrone          Kind = "drone"
	KindTank           Kind = "tank"
	KindDeadTank       Kind = "dead_tank"

	// Board and combat constants
	DefaultBorder        = 12
	MinBorder            = 4
	MaxBorder            = 50
	MaxHealth            = 100
	UnkillableDefense    = 1000
	DefaultWallHealth    = 10
	EssenceNormalization = 10
	StartingEnergy       = 3
	MaxUpgradeLevel      = 10
	MinMovementCost      = 1
	MinGunCost           = 1
	GunDamageStep        = 5
	MaxActiveModules     = 2
	WebSocketBufferSize  = 256

	// SentinelGiftFill marks gift-like entities for fog-of-war renderers
	SentinelGiftFill = "#FFFFFF"
)

// EntityID is a stable opaque identifier for a board entity
type EntityID string

// Appearance is purely cosmetic and never read by the simulation
type Appearance struct {
	Fill   string `json:"fill,omitempty"`
	Stroke string `json:"stroke,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Glyph  string `json:"glyph,omitempty"`
}

// TankState holds the tank-only attributes of an entity
type TankState struct {
	Name          string   `json:"name"`
	Fuel          int      `json:"fuel"`
	Metal         int      `json:"metal"`
	MovementRange int      `json:"movement_range"`
	MovementCost  int      `json:"movement_cost"`
	GunRange      int      `json:"gun_range"`
	GunDamage     int      `json:"gun_damage"`
	GunCost       int      `json:"gun_cost"`
	HighSight     int      `json:"high_sight"`
	LowSight      int      `json:"low_sight"`
	RadarSight    int      `json:"radar_sight"`
	Kills         int      `json:"kills"`
	Modules       []Module `json:"modules,omitempty"`
	DailyMessage  string   `json:"daily_message,omitempty"`
	Science       bool     `json:"science,omitempty"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Demographic   string   `json:"demographic,omitempty"`
}

// DeadTankState holds what a killed tank keeps after death
type DeadTankState struct {
	Name     string   `json:"name"`
	KilledBy EntityID `json:"killed_by,omitempty"`
	Essence  int      `json:"essence"`
	Energy   int      `json:"energy"`
}

// GiftState is the optional module payload carried by a gift
type GiftState struct {
	Module *ModuleKind `json:"module,omitempty"`
}

// DroneState links a drone back to the tank that operates it
type DroneState struct {
	OwnerID EntityID `json:"owner_id"`
}

// Rules are the tunable numbers of a game
type Rules struct {
	Border          int  `json:"border" yaml:"border"`
	CollisionDamage int  `json:"collision_damage" yaml:"collision_damage"`
	FallDamage      int  `json:"fall_damage" yaml:"fall_damage"`
	DeluxeThreshold int  `json:"deluxe_threshold" yaml:"deluxe_threshold"`
	DamageFloor     bool `json:"damage_floor" yaml:"damage_floor"`
	DailyGifts      int  `json:"daily_gifts" yaml:"daily_gifts"`
	DailyGiftFuel   int  `json:"daily_gift_fuel" yaml:"daily_gift_fuel"`
	DailyGiftMetal  int  `json:"daily_gift_metal" yaml:"daily_gift_metal"`
	StorageFuel     int  `json:"storage_fuel" yaml:"storage_fuel"`
	DroneRange      int  `json:"drone_range" yaml:"drone_range"`
	ExtractYield    int  `json:"extract_yield" yaml:"extract_yield"`
	BaseGunDamage   int  `json:"base_gun_damage" yaml:"base_gun_damage"`
}

// DefaultRules returns the standard rule set
func DefaultRules() Rules {
	return Rules{
		Border:          DefaultBorder,
		CollisionDamage: 10,
		FallDamage:      10,
		DeluxeThreshold: 20,
		StorageFuel:     5,
		DroneRange:      3,
		ExtractYield:    3,
		DailyGiftFuel:   5,
		DailyGiftMetal:  5,
		BaseGunDamage:   10,
	}
}

// Cost is what an action charges its actor
type Cost struct {
	Fuel    int `json:"fuel,omitempty"`
	Metal   int `json:"metal,omitempty"`
	Essence int `json:"essence,omitempty"`
	Energy  int `json:"energy,omitempty"`
}

// ActionResult records the outcome of a single queued action
type ActionResult struct {
	Order      int        `json:"order"`
	ActorID    EntityID   `json:"actor_id"`
	ActorName  string     `json:"actor_name,omitempty"`
	Action     ActionKind `json:"action"`
	Precedence int        `json:"precedence"`
	Success    bool       `json:"success"`
	Charged    Cost       `json:"charged"`
	Error      string     `json:"error,omitempty"`
}

// Promotion reports a tank that died and became a dead tank
type Promotion struct {
	TankID     EntityID    `json:"tank_id"`
	Name       string      `json:"name"`
	KilledBy   EntityID    `json:"killed_by,omitempty"`
	KillerName string      `json:"killer_name,omitempty"`
	Essence    int         `json:"essence"`
	DroppedAt  Coordinates `json:"dropped_at"`
	Deluxe     bool        `json:"deluxe"`
}

// Message is a tank-to-tank note queued for delivery
type Message struct {
	From EntityID `json:"from"`
	To   EntityID `json:"to"`
	Text string   `json:"text"`
}

// CardDraw records an event card won this turn
type CardDraw struct {
	TankID EntityID  `json:"tank_id"`
	Name   string    `json:"name"`
	Card   EventCard `json:"card"`
	Bid    int       `json:"bid"`
}

// TurnReport is everything the presentation layer needs after a turn
type TurnReport struct {
	Turn          int                 `json:"turn"`
	Day           Weekday             `json:"day"`
	NextDay       Weekday             `json:"next_day"`
	Results       []ActionResult      `json:"results"`
	Notes         []string            `json:"notes"`
	Promotions    []Promotion         `json:"promotions,omitempty"`
	Messages      []Message           `json:"messages,omitempty"`
	DailyMessages map[EntityID]string `json:"daily_messages,omitempty"`
	CardsDrawn    []CardDraw          `json:"cards_drawn,omitempty"`
}
