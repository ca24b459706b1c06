package engine

import "fmt"

// StepPrices is the metal price of the next upgrade indexed by current level
// (level 1 at index 0). There is no price at level 10 or beyond.
var StepPrices = []int{10, 20, 40, 60, 70, 80, 90, 100, 110}

// UpgradePrice returns the metal needed to raise a stat from level
func UpgradePrice(level int) (int, bool) {
	if level < 1 || level > len(StepPrices) {
		return 0, false
	}
	return StepPrices[level-1], true
}

// UpgradeKind is a purchasable stat improvement
type UpgradeKind string

const (
	UpgradeMovementRange UpgradeKind = "movement_range"
	UpgradeMovementCost  UpgradeKind = "movement_cost"
	UpgradeGunRange      UpgradeKind = "gun_range"
	UpgradeGunCost       UpgradeKind = "gun_cost"
	UpgradeGunDamage     UpgradeKind = "gun_damage"
	UpgradeDefense       UpgradeKind = "defense"
	UpgradeSight         UpgradeKind = "sight"
)

// UpgradeKinds lists every upgrade
func UpgradeKinds() []UpgradeKind {
	return []UpgradeKind{
		UpgradeMovementRange, UpgradeMovementCost,
		UpgradeGunRange, UpgradeGunCost, UpgradeGunDamage,
		UpgradeDefense, UpgradeSight,
	}
}

// Day is the weekday on which an upgrade category is sold
func (u UpgradeKind) Day() Weekday {
	switch u {
	case UpgradeMovementRange, UpgradeMovementCost:
		return Monday
	case UpgradeGunRange, UpgradeGunCost, UpgradeGunDamage:
		return Wednesday
	default:
		return Friday
	}
}

// Valid reports whether u is a known upgrade
func (u UpgradeKind) Valid() bool {
	for _, k := range UpgradeKinds() {
		if k == u {
			return true
		}
	}
	return false
}

// Level returns the current level of the stat u improves. Cost stats are
// mirrored so a cheaper action counts as a higher level.
func (u UpgradeKind) Level(t *TankState, defense int, rules Rules) int {
	switch u {
	case UpgradeMovementRange:
		return t.MovementRange
	case UpgradeMovementCost:
		return MaxUpgradeLevel + 1 - t.MovementCost
	case UpgradeGunRange:
		return t.GunRange
	case UpgradeGunCost:
		return MaxUpgradeLevel + 1 - t.GunCost
	case UpgradeGunDamage:
		return (t.GunDamage-rules.BaseGunDamage)/GunDamageStep + 1
	case UpgradeDefense:
		return defense + 1
	case UpgradeSight:
		return t.HighSight
	}
	return 0
}

// Price returns the metal for the next level of u, or false at the cap
func (u UpgradeKind) Price(tank *Entity, rules Rules) (int, bool) {
	return UpgradePrice(u.Level(tank.Tank, tank.Defense, rules))
}

// Apply improves the stat by one purchase
func (u UpgradeKind) Apply(tank *Entity) error {
	t := tank.Tank
	switch u {
	case UpgradeMovementRange:
		t.MovementRange++
	case UpgradeMovementCost:
		if t.MovementCost <= MinMovementCost {
			return fmt.Errorf("%w: movement cost already at floor", ErrIneligibleAction)
		}
		t.MovementCost--
	case UpgradeGunRange:
		t.GunRange++
	case UpgradeGunCost:
		if t.GunCost <= MinGunCost {
			return fmt.Errorf("%w: gun cost already at floor", ErrIneligibleAction)
		}
		t.GunCost--
	case UpgradeGunDamage:
		t.GunDamage += GunDamageStep
	case UpgradeDefense:
		tank.Defense++
	case UpgradeSight:
		t.HighSight++
		t.LowSight++
		t.RadarSight++
	default:
		return fmt.Errorf("%w: upgrade %q", ErrUnknownAction, u)
	}
	return nil
}

// ConstructionPrice is the flat metal cost of building kind
func ConstructionPrice(k Kind) int {
	switch k {
	case KindWall:
		return 5
	case KindReinforcedWall:
		return 20
	}
	return 0
}

// PriceSheet is the current price of everything a tank can buy
type PriceSheet struct {
	Day          Weekday              `json:"day"`
	TuesdayRule  bool                 `json:"tuesday_discount"`
	Upgrades     map[UpgradeKind]int  `json:"upgrades"`
	Available    map[UpgradeKind]bool `json:"available"`
	ModuleOffer  ModuleKind           `json:"module_offer"`
	OfferPrice   int                  `json:"offer_price"`
	Resale       map[ModuleKind]int   `json:"resale,omitempty"`
	Construction map[Kind]int         `json:"construction"`
}

// Prices builds the price sheet for tank on the current day. Upgrades past
// their cap are omitted from Upgrades.
func (g *Game) Prices(tank *Entity) PriceSheet {
	sheet := PriceSheet{
		Day:         g.Day,
		TuesdayRule: g.Day == Tuesday,
		Upgrades:    make(map[UpgradeKind]int),
		Available:   make(map[UpgradeKind]bool),
		ModuleOffer: g.ModuleOffer(),
		Construction: map[Kind]int{
			KindWall:           ConstructionPrice(KindWall),
			KindReinforcedWall: ConstructionPrice(KindReinforcedWall),
		},
	}
	sheet.OfferPrice = sheet.ModuleOffer.Price()
	if tank == nil || tank.Tank == nil {
		return sheet
	}
	factory := tank.Tank.HasActiveModule(ModuleFactory)
	for _, u := range UpgradeKinds() {
		if price, ok := u.Price(tank, g.Rules); ok {
			sheet.Upgrades[u] = price
			sheet.Available[u] = factory || u.Day() == g.Day
		}
	}
	if len(tank.Tank.Modules) > 0 {
		sheet.Resale = make(map[ModuleKind]int)
		for _, m := range tank.Tank.Modules {
			sheet.Resale[m.Kind] = ResaleValue(g.seed, m.Kind)
		}
	}
	return sheet
}
