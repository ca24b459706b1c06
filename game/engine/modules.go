package engine

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// ModuleKind names a tank module
type ModuleKind string

const (
	ModuleTutorial     ModuleKind = "tutorial"
	ModuleWebsitePlug  ModuleKind = "website_plug"
	ModuleRadar        ModuleKind = "radar"
	ModuleSpy          ModuleKind = "spy"
	ModuleDrone        ModuleKind = "drone"
	ModuleConduit      ModuleKind = "conduit"
	ModuleStorage      ModuleKind = "storage"
	ModuleConstruction ModuleKind = "construction"
	ModuleFactory      ModuleKind = "factory"

	// RadarSightWithModule is the radar range reported while a radar module is active
	RadarSightWithModule = 5
	maxResaleJitter      = 3
)

// moduleCatalog is ordered by price
var moduleCatalog = []struct {
	kind        ModuleKind
	price       int
	description string
}{
	{ModuleTutorial, 0, "Explains the rules. No effect on play."},
	{ModuleWebsitePlug, 5, "Advertises a sponsor. No effect on play."},
	{ModuleRadar, 10, "Extends radar sight to 5 cells."},
	{ModuleSpy, 15, "Reports the nearest enemy tank in your daily message."},
	{ModuleDrone, 20, "Deploys a remote drone you can fly each turn."},
	{ModuleConduit, 25, "Doubles the metal you extract from walls."},
	{ModuleStorage, 30, "Adds fuel to your tank at the end of every turn."},
	{ModuleConstruction, 35, "Lets you build walls, reinforced walls and gifts."},
	{ModuleFactory, 40, "Makes every upgrade available on every day."},
}

// Module is a capability attached to a tank
type Module struct {
	Kind   ModuleKind `json:"kind"`
	TankID EntityID   `json:"tank_id"`
}

// ModuleView is the data a presentation layer needs to render a module
type ModuleView struct {
	Kind        ModuleKind `json:"kind"`
	Description string     `json:"description"`
	Price       int        `json:"price"`
	Active      bool       `json:"active"`
}

// Valid reports whether k is a known module
func (k ModuleKind) Valid() bool {
	for _, m := range moduleCatalog {
		if m.kind == k {
			return true
		}
	}
	return false
}

// Price is the metal a module costs to buy
func (k ModuleKind) Price() int {
	for _, m := range moduleCatalog {
		if m.kind == k {
			return m.price
		}
	}
	return 0
}

// Description is the player-facing blurb for k
func (k ModuleKind) Description() string {
	for _, m := range moduleCatalog {
		if m.kind == k {
			return m.description
		}
	}
	return ""
}

// ModuleKinds lists every module in price order
func ModuleKinds() []ModuleKind {
	out := make([]ModuleKind, len(moduleCatalog))
	for i, m := range moduleCatalog {
		out[i] = m.kind
	}
	return out
}

// ResaleValue is the metal a module returns when sold. The jitter is derived
// from the session seed so it is stable for a session and unpredictable across them.
func ResaleValue(seed int64, k ModuleKind) int {
	v := k.Price()/2 - Jitter(seed, string(k))%(maxResaleJitter+1)
	if v < 0 {
		return 0
	}
	return v
}

// ModuleOffer picks the module for sale on day
func ModuleOffer(seed int64, day Weekday) ModuleKind {
	// the tutorial is never sold
	forSale := moduleCatalog[1:]
	return forSale[Jitter(seed, "offer:"+string(day))%len(forSale)].kind
}

// Jitter hashes the seed with key into a non-negative integer
func Jitter(seed int64, key string) int {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	h.Write([]byte(key))
	return int(h.Sum64() & 0x7fffffff)
}

// ActiveModules returns the modules that function: only the first two do
func (t *TankState) ActiveModules() []Module {
	if len(t.Modules) <= MaxActiveModules {
		return t.Modules
	}
	return t.Modules[:MaxActiveModules]
}

// HasActiveModule reports whether a functioning module of kind k is installed
func (t *TankState) HasActiveModule(k ModuleKind) bool {
	for _, m := range t.ActiveModules() {
		if m.Kind == k {
			return true
		}
	}
	return false
}

// HasModule reports whether k is installed at all, functioning or not
func (t *TankState) HasModule(k ModuleKind) bool {
	for _, m := range t.Modules {
		if m.Kind == k {
			return true
		}
	}
	return false
}

// RemoveModule uninstalls the first module of kind k
func (t *TankState) RemoveModule(k ModuleKind) bool {
	for i, m := range t.Modules {
		if m.Kind == k {
			t.Modules = append(t.Modules[:i], t.Modules[i+1:]...)
			return true
		}
	}
	return false
}

// EffectiveRadarSight accounts for an active radar module
func (t *TankState) EffectiveRadarSight() int {
	if t.HasActiveModule(ModuleRadar) && t.RadarSight < RadarSightWithModule {
		return RadarSightWithModule
	}
	return t.RadarSight
}

// DescribeModules renders the installed modules for the view hook
func (t *TankState) DescribeModules() []ModuleView {
	views := make([]ModuleView, len(t.Modules))
	for i, m := range t.Modules {
		views[i] = ModuleView{
			Kind:        m.Kind,
			Description: m.Kind.Description(),
			Price:       m.Kind.Price(),
			Active:      i < MaxActiveModules,
		}
	}
	return views
}

// InstallModule attaches a module to tank and applies its acquisition effect
func (g *Game) InstallModule(tank *Entity, k ModuleKind) {
	tank.Tank.Modules = append(tank.Tank.Modules, Module{Kind: k, TankID: tank.ID})
	if k == ModuleDrone && g.droneOf(tank.ID) == nil {
		g.Board.Add(NewDrone(tank.Position, tank.ID))
	}
}

// droneOf finds the drone operated by tank
func (g *Game) droneOf(tankID EntityID) *Entity {
	for _, e := range g.Board.OfKind(KindDrone) {
		if e.Drone != nil && e.Drone.OwnerID == tankID && e.Alive() {
			return e
		}
	}
	return nil
}

// applyModuleEffects runs the end-of-turn passive effects of every live tank
func (g *Game) applyModuleEffects() {
	for _, tank := range g.Board.Tanks() {
		if !tank.Alive() {
			continue
		}
		if tank.Tank.HasActiveModule(ModuleStorage) && g.Rules.StorageFuel > 0 {
			tank.Tank.Fuel += g.Rules.StorageFuel
		}
	}
}

// spyReport describes the nearest enemy for a tank with an active spy module
func (g *Game) spyReport(tank *Entity) string {
	if !tank.Tank.HasActiveModule(ModuleSpy) {
		return ""
	}
	target := g.nearestEnemy(tank)
	if target == nil {
		return ""
	}
	return fmt.Sprintf("Spy report: %s at %s with %d health", target.Name(), target.Position, target.Health)
}

// nearestEnemy returns the closest other live tank, or nil
func (g *Game) nearestEnemy(tank *Entity) *Entity {
	var best *Entity
	bestDist := -1
	for _, other := range g.Board.Tanks() {
		if other.ID == tank.ID || !other.Alive() {
			continue
		}
		d := Distance(tank.Position, other.Position)
		if bestDist < 0 || d < bestDist {
			best, bestDist = other, d
		}
	}
	return best
}
