package engine

import "fmt"

const (
	placeWallEssence = 5
	placeEnergy      = 1
	harmEssence      = 10
	harmEnergy       = 2
	harmDamage       = 10
)

// killerOf resolves the entity a dead tank haunts. Range for every dead-tank
// action is measured from the killer's current position.
func (g *Game) killerOf(dead *Entity) (*Entity, error) {
	if dead.Dead.KilledBy == "" {
		return nil, fmt.Errorf("%w: %s has no killer to haunt", ErrStaleReference, dead.Name())
	}
	killer, ok := g.Board.Get(dead.Dead.KilledBy)
	if !ok {
		return nil, fmt.Errorf("%w: killer %s of %s is gone", ErrStaleReference, dead.Dead.KilledBy, dead.Name())
	}
	return killer, nil
}

func (g *Game) checkNearKiller(dead *Entity, target Coordinates, reach int) error {
	killer, err := g.killerOf(dead)
	if err != nil {
		return err
	}
	if !g.Board.InBounds(target) {
		return fmt.Errorf("%w: %s is out of bounds", ErrInvalidPlacement, target)
	}
	if reach < 0 || target.Level != killer.Position.Level || Distance(killer.Position, target) > reach {
		return fmt.Errorf("%w: %s is beyond reach %d of %s", ErrIneligibleAction, target, reach, killer.Name())
	}
	return nil
}

// PlaceWallAction lets a dead tank drop a wall near its killer
type PlaceWallAction struct {
	actionBase
	Target Coordinates
}

// NewPlaceWall builds a dead-tank wall placement
func NewPlaceWall(actor EntityID, target Coordinates) *PlaceWallAction {
	return &PlaceWallAction{actionBase: actionBase{ActorID: actor}, Target: target}
}

func (a *PlaceWallAction) Kind() ActionKind { return ActionPlaceWall }

func (a *PlaceWallAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Essence: placeWallEssence, Energy: placeEnergy}
}

func (a *PlaceWallAction) Check(g *Game, actor *Entity) error {
	if err := g.checkNearKiller(actor, a.Target, actor.Dead.Energy); err != nil {
		return err
	}
	return g.checkFreeCell(a.Target)
}

func (a *PlaceWallAction) Execute(g *Game, actor *Entity) error {
	return g.place(NewWall(a.Target), actor.ID)
}

// PlaceGiftAction lets a dead tank spend essence on a gift near its killer
type PlaceGiftAction struct {
	actionBase
	Target Coordinates
	Fuel   int
	Metal  int
}

// NewPlaceGift builds a dead-tank gift placement
func NewPlaceGift(actor EntityID, target Coordinates, fuel, metal int) *PlaceGiftAction {
	return &PlaceGiftAction{actionBase: actionBase{ActorID: actor}, Target: target, Fuel: fuel, Metal: metal}
}

func (a *PlaceGiftAction) Kind() ActionKind { return ActionPlaceGift }

func (a *PlaceGiftAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Essence: a.Fuel + a.Metal, Energy: placeEnergy}
}

func (a *PlaceGiftAction) Check(g *Game, actor *Entity) error {
	if a.Fuel < 0 || a.Metal < 0 || a.Fuel+a.Metal == 0 {
		return fmt.Errorf("%w: a gift must hold some fuel or metal", ErrIneligibleAction)
	}
	if err := g.checkNearKiller(actor, a.Target, actor.Dead.Energy/2); err != nil {
		return err
	}
	return g.checkFreeCell(a.Target)
}

func (a *PlaceGiftAction) Execute(g *Game, actor *Entity) error {
	return g.place(NewGift(a.Target, a.Fuel, a.Metal), actor.ID)
}

// HarmTankAction lets a dead tank damage a tank near its killer
type HarmTankAction struct {
	actionBase
	TargetID EntityID
}

// NewHarmTank builds a dead-tank attack
func NewHarmTank(actor, target EntityID) *HarmTankAction {
	return &HarmTankAction{actionBase: actionBase{ActorID: actor}, TargetID: target}
}

func (a *HarmTankAction) Kind() ActionKind { return ActionHarmTank }

func (a *HarmTankAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Essence: harmEssence, Energy: harmEnergy}
}

func (a *HarmTankAction) Check(g *Game, actor *Entity) error {
	target, err := a.target(g)
	if err != nil {
		return err
	}
	return g.checkNearKiller(actor, target.Position, actor.Dead.Energy-2)
}

func (a *HarmTankAction) target(g *Game) (*Entity, error) {
	target, ok := g.Board.Get(a.TargetID)
	if !ok || target.Kind != KindTank || !target.Alive() {
		return nil, fmt.Errorf("%w: target tank %s not found", ErrStaleReference, a.TargetID)
	}
	return target, nil
}

func (a *HarmTankAction) Execute(g *Game, actor *Entity) error {
	target, err := a.target(g)
	if err != nil {
		return err
	}
	target.Damage(harmDamage, actor.ID)
	return nil
}
