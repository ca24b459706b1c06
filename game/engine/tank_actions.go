package engine

import (
	"fmt"
	"strings"
)

const (
	droneFuelCost   = 5
	extractFuelCost = 5
	messageFuelCost = 1
	maxMessageLen   = 280
)

// MoveAction drives the actor along Steps
type MoveAction struct {
	actionBase
	Steps []Direction
}

// NewMove builds a move action
func NewMove(actor EntityID, precedence int, steps ...Direction) *MoveAction {
	return &MoveAction{actionBase: actionBase{ActorID: actor, Bid: precedence}, Steps: steps}
}

func (a *MoveAction) Kind() ActionKind { return ActionMove }

func (a *MoveAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Fuel: actor.Tank.MovementCost}
}

func (a *MoveAction) Check(g *Game, actor *Entity) error {
	if len(a.Steps) == 0 {
		return fmt.Errorf("%w: move needs at least one step", ErrIneligibleAction)
	}
	if len(a.Steps) > actor.Tank.MovementRange {
		return fmt.Errorf("%w: %d steps exceeds movement range %d", ErrIneligibleAction, len(a.Steps), actor.Tank.MovementRange)
	}
	return nil
}

func (a *MoveAction) Execute(g *Game, actor *Entity) error {
	out, err := g.Move(actor, a.Steps)
	if err != nil {
		return err
	}
	ev := g.logger.Debug().Str("tank", actor.Name()).Stringer("from", out.From).Stringer("to", out.To)
	if out.OffBoard {
		ev = ev.Bool("off_board", true)
	}
	if out.HitWith != "" {
		ev = ev.Str("collided_with", string(out.HitWith))
	}
	ev.Int("collected", len(out.Collected)).Msg("tank moved")
	return nil
}

// FireAction shoots along Steps
type FireAction struct {
	actionBase
	Steps []Direction
}

// NewFire builds a fire action
func NewFire(actor EntityID, precedence int, steps ...Direction) *FireAction {
	return &FireAction{actionBase: actionBase{ActorID: actor, Bid: precedence}, Steps: steps}
}

func (a *FireAction) Kind() ActionKind { return ActionFire }

func (a *FireAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Fuel: actor.Tank.GunCost}
}

func (a *FireAction) Check(g *Game, actor *Entity) error {
	if len(a.Steps) == 0 {
		return fmt.Errorf("%w: a shot needs at least one step", ErrIneligibleAction)
	}
	if len(a.Steps) > actor.Tank.GunRange {
		return fmt.Errorf("%w: %d steps exceeds gun range %d", ErrIneligibleAction, len(a.Steps), actor.Tank.GunRange)
	}
	return nil
}

func (a *FireAction) Execute(g *Game, actor *Entity) error {
	out, err := g.Fire(actor, a.Steps)
	if err != nil {
		return err
	}
	g.logger.Debug().Str("tank", actor.Name()).Int("hits", len(out.Hits)).Msg("tank fired")
	return nil
}

// BuildAction constructs a wall, reinforced wall or gift next to the actor
type BuildAction struct {
	actionBase
	Structure Kind
	Direction Direction
	Fuel      int
	Metal     int
}

// NewBuild builds a construction action. Fuel and metal only apply to gifts.
func NewBuild(actor EntityID, precedence int, structure Kind, d Direction, fuel, metal int) *BuildAction {
	return &BuildAction{
		actionBase: actionBase{ActorID: actor, Bid: precedence},
		Structure:  structure,
		Direction:  d,
		Fuel:       fuel,
		Metal:      metal,
	}
}

func (a *BuildAction) Kind() ActionKind {
	switch a.Structure {
	case KindReinforcedWall:
		return ActionBuildReinforcedWall
	case KindGift:
		return ActionBuildGift
	}
	return ActionBuildWall
}

func (a *BuildAction) Cost(g *Game, actor *Entity) Cost {
	if a.Structure == KindGift {
		return Cost{Fuel: a.Fuel, Metal: a.Metal}
	}
	return Cost{Metal: ConstructionPrice(a.Structure)}
}

func (a *BuildAction) Check(g *Game, actor *Entity) error {
	if !actor.Tank.HasActiveModule(ModuleConstruction) {
		return fmt.Errorf("%w: building requires an active construction module", ErrIneligibleAction)
	}
	switch a.Structure {
	case KindWall, KindReinforcedWall:
	case KindGift:
		if a.Fuel < 0 || a.Metal < 0 || a.Fuel+a.Metal == 0 {
			return fmt.Errorf("%w: a gift must hold some fuel or metal", ErrIneligibleAction)
		}
	default:
		return fmt.Errorf("%w: cannot build %s", ErrUnknownAction, a.Structure)
	}
	return g.checkFreeCell(actor.Position.Step(a.Direction))
}

func (a *BuildAction) Execute(g *Game, actor *Entity) error {
	at := actor.Position.Step(a.Direction)
	var e *Entity
	switch a.Structure {
	case KindWall:
		e = NewWall(at)
	case KindReinforcedWall:
		e = NewReinforcedWall(at)
	default:
		e = NewGift(at, a.Fuel, a.Metal)
	}
	return g.place(e, actor.ID)
}

// checkFreeCell accepts in-bounds cells free of solid entities. Gifts, drones
// and dead tanks do not occupy a cell for construction.
func (g *Game) checkFreeCell(at Coordinates) error {
	if !g.Board.InBounds(at) {
		return fmt.Errorf("%w: %s is out of bounds", ErrInvalidPlacement, at)
	}
	if occupant, ok := g.Board.SolidAt(at); ok {
		return fmt.Errorf("%w: %s is occupied by %s", ErrInvalidPlacement, at, occupant.Name())
	}
	return nil
}

// place breaks any gift on the target cell and adds e; walls and gifts never stack
func (g *Game) place(e *Entity, by EntityID) error {
	if err := g.checkFreeCell(e.Position); err != nil {
		return err
	}
	for _, other := range g.Board.EntitiesAt(e.Position) {
		if other.GiftLike() {
			other.Destroy(by)
		}
	}
	return g.Board.Add(e)
}

// UpgradeAction buys one level of a stat
type UpgradeAction struct {
	actionBase
	Upgrade UpgradeKind
}

// NewUpgrade builds an upgrade action
func NewUpgrade(actor EntityID, precedence int, u UpgradeKind) *UpgradeAction {
	return &UpgradeAction{actionBase: actionBase{ActorID: actor, Bid: precedence}, Upgrade: u}
}

func (a *UpgradeAction) Kind() ActionKind { return ActionUpgrade }

func (a *UpgradeAction) Cost(g *Game, actor *Entity) Cost {
	price, _ := a.Upgrade.Price(actor, g.Rules)
	return Cost{Metal: price}
}

func (a *UpgradeAction) Check(g *Game, actor *Entity) error {
	if !a.Upgrade.Valid() {
		return fmt.Errorf("%w: upgrade %q", ErrUnknownAction, a.Upgrade)
	}
	if a.Upgrade.Day() != g.Day && !actor.Tank.HasActiveModule(ModuleFactory) {
		return fmt.Errorf("%w: %s upgrades are sold on %s", ErrIneligibleAction, a.Upgrade, a.Upgrade.Day())
	}
	if _, ok := a.Upgrade.Price(actor, g.Rules); !ok {
		return fmt.Errorf("%w: %s is at its maximum level", ErrIneligibleAction, a.Upgrade)
	}
	return nil
}

func (a *UpgradeAction) Execute(g *Game, actor *Entity) error {
	return a.Upgrade.Apply(actor)
}

// PurchaseModuleAction buys today's module offer
type PurchaseModuleAction struct {
	actionBase
	Module ModuleKind
}

// NewPurchaseModule builds a purchase action
func NewPurchaseModule(actor EntityID, precedence int, k ModuleKind) *PurchaseModuleAction {
	return &PurchaseModuleAction{actionBase: actionBase{ActorID: actor, Bid: precedence}, Module: k}
}

func (a *PurchaseModuleAction) Kind() ActionKind { return ActionPurchaseModule }

func (a *PurchaseModuleAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Metal: a.Module.Price()}
}

func (a *PurchaseModuleAction) Check(g *Game, actor *Entity) error {
	if offer := g.ModuleOffer(); a.Module != offer {
		return fmt.Errorf("%w: %s is not for sale today, the offer is %s", ErrIneligibleAction, a.Module, offer)
	}
	if actor.Tank.HasModule(a.Module) {
		return fmt.Errorf("%w: %s already installed", ErrIneligibleAction, a.Module)
	}
	return nil
}

func (a *PurchaseModuleAction) Execute(g *Game, actor *Entity) error {
	g.InstallModule(actor, a.Module)
	return nil
}

// SellModuleAction trades a module back for metal
type SellModuleAction struct {
	actionBase
	Module ModuleKind
}

// NewSellModule builds a sell action
func NewSellModule(actor EntityID, precedence int, k ModuleKind) *SellModuleAction {
	return &SellModuleAction{actionBase: actionBase{ActorID: actor, Bid: precedence}, Module: k}
}

func (a *SellModuleAction) Kind() ActionKind { return ActionSellModule }

// Cost is negative: selling pays the actor
func (a *SellModuleAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Metal: -ResaleValue(g.seed, a.Module)}
}

func (a *SellModuleAction) Check(g *Game, actor *Entity) error {
	if g.Day != Thursday {
		return fmt.Errorf("%w: modules can only be sold on %s", ErrIneligibleAction, Thursday)
	}
	if !actor.Tank.HasModule(a.Module) {
		return fmt.Errorf("%w: %s is not installed", ErrIneligibleAction, a.Module)
	}
	return nil
}

func (a *SellModuleAction) Execute(g *Game, actor *Entity) error {
	actor.Tank.RemoveModule(a.Module)
	if a.Module == ModuleDrone && !actor.Tank.HasModule(ModuleDrone) {
		if drone := g.droneOf(actor.ID); drone != nil {
			drone.Destroy(actor.ID)
		}
	}
	return nil
}

// BidEventCardAction pledges metal toward this turn's event card
type BidEventCardAction struct {
	actionBase
	Amount int
}

// NewBidEventCard builds a bid
func NewBidEventCard(actor EntityID, precedence, amount int) *BidEventCardAction {
	return &BidEventCardAction{actionBase: actionBase{ActorID: actor, Bid: precedence}, Amount: amount}
}

func (a *BidEventCardAction) Kind() ActionKind { return ActionBidEventCard }

func (a *BidEventCardAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Metal: a.Amount}
}

func (a *BidEventCardAction) Check(g *Game, actor *Entity) error {
	if a.Amount <= 0 {
		return fmt.Errorf("%w: bid must be positive", ErrIneligibleAction)
	}
	for _, b := range g.Bids {
		if b.TankID == actor.ID {
			return fmt.Errorf("%w: one bid per turn", ErrIneligibleAction)
		}
	}
	return nil
}

func (a *BidEventCardAction) Execute(g *Game, actor *Entity) error {
	g.Bids = append(g.Bids, EventCardBid{TankID: actor.ID, Amount: a.Amount})
	return nil
}

// MoveDroneAction flies the actor's drone. Drones ignore occupants and stop
// at the board edge without harm; gravity still applies after the turn.
type MoveDroneAction struct {
	actionBase
	Steps []Direction
}

// NewMoveDrone builds a drone flight
func NewMoveDrone(actor EntityID, precedence int, steps ...Direction) *MoveDroneAction {
	return &MoveDroneAction{actionBase: actionBase{ActorID: actor, Bid: precedence}, Steps: steps}
}

func (a *MoveDroneAction) Kind() ActionKind { return ActionMoveDrone }

func (a *MoveDroneAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Fuel: droneFuelCost}
}

func (a *MoveDroneAction) Check(g *Game, actor *Entity) error {
	if !actor.Tank.HasActiveModule(ModuleDrone) {
		return fmt.Errorf("%w: flying requires an active drone module", ErrIneligibleAction)
	}
	if g.droneOf(actor.ID) == nil {
		return fmt.Errorf("%w: drone of %s no longer exists", ErrStaleReference, actor.Name())
	}
	if len(a.Steps) == 0 || len(a.Steps) > g.Rules.DroneRange {
		return fmt.Errorf("%w: drones fly 1 to %d cells", ErrIneligibleAction, g.Rules.DroneRange)
	}
	return nil
}

func (a *MoveDroneAction) Execute(g *Game, actor *Entity) error {
	drone := g.droneOf(actor.ID)
	if drone == nil {
		return fmt.Errorf("%w: drone of %s no longer exists", ErrStaleReference, actor.Name())
	}
	for _, d := range a.Steps {
		next := drone.Position.Step(d)
		if !g.Board.InBounds(next) {
			break
		}
		drone.Position = next
	}
	return nil
}

// ExtractResourceAction strips metal from an adjacent wall
type ExtractResourceAction struct {
	actionBase
	Direction Direction
}

// NewExtractResource builds an extraction
func NewExtractResource(actor EntityID, precedence int, d Direction) *ExtractResourceAction {
	return &ExtractResourceAction{actionBase: actionBase{ActorID: actor, Bid: precedence}, Direction: d}
}

func (a *ExtractResourceAction) Kind() ActionKind { return ActionExtractResource }

func (a *ExtractResourceAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Fuel: extractFuelCost}
}

func (a *ExtractResourceAction) Check(g *Game, actor *Entity) error {
	_, err := a.wall(g, actor)
	return err
}

func (a *ExtractResourceAction) wall(g *Game, actor *Entity) (*Entity, error) {
	at := actor.Position.Step(a.Direction)
	e, ok := g.Board.SolidAt(at)
	if !ok || !e.Rigid() {
		return nil, fmt.Errorf("%w: no wall at %s", ErrIneligibleAction, at)
	}
	if e.Kind == KindReinforcedWall {
		return nil, fmt.Errorf("%w: reinforced walls cannot be mined", ErrIneligibleAction)
	}
	return e, nil
}

// Execute moves yield metal from the wall to the actor; the wall loses as much health
func (a *ExtractResourceAction) Execute(g *Game, actor *Entity) error {
	wall, err := a.wall(g, actor)
	if err != nil {
		return err
	}
	yield := g.Rules.ExtractYield
	if actor.Tank.HasActiveModule(ModuleConduit) {
		yield *= 2
	}
	actor.Tank.Metal += yield
	wall.Damage(g.Rules.ExtractYield, actor.ID)
	return nil
}

// SendMessageAction queues a note for another tank
type SendMessageAction struct {
	actionBase
	To   EntityID
	Text string
}

// NewSendMessage builds a message
func NewSendMessage(actor EntityID, precedence int, to EntityID, text string) *SendMessageAction {
	return &SendMessageAction{actionBase: actionBase{ActorID: actor, Bid: precedence}, To: to, Text: text}
}

func (a *SendMessageAction) Kind() ActionKind { return ActionSendMessage }

func (a *SendMessageAction) Cost(g *Game, actor *Entity) Cost {
	return Cost{Fuel: messageFuelCost}
}

func (a *SendMessageAction) Check(g *Game, actor *Entity) error {
	text := strings.TrimSpace(a.Text)
	if text == "" || len(text) > maxMessageLen {
		return fmt.Errorf("%w: message must be 1 to %d characters", ErrIneligibleAction, maxMessageLen)
	}
	to, ok := g.Board.Get(a.To)
	if !ok || (to.Tank == nil && to.Dead == nil) {
		return fmt.Errorf("%w: recipient %s not found", ErrStaleReference, a.To)
	}
	return nil
}

func (a *SendMessageAction) Execute(g *Game, actor *Entity) error {
	g.Messages = append(g.Messages, Message{From: actor.ID, To: a.To, Text: strings.TrimSpace(a.Text)})
	return nil
}
