package engine

import (
	"fmt"
	"strings"
)

// ActionKind names an action in the catalogue
type ActionKind string

const (
	ActionMove                ActionKind = "move"
	ActionFire                ActionKind = "fire"
	ActionBuildWall           ActionKind = "build_wall"
	ActionBuildReinforcedWall ActionKind = "build_reinforced_wall"
	ActionBuildGift           ActionKind = "build_gift"
	ActionUpgrade             ActionKind = "upgrade"
	ActionPurchaseModule      ActionKind = "purchase_module"
	ActionSellModule          ActionKind = "sell_module"
	ActionBidEventCard        ActionKind = "bid_event_card"
	ActionMoveDrone           ActionKind = "move_drone"
	ActionExtractResource     ActionKind = "extract_resource"
	ActionSendMessage         ActionKind = "send_message"
	ActionPlaceWall           ActionKind = "place_wall"
	ActionPlaceGift           ActionKind = "place_gift"
	ActionHarmTank            ActionKind = "harm_tank"
)

// ActionKinds lists every action in the catalogue
func ActionKinds() []ActionKind {
	return []ActionKind{
		ActionMove, ActionFire,
		ActionBuildWall, ActionBuildReinforcedWall, ActionBuildGift,
		ActionUpgrade, ActionPurchaseModule, ActionSellModule, ActionBidEventCard,
		ActionMoveDrone, ActionExtractResource, ActionSendMessage,
		ActionPlaceWall, ActionPlaceGift, ActionHarmTank,
	}
}

// ByDeadTank reports whether k is performed by a dead tank rather than a tank
func (k ActionKind) ByDeadTank() bool {
	switch k {
	case ActionPlaceWall, ActionPlaceGift, ActionHarmTank:
		return true
	}
	return false
}

// Action is a queued intent. The resolver checks eligibility, then
// affordability, charges Cost plus the precedence bid and finally calls
// Execute. Execute must only fail in ways Check could not foresee.
type Action interface {
	Actor() EntityID
	Kind() ActionKind
	Precedence() int
	Cost(g *Game, actor *Entity) Cost
	Check(g *Game, actor *Entity) error
	Execute(g *Game, actor *Entity) error
}

// actionBase carries the fields every action shares
type actionBase struct {
	ActorID EntityID
	Bid     int
}

func (b actionBase) Actor() EntityID { return b.ActorID }

func (b actionBase) Precedence() int { return b.Bid }

// ActionRequest is the wire form of an action
type ActionRequest struct {
	Type       ActionKind   `json:"type"`
	ActorID    EntityID     `json:"actor_id"`
	Precedence int          `json:"precedence,omitempty"`
	Steps      []string     `json:"steps,omitempty"`
	Direction  string       `json:"direction,omitempty"`
	Upgrade    UpgradeKind  `json:"upgrade,omitempty"`
	Module     ModuleKind   `json:"module,omitempty"`
	Amount     int          `json:"amount,omitempty"`
	Fuel       int          `json:"fuel,omitempty"`
	Metal      int          `json:"metal,omitempty"`
	Target     *Coordinates `json:"target,omitempty"`
	TargetID   EntityID     `json:"target_id,omitempty"`
	Text       string       `json:"text,omitempty"`
}

// DecodeAction validates the shape of a request and builds the action it
// describes. Board-dependent checks happen at resolution.
func DecodeAction(req ActionRequest) (Action, error) {
	if req.ActorID == "" {
		return nil, fmt.Errorf("%w: actor_id is required", ErrUnknownAction)
	}
	if req.Precedence < 0 {
		return nil, fmt.Errorf("%w: precedence cannot be negative", ErrIneligibleAction)
	}
	base := actionBase{ActorID: req.ActorID, Bid: req.Precedence}

	direction := func() (Direction, error) {
		name := req.Direction
		if name == "" && len(req.Steps) == 1 {
			name = req.Steps[0]
		}
		return ParseDirection(name)
	}
	target := func() (Coordinates, error) {
		if req.Target == nil {
			return Coordinates{}, fmt.Errorf("%w: target is required", ErrInvalidPlacement)
		}
		return *req.Target, nil
	}

	kind := ActionKind(strings.ToLower(strings.TrimSpace(string(req.Type))))
	switch kind {
	case ActionMove, ActionFire, ActionMoveDrone:
		steps, err := ParseDirections(req.Steps)
		if err != nil {
			return nil, err
		}
		switch kind {
		case ActionMove:
			return &MoveAction{actionBase: base, Steps: steps}, nil
		case ActionFire:
			return &FireAction{actionBase: base, Steps: steps}, nil
		default:
			return &MoveDroneAction{actionBase: base, Steps: steps}, nil
		}

	case ActionBuildWall, ActionBuildReinforcedWall, ActionBuildGift:
		d, err := direction()
		if err != nil {
			return nil, err
		}
		structure := map[ActionKind]Kind{
			ActionBuildWall:           KindWall,
			ActionBuildReinforcedWall: KindReinforcedWall,
			ActionBuildGift:           KindGift,
		}[kind]
		return &BuildAction{actionBase: base, Structure: structure, Direction: d, Fuel: req.Fuel, Metal: req.Metal}, nil

	case ActionUpgrade:
		if !req.Upgrade.Valid() {
			return nil, fmt.Errorf("%w: upgrade %q", ErrUnknownAction, req.Upgrade)
		}
		return &UpgradeAction{actionBase: base, Upgrade: req.Upgrade}, nil

	case ActionPurchaseModule, ActionSellModule:
		if !req.Module.Valid() {
			return nil, fmt.Errorf("%w: module %q", ErrUnknownAction, req.Module)
		}
		if kind == ActionPurchaseModule {
			return &PurchaseModuleAction{actionBase: base, Module: req.Module}, nil
		}
		return &SellModuleAction{actionBase: base, Module: req.Module}, nil

	case ActionBidEventCard:
		return &BidEventCardAction{actionBase: base, Amount: req.Amount}, nil

	case ActionExtractResource:
		d, err := direction()
		if err != nil {
			return nil, err
		}
		return &ExtractResourceAction{actionBase: base, Direction: d}, nil

	case ActionSendMessage:
		return &SendMessageAction{actionBase: base, To: req.TargetID, Text: req.Text}, nil

	case ActionPlaceWall:
		c, err := target()
		if err != nil {
			return nil, err
		}
		return &PlaceWallAction{actionBase: base, Target: c}, nil

	case ActionPlaceGift:
		c, err := target()
		if err != nil {
			return nil, err
		}
		return &PlaceGiftAction{actionBase: base, Target: c, Fuel: req.Fuel, Metal: req.Metal}, nil

	case ActionHarmTank:
		return &HarmTankAction{actionBase: base, TargetID: req.TargetID}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Type)
}

// DescribeAction renders an action as its wire form
func DescribeAction(a Action) ActionRequest {
	req := ActionRequest{Type: a.Kind(), ActorID: a.Actor(), Precedence: a.Precedence()}
	switch v := a.(type) {
	case *MoveAction:
		req.Steps = directionNamesOf(v.Steps)
	case *FireAction:
		req.Steps = directionNamesOf(v.Steps)
	case *MoveDroneAction:
		req.Steps = directionNamesOf(v.Steps)
	case *BuildAction:
		req.Direction = v.Direction.String()
		req.Fuel, req.Metal = v.Fuel, v.Metal
	case *UpgradeAction:
		req.Upgrade = v.Upgrade
	case *PurchaseModuleAction:
		req.Module = v.Module
	case *SellModuleAction:
		req.Module = v.Module
	case *BidEventCardAction:
		req.Amount = v.Amount
	case *ExtractResourceAction:
		req.Direction = v.Direction.String()
	case *SendMessageAction:
		req.TargetID, req.Text = v.To, v.Text
	case *PlaceWallAction:
		t := v.Target
		req.Target = &t
	case *PlaceGiftAction:
		t := v.Target
		req.Target = &t
		req.Fuel, req.Metal = v.Fuel, v.Metal
	case *HarmTankAction:
		req.TargetID = v.TargetID
	}
	return req
}

func directionNamesOf(steps []Direction) []string {
	out := make([]string, len(steps))
	for i, d := range steps {
		out[i] = d.String()
	}
	return out
}
