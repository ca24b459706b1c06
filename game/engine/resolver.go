package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Phase is a step of turn resolution
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseOrdering   Phase = "ordering"
	PhaseExecuting  Phase = "executing"
	PhaseSettling   Phase = "settling"
)

type queued struct {
	action Action
	tie    int64
}

// Resolve runs one turn: pending event cards fire, the queue is ordered by
// descending precedence with random tie-breaks, each action is checked,
// charged and executed against the board in that order, and the turn settles
// with the lifecycle pass, module effects, daily gifts, the event card
// auction, card expiry and daily messages before the day advances.
// Resolve never fails: bad actions are skipped and reported.
func (g *Game) Resolve() *TurnReport {
	report := &TurnReport{
		Turn:          g.Turn,
		Day:           g.Day,
		DailyMessages: make(map[EntityID]string),
	}
	log := g.logger.With().Int("turn", g.Turn).Str("day", string(g.Day)).Logger()

	g.phase = PhaseCollecting
	g.activateCards()

	g.phase = PhaseOrdering
	order := g.order()
	g.actions = nil

	g.phase = PhaseExecuting
	for i, q := range order {
		res := g.execute(q.action)
		res.Order = i + 1
		report.Results = append(report.Results, res)

		level, outcome := zerolog.DebugLevel, "ok"
		if !res.Success {
			level, outcome = zerolog.InfoLevel, res.Error
			g.AddNote("%s: %s failed: %s", displayName(res), res.Action, res.Error)
		}
		log.WithLevel(level).Str("tank", displayName(res)).
			Str("action", string(res.Action)).
			Int("precedence", res.Precedence).
			Str("outcome", outcome).
			Msg("action resolved")
	}

	g.phase = PhaseSettling
	g.tick(report)
	g.applyModuleEffects()
	g.spawnDailyGifts()
	g.settleBids(report)
	g.expireCards()
	g.composeDailyMessages(report)

	report.Notes = append([]string(nil), g.Notes...)
	report.Messages = append([]Message(nil), g.Messages...)
	g.Notes = nil
	g.Messages = nil

	g.Day = g.Day.Next()
	g.Turn++
	report.NextDay = g.Day
	g.phase = PhaseCollecting

	log.Info().Int("actions", len(report.Results)).Int("promotions", len(report.Promotions)).Msg("turn resolved")
	return report
}

// Phase reports where the resolver is; it is PhaseCollecting between turns
func (g *Game) Phase() Phase {
	if g.phase == "" {
		return PhaseCollecting
	}
	return g.phase
}

// order sorts the queue by descending precedence. Each action draws a tie key
// in submission order, so a fixed random source fixes the order.
func (g *Game) order() []queued {
	order := make([]queued, len(g.actions))
	for i, a := range g.actions {
		order[i] = queued{action: a, tie: g.rng.Int63()}
	}
	sort.SliceStable(order, func(i, j int) bool {
		pi, pj := order[i].action.Precedence(), order[j].action.Precedence()
		if pi != pj {
			return pi > pj
		}
		return order[i].tie < order[j].tie
	})
	return order
}

// execute checks, charges and runs a single action
func (g *Game) execute(a Action) ActionResult {
	res := ActionResult{ActorID: a.Actor(), Action: a.Kind(), Precedence: a.Precedence()}
	fail := func(err error) ActionResult {
		res.Error = err.Error()
		return res
	}

	actor, err := g.resolveActor(a)
	if err != nil {
		return fail(err)
	}
	res.ActorName = actor.Name()

	if err := a.Check(g, actor); err != nil {
		return fail(err)
	}
	cost, err := g.afford(a, actor)
	if err != nil {
		return fail(err)
	}
	g.charge(actor, cost)
	if err := a.Execute(g, actor); err != nil {
		g.refund(actor, cost)
		return fail(err)
	}
	res.Success = true
	res.Charged = cost
	return res
}

// resolveActor finds the acting entity and confirms it may issue a
func (g *Game) resolveActor(a Action) (*Entity, error) {
	actor, ok := g.Board.Get(a.Actor())
	if !ok {
		return nil, fmt.Errorf("%w: actor %s not found", ErrStaleReference, a.Actor())
	}
	if a.Precedence() < 0 {
		return nil, fmt.Errorf("%w: precedence cannot be negative", ErrIneligibleAction)
	}
	if a.Kind().ByDeadTank() {
		if actor.Kind != KindDeadTank {
			return nil, fmt.Errorf("%w: only dead tanks can %s", ErrIneligibleAction, a.Kind())
		}
		return actor, nil
	}
	switch {
	case actor.Kind == KindDeadTank:
		return nil, fmt.Errorf("%w: %s is dead", ErrIneligibleAction, actor.Name())
	case actor.Kind != KindTank:
		return nil, fmt.Errorf("%w: %s is not a tank", ErrIneligibleAction, actor.Name())
	case !actor.Alive():
		return nil, fmt.Errorf("%w: %s was destroyed earlier this turn", ErrStaleReference, actor.Name())
	case g.disrupted[actor.ID]:
		return nil, fmt.Errorf("%w: %s was disrupted", ErrIneligibleAction, actor.Name())
	}
	return actor, nil
}

// afford returns what the action will charge, or ErrInsufficientResources.
// On Tuesday the fuel cost is halved, rounding up; the precedence bid is not,
// and neither is fuel that ends up inside a built gift.
func (g *Game) afford(a Action, actor *Entity) (Cost, error) {
	cost := a.Cost(g, actor)
	if actor.Dead != nil {
		if a.Precedence() > 0 {
			return cost, fmt.Errorf("%w: dead tanks have no fuel to bid", ErrInsufficientResources)
		}
		if actor.Dead.Essence < cost.Essence || actor.Dead.Energy < cost.Energy {
			return cost, fmt.Errorf("%w: needs %d essence and %d energy, has %d and %d",
				ErrInsufficientResources, cost.Essence, cost.Energy, actor.Dead.Essence, actor.Dead.Energy)
		}
		return cost, nil
	}

	fuel := cost.Fuel
	if g.Day == Tuesday && !storesFuel(a) {
		fuel = ceilHalf(fuel)
	}
	cost.Fuel = fuel + a.Precedence()
	if actor.Tank.Fuel < cost.Fuel || actor.Tank.Metal < cost.Metal {
		return cost, fmt.Errorf("%w: needs %d fuel and %d metal, has %d and %d",
			ErrInsufficientResources, cost.Fuel, cost.Metal, actor.Tank.Fuel, actor.Tank.Metal)
	}
	return cost, nil
}

// storesFuel reports whether the action's fuel cost is moved into a new
// entity rather than burnt
func storesFuel(a Action) bool {
	b, ok := a.(*BuildAction)
	return ok && b.Structure == KindGift
}

func (g *Game) charge(actor *Entity, c Cost) {
	if actor.Dead != nil {
		actor.Dead.Essence -= c.Essence
		actor.Dead.Energy -= c.Energy
		return
	}
	actor.Tank.Fuel -= c.Fuel
	actor.Tank.Metal -= c.Metal
}

func (g *Game) refund(actor *Entity, c Cost) {
	g.charge(actor, Cost{Fuel: -c.Fuel, Metal: -c.Metal, Essence: -c.Essence, Energy: -c.Energy})
}

// spawnDailyGifts drops the configured number of gifts on random empty ground cells
func (g *Game) spawnDailyGifts() {
	border := g.Board.Border
	side := 2*border + 1
	for n := 0; n < g.Rules.DailyGifts; n++ {
		for attempt := 0; attempt < 20; attempt++ {
			at := Coordinates{X: g.rng.Intn(side) - border, Y: g.rng.Intn(side) - border}
			if _, taken := g.Board.EntityAt(at); taken {
				continue
			}
			g.Board.Add(NewGift(at, g.Rules.DailyGiftFuel, g.Rules.DailyGiftMetal))
			g.AddNote("place a gift at %s", at)
			break
		}
	}
}

// composeDailyMessages writes each live tank's one-shot message for the coming day
func (g *Game) composeDailyMessages(report *TurnReport) {
	next := g.Day.Next()
	offer := ModuleOffer(g.seed, next)
	for _, tank := range g.Board.Tanks() {
		lines := []string{fmt.Sprintf("Tomorrow is %s. The module for sale is %s for %d metal.", next, offer, offer.Price())}
		if spy := g.spyReport(tank); spy != "" {
			lines = append(lines, spy)
		}
		for _, m := range g.Messages {
			if m.To == tank.ID {
				from := string(m.From)
				if sender, ok := g.Board.Get(m.From); ok {
					from = sender.Name()
				}
				lines = append(lines, fmt.Sprintf("Message from %s: %s", from, m.Text))
			}
		}
		msg := strings.Join(lines, "\n")
		tank.Tank.DailyMessage = msg
		report.DailyMessages[tank.ID] = msg
	}
}

func displayName(res ActionResult) string {
	if res.ActorName != "" {
		return res.ActorName
	}
	return string(res.ActorID)
}
