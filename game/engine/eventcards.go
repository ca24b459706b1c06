package engine

import "sort"

// EventCard names a one-shot random effect
type EventCard string

const (
	CardOverclock EventCard = "overclock"
	CardTailwind  EventCard = "tailwind"
	CardFortify   EventCard = "fortify"
	CardWindfall  EventCard = "windfall"
	CardScrapHeap EventCard = "scrap_heap"
	CardEMP       EventCard = "emp"
	CardDroneDrop EventCard = "drone_drop"
	CardRadarGift EventCard = "radar_gift"
)

type cardHook func(g *Game, tank *Entity)

type cardDef struct {
	card        EventCard
	rarity      int
	description string
	pre         cardHook
	post        cardHook
}

// cards is immutable; rarity is the relative draw weight
var cards = []cardDef{
	{
		card:        CardOverclock,
		rarity:      20,
		description: "Your gun deals 5 extra damage this turn.",
		pre:         func(g *Game, t *Entity) { t.Tank.GunDamage += GunDamageStep },
		post:        func(g *Game, t *Entity) { t.Tank.GunDamage -= GunDamageStep },
	},
	{
		card:        CardTailwind,
		rarity:      20,
		description: "Drive one extra cell this turn.",
		pre:         func(g *Game, t *Entity) { t.Tank.MovementRange++ },
		post:        func(g *Game, t *Entity) { t.Tank.MovementRange-- },
	},
	{
		card:        CardFortify,
		rarity:      15,
		description: "Gain 5 defense this turn.",
		pre:         func(g *Game, t *Entity) { t.Defense += 5 },
		post:        func(g *Game, t *Entity) { t.Defense -= 5 },
	},
	{
		card:        CardWindfall,
		rarity:      15,
		description: "Receive 10 fuel.",
		pre:         func(g *Game, t *Entity) { t.Tank.Fuel += 10 },
	},
	{
		card:        CardScrapHeap,
		rarity:      15,
		description: "Receive 10 metal.",
		pre:         func(g *Game, t *Entity) { t.Tank.Metal += 10 },
	},
	{
		card:        CardEMP,
		rarity:      8,
		description: "A random rival's actions fizzle this turn.",
		pre:         empPulse,
	},
	{
		card:        CardDroneDrop,
		rarity:      4,
		description: "A drone module and its drone are yours to keep.",
		pre:         func(g *Game, t *Entity) { g.InstallModule(t, ModuleDrone) },
	},
	{
		card:        CardRadarGift,
		rarity:      3,
		description: "A radar module is yours to keep.",
		pre:         func(g *Game, t *Entity) { g.InstallModule(t, ModuleRadar) },
	},
}

func lookupCard(c EventCard) (cardDef, bool) {
	for _, d := range cards {
		if d.card == c {
			return d, true
		}
	}
	return cardDef{}, false
}

// EventCards lists the catalogue in draw-table order
func EventCards() []EventCard {
	out := make([]EventCard, len(cards))
	for i, d := range cards {
		out[i] = d.card
	}
	return out
}

// Valid reports whether c is in the catalogue
func (c EventCard) Valid() bool {
	_, ok := lookupCard(c)
	return ok
}

// Rarity is the relative draw weight of c
func (c EventCard) Rarity() int {
	d, _ := lookupCard(c)
	return d.rarity
}

// Description is the text printed on the card
func (c EventCard) Description() string {
	d, _ := lookupCard(c)
	return d.description
}

// Persistent reports whether the card leaves something behind after its turn
func (c EventCard) Persistent() bool {
	return c == CardDroneDrop || c == CardRadarGift
}

// DrawEventCard picks a card weighted by rarity
func DrawEventCard(rng RandomSource) EventCard {
	total := 0
	for _, d := range cards {
		total += d.rarity
	}
	n := rng.Intn(total)
	for _, d := range cards {
		if n < d.rarity {
			return d.card
		}
		n -= d.rarity
	}
	return cards[len(cards)-1].card
}

// empPulse cancels a random rival's actions for the turn
func empPulse(g *Game, owner *Entity) {
	var rivals []*Entity
	for _, t := range g.Board.Tanks() {
		if t.ID != owner.ID && t.Alive() && !g.disrupted[t.ID] {
			rivals = append(rivals, t)
		}
	}
	if len(rivals) == 0 {
		return
	}
	victim := rivals[g.rng.Intn(len(rivals))]
	g.disrupted[victim.ID] = true
	g.AddNote("do not deliver a status card to %s, they were disrupted", victim.Name())
}

// activateCards moves pending cards into play and runs their pre-turn hooks
// in a stable order so a fixed random source gives a fixed outcome
func (g *Game) activateCards() {
	ids := make([]EntityID, 0, len(g.Pending))
	for id := range g.Pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		card := g.Pending[id]
		delete(g.Pending, id)
		tank, ok := g.Board.Get(id)
		if !ok || tank.Tank == nil || !tank.Alive() {
			g.AddNote("event card %s for %s discarded, the tank is gone", card, id)
			continue
		}
		def, ok := lookupCard(card)
		if !ok {
			continue
		}
		if def.pre != nil {
			def.pre(g, tank)
		}
		g.active[id] = card
		g.logger.Debug().Str("tank", tank.Name()).Str("card", string(card)).Msg("event card played")
	}
}

// expireCards runs post-turn hooks and clears the turn's disruptions
func (g *Game) expireCards() {
	ids := make([]EntityID, 0, len(g.active))
	for id := range g.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		def, _ := lookupCard(g.active[id])
		delete(g.active, id)
		tank, ok := g.Board.Get(id)
		if !ok || tank.Tank == nil || def.post == nil {
			continue
		}
		def.post(g, tank)
	}
	g.disrupted = make(map[EntityID]bool)
}

// settleBids awards one event card to the highest bidder and refunds the rest.
// Ties are broken at random.
func (g *Game) settleBids(report *TurnReport) {
	if len(g.Bids) == 0 {
		return
	}
	best := -1
	var leaders []EventCardBid
	for _, b := range g.Bids {
		switch {
		case b.Amount > best:
			best = b.Amount
			leaders = []EventCardBid{b}
		case b.Amount == best:
			leaders = append(leaders, b)
		}
	}
	winner := leaders[0]
	if len(leaders) > 1 {
		winner = leaders[g.rng.Intn(len(leaders))]
	}

	for _, b := range g.Bids {
		if b.TankID == winner.TankID {
			continue
		}
		if t, ok := g.Board.Get(b.TankID); ok && t.Tank != nil {
			t.Tank.Metal += b.Amount
		}
	}
	g.Bids = nil

	tank, ok := g.Board.Get(winner.TankID)
	if !ok || tank.Tank == nil {
		g.AddNote("event card bid of %d metal forfeited, %s is no longer a tank", winner.Amount, winner.TankID)
		return
	}
	card := DrawEventCard(g.rng)
	g.Pending[tank.ID] = card
	draw := CardDraw{TankID: tank.ID, Name: tank.Name(), Card: card, Bid: winner.Amount}
	g.EventCardsToPrint = append(g.EventCardsToPrint, draw)
	report.CardsDrawn = append(report.CardsDrawn, draw)
	g.AddNote("print event card %s for %s", card, tank.Name())
}

// CardView is the data a presentation layer needs to render a card
type CardView struct {
	Card        EventCard `json:"card"`
	Description string    `json:"description"`
	Rarity      int       `json:"rarity"`
	Persistent  bool      `json:"persistent"`
}

// Describe renders c for the view hook
func (c EventCard) Describe() CardView {
	return CardView{Card: c, Description: c.Description(), Rarity: c.Rarity(), Persistent: c.Persistent()}
}
