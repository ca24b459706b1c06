package engine

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"
	"time"

	"github.com/rs/zerolog"
)

// RandomSource is the single source of randomness used by a game.
// *math/rand.Rand satisfies it; tests inject one built from a fixed seed.
type RandomSource interface {
	Int63() int64
	Intn(n int) int
}

// EventCardBid is a tank's standing bid for this turn's event card
type EventCardBid struct {
	TankID EntityID `json:"tank_id"`
	Amount int      `json:"amount"`
}

// Game is the per-session simulation context: board, calendar, queues and
// randomness. Every component that needs board or day access receives it.
type Game struct {
	Name              string
	Board             *Board
	Day               Weekday
	Turn              int
	Rules             Rules
	Messages          []Message
	Notes             []string
	EventCardsToPrint []CardDraw
	Bids              []EventCardBid
	Pending           map[EntityID]EventCard

	actions   []Action
	phase     Phase
	active    map[EntityID]EventCard
	disrupted map[EntityID]bool
	seed      int64
	rng       RandomSource
	logger    zerolog.Logger
}

// Option configures a Game at construction
type Option func(*Game)

// WithSeed pins the session seed and derives the random source from it
func WithSeed(seed int64) Option {
	return func(g *Game) {
		g.seed = seed
		g.rng = mathrand.New(mathrand.NewSource(seed))
	}
}

// WithRandom swaps the random source; the seed used for price jitter and
// module offers is left unchanged
func WithRandom(src RandomSource) Option {
	return func(g *Game) {
		g.rng = src
	}
}

// WithLogger attaches a logger
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) {
		g.logger = logger.With().Str("component", "Game").Logger()
	}
}

// NewGame creates an empty game on the given rules
func NewGame(rules Rules, opts ...Option) *Game {
	if rules.Border <= 0 {
		rules.Border = DefaultBorder
	}
	g := &Game{
		Board:     NewBoard(rules.Border),
		Day:       Monday,
		Rules:     rules,
		Pending:   make(map[EntityID]EventCard),
		active:    make(map[EntityID]EventCard),
		disrupted: make(map[EntityID]bool),
		logger:    zerolog.Nop(),
	}
	WithSeed(freshSeed())(g)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGameFromConfig builds the opening board described by config
func NewGameFromConfig(config *GameConfig, opts ...Option) (*Game, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	g := NewGame(config.Rules, opts...)
	g.Name = config.Name

	for _, c := range config.Walls {
		g.Board.Add(NewWall(c))
	}
	for _, c := range config.ReinforcedWalls {
		g.Board.Add(NewReinforcedWall(c))
	}
	for _, gp := range config.Gifts {
		gift := NewGift(gp.Position, gp.Fuel, gp.Metal)
		if gp.Deluxe {
			gift = NewDeluxeGift(gp.Position, gp.Fuel, gp.Metal)
		}
		if gp.Module != "" {
			m := gp.Module
			gift.Gift.Module = &m
		}
		g.Board.Add(gift)
	}
	for _, spec := range config.Tanks {
		if _, err := g.AddTank(spec, config.StartingTank); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddTank places a new player tank built from template
func (g *Game) AddTank(spec TankSpec, template TankTemplate) (*Entity, error) {
	if !g.Board.InBounds(spec.Position) {
		return nil, fmt.Errorf("%w: %s is out of bounds", ErrInvalidPlacement, spec.Position)
	}
	if occupant, ok := g.Board.SolidAt(spec.Position); ok {
		return nil, fmt.Errorf("%w: %s is occupied by %s", ErrInvalidPlacement, spec.Position, occupant.Name())
	}
	tank := NewTank(spec.Name, spec.Position, template.State(), template.Health)
	tank.Defense = template.Defense
	tank.Tank.Email = spec.Email
	tank.Tank.Phone = spec.Phone
	tank.Tank.Demographic = spec.Demographic
	tank.Tank.Science = spec.Science
	if err := g.Board.Add(tank); err != nil {
		return nil, err
	}
	return tank, nil
}

// Seed returns the session seed. It is never persisted.
func (g *Game) Seed() int64 {
	return g.seed
}

// Submit queues an action for the next resolution
func (g *Game) Submit(a Action) {
	g.actions = append(g.actions, a)
}

// PendingActions returns the queued actions in submission order
func (g *Game) PendingActions() []Action {
	return append([]Action(nil), g.actions...)
}

// ClearActions drops every queued action
func (g *Game) ClearActions() {
	g.actions = nil
}

// AddNote appends an instruction for the human game operator
func (g *Game) AddNote(format string, args ...any) {
	g.Notes = append(g.Notes, fmt.Sprintf(format, args...))
}

// ModuleOffer returns the module for sale today
func (g *Game) ModuleOffer() ModuleKind {
	return ModuleOffer(g.seed, g.Day)
}

// Logger returns the game logger
func (g *Game) Logger() zerolog.Logger {
	return g.logger
}

// Clone returns a deep copy of the board state sharing no entity pointers.
// Queues and randomness are not copied.
func (g *Game) Clone() *Game {
	c := NewGame(g.Rules, WithSeed(g.seed))
	c.Name = g.Name
	c.Board = g.Board.Clone()
	c.Day = g.Day
	c.Turn = g.Turn
	c.logger = g.logger
	return c
}

// freshSeed draws a seed from the operating system, falling back to the clock
func freshSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) & (1<<63 - 1))
}
