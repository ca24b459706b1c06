package engine

import (
	"encoding/json"
	"fmt"
)

// SnapshotVersion is bumped whenever the persisted layout changes
const SnapshotVersion = 1

// Snapshot is the persisted form of a game: the board and the calendar.
// The random seed, queued actions and pending cards are not saved; a
// restored game draws a fresh seed.
type Snapshot struct {
	Version  int       `json:"version"`
	Name     string    `json:"name,omitempty"`
	Day      Weekday   `json:"day"`
	Turn     int       `json:"turn"`
	Rules    Rules     `json:"rules"`
	Entities []*Entity `json:"entities"`
}

// TakeSnapshot copies the persisted state of g
func (g *Game) TakeSnapshot() *Snapshot {
	s := &Snapshot{
		Version:  SnapshotVersion,
		Name:     g.Name,
		Day:      g.Day,
		Turn:     g.Turn,
		Rules:    g.Rules,
		Entities: make([]*Entity, 0, g.Board.Len()),
	}
	for _, e := range g.Board.All() {
		s.Entities = append(s.Entities, e.Clone())
	}
	return s
}

// EncodeSnapshot serializes g as indented JSON
func EncodeSnapshot(g *Game) ([]byte, error) {
	return json.MarshalIndent(g.TakeSnapshot(), "", "  ")
}

// DecodeSnapshot restores a game from EncodeSnapshot output
func DecodeSnapshot(data []byte, opts ...Option) (*Game, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s.Restore(opts...)
}

// Restore builds a game from the snapshot after checking every entity carries
// the payload its kind requires
func (s *Snapshot) Restore(opts ...Option) (*Game, error) {
	if s.Version > SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", s.Version, SnapshotVersion)
	}
	day := Monday
	if s.Day != "" {
		parsed, err := ParseWeekday(string(s.Day))
		if err != nil {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
		day = parsed
	}

	g := NewGame(s.Rules, opts...)
	g.Name = s.Name
	g.Day = day
	g.Turn = s.Turn
	for i, e := range s.Entities {
		if err := checkPayload(e); err != nil {
			return nil, fmt.Errorf("restore snapshot: entity %d: %w", i, err)
		}
		if err := g.Board.Add(e.Clone()); err != nil {
			return nil, fmt.Errorf("restore snapshot: entity %d: %w", i, err)
		}
	}
	return g, nil
}

func checkPayload(e *Entity) error {
	if e == nil {
		return fmt.Errorf("entity is null")
	}
	switch e.Kind {
	case KindTank:
		if e.Tank == nil {
			return fmt.Errorf("tank %s has no tank state", e.ID)
		}
	case KindDeadTank:
		if e.Dead == nil {
			return fmt.Errorf("dead tank %s has no dead state", e.ID)
		}
	case KindDrone:
		if e.Drone == nil {
			return fmt.Errorf("drone %s has no owner", e.ID)
		}
	case KindGift, KindDeluxeGift:
		if e.Gift == nil {
			e.Gift = &GiftState{}
		}
	case KindWall, KindReinforcedWall:
	default:
		return fmt.Errorf("unknown kind %q", e.Kind)
	}
	return nil
}
