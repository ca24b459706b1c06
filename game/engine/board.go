package engine

import (
	"fmt"
	"strings"
)

// Board is the authoritative ordered collection of entities. Slots shift when
// entities are removed, so callers hold EntityIDs and re-resolve them.
type Board struct {
	Border   int
	entities []*Entity
	index    map[EntityID]int
}

// NewBoard creates an empty board with the given half-width
func NewBoard(border int) *Board {
	if border <= 0 {
		border = DefaultBorder
	}
	return &Board{
		Border: border,
		index:  make(map[EntityID]int),
	}
}

// Add appends an entity; an entity without an id is given one
func (b *Board) Add(e *Entity) error {
	if e == nil {
		return fmt.Errorf("entity cannot be nil")
	}
	if e.ID == "" {
		e.ID = NewEntityID()
	}
	if _, exists := b.index[e.ID]; exists {
		return fmt.Errorf("entity %s already on board", e.ID)
	}
	b.index[e.ID] = len(b.entities)
	b.entities = append(b.entities, e)
	return nil
}

// Remove deletes every entity matching pred and returns how many were removed
func (b *Board) Remove(pred func(*Entity) bool) int {
	kept := b.entities[:0]
	removed := 0
	for _, e := range b.entities {
		if pred(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(b.entities); i++ {
		b.entities[i] = nil
	}
	b.entities = kept
	if removed > 0 {
		b.reindex()
	}
	return removed
}

// Replace swaps the entity with id for e, keeping its slot
func (b *Board) Replace(id EntityID, e *Entity) error {
	slot, ok := b.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, id)
	}
	b.entities[slot] = e
	if e.ID != id {
		delete(b.index, id)
		b.index[e.ID] = slot
	}
	return nil
}

// Get resolves an id to its entity
func (b *Board) Get(id EntityID) (*Entity, bool) {
	slot, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return b.entities[slot], true
}

// Slot returns the current position of id in board order
func (b *Board) Slot(id EntityID) (int, bool) {
	slot, ok := b.index[id]
	return slot, ok
}

// Find resolves ref as an entity id, falling back to a case-insensitive tank
// or dead-tank name
func (b *Board) Find(ref string) (*Entity, bool) {
	if e, ok := b.Get(EntityID(ref)); ok {
		return e, true
	}
	for _, e := range b.entities {
		switch {
		case e.Tank != nil && strings.EqualFold(e.Tank.Name, ref):
			return e, true
		case e.Dead != nil && strings.EqualFold(e.Dead.Name, ref):
			return e, true
		}
	}
	return nil, false
}

// EntityAt returns the first live entity at c
func (b *Board) EntityAt(c Coordinates) (*Entity, bool) {
	for _, e := range b.entities {
		if e.Alive() && e.Position == c {
			return e, true
		}
	}
	return nil, false
}

// EntitiesAt returns every live entity at c in board order
func (b *Board) EntitiesAt(c Coordinates) []*Entity {
	var out []*Entity
	for _, e := range b.entities {
		if e.Alive() && e.Position == c {
			out = append(out, e)
		}
	}
	return out
}

// SolidAt returns the solid entity occupying c, if any. At most one solid
// entity may legally occupy a cell.
func (b *Board) SolidAt(c Coordinates) (*Entity, bool) {
	for _, e := range b.entities {
		if e.Solid() && e.Alive() && e.Position == c {
			return e, true
		}
	}
	return nil, false
}

// EntitiesWithin returns live entities on center's level whose distance to center is at most radius
func (b *Board) EntitiesWithin(center Coordinates, radius int) []*Entity {
	var out []*Entity
	for _, e := range b.entities {
		if !e.Alive() || e.Position.Level != center.Level {
			continue
		}
		if Distance(center, e.Position) <= radius {
			out = append(out, e)
		}
	}
	return out
}

// Tanks returns every KindTank entity in board order, including ones at
// zero health that the next lifecycle pass will promote
func (b *Board) Tanks() []*Entity {
	return b.OfKind(KindTank)
}

// OfKind returns every entity of kind k in board order
func (b *Board) OfKind(k Kind) []*Entity {
	var out []*Entity
	for _, e := range b.entities {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// All returns the entities in board order. The slice must not be modified.
func (b *Board) All() []*Entity {
	return b.entities
}

// Len returns the number of entities on the board
func (b *Board) Len() int {
	return len(b.entities)
}

// InBounds reports whether c is on this board
func (b *Board) InBounds(c Coordinates) bool {
	return InBounds(c, b.Border)
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	c := NewBoard(b.Border)
	for _, e := range b.entities {
		c.Add(e.Clone())
	}
	return c
}

func (b *Board) reindex() {
	b.index = make(map[EntityID]int, len(b.entities))
	for i, e := range b.entities {
		b.index[e.ID] = i
	}
}
