package engine

import (
	"fmt"
	"math"
	"strings"
)

// Coordinates locate an entity on the board; Level is the vertical layer
type Coordinates struct {
	X     int `json:"x" yaml:"x"`
	Y     int `json:"y" yaml:"y"`
	Level int `json:"level" yaml:"level"`
}

// Direction is a single-cell step
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	North     = Direction{0, 1}
	South     = Direction{0, -1}
	East      = Direction{1, 0}
	West      = Direction{-1, 0}
	NorthEast = Direction{1, 1}
	NorthWest = Direction{-1, 1}
	SouthEast = Direction{1, -1}
	SouthWest = Direction{-1, -1}
)

var directionNames = map[string]Direction{
	"north": North, "n": North, "up": North,
	"south": South, "s": South, "down": South,
	"east": East, "e": East, "right": East,
	"west": West, "w": West, "left": West,
	"northeast": NorthEast, "ne": NorthEast,
	"northwest": NorthWest, "nw": NorthWest,
	"southeast": SouthEast, "se": SouthEast,
	"southwest": SouthWest, "sw": SouthWest,
}

// ParseDirection converts a direction name into a step
func ParseDirection(name string) (Direction, error) {
	d, ok := directionNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Direction{}, fmt.Errorf("%w: %q", ErrInvalidDirection, name)
	}
	return d, nil
}

// ParseDirections converts a list of direction names
func ParseDirections(names []string) ([]Direction, error) {
	steps := make([]Direction, 0, len(names))
	for _, n := range names {
		d, err := ParseDirection(n)
		if err != nil {
			return nil, err
		}
		steps = append(steps, d)
	}
	return steps, nil
}

// Step returns the coordinates one step away in direction d, on the same level
func (c Coordinates) Step(d Direction) Coordinates {
	return Coordinates{X: c.X + d.DX, Y: c.Y + d.DY, Level: c.Level}
}

// Walk applies every step in order
func (c Coordinates) Walk(steps []Direction) Coordinates {
	for _, d := range steps {
		c = c.Step(d)
	}
	return c
}

// SameCell reports whether two coordinates share x, y and level
func (c Coordinates) SameCell(o Coordinates) bool {
	return c == o
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%d,%d,L%d)", c.X, c.Y, c.Level)
}

// Distance is the Euclidean distance over x and y rounded to the nearest integer
func Distance(a, b Coordinates) int {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return int(math.Round(math.Sqrt(dx*dx + dy*dy)))
}

// InBounds reports whether c lies within the square board of half-width border
func InBounds(c Coordinates, border int) bool {
	return abs(c.X) <= border && abs(c.Y) <= border
}

// ceilHalf rounds n/2 up
func ceilHalf(n int) int {
	if n <= 0 {
		return n
	}
	return (n + 1) / 2
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// String returns the canonical name of d, or its vector when it has none
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	case NorthEast:
		return "northeast"
	case NorthWest:
		return "northwest"
	case SouthEast:
		return "southeast"
	case SouthWest:
		return "southwest"
	}
	return fmt.Sprintf("(%d,%d)", d.DX, d.DY)
}
