package main

import (
	"github.com/wricardo/tank-tactics/game/engine"
	"github.com/wricardo/tank-tactics/game/service"
)

var compass = []engine.Direction{
	engine.North, engine.South, engine.East, engine.West,
	engine.NorthEast, engine.NorthWest, engine.SouthEast, engine.SouthWest,
}

// Strategy picks one action per tank per turn: shoot when a rival is in a
// clean line of fire, otherwise drive toward the nearest gift, otherwise
// close in on the nearest rival.
type Strategy struct {
	board   *service.BoardView
	blocked map[engine.Coordinates]bool
	gifts   []engine.Coordinates
}

// NewStrategy indexes the board for one planning pass
func NewStrategy(board *service.BoardView) *Strategy {
	s := &Strategy{
		board:   board,
		blocked: make(map[engine.Coordinates]bool),
	}
	for _, e := range board.Entities {
		if e.Position.Level != 0 {
			continue
		}
		if e.Solid() {
			s.blocked[e.Position] = true
		}
		if e.GiftLike() {
			s.gifts = append(s.gifts, e.Position)
		}
	}
	return s
}

// NextAction returns the action tank should queue, or false when it should
// sit the turn out
func (s *Strategy) NextAction(tank service.TankView) (engine.ActionRequest, bool) {
	if tank.Fuel >= tank.GunCost {
		if steps, ok := s.lineOfFire(tank); ok {
			return engine.ActionRequest{Type: engine.ActionFire, ActorID: tank.ID, Steps: steps}, true
		}
	}

	if tank.Fuel < tank.MovementCost || tank.MovementRange == 0 {
		return engine.ActionRequest{}, false
	}

	if path := s.pathToNearest(tank.Position, s.gifts, false); len(path) > 0 {
		return s.move(tank, path), true
	}

	var rivals []engine.Coordinates
	for _, other := range s.board.Tanks {
		if other.ID != tank.ID {
			rivals = append(rivals, other.Position)
		}
	}
	if path := s.pathToNearest(tank.Position, rivals, true); len(path) > 0 {
		return s.move(tank, path), true
	}

	return engine.ActionRequest{}, false
}

func (s *Strategy) move(tank service.TankView, path []string) engine.ActionRequest {
	if len(path) > tank.MovementRange {
		path = path[:tank.MovementRange]
	}
	return engine.ActionRequest{Type: engine.ActionMove, ActorID: tank.ID, Steps: path}
}

// lineOfFire finds a rival the tank can reach by stepping diagonally first
// and then straight, within gun range. Bullets pass through walls, so only
// distance matters.
func (s *Strategy) lineOfFire(tank service.TankView) ([]string, bool) {
	var best []string
	for _, other := range s.board.Tanks {
		if other.ID == tank.ID || other.Position.Level != tank.Position.Level {
			continue
		}
		steps := lineTo(tank.Position, other.Position)
		if len(steps) == 0 || len(steps) > tank.GunRange {
			continue
		}
		if best == nil || len(steps) < len(best) {
			best = steps
		}
	}
	return best, best != nil
}

func lineTo(from, to engine.Coordinates) []string {
	var steps []string
	for from.X != to.X || from.Y != to.Y {
		d := engine.Direction{DX: sign(to.X - from.X), DY: sign(to.Y - from.Y)}
		steps = append(steps, d.String())
		from = from.Step(d)
	}
	return steps
}

// pathToNearest runs a breadth first search over the ground level and
// returns the step names toward the closest goal. With adjacent set the
// goal cells themselves are solid and the path stops next to one.
func (s *Strategy) pathToNearest(start engine.Coordinates, goals []engine.Coordinates, adjacent bool) []string {
	if len(goals) == 0 {
		return nil
	}
	isGoal := make(map[engine.Coordinates]bool, len(goals))
	for _, g := range goals {
		isGoal[g] = true
	}

	type node struct {
		pos  engine.Coordinates
		path []string
	}
	visited := map[engine.Coordinates]bool{start: true}
	queue := []node{{pos: start}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range compass {
			next := current.pos.Step(d)
			if visited[next] || !engine.InBounds(next, s.board.Border) {
				continue
			}
			visited[next] = true

			if adjacent && isGoal[next] {
				return current.path
			}
			if s.blocked[next] {
				continue
			}

			path := make([]string, len(current.path), len(current.path)+1)
			copy(path, current.path)
			path = append(path, d.String())

			if !adjacent && isGoal[next] {
				return path
			}
			queue = append(queue, node{pos: next, path: path})
		}
	}
	return nil
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
