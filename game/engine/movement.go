package engine

import "fmt"

// MoveOutcome describes what happened while a tank drove along its steps
type MoveOutcome struct {
	From      Coordinates `json:"from"`
	To        Coordinates `json:"to"`
	Taken     int         `json:"taken"`
	Collected []EntityID  `json:"collected,omitempty"`
	HitWith   EntityID    `json:"hit_with,omitempty"`
	OffBoard  bool        `json:"off_board,omitempty"`
}

// Move drives tank along steps one cell at a time. More steps than the
// movement range is rejected without touching the board. Leaving the board
// or running into a solid entity reverts that step, damages the mover (and
// the occupant) and ends the move.
func (g *Game) Move(tank *Entity, steps []Direction) (MoveOutcome, error) {
	out := MoveOutcome{From: tank.Position, To: tank.Position}
	if tank.Tank == nil {
		return out, fmt.Errorf("%w: %s cannot drive", ErrIneligibleAction, tank.Name())
	}
	if len(steps) > tank.Tank.MovementRange {
		return out, fmt.Errorf("%w: %d steps exceeds movement range %d", ErrIneligibleAction, len(steps), tank.Tank.MovementRange)
	}

	for _, d := range steps {
		next := tank.Position.Step(d)

		if !g.Board.InBounds(next) {
			tank.Damage(g.Rules.CollisionDamage, "")
			out.OffBoard = true
			break
		}

		if occupant, ok := g.Board.SolidAt(next); ok && occupant.ID != tank.ID {
			tank.Damage(g.Rules.CollisionDamage, occupant.ID)
			occupant.Damage(g.Rules.CollisionDamage, tank.ID)
			out.HitWith = occupant.ID
			break
		}

		tank.Position = next
		out.Taken++
		for _, e := range g.Board.EntitiesAt(next) {
			if e.GiftLike() {
				g.collect(tank, e)
				out.Collected = append(out.Collected, e.ID)
			}
		}
	}

	out.To = tank.Position
	return out, nil
}

// collect hands a gift's loot to tank and breaks the gift
func (g *Game) collect(tank, gift *Entity) {
	tank.Tank.Fuel += gift.FuelDropped
	tank.Tank.Metal += gift.MetalDropped
	if gift.Kind == KindDeluxeGift {
		tank.Health += 1 + g.rng.Intn(2)
		if tank.Health > MaxHealth {
			tank.Health = MaxHealth
		}
		tank.Defense++
	}
	if gift.Gift != nil && gift.Gift.Module != nil {
		g.InstallModule(tank, *gift.Gift.Module)
	}
	gift.Destroy(tank.ID)
}

// FireOutcome lists the entities a shot touched
type FireOutcome struct {
	Path []Coordinates `json:"path"`
	Hits []Hit         `json:"hits,omitempty"`
}

// Hit is one entity struck by a bullet
type Hit struct {
	Target EntityID `json:"target"`
	Damage int      `json:"damage"`
}

// Fire traces a bullet cell by cell. Obstacles do not stop it: every live
// entity on every traced cell is hit. Gifts break outright; everything else
// loses GunDamage minus its defense.
func (g *Game) Fire(tank *Entity, steps []Direction) (FireOutcome, error) {
	var out FireOutcome
	if tank.Tank == nil {
		return out, fmt.Errorf("%w: %s has no gun", ErrIneligibleAction, tank.Name())
	}
	if len(steps) > tank.Tank.GunRange {
		return out, fmt.Errorf("%w: %d steps exceeds gun range %d", ErrIneligibleAction, len(steps), tank.Tank.GunRange)
	}

	bullet := tank.Position
	for _, d := range steps {
		bullet = bullet.Step(d)
		out.Path = append(out.Path, bullet)
		for _, target := range g.Board.EntitiesAt(bullet) {
			if target.ID == tank.ID || target.Kind == KindDeadTank {
				continue
			}
			if target.GiftLike() {
				target.Destroy(tank.ID)
				out.Hits = append(out.Hits, Hit{Target: target.ID, Damage: 1})
				continue
			}
			if target.Defense >= UnkillableDefense {
				continue
			}
			dmg := g.combatDamage(tank.Tank.GunDamage, target.Defense)
			if dmg == 0 {
				continue
			}
			target.Damage(dmg, tank.ID)
			out.Hits = append(out.Hits, Hit{Target: target.ID, Damage: dmg})
		}
	}
	return out, nil
}

// combatDamage is gun damage minus defense. Without a damage floor a
// negative result stands, so heavy armour turns a hit into repair.
func (g *Game) combatDamage(gunDamage, defense int) int {
	dmg := gunDamage - defense
	if dmg < 0 && g.Rules.DamageFloor {
		return 0
	}
	return dmg
}
