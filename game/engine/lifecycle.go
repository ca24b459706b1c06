package engine

// Essence converts a tank's final stats into the dead tank's one-time score
func Essence(tank *Entity) int {
	t := tank.Tank
	score := 10*t.MovementRange +
		10*(MaxUpgradeLevel+1-t.MovementCost) +
		10*t.GunRange +
		t.GunDamage +
		10*(MaxUpgradeLevel+1-t.GunCost) +
		5*tank.Defense +
		50*t.Kills +
		t.Fuel + t.Metal
	if score < 0 {
		return 0
	}
	return score / EssenceNormalization
}

// tick runs the lifecycle pass over every entity in board order: gravity
// first, then the death check. Dead tanks ride along with their killer
// instead of falling. Entities added during the pass are not visited.
func (g *Game) tick(report *TurnReport) {
	entities := append([]*Entity(nil), g.Board.All()...)
	for _, e := range entities {
		if e.Kind == KindDeadTank {
			g.followKiller(e)
			continue
		}
		g.fall(e)
		if e.Alive() {
			continue
		}
		if e.Kind == KindTank {
			report.Promotions = append(report.Promotions, g.promote(e))
			continue
		}
		if !e.GiftLike() && e.FuelDropped+e.MetalDropped > 0 {
			g.Board.Add(NewGift(e.Position, e.FuelDropped, e.MetalDropped))
		}
	}
	g.Board.Remove(func(e *Entity) bool { return !e.Alive() })
}

// fall drops an unsupported entity one level. Any live entity other than a
// gift directly beneath holds it up.
func (g *Game) fall(e *Entity) {
	if e.Position.Level <= 0 || !e.Alive() {
		return
	}
	below := e.Position
	below.Level--
	for _, support := range g.Board.EntitiesAt(below) {
		if support.ID != e.ID && !support.GiftLike() {
			return
		}
	}
	e.Position = below
	e.Damage(g.Rules.FallDamage, "")
	g.logger.Debug().Str("entity", e.Name()).Stringer("to", below).Msg("entity fell")
}

// followKiller moves a dead tank onto its killer's cell
func (g *Game) followKiller(dead *Entity) {
	if dead.Dead == nil || dead.Dead.KilledBy == "" {
		return
	}
	if killer, ok := g.Board.Get(dead.Dead.KilledBy); ok && killer.Alive() {
		dead.Position = killer.Position
	}
}

// promote replaces a dying tank, in its own slot and under its own id, with a
// dead tank. Its resources drop as a deluxe gift when they reach the threshold.
func (g *Game) promote(tank *Entity) Promotion {
	t := tank.Tank
	p := Promotion{
		TankID:    tank.ID,
		Name:      t.Name,
		KilledBy:  tank.LastDamagedBy,
		Essence:   Essence(tank),
		DroppedAt: tank.Position,
	}

	if t.Fuel+t.Metal >= g.Rules.DeluxeThreshold {
		g.Board.Add(NewDeluxeGift(tank.Position, t.Fuel, t.Metal))
		p.Deluxe = true
	} else if tank.FuelDropped+tank.MetalDropped > 0 {
		g.Board.Add(NewGift(tank.Position, tank.FuelDropped, tank.MetalDropped))
	}

	dead := &Entity{
		ID:         tank.ID,
		Kind:       KindDeadTank,
		Appearance: Appearance{Fill: "#555555", Stroke: tank.Appearance.Stroke, Symbol: tank.Appearance.Symbol, Glyph: "dead_tank"},
		Position:   tank.Position,
		Health:     1,
		Dead: &DeadTankState{
			Name:     t.Name,
			KilledBy: tank.LastDamagedBy,
			Essence:  p.Essence,
			Energy:   StartingEnergy,
		},
	}
	g.Board.Replace(tank.ID, dead)

	if drone := g.droneOf(tank.ID); drone != nil {
		drone.Destroy(tank.ID)
	}
	delete(g.Pending, tank.ID)

	if killer, ok := g.Board.Get(tank.LastDamagedBy); ok {
		p.KillerName = killer.Name()
		if killer.Tank != nil && killer.ID != tank.ID {
			killer.Tank.Kills++
			for _, other := range g.Board.OfKind(KindDeadTank) {
				if other.ID != tank.ID && other.Dead.KilledBy == killer.ID {
					other.Dead.Energy++
				}
			}
		}
	}

	g.logger.Info().Str("tank", p.Name).Str("killer", p.KillerName).Int("essence", p.Essence).Bool("deluxe", p.Deluxe).Msg("tank destroyed")
	return p
}
