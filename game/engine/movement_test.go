package engine

import (
	"bytes"
	"errors"
	"testing"
)

func TestMove_TooManyStepsLeavesBoardUntouched(t *testing.T) {
	g := newTestGame(t)
	tank := placeTank(t, g, "alpha", Coordinates{})
	g.Board.Add(NewGift(Coordinates{Y: 1}, 10, 0))

	before, err := EncodeSnapshot(g)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	_, err = g.Move(tank, []Direction{North, North})
	if !errors.Is(err, ErrIneligibleAction) {
		t.Fatalf("Expected ErrIneligibleAction, got %v", err)
	}

	after, _ := EncodeSnapshot(g)
	if !bytes.Equal(before, after) {
		t.Error("Expected rejected move to leave the board unchanged")
	}
}

func TestMove_CollectsGift(t *testing.T) {
	g := newTestGame(t)
	tank := placeTank(t, g, "alpha", Coordinates{})
	gift := NewGift(Coordinates{Y: 1}, 10, 0)
	g.Board.Add(gift)
	fuel, metal := tank.Tank.Fuel, tank.Tank.Metal

	out, err := g.Move(tank, []Direction{North})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if tank.Tank.Fuel != fuel+10 {
		t.Errorf("Expected fuel %d, got %d", fuel+10, tank.Tank.Fuel)
	}
	if tank.Tank.Metal != metal {
		t.Errorf("Expected metal unchanged at %d, got %d", metal, tank.Tank.Metal)
	}
	if len(out.Collected) != 1 {
		t.Errorf("Expected 1 collected gift, got %d", len(out.Collected))
	}

	if _, ok := g.Board.Get(gift.ID); !ok {
		t.Error("Expected gift to stay on the board until the lifecycle pass")
	}
	g.tick(&TurnReport{})
	if _, ok := g.Board.Get(gift.ID); ok {
		t.Error("Expected gift to be removed by the lifecycle pass")
	}
}

func TestMove_DeluxeGiftHealsAndArmors(t *testing.T) {
	g := newTestGame(t)
	tank := placeTank(t, g, "alpha", Coordinates{})
	tank.Health = 50
	g.Board.Add(NewDeluxeGift(Coordinates{Y: 1}, 0, 0))

	if _, err := g.Move(tank, []Direction{North}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if tank.Health != 51 && tank.Health != 52 {
		t.Errorf("Expected health 51 or 52, got %d", tank.Health)
	}
	if tank.Defense != 1 {
		t.Errorf("Expected defense 1, got %d", tank.Defense)
	}
}

func TestMove_DeluxeGiftHealingIsCapped(t *testing.T) {
	g := newTestGame(t)
	tank := placeTank(t, g, "alpha", Coordinates{})
	g.Board.Add(NewDeluxeGift(Coordinates{Y: 1}, 0, 0))

	g.Move(tank, []Direction{North})
	if tank.Health != MaxHealth {
		t.Errorf("Expected health capped at %d, got %d", MaxHealth, tank.Health)
	}
}

func TestMove_GiftModulePayloadInstalls(t *testing.T) {
	g := newTestGame(t)
	tank := placeTank(t, g, "alpha", Coordinates{})
	gift := NewGift(Coordinates{Y: 1}, 0, 0)
	radar := ModuleRadar
	gift.Gift.Module = &radar
	g.Board.Add(gift)

	g.Move(tank, []Direction{North})
	if !tank.Tank.HasModule(ModuleRadar) {
		t.Error("Expected radar module from gift payload")
	}
}

func TestMove_OffBoardRevertsAndDamages(t *testing.T) {
	g := newTestGame(t)
	tank := placeTank(t, g, "alpha", Coordinates{X: DefaultBorder})
	tank.Tank.MovementRange = 2

	out, err := g.Move(tank, []Direction{East, North})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !out.OffBoard {
		t.Error("Expected off-board outcome")
	}
	if tank.Position != (Coordinates{X: DefaultBorder}) {
		t.Errorf("Expected tank to stay at the edge, got %s", tank.Position)
	}
	if tank.Health != MaxHealth-10 {
		t.Errorf("Expected 10 damage, got health %d", tank.Health)
	}
}

func TestMove_CollisionDamagesBoth(t *testing.T) {
	g := newTestGame(t)
	tank := placeTank(t, g, "alpha", Coordinates{})
	other := placeTank(t, g, "bravo", Coordinates{Y: 1})
	tank.Tank.MovementRange = 3

	out, _ := g.Move(tank, []Direction{North, North, North})
	if out.HitWith != other.ID {
		t.Errorf("Expected collision with bravo, got %q", out.HitWith)
	}
	if out.Taken != 0 {
		t.Errorf("Expected no completed steps, got %d", out.Taken)
	}
	if tank.Position != (Coordinates{}) {
		t.Errorf("Expected mover reverted to origin, got %s", tank.Position)
	}
	if tank.Health != MaxHealth-10 || other.Health != MaxHealth-10 {
		t.Errorf("Expected both tanks at %d, got %d and %d", MaxHealth-10, tank.Health, other.Health)
	}
}

func TestMove_PassesThroughDeadTanksAndDrones(t *testing.T) {
	g := newTestGame(t)
	tank := placeTank(t, g, "alpha", Coordinates{})
	tank.Tank.MovementRange = 2
	g.Board.Add(&Entity{ID: NewEntityID(), Kind: KindDeadTank, Position: Coordinates{Y: 1}, Health: 1, Dead: &DeadTankState{Name: "ghost"}})
	g.Board.Add(NewDrone(Coordinates{Y: 2}, "someone"))

	g.Move(tank, []Direction{North, North})
	if tank.Position != (Coordinates{Y: 2}) {
		t.Errorf("Expected tank at (0,2), got %s", tank.Position)
	}
	if tank.Health != MaxHealth {
		t.Errorf("Expected no damage, got health %d", tank.Health)
	}
}

func TestFire_DamageMinusDefense(t *testing.T) {
	g := newTestGame(t)
	shooter := placeTank(t, g, "alpha", Coordinates{})
	shooter.Tank.GunRange = 3
	target := placeTank(t, g, "bravo", Coordinates{Y: 3})
	target.Defense = 3

	if _, err := g.Fire(shooter, []Direction{North, North, North}); err != nil {
		t.Fatalf("Fire failed: %v", err)
	}
	if target.Health != MaxHealth-7 {
		t.Errorf("Expected health %d, got %d", MaxHealth-7, target.Health)
	}
}

func TestFire_HitsEveryCellOnThePath(t *testing.T) {
	g := newTestGame(t)
	shooter := placeTank(t, g, "alpha", Coordinates{})
	shooter.Tank.GunRange = 3
	wall := NewWall(Coordinates{Y: 1})
	gift := NewGift(Coordinates{Y: 2}, 5, 5)
	g.Board.Add(wall)
	g.Board.Add(gift)
	target := placeTank(t, g, "bravo", Coordinates{Y: 3})

	out, _ := g.Fire(shooter, []Direction{North, North, North})
	if len(out.Hits) != 3 {
		t.Errorf("Expected 3 hits, got %d", len(out.Hits))
	}
	if wall.Alive() {
		t.Error("Expected wall destroyed by 10 damage")
	}
	if gift.Alive() {
		t.Error("Expected gift destroyed by any hit")
	}
	if target.Health != MaxHealth-10 {
		t.Errorf("Expected target behind obstacles to take 10, got health %d", target.Health)
	}
	if wall.LastDamagedBy != shooter.ID {
		t.Errorf("Expected wall killer to be shooter, got %s", wall.LastDamagedBy)
	}
}

func TestFire_OverwhelmingDefense(t *testing.T) {
	tests := []struct {
		name     string
		floor    bool
		expected int
	}{
		{"raw arithmetic heals", false, 55},
		{"floored", true, 50},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rules := DefaultRules()
			rules.DamageFloor = test.floor
			g := NewGame(rules, WithSeed(7))
			shooter := placeTank(t, g, "alpha", Coordinates{})
			target := placeTank(t, g, "bravo", Coordinates{Y: 1})
			target.Health = 50
			target.Defense = 15

			g.Fire(shooter, []Direction{North})
			if target.Health != test.expected {
				t.Errorf("Expected health %d, got %d", test.expected, target.Health)
			}
		})
	}
}

func TestFire_ReinforcedWallShrugsOffHits(t *testing.T) {
	g := newTestGame(t)
	shooter := placeTank(t, g, "alpha", Coordinates{})
	wall := NewReinforcedWall(Coordinates{Y: 1})
	g.Board.Add(wall)

	g.Fire(shooter, []Direction{North})
	if wall.Health != DefaultWallHealth {
		t.Errorf("Expected reinforced wall untouched, got health %d", wall.Health)
	}
}

func TestFire_PassesOverDeadTanks(t *testing.T) {
	g := newTestGame(t)
	shooter := placeTank(t, g, "alpha", Coordinates{})
	target := placeTank(t, g, "bravo", Coordinates{Y: 1})
	wreck := &Entity{
		ID:       NewEntityID(),
		Kind:     KindDeadTank,
		Position: target.Position,
		Health:   1,
		Dead:     &DeadTankState{Name: "ghost", KilledBy: target.ID},
	}
	g.Board.Add(wreck)

	out, err := g.Fire(shooter, []Direction{North})
	if err != nil {
		t.Fatalf("Fire failed: %v", err)
	}
	if wreck.Health != 1 {
		t.Errorf("Expected dead tank untouched, got health %d", wreck.Health)
	}
	if len(out.Hits) != 1 || out.Hits[0].Target != target.ID {
		t.Errorf("Expected a single hit on bravo, got %+v", out.Hits)
	}
}
