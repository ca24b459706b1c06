package engine

import (
	"errors"
	"testing"
)

func TestKindConstants(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindWall, "wall"},
		{KindReinforcedWall, "reinforced_wall"},
		{KindGift, "gift"},
		{KindDeluxeGift, "deluxe_gift"},
		{KindDrone, "drone"},
		{KindTank, "tank"},
		{KindDeadTank, "dead_tank"},
	}

	for _, test := range tests {
		if string(test.kind) != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, string(test.kind))
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Coordinates
		expected int
	}{
		{"same cell", Coordinates{0, 0, 0}, Coordinates{0, 0, 0}, 0},
		{"straight line", Coordinates{0, 0, 0}, Coordinates{0, 3, 0}, 3},
		{"diagonal rounds down", Coordinates{0, 0, 0}, Coordinates{1, 1, 0}, 1},
		{"diagonal rounds up", Coordinates{0, 0, 0}, Coordinates{2, 2, 0}, 3},
		{"pythagorean", Coordinates{-3, 0, 0}, Coordinates{0, 4, 0}, 5},
		{"level ignored", Coordinates{0, 0, 0}, Coordinates{0, 2, 3}, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Distance(test.a, test.b); got != test.expected {
				t.Errorf("Expected distance %d, got %d", test.expected, got)
			}
		})
	}
}

func TestInBounds(t *testing.T) {
	tests := []struct {
		c        Coordinates
		expected bool
	}{
		{Coordinates{0, 0, 0}, true},
		{Coordinates{12, -12, 0}, true},
		{Coordinates{13, 0, 0}, false},
		{Coordinates{0, -13, 0}, false},
		{Coordinates{5, 5, 2}, true},
	}

	for _, test := range tests {
		if got := InBounds(test.c, DefaultBorder); got != test.expected {
			t.Errorf("InBounds(%s): expected %v, got %v", test.c, test.expected, got)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
	}{
		{"north", North},
		{"N", North},
		{"up", North},
		{" south ", South},
		{"e", East},
		{"left", West},
		{"ne", NorthEast},
		{"SouthWest", SouthWest},
	}

	for _, test := range tests {
		d, err := ParseDirection(test.input)
		if err != nil {
			t.Errorf("ParseDirection(%q) failed: %v", test.input, err)
			continue
		}
		if d != test.expected {
			t.Errorf("ParseDirection(%q): expected %v, got %v", test.input, test.expected, d)
		}
	}

	if _, err := ParseDirection("sideways"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if _, err := ParseDirections([]string{"n", "bogus"}); err == nil {
		t.Error("Expected error for list containing an invalid direction")
	}
}

func TestDirectionStringRoundTrip(t *testing.T) {
	for _, d := range []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest} {
		parsed, err := ParseDirection(d.String())
		if err != nil {
			t.Fatalf("ParseDirection(%q) failed: %v", d.String(), err)
		}
		if parsed != d {
			t.Errorf("Expected %v, got %v", d, parsed)
		}
	}
}

func TestCoordinatesWalk(t *testing.T) {
	start := Coordinates{X: 1, Y: 1, Level: 2}
	end := start.Walk([]Direction{North, North, East, SouthWest})
	expected := Coordinates{X: 1, Y: 2, Level: 2}
	if end != expected {
		t.Errorf("Expected %s, got %s", expected, end)
	}
}

func TestCeilHalf(t *testing.T) {
	tests := map[int]int{0: 0, 1: 1, 2: 1, 5: 3, 10: 5, 11: 6}
	for in, expected := range tests {
		if got := ceilHalf(in); got != expected {
			t.Errorf("ceilHalf(%d): expected %d, got %d", in, expected, got)
		}
	}
}

func TestEntityClassification(t *testing.T) {
	at := Coordinates{}
	tests := []struct {
		entity   *Entity
		solid    bool
		rigid    bool
		giftLike bool
	}{
		{NewWall(at), true, true, false},
		{NewReinforcedWall(at), true, true, false},
		{NewGift(at, 1, 1), false, false, true},
		{NewDeluxeGift(at, 1, 1), false, false, true},
		{NewDrone(at, "owner"), false, false, false},
		{NewTank("alpha", at, DefaultTankTemplate().State(), 0), true, false, false},
	}

	for _, test := range tests {
		t.Run(string(test.entity.Kind), func(t *testing.T) {
			if test.entity.Solid() != test.solid {
				t.Errorf("Expected Solid()=%v", test.solid)
			}
			if test.entity.Rigid() != test.rigid {
				t.Errorf("Expected Rigid()=%v", test.rigid)
			}
			if test.entity.GiftLike() != test.giftLike {
				t.Errorf("Expected GiftLike()=%v", test.giftLike)
			}
		})
	}
}

func TestEntityDefaults(t *testing.T) {
	gift := NewGift(Coordinates{}, 3, 4)
	if gift.Health != 1 || gift.Defense != 0 {
		t.Errorf("Expected gift health 1 defense 0, got %d/%d", gift.Health, gift.Defense)
	}
	if gift.Appearance.Fill != SentinelGiftFill {
		t.Errorf("Expected sentinel fill on gifts, got %s", gift.Appearance.Fill)
	}

	reinforced := NewReinforcedWall(Coordinates{})
	if reinforced.Defense != UnkillableDefense {
		t.Errorf("Expected reinforced wall defense %d, got %d", UnkillableDefense, reinforced.Defense)
	}

	tank := NewTank("alpha", Coordinates{}, DefaultTankTemplate().State(), 0)
	if tank.Health != MaxHealth {
		t.Errorf("Expected tank health %d, got %d", MaxHealth, tank.Health)
	}
	if tank.ID == "" {
		t.Error("Expected tank to get an id")
	}
}

func TestEntityDamageRecordsFatalSource(t *testing.T) {
	e := NewWall(Coordinates{})
	e.Damage(4, "first")
	if e.LastDamagedBy != "" {
		t.Errorf("Expected no killer while alive, got %s", e.LastDamagedBy)
	}
	e.Damage(6, "second")
	if e.LastDamagedBy != "second" {
		t.Errorf("Expected fatal source 'second', got %s", e.LastDamagedBy)
	}
	e.Damage(5, "third")
	if e.LastDamagedBy != "second" {
		t.Errorf("Expected killer to stay 'second' after overkill, got %s", e.LastDamagedBy)
	}
}

func TestEntityClone(t *testing.T) {
	tank := NewTank("alpha", Coordinates{}, DefaultTankTemplate().State(), 0)
	tank.Tank.Modules = []Module{{Kind: ModuleRadar, TankID: tank.ID}}

	c := tank.Clone()
	c.Tank.Fuel = 99
	c.Tank.Modules[0].Kind = ModuleSpy

	if tank.Tank.Fuel == 99 {
		t.Error("Expected clone to have its own tank state")
	}
	if tank.Tank.Modules[0].Kind != ModuleRadar {
		t.Error("Expected clone to have its own module list")
	}
}

func TestBoardOperations(t *testing.T) {
	b := NewBoard(DefaultBorder)
	wall := NewWall(Coordinates{X: 1})
	gift := NewGift(Coordinates{X: 2}, 1, 0)
	tank := NewTank("alpha", Coordinates{X: 3}, DefaultTankTemplate().State(), 0)

	for _, e := range []*Entity{wall, gift, tank} {
		if err := b.Add(e); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if err := b.Add(wall); err == nil {
		t.Error("Expected error adding the same entity twice")
	}
	if err := b.Add(nil); err == nil {
		t.Error("Expected error adding nil")
	}

	if e, ok := b.EntityAt(Coordinates{X: 2}); !ok || e.ID != gift.ID {
		t.Error("Expected to find gift by coordinates")
	}
	if _, ok := b.SolidAt(Coordinates{X: 2}); ok {
		t.Error("Expected gift cell to have no solid occupant")
	}
	if within := b.EntitiesWithin(Coordinates{}, 2); len(within) != 2 {
		t.Errorf("Expected 2 entities within radius 2, got %d", len(within))
	}

	removed := b.Remove(func(e *Entity) bool { return e.GiftLike() })
	if removed != 1 {
		t.Errorf("Expected 1 removal, got %d", removed)
	}
	slot, ok := b.Slot(tank.ID)
	if !ok || slot != 1 {
		t.Errorf("Expected tank to shift to slot 1, got %d (found=%v)", slot, ok)
	}
	if got, ok := b.Get(tank.ID); !ok || got != tank {
		t.Error("Expected id lookup to survive removal")
	}

	replacement := NewWall(Coordinates{X: 3})
	replacement.ID = tank.ID
	if err := b.Replace(tank.ID, replacement); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if got, _ := b.Get(tank.ID); got.Kind != KindWall {
		t.Error("Expected replacement in the same slot")
	}
	if err := b.Replace("missing", replacement); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("Expected ErrEntityNotFound, got %v", err)
	}
}

func TestWeekdayCycle(t *testing.T) {
	day := Monday
	expected := []Weekday{Tuesday, Wednesday, Thursday, Friday, Monday}
	for _, want := range expected {
		day = day.Next()
		if day != want {
			t.Fatalf("Expected %s, got %s", want, day)
		}
	}

	if d, err := ParseWeekday("Thu"); err != nil || d != Thursday {
		t.Errorf("Expected thursday, got %s (%v)", d, err)
	}
	if _, err := ParseWeekday("saturday"); err == nil {
		t.Error("Expected error for a weekend day")
	}
}
