package engine

import (
	"bytes"
	"strings"
	"testing"
)

func populatedGame(t *testing.T) *Game {
	t.Helper()
	g := newTestGame(t)
	g.Name = "snapshot"
	g.Day = Thursday
	g.Turn = 4

	alpha := placeTank(t, g, "alpha", Coordinates{})
	alpha.Tank.Modules = []Module{{Kind: ModuleRadar, TankID: alpha.ID}}
	g.InstallModule(alpha, ModuleDrone)

	g.Board.Add(NewWall(Coordinates{X: 2, Y: 2}))
	g.Board.Add(NewReinforcedWall(Coordinates{X: -2, Y: 2}))
	spy := ModuleSpy
	gift := NewGift(Coordinates{X: 3}, 2, 3)
	gift.Gift.Module = &spy
	g.Board.Add(gift)
	g.Board.Add(NewDeluxeGift(Coordinates{X: -3}, 10, 10))
	g.Board.Add(&Entity{
		ID:       NewEntityID(),
		Kind:     KindDeadTank,
		Position: Coordinates{Y: -3},
		Health:   1,
		Dead:     &DeadTankState{Name: "ghost", KilledBy: alpha.ID, Essence: 12, Energy: 4},
	})
	return g
}

func TestSnapshot_RoundTrip(t *testing.T) {
	g := populatedGame(t)

	data, err := EncodeSnapshot(g)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	restored, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if restored.Name != g.Name || restored.Day != Thursday || restored.Turn != 4 {
		t.Errorf("Expected calendar to survive, got %s/%s/%d", restored.Name, restored.Day, restored.Turn)
	}
	if restored.Board.Len() != g.Board.Len() {
		t.Fatalf("Expected %d entities, got %d", g.Board.Len(), restored.Board.Len())
	}
	for i, e := range g.Board.All() {
		got := restored.Board.All()[i]
		if got.ID != e.ID || got.Kind != e.Kind || got.Position != e.Position {
			t.Errorf("Entity %d differs: expected %s %s at %s, got %s %s at %s",
				i, e.Kind, e.ID, e.Position, got.Kind, got.ID, got.Position)
		}
	}

	again, err := EncodeSnapshot(restored)
	if err != nil {
		t.Fatalf("Re-encode failed: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("Expected a restored game to encode identically")
	}
}

func TestSnapshot_RestoreDrawsFreshSeed(t *testing.T) {
	data, err := EncodeSnapshot(populatedGame(t))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	first, _ := DecodeSnapshot(data)
	second, _ := DecodeSnapshot(data)
	if first.Seed() == second.Seed() {
		t.Error("Expected each restore to draw its own seed")
	}

	pinned, _ := DecodeSnapshot(data, WithSeed(99))
	if pinned.Seed() != 99 {
		t.Errorf("Expected seed option to apply on restore, got %d", pinned.Seed())
	}
}

func TestSnapshot_RestoredGameResolves(t *testing.T) {
	data, _ := EncodeSnapshot(populatedGame(t))
	g, err := DecodeSnapshot(data, WithSeed(3))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	alpha := g.Board.Tanks()[0]

	g.Submit(NewMove(alpha.ID, 0, North))
	report := g.Resolve()
	if !report.Results[0].Success {
		t.Fatalf("Expected move on restored game: %s", report.Results[0].Error)
	}
	if g.Day != Friday {
		t.Errorf("Expected Friday after Thursday, got %s", g.Day)
	}
}

func TestSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name          string
		data          string
		expectedError string
	}{
		{"malformed", `{"version": `, "decode snapshot"},
		{"future version", `{"version": 99, "day": "monday", "entities": []}`, "newer than supported"},
		{"bad day", `{"version": 1, "day": "sunday", "entities": []}`, "restore snapshot"},
		{"tank without state", `{"version": 1, "day": "monday", "entities": [{"id": "x", "kind": "tank"}]}`, "no tank state"},
		{"dead tank without state", `{"version": 1, "day": "monday", "entities": [{"id": "x", "kind": "dead_tank"}]}`, "no dead state"},
		{"unknown kind", `{"version": 1, "day": "monday", "entities": [{"id": "x", "kind": "boulder"}]}`, "unknown kind"},
		{"duplicate id", `{"version": 1, "day": "monday", "entities": [{"id": "x", "kind": "wall"}, {"id": "x", "kind": "wall"}]}`, "already on board"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(test.data))
			if err == nil {
				t.Fatal("Expected decode error")
			}
			if !strings.Contains(err.Error(), test.expectedError) {
				t.Errorf("Expected error containing '%s', got: %v", test.expectedError, err)
			}
		})
	}
}

func TestSnapshot_NormalizesDay(t *testing.T) {
	for _, raw := range []string{"tue", "Tuesday", " TUESDAY "} {
		t.Run(raw, func(t *testing.T) {
			g, err := DecodeSnapshot([]byte(`{"version": 1, "day": "` + raw + `", "entities": []}`))
			if err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if g.Day != Tuesday {
				t.Errorf("Expected tuesday, got %q", g.Day)
			}
			if g.Day.Next() != Wednesday {
				t.Errorf("Expected wednesday next, got %s", g.Day.Next())
			}
		})
	}
}

func TestSnapshot_GiftWithoutPayload(t *testing.T) {
	data := `{"version": 1, "day": "tuesday", "entities": [{"id": "g", "kind": "gift", "health": 1}]}`
	g, err := DecodeSnapshot([]byte(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	gift, ok := g.Board.Get("g")
	if !ok || gift.Gift == nil {
		t.Error("Expected a gift with an empty payload")
	}
}
