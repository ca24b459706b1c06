// Command analyze prints a quick, human-readable census of saved boards:
// entity counts, loose resources, each tank's stats, who is in gun range of
// whom, and today's price sheet per tank.
//
//	go run ./cmd/analyze sessions/ab12.json
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/wricardo/tank-tactics/game/engine"
)

// savedSession is the subset of a persisted session file analyze reads. Bare
// snapshots, as written by the resolve command, are accepted too.
type savedSession struct {
	ID       string          `json:"id"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// Threat is one tank that can hit another from where they stand
type Threat struct {
	From, To string
	Distance int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <snapshot.json> [more.json ...]\n", os.Args[0])
		os.Exit(2)
	}

	failed := false
	for _, path := range os.Args[1:] {
		fmt.Printf("\n=== Analyzing %s ===\n", path)
		if err := analyzeFile(path, os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// loadGame reads a session file or a bare snapshot
func loadGame(data []byte) (*engine.Game, error) {
	var saved savedSession
	if err := json.Unmarshal(data, &saved); err == nil && len(saved.Snapshot) > 0 {
		data = saved.Snapshot
	}
	return engine.DecodeSnapshot(data)
}

func analyzeFile(path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	game, err := loadGame(data)
	if err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	analyzeGame(game, w)
	return nil
}

func analyzeGame(g *engine.Game, w io.Writer) {
	fmt.Fprintf(w, "Name: %s\n", g.Name)
	fmt.Fprintf(w, "Day: %s (turn %d)\n", g.Day, g.Turn)
	fmt.Fprintf(w, "Board: %dx%d (border %d)\n", 2*g.Board.Border+1, 2*g.Board.Border+1, g.Board.Border)

	census := make(map[engine.Kind]int)
	looseFuel, looseMetal := 0, 0
	for _, e := range g.Board.All() {
		census[e.Kind]++
		if e.Kind == engine.KindGift || e.Kind == engine.KindDeluxeGift {
			looseFuel += e.FuelDropped
			looseMetal += e.MetalDropped
		}
	}

	kinds := make([]string, 0, len(census))
	for k := range census {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	fmt.Fprintf(w, "\nCensus (%d entities):\n", g.Board.Len())
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-16s %d\n", k, census[engine.Kind(k)])
	}
	fmt.Fprintf(w, "Loose resources: %d fuel, %d metal\n", looseFuel, looseMetal)

	tanks := sortedTanks(g)
	if len(tanks) == 0 {
		fmt.Fprintf(w, "\nNo living tanks.\n")
	} else {
		fmt.Fprintf(w, "\nTanks:\n")
		for _, t := range tanks {
			s := t.Tank
			fmt.Fprintf(w, "  %-10s at %s hp %d def %d fuel %d metal %d kills %d\n",
				s.Name, t.Position, t.Health, t.Defense, s.Fuel, s.Metal, s.Kills)
		}
	}

	for _, d := range g.Board.OfKind(engine.KindDeadTank) {
		fmt.Fprintf(w, "  ☠ %s at %s essence %d energy %d\n", d.Dead.Name, d.Position, d.Dead.Essence, d.Dead.Energy)
	}

	threats := findThreats(tanks)
	if len(threats) == 0 {
		fmt.Fprintf(w, "\n✅ No tank is in gun range of another\n")
	} else {
		fmt.Fprintf(w, "\n⚠️  %d tanks can fire on a rival:\n", len(threats))
		for _, th := range threats {
			fmt.Fprintf(w, "   %s -> %s (distance %d)\n", th.From, th.To, th.Distance)
		}
	}

	offer := g.ModuleOffer()
	fmt.Fprintf(w, "\nModule on offer: %s for %d\n", offer, offer.Price())
	for _, t := range tanks {
		sheet := g.Prices(t)
		fmt.Fprintf(w, "Prices for %s:", t.Tank.Name)
		upgrades := make([]string, 0, len(sheet.Upgrades))
		for u := range sheet.Upgrades {
			upgrades = append(upgrades, string(u))
		}
		sort.Strings(upgrades)
		for _, u := range upgrades {
			kind := engine.UpgradeKind(u)
			marker := ""
			if !sheet.Available[kind] {
				marker = " (not today)"
			}
			fmt.Fprintf(w, " %s=%d%s", u, sheet.Upgrades[kind], marker)
		}
		fmt.Fprintln(w)
	}
}

func sortedTanks(g *engine.Game) []*engine.Entity {
	tanks := g.Board.Tanks()
	sort.Slice(tanks, func(i, j int) bool {
		return tanks[i].Tank.Name < tanks[j].Tank.Name
	})
	return tanks
}

// findThreats lists every ordered pair where the first tank's gun reaches
// the second
func findThreats(tanks []*engine.Entity) []Threat {
	var threats []Threat
	for _, a := range tanks {
		for _, b := range tanks {
			if a == b {
				continue
			}
			if d := engine.Distance(a.Position, b.Position); d <= a.Tank.GunRange {
				threats = append(threats, Threat{From: a.Tank.Name, To: b.Tank.Name, Distance: d})
			}
		}
	}
	return threats
}
