// Command validate checks the board configurations in a directory
// (../configs by default). Beyond the engine's own config rules it rejects
// boards where two tanks open within gun range of each other and boards
// where walls cut a tank off from the rest.
//
//	go run ./validate ../configs
//	go run ./validate --json ../configs
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tank-tactics/game/engine"
)

// Report is the outcome for one file. Problems make it invalid; Notes are
// informational.
type Report struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

func (r *Report) problem(format string, args ...any) {
	r.Valid = false
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

func (r *Report) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// A check inspects a config that already passed engine validation
type check func(config *engine.GameConfig, r *Report)

var checks = []check{checkSpacing, checkConnectivity}

// inspect parses path and runs every check against it. Checks stop at the
// first one that finds a problem.
func inspect(path string) Report {
	r := Report{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		r.problem("Failed to read file: %v", err)
		return r
	}
	config, err := engine.ParseGameConfig(data, filepath.Ext(path))
	if err != nil {
		r.problem("Invalid config syntax: %v", err)
		return r
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		r.problem("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return r
	}

	for _, c := range checks {
		c(config, &r)
		if !r.Valid {
			return r
		}
	}

	side := 2*config.Rules.Border + 1
	r.note("Name: %s", config.Name)
	r.note("Board: %dx%d (border %d)", side, side, config.Rules.Border)
	r.note("Tanks: %d", len(config.Tanks))
	r.note("Walls: %d (+%d reinforced)", len(config.Walls), len(config.ReinforcedWalls))
	r.note("Gifts: %d", len(config.Gifts))
	return r
}

// checkSpacing rejects boards where a tank can hit another before anyone
// has moved
func checkSpacing(config *engine.GameConfig, r *Report) {
	gunRange := config.StartingTank.GunRange
	for i, a := range config.Tanks {
		for _, b := range config.Tanks[i+1:] {
			if d := engine.Distance(a.Position, b.Position); d <= gunRange {
				r.problem("Tanks %s and %s start %d apart, within gun range %d", a.Name, b.Name, d, gunRange)
			}
		}
	}
}

var compass = []engine.Direction{
	engine.North, engine.South, engine.East, engine.West,
	engine.NorthEast, engine.NorthWest, engine.SouthEast, engine.SouthWest,
}

// reachable flood fills the ground level from start over every in-bounds
// cell that holds no wall
func reachable(config *engine.GameConfig, start engine.Coordinates) map[engine.Coordinates]bool {
	walls := make(map[engine.Coordinates]bool, len(config.Walls)+len(config.ReinforcedWalls))
	for _, c := range config.Walls {
		walls[c] = true
	}
	for _, c := range config.ReinforcedWalls {
		walls[c] = true
	}

	seen := map[engine.Coordinates]bool{start: true}
	for frontier := []engine.Coordinates{start}; len(frontier) > 0; {
		var next []engine.Coordinates
		for _, at := range frontier {
			for _, d := range compass {
				c := at.Step(d)
				if seen[c] || walls[c] || !engine.InBounds(c, config.Rules.Border) {
					continue
				}
				seen[c] = true
				next = append(next, c)
			}
		}
		frontier = next
	}
	return seen
}

// checkConnectivity requires every tank to be able to drive to the first
// one. Gifts that nobody can reach only earn a note.
func checkConnectivity(config *engine.GameConfig, r *Report) {
	if len(config.Tanks) == 0 {
		r.note("Connectivity: no tanks, nothing to check")
		return
	}

	first := config.Tanks[0]
	seen := reachable(config, first.Position)

	var cutOff []string
	for _, spec := range config.Tanks[1:] {
		if !seen[spec.Position] {
			cutOff = append(cutOff, fmt.Sprintf("%s at %s", spec.Name, spec.Position))
		}
	}
	sort.Strings(cutOff)
	if len(cutOff) > 0 {
		r.problem("Connectivity failure: %d/%d tanks cannot reach %s", len(cutOff), len(config.Tanks)-1, first.Name)
		for _, u := range cutOff {
			r.problem("Unreachable: %s", u)
		}
		return
	}

	for _, g := range config.Gifts {
		if g.Position.Level == 0 && !seen[g.Position] {
			r.note("Walled-in gift at %s", g.Position)
		}
	}
	if len(config.Tanks) > 1 {
		r.note("Connectivity: all %d tanks can reach each other", len(config.Tanks))
	}
}

// configFiles lists every JSON and YAML file in dir, sorted
func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			if !e.IsDir() {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func printReport(r Report) {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), r.File)
	if !r.Valid {
		fmt.Println("❌ INVALID")
		for _, p := range r.Problems {
			fmt.Println("  ❌ " + p)
		}
		return
	}
	fmt.Println("✅ VALID")
	for _, n := range r.Notes {
		fmt.Println("  ✓ " + n)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	dir := "../configs"
	if cmd.Args().Len() > 0 {
		dir = cmd.Args().First()
	}

	files, err := configFiles(dir)
	if err != nil {
		return fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no config files found in %s", dir)
	}

	reports := make([]Report, 0, len(files))
	invalid := 0
	for _, f := range files {
		r := inspect(f)
		if !r.Valid {
			invalid++
		}
		reports = append(reports, r)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printReport(r)
		}
		fmt.Printf("\n%s\n", strings.Repeat("=", 40))
		if invalid == 0 {
			fmt.Println("✅ All configurations are valid!")
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d configurations have errors", invalid, len(files))
	}
	return nil
}

func main() {
	app := &cli.Command{
		Name:      "validate",
		Usage:     "Check board configurations",
		ArgsUsage: "[config-dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print reports as JSON"},
		},
		Action: run,
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
