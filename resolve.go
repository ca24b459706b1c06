package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/tank-tactics/game/engine"
)

// resolveJob describes one offline resolution
type resolveJob struct {
	SavePath    string
	ActionsPath string
	OutPath     string
	Seed        int64
	HasSeed     bool
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve one turn of a saved board offline",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "save",
				Usage:    "Board snapshot to resolve",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "actions",
				Usage: "JSON array of queued actions (actor and target may be tank names)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Where to write the next board (defaults to --save)",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Pin the random seed for a reproducible resolution",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := newLogger(os.Stderr, cmd.Bool("debug"))

			job := resolveJob{
				SavePath:    cmd.String("save"),
				ActionsPath: cmd.String("actions"),
				OutPath:     cmd.String("out"),
				Seed:        cmd.Int64("seed"),
				HasSeed:     cmd.IsSet("seed"),
			}

			report, err := runResolve(job, logger)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

// runResolve loads a snapshot, queues the actions file, resolves the day and
// writes the resulting board
func runResolve(job resolveJob, logger zerolog.Logger) (*engine.TurnReport, error) {
	data, err := os.ReadFile(job.SavePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read save: %w", err)
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	if job.HasSeed {
		opts = append(opts, engine.WithSeed(job.Seed))
	}
	game, err := engine.DecodeSnapshot(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode save: %w", err)
	}

	var requests []engine.ActionRequest
	if job.ActionsPath != "" {
		raw, err := os.ReadFile(job.ActionsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read actions: %w", err)
		}
		if err := json.Unmarshal(raw, &requests); err != nil {
			return nil, fmt.Errorf("failed to parse actions: %w", err)
		}
	}

	rejected := queueActions(game, requests, logger)
	report := game.Resolve()

	next, err := engine.EncodeSnapshot(game)
	if err != nil {
		return nil, fmt.Errorf("failed to encode board: %w", err)
	}

	out := job.OutPath
	if out == "" {
		out = job.SavePath
	}
	if err := writeFileAtomic(out, next); err != nil {
		return nil, fmt.Errorf("failed to write board: %w", err)
	}

	logger.Info().
		Int("turn", report.Turn).
		Str("day", string(report.Day)).
		Str("next_day", string(report.NextDay)).
		Int("actions", len(report.Results)).
		Int("rejected", rejected).
		Int64("seed", game.Seed()).
		Str("out", out).
		Msg("turn resolved")

	return report, nil
}

// queueActions submits every request that names a live entity and decodes
// cleanly; the rest are logged and counted
func queueActions(game *engine.Game, requests []engine.ActionRequest, logger zerolog.Logger) int {
	rejected := 0
	for i, req := range requests {
		actor, ok := game.Board.Find(string(req.ActorID))
		if !ok {
			logger.Warn().Int("index", i).Str("actor", string(req.ActorID)).Msg("action rejected: unknown actor")
			rejected++
			continue
		}
		req.ActorID = actor.ID
		if req.TargetID != "" {
			if target, ok := game.Board.Find(string(req.TargetID)); ok {
				req.TargetID = target.ID
			}
		}

		action, err := engine.DecodeAction(req)
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Str("actor", actor.Name()).Msg("action rejected")
			rejected++
			continue
		}
		game.Submit(action)
	}
	return rejected
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
