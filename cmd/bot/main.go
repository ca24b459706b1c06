// Command bot plays every tank of a session through the REST API. Each turn
// it reads the board, queues one action per living tank and resolves the
// turn, until one tank is left standing or the turn limit is reached.
//
//	go run ./cmd/bot --url http://localhost:8080 --config classic --turns 50
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/tank-tactics/game/engine"
	"github.com/wricardo/tank-tactics/game/service"
)

// Client talks to a running server on behalf of one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

// CreateSession starts a session from configID and remembers its ID
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) GetBoard(ctx context.Context) (*service.BoardView, error) {
	var board service.BoardView
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/board"), nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) SubmitAction(ctx context.Context, req engine.ActionRequest) (*service.SubmitResult, error) {
	var result service.SubmitResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/actions"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Resolve(ctx context.Context) (*service.TurnResult, error) {
	var result service.TurnResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/resolve"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// playTurn queues one action for every living tank and resolves the turn.
// It returns the board after resolution.
func playTurn(ctx context.Context, c *Client, board *service.BoardView, logger zerolog.Logger) (*service.BoardView, error) {
	strategy := NewStrategy(board)
	for _, tank := range board.Tanks {
		req, ok := strategy.NextAction(tank)
		if !ok {
			logger.Debug().Str("tank", tank.Name).Msg("holding position")
			continue
		}
		if _, err := c.SubmitAction(ctx, req); err != nil {
			logger.Warn().Err(err).Str("tank", tank.Name).Msg("action rejected")
			continue
		}
		logger.Debug().Str("tank", tank.Name).Str("action", string(req.Type)).Strs("steps", req.Steps).Msg("queued")
	}

	result, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if result.Report != nil {
		for _, r := range result.Report.Results {
			if !r.Success {
				logger.Debug().Str("actor", r.ActorName).Str("action", string(r.Action)).Str("error", r.Error).Msg("action failed")
			}
		}
	}
	return result.Board, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := zerolog.InfoLevel
	if cmd.Bool("v") {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	client := NewClient(cmd.String("url"))
	logger.Info().Str("url", client.baseURL).Msg("connecting to game server")

	if id := cmd.String("continue"); id != "" {
		client.sessionID = id
		logger.Info().Str("session", id).Msg("resuming session")
	} else {
		session, err := client.CreateSession(ctx, cmd.String("config"))
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		logger.Info().Str("session", session.ID).Int("tanks", session.Tanks).Msg("session created")
	}

	board, err := client.GetBoard(ctx)
	if err != nil {
		return err
	}

	delay := cmd.Duration("delay")
	maxTurns := int(cmd.Int("turns"))
	for turn := 0; turn < maxTurns && len(board.Tanks) > 1; turn++ {
		board, err = playTurn(ctx, client, board, logger)
		if err != nil {
			return fmt.Errorf("turn %d: %w", turn+1, err)
		}
		logger.Info().
			Int("turn", board.Turn).
			Str("day", string(board.Day)).
			Int("alive", len(board.Tanks)).
			Int("dead", len(board.DeadTanks)).
			Msg("turn resolved")

		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	switch len(board.Tanks) {
	case 0:
		logger.Info().Str("session", client.sessionID).Msg("no tank survived")
	case 1:
		logger.Info().Str("session", client.sessionID).Str("winner", board.Tanks[0].Name).Msg("last tank standing")
	default:
		logger.Info().Str("session", client.sessionID).Int("alive", len(board.Tanks)).Msg("turn limit reached")
	}
	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "Play every tank of a session until one is left",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Configuration ID for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "Play an existing session by ID"},
			&cli.IntFlag{Name: "turns", Value: 100, Usage: "Maximum turns to play"},
			&cli.DurationFlag{Name: "delay", Usage: "Pause between turns"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
