// Command tank-tactics runs the Tank Tactics turn resolution server.
//
// It supports three commands:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "resolve" – resolves one turn of a saved board offline and writes the next board
//
// Flags control host/port, config directory, session storage, debug logging,
// and optional ngrok tunneling for easy external access during development.
// Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/tank-tactics/api"
	"github.com/wricardo/tank-tactics/game/config"
	"github.com/wricardo/tank-tactics/game/service"
	"github.com/wricardo/tank-tactics/game/session"
	"github.com/wricardo/tank-tactics/transport/mcp"
	"github.com/wricardo/tank-tactics/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tank Tactics Server"
)

// Session storage backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// options is the resolved flag and environment configuration
type options struct {
	Port        int
	Host        string
	ConfigDir   string
	Debug       bool
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
	Store       string
	SessionsDir string
	DBPath      string
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	envErr := godotenv.Load()

	logger := newLogger(os.Stderr, false)
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.Warn().Err(envErr).Msg("error loading .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logger.Fatal().Err(err).Msg("exiting")
	}
}

// newApp builds the command tree. Flags on the root command are inherited by
// every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "tank-tactics",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   StoreFile,
				Usage:   "Session storage backend (file or sqlite)",
				Sources: cli.EnvVars("STORE"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory for the file session store",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.StringFlag{
				Name:    "db-path",
				Value:   "sessions.db",
				Usage:   "Database file for the sqlite session store",
				Sources: cli.EnvVars("DB_PATH"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  serverAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  mcpAction,
			},
			resolveCommand(),
		},
		Action: serverAction,
	}
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		Port:        int(cmd.Int("port")),
		Host:        cmd.String("host"),
		ConfigDir:   cmd.String("config-dir"),
		Debug:       cmd.Bool("debug"),
		Ngrok:       cmd.Bool("ngrok"),
		NgrokAuth:   cmd.String("ngrok-auth"),
		NgrokDomain: cmd.String("ngrok-domain"),
		Store:       cmd.String("store"),
		SessionsDir: cmd.String("sessions-dir"),
		DBPath:      cmd.String("db-path"),
	}
}

// newLogger writes human readable logs; stdout is left free for the MCP
// stdio protocol.
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	logger := newLogger(os.Stderr, opts.Debug)
	logger.Info().Str("version", Version).Str("mode", "server").Msgf("starting %s", AppName)

	svcs, err := initializeServices(opts, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.Close()

	return runHTTPServer(ctx, opts, svcs, logger)
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	logger := newLogger(os.Stderr, opts.Debug)
	logger.Info().Str("version", Version).Str("mode", "mcp").Msgf("starting %s", AppName)

	svcs, err := initializeServices(opts, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.Close()

	return runStdioMCPWithInternalServer(ctx, opts, svcs.game, logger)
}

// services bundles what the server modes share
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	cancel      context.CancelFunc
	logger      zerolog.Logger
}

// Close stops the background routines, flushes every session and releases
// the store
func (s *services) Close() error {
	s.cancel()
	if err := s.sessions.SaveAllSessions(); err != nil {
		s.logger.Warn().Err(err).Msg("final session save incomplete")
	}
	if closer, ok := s.persistence.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// newPersistence opens the configured session store
func newPersistence(opts options, logger zerolog.Logger) (session.SessionPersistence, error) {
	switch opts.Store {
	case StoreFile, "":
		return session.NewFilePersistence(opts.SessionsDir, logger)
	case StoreSQLite:
		return session.NewSQLitePersistence(opts.DBPath, logger)
	default:
		return nil, fmt.Errorf("unknown session store %q (use %s or %s)", opts.Store, StoreFile, StoreSQLite)
	}
}

// initializeServices wires session/config managers and the game service.
// It also starts background routines that prune stale sessions.
func initializeServices(opts options, logger zerolog.Logger) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := newPersistence(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, logger)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn().Err(err).Msg("failed to load persisted sessions")
	}

	gameService := service.NewGameService(sessionManager, configManager, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go sessionCleanupRoutine(ctx, sessionManager, logger)
	go persistenceSyncRoutine(ctx, sessionManager, persistence, logger)

	logger.Info().
		Str("store", opts.Store).
		Str("config_dir", opts.ConfigDir).
		Int("sessions", sessionManager.Count()).
		Msg("services initialized")

	return &services{
		game:        gameService,
		sessions:    sessionManager,
		persistence: persistence,
		cancel:      cancel,
		logger:      logger,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed > 0 {
				logger.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// persistenceSyncRoutine removes sessions from memory when they disappear
// from the store, so an operator can drop a game by deleting its record.
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, logger zerolog.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphans(manager, persistence, logger)
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence, logger zerolog.Logger) int {
	if persistence == nil {
		return 0
	}

	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Info().Str("session", sess.ID).Msg("pruned session from memory (store record deleted)")
		}
	}
	return pruned
}

// mcpHandler exposes the MCP tools over a single POST endpoint
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, opts options, svcs *services, logger zerolog.Logger) error {
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	apiServer := api.NewServer(svcs.game, hub, logger)

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	if opts.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, mainRouter, logger)
		}()
	}

	var runErr error
	select {
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case runErr = <-serveErr:
		logger.Error().Err(runErr).Msg("HTTP server failed")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	logger.Info().Msg("server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx ends
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler, logger zerolog.Logger) {
	if opts.NgrokAuth == "" {
		logger.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		logger.Info().Str("domain", opts.NgrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		logger.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	logger.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("websocket", ngrokURL+"/ws?session=<session_id>").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logger.Warn().Err(err).Msg("ngrok server error")
	}
	logger.Info().Msg("ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API on the configured port; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, opts options, gameService service.GameService, logger zerolog.Logger) error {
	externalURL := fmt.Sprintf("http://%s:%d", opts.Host, opts.Port)
	logger.Info().Str("url", externalURL).Msg("checking for external API server")

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil {
		resp.Body.Close()
	}
	if err == nil && resp.StatusCode < 500 {
		logger.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		logger.Info().Str("addr", internalAddr).Msg("no external API server found, starting internal HTTP server")

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		httpServer := &http.Server{
			Handler: api.NewServer(gameService, hub, logger),
		}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("internal HTTP server error")
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
