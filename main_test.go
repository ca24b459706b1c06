package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wricardo/tank-tactics/game/engine"
	"github.com/wricardo/tank-tactics/game/session"
	"github.com/wricardo/tank-tactics/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Tank Tactics Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestNewApp(t *testing.T) {
	app := newApp()

	if app.Name != "tank-tactics" {
		t.Errorf("Expected name tank-tactics, got %s", app.Name)
	}
	if app.Action == nil {
		t.Error("Expected a default action")
	}

	commands := map[string]bool{}
	for _, c := range app.Commands {
		commands[c.Name] = true
	}
	for _, name := range []string{"server", "mcp", "resolve"} {
		if !commands[name] {
			t.Errorf("Expected command %q", name)
		}
	}

	flags := map[string]bool{}
	for _, f := range app.Flags {
		for _, n := range f.Names() {
			flags[n] = true
		}
	}
	for _, name := range []string{"port", "host", "config-dir", "debug", "store", "sessions-dir", "db-path", "ngrok", "ngrok-auth", "ngrok-domain"} {
		if !flags[name] {
			t.Errorf("Expected flag %q", name)
		}
	}
}

func testOptions(t *testing.T, store string) options {
	dir := t.TempDir()
	return options{
		Port:        8080,
		Host:        "localhost",
		ConfigDir:   dir,
		Store:       store,
		SessionsDir: filepath.Join(dir, "sessions"),
		DBPath:      filepath.Join(dir, "sessions.db"),
	}
}

func TestNewPersistence(t *testing.T) {
	tests := []struct {
		store   string
		wantErr bool
	}{
		{StoreFile, false},
		{StoreSQLite, false},
		{"", false},
		{"redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.store, func(t *testing.T) {
			p, err := newPersistence(testOptions(t, tt.store), zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if sqlite, ok := p.(*session.SQLitePersistence); ok {
				sqlite.Close()
			}
		})
	}
}

func TestInitializeServices(t *testing.T) {
	for _, store := range []string{StoreFile, StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			svcs, err := initializeServices(testOptions(t, store), zerolog.Nop())
			if err != nil {
				t.Fatalf("Failed to initialize services: %v", err)
			}
			defer svcs.Close()

			if svcs.game == nil {
				t.Fatal("Expected game service to be initialized")
			}
			if svcs.sessions.Count() != 0 {
				t.Errorf("Expected no sessions, got %d", svcs.sessions.Count())
			}
		})
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	opts := testOptions(t, StoreFile)
	opts.ConfigDir = "/non/existent/path"

	if _, err := initializeServices(opts, zerolog.Nop()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestPruneOrphans(t *testing.T) {
	persistence, err := session.NewFilePersistence(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	manager := session.NewManagerWithPersistence(persistence, zerolog.Nop())

	cfg := engine.DefaultGameConfig()
	cfg.Rules.Border = 5
	if _, err := manager.Create("keep", "default", cfg); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := manager.Create("gone", "default", cfg); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if err := persistence.Delete("gone"); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	if pruned := pruneOrphans(manager, persistence, zerolog.Nop()); pruned != 1 {
		t.Errorf("Expected 1 session pruned, got %d", pruned)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session left, got %d", manager.Count())
	}
	if _, err := manager.Get("keep"); err != nil {
		t.Errorf("Expected keep to survive, got %v", err)
	}
}

func TestMCPHandler_MethodNotAllowed(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://localhost:8080"))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/mcp", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func writeSave(t *testing.T, dir string) string {
	t.Helper()
	cfg := engine.DefaultGameConfig()
	cfg.Rules.Border = 5
	cfg.Tanks = []engine.TankSpec{
		{Name: "alpha", Position: engine.Coordinates{X: 0, Y: 0}},
		{Name: "bravo", Position: engine.Coordinates{X: 3, Y: 0}},
	}

	game, err := engine.NewGameFromConfig(cfg, engine.WithSeed(11))
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	data, err := engine.EncodeSnapshot(game)
	if err != nil {
		t.Fatalf("Failed to encode snapshot: %v", err)
	}

	path := filepath.Join(dir, "board.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write save: %v", err)
	}
	return path
}

func TestRunResolve(t *testing.T) {
	dir := t.TempDir()
	savePath := writeSave(t, dir)

	actions := []engine.ActionRequest{
		{Type: engine.ActionUpgrade, ActorID: "alpha", Upgrade: engine.UpgradeKind("gun_range")},
		{Type: engine.ActionMove, ActorID: "nobody", Steps: []string{"north"}},
		{Type: engine.ActionKind("teleport"), ActorID: "bravo"},
	}
	raw, _ := json.Marshal(actions)
	actionsPath := filepath.Join(dir, "actions.json")
	if err := os.WriteFile(actionsPath, raw, 0644); err != nil {
		t.Fatalf("Failed to write actions: %v", err)
	}

	outPath := filepath.Join(dir, "next.json")
	report, err := runResolve(resolveJob{
		SavePath:    savePath,
		ActionsPath: actionsPath,
		OutPath:     outPath,
		Seed:        3,
		HasSeed:     true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("runResolve failed: %v", err)
	}

	if len(report.Results) != 1 {
		t.Fatalf("Expected 1 queued action to resolve, got %d", len(report.Results))
	}
	if report.Results[0].ActorName != "alpha" {
		t.Errorf("Expected alpha's action, got %s", report.Results[0].ActorName)
	}
	if report.Day != engine.Monday || report.NextDay != engine.Tuesday {
		t.Errorf("Expected monday -> tuesday, got %s -> %s", report.Day, report.NextDay)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Expected next board to be written: %v", err)
	}
	next, err := engine.DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("Failed to decode next board: %v", err)
	}
	if next.Day != engine.Tuesday {
		t.Errorf("Expected next board on tuesday, got %s", next.Day)
	}
}

func TestRunResolve_DefaultsToOverwrite(t *testing.T) {
	dir := t.TempDir()
	savePath := writeSave(t, dir)

	if _, err := runResolve(resolveJob{SavePath: savePath}, zerolog.Nop()); err != nil {
		t.Fatalf("runResolve failed: %v", err)
	}

	data, err := os.ReadFile(savePath)
	if err != nil {
		t.Fatalf("Failed to read save: %v", err)
	}
	game, err := engine.DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("Failed to decode save: %v", err)
	}
	if game.Day != engine.Tuesday {
		t.Errorf("Expected save to advance to tuesday, got %s", game.Day)
	}
}

func TestRunResolve_Errors(t *testing.T) {
	dir := t.TempDir()
	savePath := writeSave(t, dir)

	badActions := filepath.Join(dir, "bad.json")
	os.WriteFile(badActions, []byte("{not json"), 0644)

	corrupt := filepath.Join(dir, "corrupt.json")
	os.WriteFile(corrupt, []byte("nope"), 0644)

	tests := []struct {
		name string
		job  resolveJob
	}{
		{"missing save", resolveJob{SavePath: filepath.Join(dir, "missing.json")}},
		{"corrupt save", resolveJob{SavePath: corrupt}},
		{"missing actions", resolveJob{SavePath: savePath, ActionsPath: filepath.Join(dir, "none.json")}},
		{"bad actions", resolveJob{SavePath: savePath, ActionsPath: badActions}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runResolve(tt.job, zerolog.Nop()); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
