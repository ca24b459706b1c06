package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/tank-tactics/game/engine"
)

func createTestConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	config.Rules.Border = 5
	config.Walls = []engine.Coordinates{{X: 1, Y: 1}}
	config.Tanks = []engine.TankSpec{
		{Name: "alpha", Position: engine.Coordinates{X: 0, Y: 0}},
		{Name: "bravo", Position: engine.Coordinates{X: 2, Y: 2}},
	}
	return config
}

func TestManager_Create(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "test", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.ConfigName != "test" {
			t.Errorf("Expected config name 'test', got '%s'", session.ConfigName)
		}
		if session.Game == nil {
			t.Fatal("Expected game to be initialized")
		}
		if session.Game.Board.Len() != 3 {
			t.Errorf("Expected 3 entities on the board, got %d", session.Game.Board.Len())
		}
		if session.Game.Day != engine.Monday {
			t.Errorf("Expected game to start on monday, got %s", session.Game.Day)
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "test", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got '%s'", session.ID)
		}
	})

	t.Run("duplicate ID is case-insensitive", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "test", config)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("../escape", "test", config)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := createTestConfig()
		bad.Name = ""
		_, err := manager.Create("bad", "bad", bad)
		if err == nil {
			t.Error("Expected error for invalid config")
		}
		if _, err := manager.Get("bad"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected failed session not to be stored, got %v", err)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	created, err := manager.Create("MixedCase", "test", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"exact", "MixedCase", nil},
		{"lower", "mixedcase", nil},
		{"upper", "MIXEDCASE", nil},
		{"missing", "nope", ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := manager.Get(tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if session != created {
				t.Error("Expected the same session instance")
			}
		})
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	config := createTestConfig()

	first, err := manager.GetOrCreate("shared", "test", config)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	second, err := manager.GetOrCreate("shared", "other", config)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if first != second {
		t.Error("Expected GetOrCreate to return the existing session")
	}
	if second.ConfigName != "test" {
		t.Errorf("Expected original config name to be kept, got '%s'", second.ConfigName)
	}
}

func TestManager_ListAndDelete(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	config := createTestConfig()

	for _, id := range []string{"a1", "b2", "c3"} {
		if _, err := manager.Create(id, "test", config); err != nil {
			t.Fatalf("Failed to create session %s: %v", id, err)
		}
	}

	if got := len(manager.List()); got != 3 {
		t.Errorf("Expected 3 sessions, got %d", got)
	}

	if err := manager.Delete("B2"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if manager.Count() != 2 {
		t.Errorf("Expected 2 sessions after delete, got %d", manager.Count())
	}
	if err := manager.Delete("b2"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}

	if err := manager.DeleteFromMemory("a1"); err != nil {
		t.Fatalf("Failed to delete from memory: %v", err)
	}
	if err := manager.DeleteFromMemory("a1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	session, err := manager.Create("touch", "test", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	before := session.LastAccessedAt
	time.Sleep(5 * time.Millisecond)

	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected LastAccessedAt to advance")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_SaveWithoutPersistence(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	if err := manager.Save("anything"); err != nil {
		t.Errorf("Expected nil error without persistence, got %v", err)
	}
	if err := manager.SaveAllSessions(); err != nil {
		t.Errorf("Expected nil error without persistence, got %v", err)
	}
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Errorf("Expected nil error without persistence, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	config := createTestConfig()

	old, _ := manager.Create("old", "test", config)
	manager.Create("fresh", "test", config)
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if _, err := manager.Get("old"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected expired session to be gone, got %v", err)
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Errorf("Expected fresh session to remain, got %v", err)
	}
}

func TestManager_Concurrent(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := strings.Repeat("x", n+1)
			if _, err := manager.Create(id, "test", config); err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(id); err != nil {
				errs <- err
			}
			manager.List()
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}
	if manager.Count() != 20 {
		t.Errorf("Expected 20 sessions, got %d", manager.Count())
	}
}
