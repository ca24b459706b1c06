package session

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/tank-tactics/game/engine"
	"github.com/wricardo/tank-tactics/game/service"
)

type persistenceFactory func(t *testing.T) SessionPersistence

func backends() map[string]persistenceFactory {
	return map[string]persistenceFactory{
		"file": func(t *testing.T) SessionPersistence {
			p, err := NewFilePersistence(t.TempDir(), zerolog.Nop())
			if err != nil {
				t.Fatalf("Failed to create file persistence: %v", err)
			}
			return p
		},
		"sqlite": func(t *testing.T) SessionPersistence {
			p, err := NewSQLitePersistence(filepath.Join(t.TempDir(), "sessions.db"), zerolog.Nop())
			if err != nil {
				t.Fatalf("Failed to create sqlite persistence: %v", err)
			}
			t.Cleanup(func() { p.Close() })
			return p
		},
	}
}

func newTestSession(t *testing.T, id string) *service.Session {
	game, err := engine.NewGameFromConfig(createTestConfig(), engine.WithSeed(7))
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	now := time.Now().Truncate(time.Millisecond)
	return &service.Session{
		ID:             id,
		ConfigName:     "test",
		Game:           game,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

func TestPersistence_SaveAndLoad(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			p := factory(t)
			session := newTestSession(t, "save1")
			session.Game.Resolve()

			if err := p.Save(session); err != nil {
				t.Fatalf("Failed to save session: %v", err)
			}
			if !p.Exists("save1") {
				t.Fatal("Expected session to exist after save")
			}

			loaded, err := p.Load("save1")
			if err != nil {
				t.Fatalf("Failed to load session: %v", err)
			}

			if loaded.ID != "save1" {
				t.Errorf("Expected ID save1, got %s", loaded.ID)
			}
			if loaded.ConfigName != "test" {
				t.Errorf("Expected config name test, got %s", loaded.ConfigName)
			}
			if !loaded.CreatedAt.Equal(session.CreatedAt) {
				t.Errorf("Expected CreatedAt %v, got %v", session.CreatedAt, loaded.CreatedAt)
			}
			if loaded.Game.Day != engine.Tuesday {
				t.Errorf("Expected restored day tuesday, got %s", loaded.Game.Day)
			}

			want, _ := engine.EncodeSnapshot(session.Game)
			got, _ := engine.EncodeSnapshot(loaded.Game)
			if !bytes.Equal(want, got) {
				t.Errorf("Expected identical snapshots.\nwant: %s\ngot:  %s", want, got)
			}
		})
	}
}

func TestPersistence_Overwrite(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			p := factory(t)
			session := newTestSession(t, "over")

			if err := p.Save(session); err != nil {
				t.Fatalf("Failed to save session: %v", err)
			}
			session.Game.Resolve()
			if err := p.Save(session); err != nil {
				t.Fatalf("Failed to save session again: %v", err)
			}

			loaded, err := p.Load("over")
			if err != nil {
				t.Fatalf("Failed to load session: %v", err)
			}
			if loaded.Game.Day != engine.Tuesday {
				t.Errorf("Expected latest save to win, got day %s", loaded.Game.Day)
			}

			ids, err := p.ListAll()
			if err != nil {
				t.Fatalf("Failed to list sessions: %v", err)
			}
			if len(ids) != 1 {
				t.Errorf("Expected one stored session, got %v", ids)
			}
		})
	}
}

func TestPersistence_ListAndDelete(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			p := factory(t)
			for _, id := range []string{"aa11", "bb22", "cc33"} {
				if err := p.Save(newTestSession(t, id)); err != nil {
					t.Fatalf("Failed to save %s: %v", id, err)
				}
			}

			ids, err := p.ListAll()
			if err != nil {
				t.Fatalf("Failed to list sessions: %v", err)
			}
			sort.Strings(ids)
			if len(ids) != 3 || ids[0] != "aa11" || ids[2] != "cc33" {
				t.Errorf("Expected [aa11 bb22 cc33], got %v", ids)
			}

			if err := p.Delete("bb22"); err != nil {
				t.Fatalf("Failed to delete: %v", err)
			}
			if p.Exists("bb22") {
				t.Error("Expected bb22 to be gone")
			}
			if err := p.Delete("bb22"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}
			if _, err := p.Load("bb22"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound on load, got %v", err)
			}
		})
	}
}

func TestPersistence_SaveErrors(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			p := factory(t)
			if err := p.Save(nil); err == nil {
				t.Error("Expected error saving nil session")
			}
			if err := p.Save(&service.Session{ID: "empty"}); err == nil {
				t.Error("Expected error saving session without a game")
			}
		})
	}
}

func TestFilePersistence_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersistence(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("Failed to write stray file: %v", err)
	}

	if _, err := p.Load("junk"); err == nil {
		t.Error("Expected error loading corrupt session")
	}

	ids, err := p.ListAll()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(ids) != 1 || ids[0] != "junk" {
		t.Errorf("Expected only json files to be listed, got %v", ids)
	}
}

func TestPersistence_CaseInsensitiveIDs(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			p := factory(t)
			if err := p.Save(newTestSession(t, "AbCd")); err != nil {
				t.Fatalf("Failed to save: %v", err)
			}
			if !p.Exists("abcd") {
				t.Error("Expected lookup to ignore case")
			}
			loaded, err := p.Load("ABCD")
			if err != nil {
				t.Fatalf("Failed to load: %v", err)
			}
			if loaded.ID != "AbCd" {
				t.Errorf("Expected stored ID AbCd, got %s", loaded.ID)
			}
		})
	}
}

func TestManager_CleanupSavesEvictedSessions(t *testing.T) {
	p, err := NewFilePersistence(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	manager := NewManagerWithPersistence(p, zerolog.Nop())

	idle, _ := manager.Create("idle", "test", createTestConfig())
	busy, _ := manager.Create("busy", "test", createTestConfig())

	idle.Game.Resolve()
	tank, _ := busy.Game.Board.Find("alpha")
	busy.Game.Submit(engine.NewMove(tank.ID, 0, engine.North))

	stale := time.Now().Add(-2 * time.Hour)
	idle.LastAccessedAt = stale
	busy.LastAccessedAt = stale

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 session evicted, got %d", removed)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected the session with queued actions to stay, got %d live", manager.Count())
	}

	restored, err := manager.Get("idle")
	if err != nil {
		t.Fatalf("Expected evicted session to be restorable: %v", err)
	}
	if restored == idle {
		t.Error("Expected a restored copy, not the evicted instance")
	}
	if restored.Game.Day != engine.Tuesday {
		t.Errorf("Expected the save taken at eviction, got day %s", restored.Game.Day)
	}
}

func TestManagerWithPersistence(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			p := factory(t)
			manager := NewManagerWithPersistence(p, zerolog.Nop())

			session, err := manager.Create("auto1", "test", createTestConfig())
			if err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}
			if !p.Exists(session.ID) {
				t.Fatal("Session should be auto-saved on creation")
			}

			session.Game.Resolve()
			if err := manager.Save("auto1"); err != nil {
				t.Fatalf("Failed to save session: %v", err)
			}

			// A fresh manager finds the session lazily
			manager2 := NewManagerWithPersistence(p, zerolog.Nop())
			loaded, err := manager2.Get("auto1")
			if err != nil {
				t.Fatalf("Failed to get persisted session: %v", err)
			}
			if loaded.Game.Day != engine.Tuesday {
				t.Errorf("Expected persisted day tuesday, got %s", loaded.Game.Day)
			}
			if loaded.Game.Seed() == session.Game.Seed() {
				t.Error("Expected a fresh seed after restore")
			}

			// And in bulk
			manager.Create("auto2", "test", createTestConfig())
			manager3 := NewManagerWithPersistence(p, zerolog.Nop())
			if err := manager3.LoadPersistedSessions(); err != nil {
				t.Fatalf("Failed to load persisted sessions: %v", err)
			}
			if manager3.Count() != 2 {
				t.Errorf("Expected 2 loaded sessions, got %d", manager3.Count())
			}

			if err := manager3.SaveAllSessions(); err != nil {
				t.Errorf("Failed to save all sessions: %v", err)
			}

			if err := manager3.Delete("auto1"); err != nil {
				t.Fatalf("Failed to delete session: %v", err)
			}
			if p.Exists("auto1") {
				t.Error("Expected delete to remove persisted session")
			}

			if err := manager3.DeleteFromMemory("auto2"); err != nil {
				t.Fatalf("Failed to delete from memory: %v", err)
			}
			if !p.Exists("auto2") {
				t.Error("Expected DeleteFromMemory to keep persisted session")
			}
		})
	}
}
