package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tutorial-portal/internal/database"
	"tutorial-portal/internal/player"
)

const validPages = `{
  "homepage": {
    "title": "Tutorials",
    "type": "selector",
    "header": {"title": "Choose a room", "subtitle": ""},
    "deployments": [{"id": "mtr-navigator", "name": "Teams Rooms", "subtitle": "", "thumbnail": ""}]
  },
  "mtr-navigator": {
    "title": "Teams Rooms",
    "type": "deployment",
    "header": {"title": "Teams Rooms", "subtitle": ""},
    "sections": [{"title": "Basics", "videos": [
      {"title": "Join", "video": "videos/join.mp4", "thumbnail": "", "default": true}
    ]}]
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	source := writeFile(t, "pages.json", validPages)

	out, err := runCommand(t, "validate", source)
	if err != nil {
		t.Fatalf("validate error = %v, output:\n%s", err, out)
	}
	if !strings.Contains(out, "2 routes, 0 issues") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidateCommandReportsErrors(t *testing.T) {
	source := writeFile(t, "pages.json", `{
  "homepage": {"title": "T", "type": "selector", "header": {"title": "", "subtitle": ""},
    "deployments": [{"id": "missing", "name": "Missing", "subtitle": "", "thumbnail": ""}]}
}`)

	out, err := runCommand(t, "validate", source)
	if err == nil {
		t.Fatal("expected error for a deployment without a page")
	}
	if !strings.Contains(out, `deployment "missing" has no page`) {
		t.Errorf("expected lint finding in output:\n%s", out)
	}
}

func TestValidateCommandUsesConfigSource(t *testing.T) {
	source := writeFile(t, "pages.json", validPages)
	config := writeFile(t, "portal.yaml", "pages_source: "+source+"\n")

	out, err := runCommand(t, "--config", config, "validate")
	if err != nil {
		t.Fatalf("validate error = %v, output:\n%s", err, out)
	}
	if !strings.Contains(out, source) {
		t.Errorf("expected source path in output:\n%s", out)
	}
}

func TestValidateCommandBadSource(t *testing.T) {
	if _, err := runCommand(t, "validate", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for a missing page config")
	}

	source := writeFile(t, "pages.json", `{"homepage": {"type": "carousel"}}`)
	if _, err := runCommand(t, "validate", source); err == nil {
		t.Error("expected error for an unknown page type")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "tutorial-portal ") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestSweepInterval(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{30 * time.Minute, 3 * time.Minute},
		{5 * time.Second, time.Second},
		{time.Millisecond, time.Second},
	}

	for _, tt := range tests {
		if got := sweepInterval(tt.ttl); got != tt.want {
			t.Errorf("sweepInterval(%v) = %v, want %v", tt.ttl, got, tt.want)
		}
	}
}

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStatsAdapter(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	for _, name := range []string{"video_play", "video_play", "page_loaded"} {
		if err := db.InsertEvent(ctx, database.Event{Name: name, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("InsertEvent() error = %v", err)
		}
	}

	registry := player.NewRegistry(player.Config{}, nil, nil, time.Hour)
	if _, _, err := registry.Create(false); err != nil {
		t.Fatal(err)
	}

	stats := (&statsAdapter{db: db, players: registry}).GetStats()

	if stats.EventCounts["video_play"] != 2 || stats.EventCounts["page_loaded"] != 1 {
		t.Errorf("EventCounts = %v", stats.EventCounts)
	}
	if stats.ActiveSessions != 1 {
		t.Errorf("ActiveSessions = %d, want 1", stats.ActiveSessions)
	}
	if _, ok := stats.DBFileSizes["main"]; !ok {
		t.Errorf("DBFileSizes = %v, expected a main file size", stats.DBFileSizes)
	}
}

func TestPruneEventsStopsOnCancel(t *testing.T) {
	db := newTestDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())

	old := database.Event{Name: "page_loaded", CreatedAt: time.Now().Add(-48 * time.Hour)}
	if err := db.InsertEvent(ctx, old); err != nil {
		t.Fatalf("InsertEvent() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		pruneEvents(ctx, db, 24*time.Hour, time.Hour)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		counts, err := db.EventCounts(context.Background())
		if err == nil && counts["page_loaded"] == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("old event was not pruned")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pruneEvents did not stop after cancel")
	}
}
