package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/zestyzy/CampusStudyHub/lan"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UpcomingWindowDays != DefaultUpcomingWindowDays {
		t.Fatalf("unexpected window: %d", cfg.UpcomingWindowDays)
	}
	if len(cfg.Courses) == 0 {
		t.Fatal("expected default course list")
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Fatalf("defaults were not written: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		BaseDirectory:      filepath.Join(dir, "materials"),
		Courses:            []string{"Algorithms", "Compilers"},
		UpcomingWindowDays: 3,
		Peers:              []lan.Peer{{Label: "lab", Host: "192.168.1.20", Port: 9999}},
	}

	if err := Save(dir, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Fatalf("round trip changed config:\n got %#v\nwant %#v", loaded, cfg)
	}
}

func TestLoadCorruptFallsBackWithoutOverwriting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{{{"), 0o644); err != nil {
		t.Fatalf("write corrupt config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UpcomingWindowDays != DefaultUpcomingWindowDays {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != "{{{" {
		t.Fatal("corrupt config was overwritten")
	}
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Peers = []lan.Peer{{Host: "", Port: 70000}}

	if err := Save(dir, cfg); err == nil {
		t.Fatal("expected invalid peer to be rejected")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if got := ExpandHome("~/notes"); got != filepath.Join(home, "notes") {
		t.Fatalf("unexpected expansion: %s", got)
	}
	if got := ExpandHome("/absolute/path"); got != "/absolute/path" {
		t.Fatalf("absolute path changed: %s", got)
	}
	if got := ExpandHome("~user/notes"); got != "~user/notes" {
		t.Fatalf("foreign-user path changed: %s", got)
	}
}
