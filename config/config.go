// Package config holds the process-wide settings edited through the
// settings screen. Components receive the loaded Config explicitly; nothing
// reads it as ambient global state.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/zestyzy/CampusStudyHub/lan"
	"github.com/zestyzy/CampusStudyHub/storage"
)

const fileName = "config.json"

// DefaultUpcomingWindowDays is the reminder lookahead used until the user
// picks their own.
const DefaultUpcomingWindowDays = 7

// Config is the persisted application configuration.
type Config struct {
	BaseDirectory      string     `json:"base_directory"`
	Courses            []string   `json:"courses"`
	UpcomingWindowDays int        `json:"upcoming_window_days"`
	Peers              []lan.Peer `json:"lan_peers,omitempty"`
}

// Validate checks the settings a client is trying to save.
func (c Config) Validate() error {
	if c.UpcomingWindowDays <= 0 {
		return errors.New("upcoming_window_days must be greater than zero")
	}
	for _, p := range c.Peers {
		if p.Host == "" || p.Port <= 0 || p.Port > 65535 {
			return errors.New("lan peer needs a host and a port between 1 and 65535")
		}
	}
	return nil
}

// Default returns the first-run configuration.
func Default() Config {
	base := "StudyMaterials"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, "StudyMaterials")
	}
	return Config{
		BaseDirectory:      base,
		Courses:            []string{"Computer Science", "Mathematics", "Physics"},
		UpcomingWindowDays: DefaultUpcomingWindowDays,
	}
}

// Load reads the configuration from dir, writing defaults on first run. A
// corrupt file yields defaults without overwriting what is on disk, so a
// hand-edit gone wrong can still be repaired.
func Load(dir string) (Config, error) {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := Save(dir, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		log.WithFields(log.Fields{"path": path, "error": err.Error()}).Warn("config unreadable, falling back to defaults")
		return Default(), nil
	}
	if cfg.UpcomingWindowDays <= 0 {
		cfg.UpcomingWindowDays = DefaultUpcomingWindowDays
	}
	cfg.BaseDirectory = ExpandHome(cfg.BaseDirectory)
	return cfg, nil
}

// Save persists the configuration atomically.
func Save(dir string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := sonic.ConfigDefault.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(filepath.Join(dir, fileName), data, 0o644)
}

// ExpandHome resolves a leading ~ against the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
