package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load or create: %v", err)
	}
	if cfg.DBPath != DefaultDBName || cfg.UserID != DefaultUserID {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if !cfg.Reminders.MajorEnabled || cfg.Reminders.MajorTime != "09:00" {
		t.Fatalf("unexpected reminder defaults: %#v", cfg.Reminders)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// A second load reads the file back unchanged.
	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != cfg {
		t.Fatalf("reload mismatch: %#v vs %#v", again, cfg)
	}
}

func TestLoadOrCreateReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
db_path = "custom.db"
user_id = "alice"
notifications = true

[reminders]
major_enabled = false
major_time = "08:15"
sub_enabled = true
sub_time = "11:00"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "custom.db" || cfg.UserID != "alice" || !cfg.Notifications {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if cfg.Reminders.MajorEnabled || cfg.Reminders.MajorTime != "08:15" {
		t.Fatalf("unexpected reminders: %#v", cfg.Reminders)
	}
	if cfg.DataDir == "" {
		t.Fatalf("data dir default not filled")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DAYPLAN_DB_PATH", "/tmp/env.db")
	t.Setenv("DAYPLAN_USER_ID", "bob")
	t.Setenv("DAYPLAN_NOTIFICATIONS", "yes")
	t.Setenv("DAYPLAN_MAJOR_REMINDERS", "off")
	t.Setenv("DAYPLAN_MAJOR_REMINDER_TIME", "07:45")
	t.Setenv("DAYPLAN_SUB_REMINDER_TIME", "25:99")

	cfg := FromEnv(defaultConfig())
	if cfg.DBPath != "/tmp/env.db" || cfg.UserID != "bob" || !cfg.Notifications {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if cfg.Reminders.MajorEnabled {
		t.Fatalf("major reminders should be disabled: %#v", cfg.Reminders)
	}
	if cfg.Reminders.MajorTime != "07:45" {
		t.Fatalf("major time not overridden: %q", cfg.Reminders.MajorTime)
	}
	if cfg.Reminders.SubTime != "10:30" {
		t.Fatalf("malformed sub time should be ignored: %q", cfg.Reminders.SubTime)
	}
}

func TestReminderPreferences(t *testing.T) {
	cfg := defaultConfig()
	cfg.Reminders.MajorTime = "18:05"
	cfg.Reminders.SubTime = "bogus"

	prefs := cfg.ReminderPreferences()
	if prefs.MajorTime.Hour != 18 || prefs.MajorTime.Minute != 5 {
		t.Fatalf("unexpected major time: %#v", prefs.MajorTime)
	}
	// Invalid strings fall back to the built-in default.
	if prefs.SubTime.Hour != 10 || prefs.SubTime.Minute != 30 {
		t.Fatalf("unexpected sub time fallback: %#v", prefs.SubTime)
	}
}
