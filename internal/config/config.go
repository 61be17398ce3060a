package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"dayplan/internal/reminder"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "dayplan.db"
	DefaultUserID         = "local"
)

// Reminders holds the per-group reminder preferences. Times are "HH:mm"
// strings in the file and validated on load.
type Reminders struct {
	MajorEnabled bool   `toml:"major_enabled"`
	MajorTime    string `toml:"major_time"`
	SubEnabled   bool   `toml:"sub_enabled"`
	SubTime      string `toml:"sub_time"`
}

type Config struct {
	DBPath        string    `toml:"db_path"`
	DataDir       string    `toml:"data_dir"`
	UserID        string    `toml:"user_id"`
	Notifications bool      `toml:"notifications"`
	Reminders     Reminders `toml:"reminders"`
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.UserID == "" {
		cfg.UserID = DefaultUserID
	}
	return cfg, nil
}

// FromEnv applies DAYPLAN_* environment overrides on top of a loaded
// config. Malformed values are ignored and the base value kept.
func FromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("DAYPLAN_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("DAYPLAN_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DAYPLAN_USER_ID")); v != "" {
		cfg.UserID = v
	}
	if v, ok := getEnvBool("DAYPLAN_NOTIFICATIONS"); ok {
		cfg.Notifications = v
	}
	if v, ok := getEnvBool("DAYPLAN_MAJOR_REMINDERS"); ok {
		cfg.Reminders.MajorEnabled = v
	}
	if v, ok := getEnvBool("DAYPLAN_SUB_REMINDERS"); ok {
		cfg.Reminders.SubEnabled = v
	}
	if v := strings.TrimSpace(os.Getenv("DAYPLAN_MAJOR_REMINDER_TIME")); v != "" {
		if _, err := reminder.ParseTimeOfDay(v); err == nil {
			cfg.Reminders.MajorTime = v
		}
	}
	if v := strings.TrimSpace(os.Getenv("DAYPLAN_SUB_REMINDER_TIME")); v != "" {
		if _, err := reminder.ParseTimeOfDay(v); err == nil {
			cfg.Reminders.SubTime = v
		}
	}
	return cfg
}

// ReminderPreferences converts the file representation into the scheduler's
// preference type. Invalid time strings fall back to the defaults rather
// than failing startup.
func (c Config) ReminderPreferences() reminder.Preferences {
	prefs := reminder.Preferences{
		MajorEnabled: c.Reminders.MajorEnabled,
		MajorTime:    reminder.TimeOfDay{Hour: 9},
		SubEnabled:   c.Reminders.SubEnabled,
		SubTime:      reminder.TimeOfDay{Hour: 10, Minute: 30},
	}
	if tod, err := reminder.ParseTimeOfDay(c.Reminders.MajorTime); err == nil {
		prefs.MajorTime = tod
	}
	if tod, err := reminder.ParseTimeOfDay(c.Reminders.SubTime); err == nil {
		prefs.SubTime = tod
	}
	return prefs
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:        DefaultDBName,
		DataDir:       defaultDataDir(),
		UserID:        DefaultUserID,
		Notifications: false,
		Reminders: Reminders{
			MajorEnabled: true,
			MajorTime:    "09:00",
			SubEnabled:   true,
			SubTime:      "10:30",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dayplan"
	}
	return filepath.Join(home, ".dayplan")
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
