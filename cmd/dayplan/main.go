package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"dayplan/internal/alarm"
	"dayplan/internal/complete"
	"dayplan/internal/config"
	"dayplan/internal/engine"
	"dayplan/internal/outbox"
	"dayplan/internal/reminder"
	"dayplan/internal/storage"
	"dayplan/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dayplan failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("DAYPLAN_CONFIG")
	if cfgPath == "" {
		cfgPath = config.DefaultConfigFileName
	}
	cfg, err := config.LoadOrCreate(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = config.FromEnv(cfg)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	outboxStore, err := outbox.NewFileStore(filepath.Join(cfg.DataDir, "outbox"))
	if err != nil {
		return fmt.Errorf("outbox store: %w", err)
	}
	reminderStore, err := reminder.NewFileStore(filepath.Join(cfg.DataDir, "reminders"))
	if err != nil {
		return fmt.Errorf("reminder store: %w", err)
	}

	alarms := alarm.NewEngine(64)
	alarms.Start()
	defer alarms.Stop()

	reconciler := complete.NewReconciler(outboxStore, engine.StoreWriter{Store: store})
	syncer := reminder.NewSyncer(reminderStore, alarms)

	session := engine.NewSession(cfg.UserID, store, reconciler, syncer, cfg.ReminderPreferences())
	ctx := context.Background()
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.Stop()

	uiSub, err := store.Subscribe(ctx, cfg.UserID)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer uiSub.Close()

	m := update.NewModel(update.Deps{
		UserID:         cfg.UserID,
		Store:          store,
		Toggler:        session,
		Snapshots:      uiSub.C(),
		Alarms:         alarms.C(),
		Notifier:       update.ExecDesktopNotifier{},
		DesktopEnabled: cfg.Notifications,
		StatePath:      filepath.Join(cfg.DataDir, "ui-state.json"),
	})
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
