// Package main provides data seeding for WorkDesk development setups: a
// couple of users, a category tree and sample tasks and meetings, enough
// for the notification rules to have something to chew on.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"workdesk.io/workdesk/internal/config"
	"workdesk.io/workdesk/internal/infrastructure"
	"workdesk.io/workdesk/internal/pkg/logger"
	"workdesk.io/workdesk/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(ctx); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	users := repository.NewUserRepo(db.Pool)
	tasks := repository.NewTaskRepo(db.Pool)
	meetings := repository.NewMeetingRepo(db.Pool)
	categories := repository.NewCategoryRepo(db.Pool)

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "workdesk-dev"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	alice, err := users.Create(ctx, "alice", "alice@example.com", string(hash))
	if err != nil {
		return fmt.Errorf("seed user alice: %w", err)
	}
	bob, err := users.Create(ctx, "bob", "bob@example.com", string(hash))
	if err != nil {
		return fmt.Errorf("seed user bob: %w", err)
	}
	logger.Info("seeded users", zap.Int64("alice", alice.ID), zap.Int64("bob", bob.ID))

	general, err := categories.Create(ctx, "General", "Unsorted records", nil)
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	if _, err := categories.Create(ctx, "Finance", "Budget documents and reports", &general.ID); err != nil {
		return fmt.Errorf("seed category: %w", err)
	}

	overdue := time.Now().Add(-2 * time.Hour)
	if _, err := tasks.Create(ctx, repository.CreateTaskParams{
		UserID:  alice.ID,
		Title:   "File quarterly report",
		DueDate: &overdue,
	}); err != nil {
		return fmt.Errorf("seed task: %w", err)
	}

	if _, err := meetings.Create(ctx, repository.CreateMeetingParams{
		OrganizerID:    alice.ID,
		Title:          "Weekly sync",
		MeetingTime:    time.Now().Add(30 * time.Minute),
		Location:       "Room 2",
		ParticipantIDs: []int64{bob.ID},
	}); err != nil {
		return fmt.Errorf("seed meeting: %w", err)
	}

	logger.Info("seed completed")
	return nil
}
