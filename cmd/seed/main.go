package main

import (
	"context"
	stderrors "errors"
	"fmt"

	"recruitflow/internal/config"
	"recruitflow/internal/db"
	"recruitflow/internal/errors"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
	"recruitflow/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	logger.Init(cfg.AppEnv)
	logger.Info("starting seed")

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, false)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}
	logger.Info("database migrations completed")

	ctx := context.Background()
	activity := service.NewActivityService(repository.NewActivityLogRepository(gormDB))
	defer activity.Close()

	users := service.NewUserService(repository.NewUserRepository(gormDB), repository.NewTransactor(gormDB), nil)
	created, err := seedAdmin(ctx, users, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		logger.Fatal("failed to seed admin", "error", err)
	}
	if created {
		logger.Info("admin user created", "email", cfg.SeedAdminEmail)
	} else {
		logger.Info("admin user already exists", "email", cfg.SeedAdminEmail)
	}

	plans := service.NewPlanService(repository.NewPlanRepository(gormDB), activity, nil)
	count, err := plans.SeedDefaults(ctx)
	if err != nil {
		logger.Fatal("failed to seed plans", "error", err)
	}

	logger.Info("seed completed", "plans_created", count)
}

// seedAdmin creates the admin account unless the email is already registered.
func seedAdmin(ctx context.Context, users service.UserService, email, password string) (bool, error) {
	_, err := users.Create(ctx, service.CreateUserInput{
		Email:    email,
		Password: password,
		FullName: "Administrator",
		Username: "admin",
		Role:     model.RoleAdmin,
	})
	if stderrors.Is(err, errors.ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create admin %s: %w", email, err)
	}
	return true, nil
}
