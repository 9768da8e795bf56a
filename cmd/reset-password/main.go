package main

import (
	"context"
	"flag"

	"go-inventory-stock/internal/config"
	"go-inventory-stock/internal/logger"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/pkg/database"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "admin@example.com", "account to reset")
	newPassword := flag.String("password", "admin123", "new password")
	flag.Parse()

	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel)
	defer log.Sync()
	if envErr != nil {
		log.Debug(".env file not found, relying on system env")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	ctx := context.Background()
	users := repository.NewUserRepo(db)

	// 3. Find user
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatal("user not found", zap.String("email", *email), zap.Error(err))
	}

	// 4. Hash new password, sesi lama ikut dimatikan
	if err := user.SetPassword(*newPassword); err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}
	if err := users.ResetCredentials(ctx, user.ID, user.Password); err != nil {
		log.Fatal("failed to update password", zap.Error(err))
	}

	log.Info("password reset", zap.String("email", user.Email))
}
