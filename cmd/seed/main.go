package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clubhub/config"
	"github.com/oksasatya/clubhub/internal/application"
	"github.com/oksasatya/clubhub/internal/container"
	"github.com/oksasatya/clubhub/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	var in application.RegisterInput
	flag.StringVar(&in.Email, "email", os.Getenv("SEED_ADMIN_EMAIL"), "admin email (promoted if it already exists)")
	flag.StringVar(&in.Username, "username", os.Getenv("SEED_ADMIN_USERNAME"), "username for a new admin")
	flag.StringVar(&in.Password, "password", os.Getenv("SEED_ADMIN_PASSWORD"), "password for a new admin")
	flag.StringVar(&in.FirstName, "first-name", "Club", "first name for a new admin")
	flag.StringVar(&in.LastName, "last-name", "Admin", "last name for a new admin")
	flag.Parse()

	if in.Email == "" {
		logger.Fatal("-email or SEED_ADMIN_EMAIL is required")
	}
	if cfg.StoreDriver == config.StoreMemory {
		logger.Fatal("seeding the in-memory store has no effect")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := container.Build(ctx, cfg, logger, container.Options{})
	if err != nil {
		logger.WithError(err).Fatal("store init failed")
	}
	defer c.Close()

	u, created, err := application.EnsureAdmin(ctx, c.Users, c.Users, c.Hasher, in)
	if err != nil {
		logger.WithError(err).Error("seed admin failed")
		c.Close()
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{
		"user_id":  u.ID,
		"email":    u.Email,
		"username": u.Username,
		"created":  created,
	}).Info("admin ensured")
}
