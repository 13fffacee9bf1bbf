package main

import (
	"context"
	"fmt"
	"log"

	"store-ratings/internal/auth"
	"store-ratings/internal/config"
	"store-ratings/internal/database"
	"store-ratings/internal/logging"
	"store-ratings/internal/repository"
	"store-ratings/internal/repository/memory"
	"store-ratings/internal/server"
	"store-ratings/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	var repo repository.Repository
	switch cfg.DBDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		repo = memory.New()
	default:
		db, err := database.Open(cfg.DBDSN, logger)
		if err != nil {
			logger.WithError(err).Fatal("database unavailable")
		}
		defer func() {
			if err := database.Close(db); err != nil {
				logger.WithError(err).Warn("failed to close database")
			}
		}()
		repo = repository.NewGormRepository(db)
	}

	svc := service.New(repo, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL()), logger)
	if err := svc.EnsureAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.WithError(err).Error("failed to seed default admin")
	}

	r := server.NewRouter(svc, cfg.SessionSecret, logger)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Infof("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
