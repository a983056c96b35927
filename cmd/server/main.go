package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/condo-maintenance/internal/auth"
	"github.com/iliyamo/condo-maintenance/internal/config"
	"github.com/iliyamo/condo-maintenance/internal/database"
	"github.com/iliyamo/condo-maintenance/internal/handler"
	"github.com/iliyamo/condo-maintenance/internal/queue"
	"github.com/iliyamo/condo-maintenance/internal/repository"
	"github.com/iliyamo/condo-maintenance/internal/router"
	queue_publisher "github.com/iliyamo/condo-maintenance/internal/service"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; nil disables the login limiter and response cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; login limiter and cache disabled")
	}

	users := repository.NewUserRepo(db)
	complexes := repository.NewComplexRepo(db)
	requisitions := repository.NewRequisitionRepo(db)
	tokens := auth.NewService(auth.Config{
		AccessSecret:  []byte(cfg.JWTSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		AccessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	}, repository.NewTokenRepo(db))

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, complexes, tokens),
		Users:        handler.NewUserHandler(users),
		Complexes:    handler.NewComplexHandler(complexes),
		Requisitions: handler.NewRequisitionHandler(users, requisitions, queue_publisher.PublishRequisitionCreated),
	}

	e := echo.New()
	router.Register(e, h, tokens, rdb)

	// Notification feed for maintenance staff; reconnects on its own.
	go queue.StartRequisitionConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
