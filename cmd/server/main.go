package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/adilbk/assurauto-backend/internal/config"
	"github.com/adilbk/assurauto-backend/internal/database"
	"github.com/adilbk/assurauto-backend/internal/handler"
	"github.com/adilbk/assurauto-backend/internal/middleware"
	"github.com/adilbk/assurauto-backend/internal/pricing"
	"github.com/adilbk/assurauto-backend/internal/queue"
	"github.com/adilbk/assurauto-backend/internal/repository"
	"github.com/adilbk/assurauto-backend/internal/router"
	"github.com/adilbk/assurauto-backend/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and catalog cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	quotes := repository.NewQuoteRepo(db)
	policies := repository.NewPolicyRepo(db)
	payments := repository.NewPaymentRepo(db)
	claims := repository.NewClaimRepo(db)

	rating := pricing.DefaultRating()

	e := echo.New()
	e.HideBanner = true

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e, handler.NewCatalogHandler(rating), cacheMW)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterClient(e, router.ClientHandlers{
		Vehicles: handler.NewVehicleHandler(vehicles),
		Quotes:   handler.NewQuoteHandler(quotes, vehicles, rating),
		Policies: handler.NewPolicyHandler(policies, payments),
		Payments: handler.NewPaymentHandler(db, payments, policies),
		Claims:   handler.NewClaimHandler(claims, policies),
	}, cfg.JWTSecret, limitMW)
	router.RegisterAdmin(e, router.AdminHandlers{
		Quotes:   handler.NewAdminQuoteHandler(quotes),
		Policies: handler.NewAdminPolicyHandler(db, quotes, policies, payments),
		Claims:   handler.NewAdminClaimHandler(db, claims, payments, policies),
		Payments: handler.NewAdminPaymentHandler(payments),
	}, cfg.JWTSecret)

	// Notification consumer keeps its own reconnect loop.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	// Periodic sweeps: stale quotes, overdue installments, ended policies.
	sweeper := service.NewSweeper(quotes, policies, payments,
		time.Duration(cfg.SweepIntervalMin)*time.Minute)
	go sweeper.Run(context.Background())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
