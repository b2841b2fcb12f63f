package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/auth"
	"github.com/iliyamo/queue-ticketing/internal/config"
	"github.com/iliyamo/queue-ticketing/internal/database"
	"github.com/iliyamo/queue-ticketing/internal/handler"
	"github.com/iliyamo/queue-ticketing/internal/middleware"
	"github.com/iliyamo/queue-ticketing/internal/queue"
	"github.com/iliyamo/queue-ticketing/internal/repository"
	"github.com/iliyamo/queue-ticketing/internal/router"
	"github.com/iliyamo/queue-ticketing/internal/ticket"
)

func main() {
	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("server: database connection failed: %v", err)
	}
	defer db.Close()

	tickets := repository.NewTicketRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	engine := ticket.NewService(tickets)

	// Sentinel tokens are checked first so smoke tests work without a
	// signing secret; everything else falls through to JWT.
	gate := auth.Chain{
		auth.NewSentinelVerifier(),
		&auth.JWTVerifier{Secret: cfg.JWTSecret},
	}

	e := echo.New()
	e.HideBanner = true

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("server: redis unavailable, rate limiting and response caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	calledCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(users, tokens, cfg), gate)
	router.RegisterTickets(e, handler.NewTicketHandler(engine), gate, calledCache)
	router.RegisterAdmin(e, handler.NewAdminHandler(engine), gate)

	go func() {
		if err := queue.StartTicketCallConsumer(); err != nil {
			log.Printf("server: ticket call consumer stopped: %v", err)
		}
	}()

	log.Printf("server: listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
