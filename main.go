package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"littlelemon/cache"
	"littlelemon/configs"
	"littlelemon/events"
	"littlelemon/logger"
	"littlelemon/repository"
	"littlelemon/routes"
	"littlelemon/services"
	"littlelemon/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configs.LoadConfig()
	log := logger.New("littlelemon", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := configs.ConnectionDB(cfg)
	if err != nil {
		log.Error("connect database", logger.Err(err))
		os.Exit(1)
	}
	if err := configs.SetupDatabase(db); err != nil {
		log.Error("migrate database", logger.Err(err))
		os.Exit(1)
	}
	if err := configs.SeedGroups(db); err != nil {
		log.Error("seed groups", logger.Err(err))
		os.Exit(1)
	}
	if err := configs.SeedAdmin(db, cfg, log); err != nil {
		log.Error("seed admin", logger.Err(err))
		os.Exit(1)
	}
	if err := configs.SeedCategories(db); err != nil {
		log.Error("seed categories", logger.Err(err))
		os.Exit(1)
	}

	auth := services.NewAuthService(repository.NewUserRepository(db), cfg.JWTSecret, cfg.JWTTTL)
	deps := routes.Deps{DB: db, Config: cfg, Log: log, Auth: auth}

	// Redis menu cache (optional)
	if cfg.RedisURL != "" {
		rdb, err := cache.ConnectRedis(cfg)
		if err != nil {
			log.Warn("redis unavailable, menu cache disabled", logger.Err(err))
		} else {
			defer rdb.Close()
			deps.MenuRepo = cache.NewCachedMenuRepository(
				repository.NewMenuRepository(db), rdb, cfg.MenuCacheTTL, log)
			log.Info("menu cache enabled", "addr", cfg.RedisURL, "ttl", cfg.MenuCacheTTL)
		}
	}

	// RabbitMQ order events (optional)
	if cfg.AMQPURL != "" {
		conn, err := events.Dial(cfg.AMQPURL, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, order events stay local", logger.Err(err))
		} else {
			defer conn.Close()
			deps.Events = events.NewAMQPPublisher(conn, log)
			log.Info("publishing order events", "exchange", events.ExchangeName)
		}
	}

	// Websocket hub
	deps.Hub = ws.NewOrderHub(log, auth)
	go deps.Hub.Run(ctx)

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", "addr", srv.Addr, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", logger.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown", logger.Err(err))
	}
}
