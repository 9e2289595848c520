package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"nomnom/session-service/internal/config"
	"nomnom/session-service/internal/db"
	"nomnom/session-service/internal/gateway"
	healthhandler "nomnom/session-service/internal/health/handler"
	"nomnom/session-service/internal/security"
	"nomnom/session-service/internal/server"
	"nomnom/session-service/internal/session/cache"
	sessionhandler "nomnom/session-service/internal/session/handler"
	"nomnom/session-service/internal/session/repository"
	"nomnom/session-service/internal/session/service"
	"nomnom/session-service/internal/telemetry/otel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "session-service", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	var sessionCache cache.Cache
	var redisCache *cache.RedisCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer client.Close()
		redisCache = cache.NewRedisCache(client)
		sessionCache = redisCache
	}

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TTL())

	repo := repository.NewPostgresRepository(database)
	sessions := service.NewManager(repo, sessionCache, tokens, cfg.TTL(), cfg.StoreCallTimeout())
	auth := gateway.New(tokens, sessions)

	var cachePinger healthhandler.Pinger
	if redisCache != nil {
		cachePinger = redisCache
	}
	router := server.NewRouter(server.Deps{
		Sessions: sessionhandler.New(sessions, auth),
		Auth:     auth,
		Health:   healthhandler.New(database, cachePinger),
	})

	if err := server.New(cfg.HTTPAddr, router).Run(ctx); err != nil {
		log.Fatalf("serve: %v", err)
	}
	log.Println("http server stopped")
}
