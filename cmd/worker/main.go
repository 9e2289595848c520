// worker periodically deletes expired session rows. Verification never
// depends on this sweep; it is storage hygiene only.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"nomnom/session-service/internal/config"
	"nomnom/session-service/internal/db"
	"nomnom/session-service/internal/session/repository"
	"nomnom/session-service/internal/session/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	repo := repository.NewPostgresRepository(database)
	sessions := service.NewManager(repo, nil, nil, cfg.TTL(), cfg.StoreCallTimeout())

	interval := cfg.SweepInterval()
	log.Printf("worker: sweeping expired sessions every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, sessions)
	for {
		select {
		case <-ctx.Done():
			log.Println("worker stopped")
			return
		case <-ticker.C:
			sweep(ctx, sessions)
		}
	}
}

func sweep(ctx context.Context, sessions *service.Manager) {
	n, err := sessions.PurgeExpired(ctx)
	if err != nil {
		log.Printf("worker: purge expired: %v", err)
		return
	}
	if n > 0 {
		log.Printf("worker: purged %d expired sessions", n)
	}
}
