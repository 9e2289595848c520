// seed inserts development sample sessions for local testing.
// Idempotent: skips inserts if the dev user already has sessions.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"nomnom/session-service/internal/config"
	"nomnom/session-service/internal/db"
	"nomnom/session-service/internal/session/domain"
	"nomnom/session-service/internal/session/repository"
)

const devUserID = "dev-user-001"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewPostgresRepository(database)

	existing, err := repo.ListByUser(ctx, devUserID)
	if err != nil {
		log.Fatalf("seed: list: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("seed: dev user %s already has %d sessions; skipping", devUserID, len(existing))
		return
	}

	now := time.Now().UTC()
	samples := []*domain.Session{
		{
			ID:         uuid.New().String(),
			UserID:     devUserID,
			DeviceInfo: "iPhone 15; nomnom-app/3.2.1",
			IPAddress:  "10.0.0.10",
			CreatedAt:  now,
			ExpiresAt:  now.Add(cfg.TTL()),
			IsValid:    true,
		},
		{
			ID:         uuid.New().String(),
			UserID:     devUserID,
			DeviceInfo: "Chrome 126; macOS",
			IPAddress:  "10.0.0.11",
			CreatedAt:  now.Add(-time.Hour),
			ExpiresAt:  now.Add(cfg.TTL() - time.Hour),
			IsValid:    true,
		},
		{
			ID:         uuid.New().String(),
			UserID:     devUserID,
			DeviceInfo: "Firefox 128; Linux",
			IPAddress:  "10.0.0.12",
			CreatedAt:  now.Add(-30 * 24 * time.Hour),
			ExpiresAt:  now.Add(-23 * 24 * time.Hour),
			IsValid:    true, // expired by time, never explicitly revoked
		},
	}
	for _, s := range samples {
		if err := repo.Create(ctx, s); err != nil {
			log.Fatalf("seed: create %s: %v", s.ID, err)
		}
	}
	log.Printf("seed: created %d sessions for %s", len(samples), devUserID)
}
