package repository

import (
	"context"
	"errors"
	"time"

	"nomnom/session-service/internal/session/domain"
)

// ErrDuplicateID is returned by Create when the session id already exists.
// Effectively impossible with generated UUIDs, but handled rather than assumed away.
var ErrDuplicateID = errors.New("duplicate session id")

// Repository defines persistence for sessions. Rows are never physically
// deleted by lifecycle operations; DeleteExpired exists only for storage hygiene.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	// GetByID returns the session for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// ListByUser returns all sessions for the user, valid and invalid.
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	// MarkInvalid flags one session invalid. Idempotent: already-invalid is a no-op success.
	MarkInvalid(ctx context.Context, id string) error
	// MarkInvalidByUser flags every valid session for the user invalid, except
	// sessions whose ip_address equals exceptIP when exceptIP is non-empty.
	// Executes as one statement and returns the ids it revoked.
	MarkInvalidByUser(ctx context.Context, userID, exceptIP string) ([]string, error)
	// DeleteExpired removes rows whose expiry passed before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
