package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"nomnom/session-service/internal/session/domain"
)

const uniqueViolation = "23505"

// PostgresRepository persists sessions in Postgres. Each mutation is a single
// statement; the database's row-level atomicity is the only concurrency
// control the store needs.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the session. The session must have ID set.
// Returns ErrDuplicateID if a row with the same id already exists.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	const q = `
		INSERT INTO sessions (session_id, user_id, device_info, ip_address, created_at, expires_at, is_valid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.DeviceInfo, s.IPAddress, s.CreatedAt, s.ExpiresAt, s.IsValid)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	const q = `
		SELECT session_id, user_id, device_info, ip_address, created_at, expires_at, is_valid
		FROM sessions
		WHERE session_id = $1
	`
	var s domain.Session
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.UserID, &s.DeviceInfo, &s.IPAddress, &s.CreatedAt, &s.ExpiresAt, &s.IsValid,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListByUser returns all sessions for the given user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	const q = `
		SELECT session_id, user_id, device_info, ip_address, created_at, expires_at, is_valid
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.DeviceInfo, &s.IPAddress, &s.CreatedAt, &s.ExpiresAt, &s.IsValid); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// MarkInvalid flags the session invalid. Already-invalid and missing rows are no-op successes.
func (r *PostgresRepository) MarkInvalid(ctx context.Context, id string) error {
	const q = `UPDATE sessions SET is_valid = FALSE WHERE session_id = $1 AND is_valid`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// MarkInvalidByUser flags every valid session for the user invalid in one
// statement, skipping sessions from exceptIP when it is non-empty. Returns the
// revoked ids. Concurrent readers observe each row either before or after the
// update; no partially-applied set is visible.
func (r *PostgresRepository) MarkInvalidByUser(ctx context.Context, userID, exceptIP string) ([]string, error) {
	const q = `
		UPDATE sessions
		SET is_valid = FALSE
		WHERE user_id = $1 AND is_valid AND ($2 = '' OR ip_address <> $2)
		RETURNING session_id
	`
	rows, err := r.db.QueryContext(ctx, q, userID, exceptIP)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteExpired removes rows whose expiry passed before the given time and
// returns how many were removed. Housekeeping only; correctness never depends on it.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, q, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
