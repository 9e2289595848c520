// Package service holds the session manager: creation, verification, and the
// revocation policies. The manager is stateless; the store's row-level
// mutations are the only concurrency control point.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"nomnom/session-service/internal/security"
	"nomnom/session-service/internal/session/cache"
	"nomnom/session-service/internal/session/domain"
)

// Sentinel errors for the session manager; handlers map them to HTTP statuses.
var (
	// ErrInvalidInput is returned for malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFound is returned when no session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrStorage wraps store failures (timeouts, connection errors). Callers
	// apply their own retry policy; the manager never retries internally.
	ErrStorage = errors.New("session store failure")
)

// Repo is the minimal session repository needed by the manager.
type Repo interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	MarkInvalid(ctx context.Context, id string) error
	MarkInvalidByUser(ctx context.Context, userID, exceptIP string) ([]string, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Manager orchestrates session lifecycle over the store, the optional Redis
// mirror, and the token provider.
type Manager struct {
	repo         Repo
	cache        cache.Cache
	tokens       *security.TokenProvider
	ttl          time.Duration
	storeTimeout time.Duration
	nowF         func() time.Time
}

// NewManager returns a Manager with the given dependencies. cache may be nil
// to disable the mirror. ttl is the fixed session lifetime; storeTimeout
// bounds every store call.
func NewManager(repo Repo, c cache.Cache, tokens *security.TokenProvider, ttl, storeTimeout time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	if storeTimeout <= 0 {
		storeTimeout = 3 * time.Second
	}
	return &Manager{
		repo:         repo,
		cache:        c,
		tokens:       tokens,
		ttl:          ttl,
		storeTimeout: storeTimeout,
		nowF:         func() time.Time { return time.Now().UTC() },
	}
}

func (m *Manager) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.storeTimeout)
}

// Create generates a new session for the user, persists it, mirrors it, and
// issues a token bound to the session id. Multiple live sessions per user are
// allowed (one per device); creation never fails because of existing sessions.
func (m *Manager) Create(ctx context.Context, userID, ipAddress, deviceInfo string) (*domain.Session, string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, "", fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	now := m.nowF()
	s := &domain.Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		DeviceInfo: strings.TrimSpace(deviceInfo),
		IPAddress:  strings.TrimSpace(ipAddress),
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.ttl),
		IsValid:    true,
	}

	cctx, cancel := m.storeCtx(ctx)
	err := m.repo.Create(cctx, s)
	cancel()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if m.cache != nil {
		// Best-effort: a missing mirror entry only means verify falls
		// through to the store. Known gap: a create racing a bulk
		// invalidate can land this Put after the invalidate's purge, and
		// the stale entry answers ACTIVE until its key TTL runs out.
		// Concurrent create-vs-revoke ordering is unspecified here.
		cctx, cancel := m.storeCtx(ctx)
		err := m.cache.Put(cctx, s)
		cancel()
		if err != nil {
			log.Printf("session: cache put %s: %v", s.ID, err)
		}
	}

	token, _, err := m.tokens.Issue(userID, s.ID)
	if err != nil {
		// The row exists but no token references it; retire it so it does
		// not linger as a live session.
		cctx, cancel := m.storeCtx(ctx)
		if rbErr := m.repo.MarkInvalid(cctx, s.ID); rbErr != nil {
			log.Printf("session: retire after sign failure %s: %v", s.ID, rbErr)
		}
		cancel()
		m.dropFromCache(ctx, s.ID)
		return nil, "", err
	}
	return s, token, nil
}

// InvalidateAll revokes every session for the user, regardless of device or
// IP ("log out everywhere"). Returns how many sessions it revoked; zero is a
// success, not an error.
func (m *Manager) InvalidateAll(ctx context.Context, userID string) (int64, error) {
	return m.invalidate(ctx, userID, "")
}

// InvalidateOthers revokes every session for the user except those created
// from currentIP. The exclusion is keyed on the originating address, not the
// session id: the caller at this call site only knows where the request came
// from. Devices sharing a NAT are all preserved; the same device on a new
// address is revoked.
func (m *Manager) InvalidateOthers(ctx context.Context, userID, currentIP string) (int64, error) {
	currentIP = strings.TrimSpace(currentIP)
	if currentIP == "" {
		return 0, fmt.Errorf("%w: ipAddress is required", ErrInvalidInput)
	}
	return m.invalidate(ctx, userID, currentIP)
}

func (m *Manager) invalidate(ctx context.Context, userID, exceptIP string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	cctx, cancel := m.storeCtx(ctx)
	ids, err := m.repo.MarkInvalidByUser(cctx, userID, exceptIP)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// Mirror entries must be gone before the revocation is reported done;
	// otherwise a verify could still see the cached record.
	if m.cache != nil && len(ids) > 0 {
		cctx, cancel := m.storeCtx(ctx)
		err := m.cache.Del(cctx, ids...)
		cancel()
		if err != nil {
			return 0, fmt.Errorf("%w: cache purge: %v", ErrStorage, err)
		}
	}
	return int64(len(ids)), nil
}

// Revoke invalidates one session owned by userID. Unknown ids and sessions
// belonging to other users both report ErrSessionNotFound.
func (m *Manager) Revoke(ctx context.Context, userID, sessionID string) error {
	userID = strings.TrimSpace(userID)
	sessionID = strings.TrimSpace(sessionID)
	if userID == "" || sessionID == "" {
		return fmt.Errorf("%w: userId and sessionId are required", ErrInvalidInput)
	}

	cctx, cancel := m.storeCtx(ctx)
	s, err := m.repo.GetByID(cctx, sessionID)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if s == nil || s.UserID != userID {
		return ErrSessionNotFound
	}

	cctx, cancel = m.storeCtx(ctx)
	err = m.repo.MarkInvalid(cctx, sessionID)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if m.cache != nil {
		cctx, cancel := m.storeCtx(ctx)
		err := m.cache.Del(cctx, sessionID)
		cancel()
		if err != nil {
			return fmt.Errorf("%w: cache purge: %v", ErrStorage, err)
		}
	}
	return nil
}

// Verify reports the session's current state. Pure read: revoked and expired
// sessions stay exactly as stored. Expiry is judged by time comparison here,
// so a stale is_valid flag can never resurrect an expired session.
func (m *Manager) Verify(ctx context.Context, sessionID string) (domain.Status, *domain.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", nil, ErrSessionNotFound
	}

	if m.cache != nil {
		cctx, cancel := m.storeCtx(ctx)
		s, err := m.cache.Get(cctx, sessionID)
		cancel()
		if err != nil {
			// Cache trouble is not an authorization signal either way;
			// the store decides.
			log.Printf("session: cache get %s: %v", sessionID, err)
		} else if s != nil {
			return s.StatusAt(m.nowF()), s, nil
		}
	}

	cctx, cancel := m.storeCtx(ctx)
	s, err := m.repo.GetByID(cctx, sessionID)
	cancel()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if s == nil {
		return "", nil, ErrSessionNotFound
	}
	return s.StatusAt(m.nowF()), s, nil
}

// List returns all sessions for the user, valid and invalid, for device
// management views.
func (m *Manager) List(ctx context.Context, userID string) ([]*domain.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	cctx, cancel := m.storeCtx(ctx)
	defer cancel()
	out, err := m.repo.ListByUser(cctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return out, nil
}

// PurgeExpired removes rows past their expiry. Storage hygiene for the
// worker; verification never depends on it. Mirror keys expire on their own.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	cctx, cancel := m.storeCtx(ctx)
	defer cancel()
	n, err := m.repo.DeleteExpired(cctx, m.nowF())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return n, nil
}

func (m *Manager) dropFromCache(ctx context.Context, sessionID string) {
	if m.cache == nil {
		return
	}
	cctx, cancel := m.storeCtx(ctx)
	defer cancel()
	if err := m.cache.Del(cctx, sessionID); err != nil {
		log.Printf("session: cache del %s: %v", sessionID, err)
	}
}
