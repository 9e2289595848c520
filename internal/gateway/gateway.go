// Package gateway implements the two-layer request check: cryptographic
// token validation first, then the session's live state. A valid signature
// alone never authenticates a request.
package gateway

import (
	"context"
	"errors"
	"log"

	"nomnom/session-service/internal/security"
	"nomnom/session-service/internal/session/domain"
	"nomnom/session-service/internal/session/service"
)

// ErrUnauthenticated is the single failure the gateway reports to callers.
// Expired tokens, revoked sessions, unknown sessions, and store failures all
// collapse into it; the response never reveals which layer rejected.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserID    string
	SessionID string
}

// Decoder validates a compact token and returns its claims.
type Decoder interface {
	Decode(tokenString string) (*security.SessionClaims, error)
}

// Verifier reports a session's current state.
type Verifier interface {
	Verify(ctx context.Context, sessionID string) (domain.Status, *domain.Session, error)
}

// Gateway authenticates bearer tokens against the session store.
type Gateway struct {
	decoder  Decoder
	verifier Verifier
}

func New(decoder Decoder, verifier Verifier) *Gateway {
	return &Gateway{decoder: decoder, verifier: verifier}
}

// Authorize checks the token signature and claims, then the referenced
// session's state. Only an ACTIVE session authenticates; anything else,
// including a store failure, is ErrUnauthenticated. The token check runs
// first so forged or expired tokens never touch the store.
func (g *Gateway) Authorize(ctx context.Context, token string) (*Principal, error) {
	claims, err := g.decoder.Decode(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	status, s, err := g.verifier.Verify(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrStorage) {
			// Fail closed. The session may well be active, but an
			// unreachable store cannot confirm it.
			log.Printf("gateway: verify %s: %v", claims.SessionID, err)
		}
		return nil, ErrUnauthenticated
	}
	if status != domain.StatusActive {
		return nil, ErrUnauthenticated
	}
	// The token's subject must match the session's owner; a token replayed
	// against a different user's session id fails even if both are valid.
	if s.UserID != claims.Subject {
		return nil, ErrUnauthenticated
	}
	return &Principal{UserID: s.UserID, SessionID: s.ID}, nil
}
