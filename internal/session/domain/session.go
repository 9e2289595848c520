package domain

import "time"

// Status is the observable lifecycle state of a session.
type Status string

const (
	// StatusActive means the session is valid and not past its expiry.
	StatusActive Status = "ACTIVE"
	// StatusExpired means the session outlived its fixed TTL. Terminal.
	StatusExpired Status = "EXPIRED"
	// StatusRevoked means the session was invalidated before expiry. Terminal.
	StatusRevoked Status = "REVOKED"
)

// Session represents one authenticated device/browser instance tied to a user.
// IsValid is the only field revocation mutates; it transitions true to false
// exactly once and never back.
type Session struct {
	ID         string    `json:"sessionId"`
	UserID     string    `json:"userId"`
	DeviceInfo string    `json:"deviceInfo"`
	IPAddress  string    `json:"ipAddress"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	IsValid    bool      `json:"isValid"`
}

// StatusAt returns the session's state as of now. Expiry is lazy: a row whose
// ExpiresAt has passed is EXPIRED even if IsValid is still true in storage.
// Revocation takes precedence when both apply.
func (s *Session) StatusAt(now time.Time) Status {
	if !s.IsValid {
		return StatusRevoked
	}
	if !now.Before(s.ExpiresAt) {
		return StatusExpired
	}
	return StatusActive
}
