// Package handler maps the session API onto HTTP. Thin layer: request
// binding, identity checks against the authenticated caller, and error to
// status mapping. All lifecycle rules live in the service.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nomnom/session-service/internal/server/middleware"
	"nomnom/session-service/internal/session/domain"
	"nomnom/session-service/internal/session/service"
)

// SessionManager is the slice of the session service the handler consumes.
type SessionManager interface {
	Create(ctx context.Context, userID, ipAddress, deviceInfo string) (*domain.Session, string, error)
	InvalidateAll(ctx context.Context, userID string) (int64, error)
	InvalidateOthers(ctx context.Context, userID, currentIP string) (int64, error)
	Revoke(ctx context.Context, userID, sessionID string) error
	Verify(ctx context.Context, sessionID string) (domain.Status, *domain.Session, error)
	List(ctx context.Context, userID string) ([]*domain.Session, error)
}

type Handler struct {
	sessions SessionManager
	auth     middleware.Authorizer
}

func New(sessions SessionManager, auth middleware.Authorizer) *Handler {
	return &Handler{sessions: sessions, auth: auth}
}

// RegisterPublic mounts the routes that run before a caller holds a token:
// session creation (called by the login flow) and token verification (called
// by other services on every request).
func (h *Handler) RegisterPublic(r gin.IRoutes) {
	r.POST("/sessions/create", h.create)
	r.POST("/sessions/verify", h.verify)
}

// RegisterProtected mounts the routes that act on the caller's own sessions.
// The auth middleware has already placed the verified identity in context.
func (h *Handler) RegisterProtected(r gin.IRoutes) {
	r.POST("/sessions/invalidate/user", h.invalidateAll)
	r.POST("/sessions/invalidate/other", h.invalidateOthers)
	r.GET("/sessions/:userId", h.list)
	r.GET("/sessions/:userId/:sessionId", h.status)
	r.DELETE("/sessions/:userId/:sessionId", h.revoke)
}

type createRequest struct {
	UserID     string `json:"userId" binding:"required"`
	IPAddress  string `json:"ipAddress"`
	DeviceInfo string `json:"deviceInfo"`
}

type createResponse struct {
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = c.ClientIP()
	}
	s, token, err := h.sessions.Create(c.Request.Context(), req.UserID, req.IPAddress, req.DeviceInfo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createResponse{Session: s, Token: token})
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// verify runs the full token check for other services. Every failure is the
// same 401: a caller without a valid token learns nothing about which layer
// rejected, or whether the referenced session exists at all.
func (h *Handler) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	p, err := h.auth.Authorize(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": p.UserID, "sessionId": p.SessionID})
}

// status reports one of the caller's own sessions, lazily computed. Sessions
// belonging to other users are indistinguishable from missing ones.
func (h *Handler) status(c *gin.Context) {
	userID, ok := callerUser(c, c.Param("userId"))
	if !ok {
		return
	}
	st, s, err := h.sessions.Verify(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	if s.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": st, "session": s})
}

type invalidateRequest struct {
	UserID    string `json:"userId"`
	IPAddress string `json:"ipAddress"`
}

func (h *Handler) invalidateAll(c *gin.Context) {
	req, ok := bindInvalidate(c)
	if !ok {
		return
	}
	userID, ok := callerUser(c, req.UserID)
	if !ok {
		return
	}
	count, err := h.sessions.InvalidateAll(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": count})
}

func (h *Handler) invalidateOthers(c *gin.Context) {
	req, ok := bindInvalidate(c)
	if !ok {
		return
	}
	userID, ok := callerUser(c, req.UserID)
	if !ok {
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = c.ClientIP()
	}
	count, err := h.sessions.InvalidateOthers(c.Request.Context(), userID, req.IPAddress)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": count})
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := callerUser(c, c.Param("userId"))
	if !ok {
		return
	}
	sessions, err := h.sessions.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handler) revoke(c *gin.Context) {
	userID, ok := callerUser(c, c.Param("userId"))
	if !ok {
		return
	}
	if err := h.sessions.Revoke(c.Request.Context(), userID, c.Param("sessionId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindInvalidate parses the optional invalidate body. An absent body is fine
// (the operation acts on the caller); a present but unparseable one is a 400,
// not a silent fallback.
func bindInvalidate(c *gin.Context) (invalidateRequest, bool) {
	var req invalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return req, false
	}
	return req, true
}

// callerUser resolves the user a protected request acts on. requested may be
// empty (act on the caller); when set it must match the authenticated caller,
// otherwise 403.
func callerUser(c *gin.Context, requested string) (string, bool) {
	userID, found := middleware.GetUserID(c.Request.Context())
	if !found || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
		return "", false
	}
	if requested != "" && requested != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot act on another user's sessions"})
		return "", false
	}
	return userID, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, service.ErrStorage):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
