package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

func serve(h *Handler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", h.Healthz)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return w
}

func TestHealthz(t *testing.T) {
	testCases := []struct {
		name string
		h    *Handler
		want int
	}{
		{"all healthy", New(fakePinger{}, fakePinger{}), http.StatusOK},
		{"no dependencies", New(nil, nil), http.StatusOK},
		{"db down", New(fakePinger{err: errors.New("refused")}, fakePinger{}), http.StatusServiceUnavailable},
		{"cache down", New(fakePinger{}, fakePinger{err: errors.New("refused")}), http.StatusServiceUnavailable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if w := serve(tc.h); w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
