package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":5007")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":5007" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":5007")
	}
	if cfg.JWTIssuer != "nomnom-sessions" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "nomnom-sessions")
	}
	if cfg.JWTAudience != "nomnom-services" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "nomnom-services")
	}
	if cfg.SessionTTL != "168h" {
		t.Errorf("SessionTTL = %q, want %q", cfg.SessionTTL, "168h")
	}
	if cfg.StoreTimeout != "3s" {
		t.Errorf("StoreTimeout = %q, want %q", cfg.StoreTimeout, "3s")
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", cfg.RedisAddr)
	}
	if cfg.OTLPInsecure {
		t.Error("OTLPInsecure should default to false")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("SESSION_TTL", "24h")
	os.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.SessionTTL != "24h" {
		t.Errorf("SessionTTL = %q, want %q", cfg.SessionTTL, "24h")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want %q", cfg.RedisAddr, "localhost:6379")
	}
}

func TestTTL(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{"valid", "24h", 24 * time.Hour},
		{"empty falls back", "", 168 * time.Hour},
		{"invalid falls back", "not-a-duration", 168 * time.Hour},
		{"negative falls back", "-1h", 168 * time.Hour},
		{"zero falls back", "0s", 168 * time.Hour},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{SessionTTL: tc.raw}
			if got := cfg.TTL(); got != tc.want {
				t.Errorf("TTL() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStoreCallTimeout(t *testing.T) {
	cfg := &Config{StoreTimeout: "500ms"}
	if got := cfg.StoreCallTimeout(); got != 500*time.Millisecond {
		t.Errorf("StoreCallTimeout() = %v, want 500ms", got)
	}
	cfg = &Config{}
	if got := cfg.StoreCallTimeout(); got != 3*time.Second {
		t.Errorf("StoreCallTimeout() default = %v, want 3s", got)
	}
}

func TestSweepInterval(t *testing.T) {
	cfg := &Config{CleanupInterval: "30m"}
	if got := cfg.SweepInterval(); got != 30*time.Minute {
		t.Errorf("SweepInterval() = %v, want 30m", got)
	}
	cfg = &Config{CleanupInterval: "garbage"}
	if got := cfg.SweepInterval(); got != time.Hour {
		t.Errorf("SweepInterval() fallback = %v, want 1h", got)
	}
}
