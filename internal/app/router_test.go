package app

import (
	"testing"

	"workdesk.io/workdesk/internal/config"
)

func TestCORSConfig_AllowAllForWildcard(t *testing.T) {
	cfg := &config.Config{CORS: config.CORSConfig{Origin: "*"}}

	got := corsConfig(cfg)
	if !got.AllowAllOrigins {
		t.Fatalf("AllowAllOrigins = %v, want true", got.AllowAllOrigins)
	}
}

func TestCORSConfig_SingleOrigin(t *testing.T) {
	cfg := &config.Config{CORS: config.CORSConfig{Origin: "https://example.com"}}

	got := corsConfig(cfg)
	if got.AllowAllOrigins {
		t.Fatalf("AllowAllOrigins = %v, want false", got.AllowAllOrigins)
	}
	if len(got.AllowOrigins) != 1 || got.AllowOrigins[0] != "https://example.com" {
		t.Fatalf("AllowOrigins = %#v, want [https://example.com]", got.AllowOrigins)
	}
}

func TestCORSConfig_AllowsAuthorizationHeader(t *testing.T) {
	cfg := &config.Config{CORS: config.CORSConfig{Origin: "*"}}

	got := corsConfig(cfg)
	found := false
	for _, h := range got.AllowHeaders {
		if h == "Authorization" {
			found = true
		}
	}
	if !found {
		t.Fatalf("AllowHeaders = %#v, want to contain Authorization", got.AllowHeaders)
	}
}
