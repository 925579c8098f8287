package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config.yaml in sight

	cfg, err := Load("pinmap-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "pinmap-test" {
		t.Errorf("service name = %q", cfg.Telemetry.ServiceName)
	}
	if cfg.Map.WorldWidth != 1000 || cfg.Map.WorldHeight != 500 {
		t.Errorf("world = %vx%v, want 1000x500", cfg.Map.WorldWidth, cfg.Map.WorldHeight)
	}
	if cfg.Map.ZoomStep != 1.1 {
		t.Errorf("zoom_step = %v, want 1.1", cfg.Map.ZoomStep)
	}
	if cfg.Map.DragCooldown() != 150*time.Millisecond {
		t.Errorf("drag cooldown = %v", cfg.Map.DragCooldown())
	}
	if cfg.Client.Timeout() != 10*time.Second {
		t.Errorf("client timeout = %v", cfg.Client.Timeout())
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PINMAP_DATABASE_HOST", "db.internal")
	t.Setenv("PINMAP_MAP_MAX_SCALE", "8")

	cfg, err := Load("pinmap-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q", cfg.Database.Host)
	}
	if cfg.Map.MaxScale != 8 {
		t.Errorf("map.max_scale = %v, want 8", cfg.Map.MaxScale)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5433, DBName: "pins", SSLMode: "disable"}
	want := "postgres://u:p@h:5433/pins?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Map:    MapConfig{WorldWidth: 1000, WorldHeight: 500, MinScale: 2, MaxScale: 1, ZoomStep: 1.1},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "database.host", "map.max_scale", "client.store_url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got:\n%v", want, err)
		}
	}
}
