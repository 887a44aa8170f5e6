package querycache

import (
	"context"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "gc time below stale time",
			mutate:  func(c *Config) { c.GCTime = time.Minute; c.StaleTime = 5 * time.Minute },
			wantErr: true,
		},
		{
			name:    "zero capacity",
			mutate:  func(c *Config) { c.Capacity = 0 },
			wantErr: true,
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.GCTime = -time.Minute; c.StaleTime = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCacheService_RoundTrip(t *testing.T) {
	svc, err := NewCacheService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}

	ctx := context.Background()
	key := Keys("events").Detail("austin-jazz")

	if err := svc.Set(ctx, key.String(), "value"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := Lookup[string](ctx, svc, key)
	if !ok || got != "value" {
		t.Fatalf("Lookup = (%q, %v), want (%q, true)", got, ok, "value")
	}

	if err := svc.Delete(ctx, key.String()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := Lookup[string](ctx, svc, key); ok {
		t.Fatal("entry survived Delete")
	}
}
