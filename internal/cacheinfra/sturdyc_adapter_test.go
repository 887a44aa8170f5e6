package cacheinfra

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

func newTestService(t *testing.T) *sturdycService {
	t.Helper()
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycService: %v", err)
	}
	return svc
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, wantErr: "Capacity"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, wantErr: "NumShards"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, wantErr: "TTL"},
		{name: "eviction percentage too low", mutate: func(c *Config) { c.EvictionPercentage = 0 }, wantErr: "EvictionPercentage"},
		{name: "eviction percentage too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, wantErr: "EvictionPercentage"},
		{
			name: "max refresh below min refresh",
			mutate: func(c *Config) {
				c.EarlyRefresh.MinAsyncRefreshTime = 10 * time.Minute
				c.EarlyRefresh.MaxAsyncRefreshTime = 5 * time.Minute
			},
			wantErr: "EarlyRefresh.MaxAsyncRefreshTime",
		},
		{name: "nil early refresh is valid", mutate: func(c *Config) { c.EarlyRefresh = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantErr {
				t.Errorf("error field = %q, want %q", cfgErr.Field, tt.wantErr)
			}
		})
	}
}

func TestSturdycService_GetOrFetch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "value", nil
	}

	got, err := svc.GetOrFetch(ctx, "events::detail::austin-jazz", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if got != "value" {
		t.Errorf("result = %v, want %q", got, "value")
	}

	// Second call is served from cache.
	if _, err := svc.GetOrFetch(ctx, "events::detail::austin-jazz", fetch); err != nil {
		t.Fatalf("GetOrFetch (cached): %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
}

func TestSturdycService_GetOrFetchError(t *testing.T) {
	svc := newTestService(t)

	fetchErr := errors.New("upstream down")
	_, err := svc.GetOrFetch(context.Background(), "events::list", func(ctx context.Context) (string, error) {
		return "", fetchErr
	})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("error = %v, want %v", err, fetchErr)
	}
}

func TestSturdycService_RejectsInvalidFetchFn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		fetchFn any
	}{
		{name: "nil", fetchFn: nil},
		{name: "not a function", fetchFn: "fetch"},
		{name: "wrong arity", fetchFn: func() (string, error) { return "", nil }},
		{name: "missing error return", fetchFn: func(ctx context.Context) string { return "" }},
		{name: "second return not error", fetchFn: func(ctx context.Context) (string, string) { return "", "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetOrFetch(ctx, "key", tt.fetchFn)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want *ConfigError", err)
			}
		})
	}
}

func TestSturdycService_SetGetDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, ok := svc.Get(ctx, "events::detail::austin-jazz"); ok {
		t.Fatal("Get reported a hit on an empty cache")
	}

	if err := svc.Set(ctx, "events::detail::austin-jazz", 42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := svc.Get(ctx, "events::detail::austin-jazz")
	if !ok || got != 42 {
		t.Fatalf("Get = (%v, %v), want (42, true)", got, ok)
	}

	if err := svc.Delete(ctx, "events::detail::austin-jazz"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := svc.Get(ctx, "events::detail::austin-jazz"); ok {
		t.Fatal("entry survived Delete")
	}
}

func TestSturdycService_DeleteByPrefix(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seed := map[string]any{
		"events::list::a":            1,
		"events::list::b":            2,
		"events::detail::austin":     3,
		"cities::list::all":          4,
		"cities::detail::austin-tx":  5,
		"events::list::a::page::two": 6,
	}
	for k, v := range seed {
		if err := svc.Set(ctx, k, v); err != nil {
			t.Fatalf("Set(%q): %v", k, err)
		}
	}

	if err := svc.DeleteByPrefix(ctx, "events::list"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	keys, err := svc.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)

	want := []string{"cities::detail::austin-tx", "cities::list::all", "events::detail::austin"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestSturdycService_KeysByPrefix(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_ = svc.Set(ctx, "events::detail::a", 1)
	_ = svc.Set(ctx, "events::detail::b", 2)
	_ = svc.Set(ctx, "cities::detail::c", 3)

	keys, err := svc.Keys(ctx, "events::detail")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("len(keys) = %d, want 2: %v", len(keys), keys)
	}
	for _, k := range keys {
		if k != "events::detail::a" && k != "events::detail::b" {
			t.Errorf("unexpected key %q", k)
		}
	}
}
