package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "http://localhost:8000", cfg.FootballAPIURL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 300*time.Millisecond, cfg.LoadMoreDelay)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "memory", cfg.FavoritesStore)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CorsOrigins)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENV", "production")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("FAVORITES_STORE", "redis")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "redis", cfg.FavoritesStore)
}

func TestValidate(t *testing.T) {
	base := Config{PageSize: 50, CacheTTL: time.Minute, FavoritesStore: "memory"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero page size", mutate: func(c *Config) { c.PageSize = 0 }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.CacheTTL = 0 }, wantErr: true},
		{name: "negative debounce", mutate: func(c *Config) { c.SearchDebounce = -time.Second }, wantErr: true},
		{name: "unknown store", mutate: func(c *Config) { c.FavoritesStore = "localStorage" }, wantErr: true},
		{name: "database store", mutate: func(c *Config) { c.FavoritesStore = "database" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
