package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.CommandPrefix)
	assert.False(t, cfg.CommandCaseSensitive)
	assert.Equal(t, "economy", cfg.RedisPrefix)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "economy.db", cfg.DatabaseDSN)
	assert.Equal(t, 0.25, cfg.RewardChance)
	assert.Equal(t, 15*time.Second, cfg.RewardCooldown)
	assert.Equal(t, 5*time.Second, cfg.PayCooldown)
	assert.Equal(t, 10*time.Second, cfg.HandlerTimeout)
	assert.Equal(t, "h", cfg.CurrencySymbol)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateBot())
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("COMMAND_PREFIX", "!")
	t.Setenv("OWNER_IDS", "1,2")
	t.Setenv("REWARD_CHANCE", "0.5")
	t.Setenv("REWARD_COOLDOWN", "1m")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, []string{"1", "2"}, cfg.OwnerIDs)
	assert.Equal(t, 0.5, cfg.RewardChance)
	assert.Equal(t, time.Minute, cfg.RewardCooldown)
	assert.True(t, cfg.IsOwner("2"))
	assert.False(t, cfg.IsOwner("3"))
	assert.NoError(t, cfg.ValidateBot())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"prefix with space", func(c *Config) { c.CommandPrefix = "a b" }},
		{"empty prefix", func(c *Config) { c.CommandPrefix = "" }},
		{"driver", func(c *Config) { c.DatabaseDriver = "mysql" }},
		{"dsn", func(c *Config) { c.DatabaseDSN = "" }},
		{"chance", func(c *Config) { c.RewardChance = 1.5 }},
		{"reward cooldown", func(c *Config) { c.RewardCooldown = 0 }},
		{"pay cooldown", func(c *Config) { c.PayCooldown = -time.Second }},
		{"timeout", func(c *Config) { c.HandlerTimeout = 0 }},
		{"notice", func(c *Config) { c.NoticeBurst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBadValue(t *testing.T) {
	t.Setenv("REWARD_COOLDOWN", "soon")
	_, err := Parse()
	assert.Error(t, err)
}
