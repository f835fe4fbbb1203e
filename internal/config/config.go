// Package config loads runtime configuration from the environment. A .env file
// in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/keshon/economy-bot/internal/settings"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	CommandPrefix        string   `env:"COMMAND_PREFIX" envDefault:"."`
	CommandCaseSensitive bool     `env:"COMMAND_CASE_SENSITIVE" envDefault:"false"`
	OwnerIDs             []string `env:"OWNER_IDS" envSeparator:","`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"economy"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string `env:"DATABASE_DSN" envDefault:"economy.db"`

	SettingsPath string `env:"SETTINGS_PATH" envDefault:"settings.json"`

	RewardChance    float64       `env:"REWARD_CHANCE" envDefault:"0.25"`
	RewardCooldown  time.Duration `env:"REWARD_COOLDOWN" envDefault:"15s"`
	RewardTablePath string        `env:"REWARD_TABLE_PATH"`
	PayCooldown     time.Duration `env:"PAY_COOLDOWN" envDefault:"5s"`

	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"10s"`
	NoticeRate     float64       `env:"NOTICE_RATE" envDefault:"1"`
	NoticeBurst    int           `env:"NOTICE_BURST" envDefault:"5"`

	CurrencySymbol string `env:"CURRENCY_SYMBOL" envDefault:"h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile   string `env:"LOG_FILE"`
}

// Load reads .env (if any) and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment")
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and combinations that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if !settings.ValidPrefix(c.CommandPrefix) {
		errs = append(errs, fmt.Errorf("COMMAND_PREFIX %q: %w", c.CommandPrefix, settings.ErrInvalidPrefix))
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is empty"))
	}
	if c.RewardChance < 0 || c.RewardChance > 1 {
		errs = append(errs, fmt.Errorf("REWARD_CHANCE must be within [0,1], got %v", c.RewardChance))
	}
	if c.RewardCooldown <= 0 {
		errs = append(errs, fmt.Errorf("REWARD_COOLDOWN must be positive, got %s", c.RewardCooldown))
	}
	if c.PayCooldown <= 0 {
		errs = append(errs, fmt.Errorf("PAY_COOLDOWN must be positive, got %s", c.PayCooldown))
	}
	if c.HandlerTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HANDLER_TIMEOUT must be positive, got %s", c.HandlerTimeout))
	}
	if c.NoticeRate <= 0 || c.NoticeBurst < 1 {
		errs = append(errs, errors.New("NOTICE_RATE and NOTICE_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// ValidateBot additionally requires what the Discord process needs.
func (c *Config) ValidateBot() error {
	if c.DiscordToken == "" {
		return errors.Join(errors.New("DISCORD_TOKEN is not set"), c.Validate())
	}
	return c.Validate()
}

// IsOwner reports whether userID is a configured owner.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
