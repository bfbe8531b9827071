package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// DefaultReplyChance is the probability of answering an eligible group message.
const DefaultReplyChance = 0.25

// bootstrap is processed before the dotenv file is loaded, so the dotenv
// path itself can only come from the real environment.
type bootstrap struct {
	EnvFile string `envconfig:"ENV_FILE" default:".env"`
}

// Config holds all configuration from environment variables.
type Config struct {
	Token       string  `envconfig:"TELEGRAM_API_TOKEN" required:"true"`
	DatabaseURL string  `envconfig:"DATABASE_URL" default:"responses.db"`
	ReplyChance float64 `envconfig:"REPLY_CHANCE" default:"0.25"`

	// Path to config.toml file
	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	// Dotenv file NewConfig tried to load, taken from bootstrap
	EnvFile string `ignored:"true"`

	// Warnings collected while loading, logged once a logger exists
	Warnings []string `ignored:"true"`
}

// Reply holds the [reply] table of config.toml. Unset keys leave the
// environment value in place.
type Reply struct {
	Chance *float64 `toml:"chance"`
}

// FileConfig represents the structure of config.toml.
type FileConfig struct {
	Reply Reply `toml:"reply"`
}

// ApplyTo overrides cfg with every value config.toml sets.
func (f FileConfig) ApplyTo(cfg *Config) {
	if f.Reply.Chance != nil {
		cfg.ReplyChance = *f.Reply.Chance
	}
}

// LoadFile decodes config.toml. found is false when the file does not exist.
func LoadFile(path string) (fc FileConfig, found bool, err error) {
	_, err = toml.DecodeFile(path, &fc)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return FileConfig{}, false, nil
	case err != nil:
		return FileConfig{}, false, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return fc, true, nil
}

// LoadDotEnv loads variables from a dotenv file into the process environment.
// Variables already present in the environment are left untouched.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("unable to load %s: %w", path, err)
	}
	return nil
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("TELEGRAM_API_TOKEN is missing: set it in the .env file or the environment")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	if c.ReplyChance < 0 || c.ReplyChance > 1 {
		return fmt.Errorf("reply chance must be within [0, 1], got %v", c.ReplyChance)
	}
	return nil
}

// NewConfig resolves configuration in order: dotenv file, environment,
// config.toml overrides.
func NewConfig() (*Config, error) {
	var boot bootstrap
	if err := envconfig.Process("", &boot); err != nil {
		return nil, fmt.Errorf("unable to process environment: %w", err)
	}

	var warnings []string
	if err := LoadDotEnv(boot.EnvFile); err != nil {
		// the token may still come from the ambient environment
		warnings = append(warnings, err.Error())
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to process environment: %w", err)
	}
	cfg.EnvFile = boot.EnvFile
	cfg.Warnings = warnings

	fileConfig, found, err := LoadFile(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if found {
		fileConfig.ApplyTo(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func logWarnings(cfg *Config, log zerolog.Logger) {
	for _, w := range cfg.Warnings {
		log.Warn().Msg(w + ", using environment variables")
	}
}

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewConfig,
		),
		fx.Invoke(logWarnings),
	)
}
