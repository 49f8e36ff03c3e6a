// Package config resolves runtime settings from defaults, an optional TOML
// file and DAYPLAN_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pelletier/go-toml/v2"
)

const FileName = "config.toml"

var ErrInvalidConfig = errors.New("config: invalid value")

type StorageConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// File empty means stderr.
	File string `toml:"file"`
}

type LearnerConfig struct {
	// Seed zero seeds from the wall clock.
	Seed           int64   `toml:"seed"`
	Epsilon        float64 `toml:"epsilon"`
	LearningRate   float64 `toml:"learning_rate"`
	DiscountFactor float64 `toml:"discount_factor"`
	AdaptEveryDays int     `toml:"adapt_every_days"`
}

type ServerConfig struct {
	ListenAddr     string   `toml:"listen_addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// DefaultsConfig fills ranking preferences a host request leaves out.
type DefaultsConfig struct {
	Tag           string  `toml:"tag"`
	Priority      float64 `toml:"priority"`
	EstimatedTime int     `toml:"estimated_time"`
}

type RuntimeConfig struct {
	Timezone string         `toml:"timezone"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
	Learner  LearnerConfig  `toml:"learner"`
	Server   ServerConfig   `toml:"server"`
	Defaults DefaultsConfig `toml:"defaults"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Timezone: "America/Chicago",
		Storage:  StorageConfig{Driver: "sqlite3", DSN: "dayplan.db"},
		Log:      LogConfig{Level: "info"},
		Learner: LearnerConfig{
			Epsilon:        0.1,
			LearningRate:   0.1,
			DiscountFactor: 0.95,
			AdaptEveryDays: 7,
		},
		Server: ServerConfig{
			ListenAddr:     ":8080",
			AllowedOrigins: []string{"*"},
		},
		Defaults: DefaultsConfig{Tag: "homework", Priority: 1, EstimatedTime: 180},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/dayplan/config.toml, or "" when no home is known.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "dayplan", FileName)
}

// Load layers path (if present) and the environment over the defaults. A missing
// file is only an error when required is set.
func Load(path string, required bool) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	if path != "" {
		fromFile, err := LoadFile(path, cfg)
		switch {
		case err == nil:
			cfg = fromFile
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return RuntimeConfig{}, err
		}
	}
	cfg = RuntimeConfigFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

// LoadFile decodes path over base; keys absent from the file keep base's values.
func LoadFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeConfig{}, err
	}
	cfg := base
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("DAYPLAN_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvString("DAYPLAN_DB_DRIVER"); ok {
		cfg.Storage.Driver = v
	}
	if v, ok := getEnvString("DAYPLAN_DB_DSN"); ok {
		cfg.Storage.DSN = v
	}
	if v, ok := getEnvString("DAYPLAN_LOG_LEVEL"); ok {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := getEnvString("DAYPLAN_LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if v, ok := getEnvInt("DAYPLAN_SEED"); ok {
		cfg.Learner.Seed = int64(v)
	}
	if v, ok := getEnvFloat("DAYPLAN_EPSILON"); ok {
		cfg.Learner.Epsilon = v
	}
	if v, ok := getEnvFloat("DAYPLAN_LEARNING_RATE"); ok {
		cfg.Learner.LearningRate = v
	}
	if v, ok := getEnvFloat("DAYPLAN_DISCOUNT_FACTOR"); ok {
		cfg.Learner.DiscountFactor = v
	}
	if v, ok := getEnvInt("DAYPLAN_ADAPT_EVERY_DAYS"); ok && v > 0 {
		cfg.Learner.AdaptEveryDays = v
	}
	if v, ok := getEnvString("DAYPLAN_LISTEN_ADDR"); ok {
		cfg.Server.ListenAddr = v
	}
	if v, ok := getEnvString("DAYPLAN_ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := getEnvString("DAYPLAN_DEFAULT_TAG"); ok {
		cfg.Defaults.Tag = v
	}
	if v, ok := getEnvFloat("DAYPLAN_DEFAULT_PRIORITY"); ok && v > 0 {
		cfg.Defaults.Priority = v
	}
	if v, ok := getEnvInt("DAYPLAN_DEFAULT_ESTIMATED_TIME"); ok && v > 0 {
		cfg.Defaults.EstimatedTime = v
	}
	return cfg
}

func (c RuntimeConfig) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q", ErrInvalidConfig, c.Timezone)
	}
	if c.Storage.Driver == "" {
		return fmt.Errorf("%w: storage driver is required", ErrInvalidConfig)
	}
	for name, v := range map[string]float64{
		"epsilon":         c.Learner.Epsilon,
		"learning_rate":   c.Learner.LearningRate,
		"discount_factor": c.Learner.DiscountFactor,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s %v not in [0, 1]", ErrInvalidConfig, name, v)
		}
	}
	if c.Learner.AdaptEveryDays <= 0 {
		return fmt.Errorf("%w: adapt_every_days %d", ErrInvalidConfig, c.Learner.AdaptEveryDays)
	}
	return nil
}

// Location resolves Timezone. Validate has already checked it for loaded configs.
func (c RuntimeConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvFloat(name string) (float64, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
