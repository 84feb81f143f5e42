// Package config loads the server configuration into one explicit struct
// that main passes down to every component.
//
// SOURCES (later ones win):
//  1. Defaults (Default)
//  2. An optional YAML file named by CONFIG_FILE
//  3. A .env file in the working directory (loaded into the process env)
//  4. Environment variables
//
// Nothing outside this package and main reads the environment. Packages
// receive the values they need through their constructors.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Generation providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel = "gemini-2.0-flash-001"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// EnvProduction turns on Secure cookies.
const EnvProduction = "production"

type Config struct {
	Environment string          `yaml:"environment"`
	Server      ServerConfig    `yaml:"server"`
	Log         LogConfig       `yaml:"log"`
	Storage     StorageConfig   `yaml:"storage"`
	Auth        AuthConfig      `yaml:"auth"`
	Generator   GeneratorConfig `yaml:"generator"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlitePath"`
	PostgresURL string `yaml:"postgresUrl"`
}

// AuthConfig configures the in-process identity provider.
type AuthConfig struct {
	SessionSecret      string        `yaml:"sessionSecret"`
	SessionDuration    time.Duration `yaml:"sessionDuration"`
	IDTokenTTL         time.Duration `yaml:"idTokenTtl"`
	PasswordCost       int           `yaml:"passwordCost"`
	GitHubClientID     string        `yaml:"githubClientId"`
	GitHubClientSecret string        `yaml:"githubClientSecret"`
	GitHubCallbackURL  string        `yaml:"githubCallbackUrl"`
}

// GitHubEnabled reports whether both GitHub OAuth credentials are present.
func (a AuthConfig) GitHubEnabled() bool {
	return a.GitHubClientID != "" && a.GitHubClientSecret != ""
}

type GeneratorConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"apiKey"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"baseUrl"` // empty means the provider's public endpoint
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Environment: "development",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second, // feedback generation waits on the model
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: "data/interview-coach.db",
		},
		Auth: AuthConfig{
			SessionDuration: 7 * 24 * time.Hour,
			IDTokenTTL:      time.Hour,
			PasswordCost:    12,
		},
		Generator: GeneratorConfig{
			Provider: ProviderGemini,
			Model:    DefaultGeminiModel,
			Timeout:  60 * time.Second,
		},
	}
}

// Load reads .env, the optional CONFIG_FILE and the process environment.
func Load() (Config, error) {
	// A missing .env is the normal case in production.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading .env: %w", err)
	}
	return LoadFrom(os.Getenv("CONFIG_FILE"), os.Getenv)
}

// LoadFrom builds a Config from defaults, the YAML file at path (skipped when
// empty) and the variables returned by getenv, then validates it.
func LoadFrom(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	// The default model only makes sense for Gemini.
	if cfg.Generator.Provider == ProviderOpenAI && cfg.Generator.Model == DefaultGeminiModel {
		cfg.Generator.Model = DefaultOpenAIModel
	}

	if cfg.Auth.GitHubCallbackURL == "" {
		cfg.Auth.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString(&cfg.Environment, getenv("ENVIRONMENT"))
	setString(&cfg.Log.Level, getenv("LOG_LEVEL"))

	if err := setInt(&cfg.Server.Port, "PORT", getenv("PORT")); err != nil {
		return err
	}

	setString(&cfg.Storage.Driver, getenv("DB_DRIVER"))
	setString(&cfg.Storage.SQLitePath, getenv("DB_PATH"))
	setString(&cfg.Storage.PostgresURL, getenv("DATABASE_URL"))

	// JWT_SECRET is accepted for deployments configured the old way.
	setString(&cfg.Auth.SessionSecret, getenv("JWT_SECRET"))
	setString(&cfg.Auth.SessionSecret, getenv("SESSION_SECRET"))
	if err := setDuration(&cfg.Auth.SessionDuration, "SESSION_DURATION", getenv("SESSION_DURATION")); err != nil {
		return err
	}
	if err := setInt(&cfg.Auth.PasswordCost, "PASSWORD_COST", getenv("PASSWORD_COST")); err != nil {
		return err
	}
	setString(&cfg.Auth.GitHubClientID, getenv("GITHUB_CLIENT_ID"))
	setString(&cfg.Auth.GitHubClientSecret, getenv("GITHUB_CLIENT_SECRET"))
	setString(&cfg.Auth.GitHubCallbackURL, getenv("GITHUB_CALLBACK_URL"))

	setString(&cfg.Generator.Provider, getenv("GENERATOR_PROVIDER"))
	setString(&cfg.Generator.APIKey, getenv("GOOGLE_GENERATIVE_AI_API_KEY"))
	setString(&cfg.Generator.APIKey, getenv("GENERATOR_API_KEY"))
	setString(&cfg.Generator.Model, getenv("GENERATOR_MODEL"))
	setString(&cfg.Generator.BaseURL, getenv("GENERATOR_BASE_URL"))
	return setDuration(&cfg.Generator.Timeout, "GENERATOR_TIMEOUT", getenv("GENERATOR_TIMEOUT"))
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Server.Port)
	}
	if len(c.Auth.SessionSecret) < 16 {
		return errors.New("config: SESSION_SECRET must be at least 16 characters")
	}
	if c.Auth.SessionDuration <= 0 {
		return errors.New("config: session duration must be positive")
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("config: sqlite driver needs DB_PATH")
		}
	case DriverPostgres:
		if c.Storage.PostgresURL == "" {
			return errors.New("config: postgres driver needs DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Generator.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("config: unknown generator provider %q", c.Generator.Provider)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Production reports whether cookies must be marked Secure.
func (c Config) Production() bool {
	return c.Environment == EnvProduction
}

// SlogLevel converts Log.Level into a slog.Level. Validate has already
// rejected unknown names, so this falls back to Info only for a zero Config.
func (c Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", name)
	}
	return level, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setInt(dst *int, key, value string) error {
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", key, value, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", key, value, err)
	}
	*dst = d
	return nil
}
