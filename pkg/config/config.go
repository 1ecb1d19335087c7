// Package config loads portfolio-forge settings from a JSON or YAML file,
// a .env file and the environment.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nikogura/portfolio-forge/pkg/logging"
	"github.com/nikogura/portfolio-forge/pkg/store"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Generation providers.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

// Config represents the application configuration.
type Config struct {
	Name            string           `json:"name" yaml:"name"`
	Provider        string           `json:"provider,omitempty" yaml:"provider,omitempty"`
	GroqAPIKey      string           `json:"groq_api_key,omitempty" yaml:"groq_api_key,omitempty"`
	AnthropicAPIKey string           `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key,omitempty"`
	Database        DatabaseConfig   `json:"database" yaml:"database"`
	Redis           RedisConfig      `json:"redis" yaml:"redis"`
	Auth            AuthConfig       `json:"auth" yaml:"auth"`
	Storage         store.BlobConfig `json:"storage" yaml:"storage"`
	Logging         logging.Config   `json:"logging" yaml:"logging"`
	Defaults        DefaultConfig    `json:"defaults" yaml:"defaults"`
}

// DatabaseConfig locates Postgres.
type DatabaseConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// RedisConfig locates the sign-out denylist.
type RedisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// AuthConfig holds token settings.
type AuthConfig struct {
	JWTSecret string `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
	TokenTTL  string `json:"token_ttl,omitempty" yaml:"token_ttl,omitempty"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// DefaultPath returns ~/.portfolio-forge/config.json.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".portfolio-forge", "config.json")
	return path, err
}

// Load reads configuration from file with .env and environment overrides.
// When no path is given and the default file is absent, configuration comes
// from the environment alone.
func Load(configPath string) (cfg Config, err error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	var data []byte
	data, err = os.ReadFile(path)
	switch {
	case err == nil:
		err = Parse(path, data, &cfg)
		if err != nil {
			return cfg, err
		}
	case os.IsNotExist(err) && configPath == "":
		err = nil
	case os.IsNotExist(err):
		err = errors.Errorf("config file not found: %s (run 'portfolio-forge init' to create)", path)
		return cfg, err
	default:
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	cfg.ApplyEnv()

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Parse decodes data as YAML for .yaml and .yml paths and JSON otherwise.
func Parse(path string, data []byte, cfg *Config) (err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
	}
	return err
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv() {
	overrides := []struct {
		name   string
		target *string
	}{
		{"LLM_PROVIDER", &c.Provider},
		{"GROQ_API_KEY", &c.GroqAPIKey},
		{"ANTHROPIC_API_KEY", &c.AnthropicAPIKey},
		{"DATABASE_URL", &c.Database.URL},
		{"REDIS_ADDR", &c.Redis.Addr},
		{"REDIS_PASSWORD", &c.Redis.Password},
		{"JWT_SECRET", &c.Auth.JWTSecret},
		{"MINIO_ENDPOINT", &c.Storage.Endpoint},
		{"MINIO_ACCESS_KEY", &c.Storage.AccessKey},
		{"MINIO_SECRET_KEY", &c.Storage.SecretKey},
		{"MINIO_BUCKET", &c.Storage.Bucket},
		{"MINIO_REGION", &c.Storage.Region},
		{"LOG_LEVEL", &c.Logging.Level},
		{"LOG_FORMAT", &c.Logging.Format},
	}

	for _, o := range overrides {
		if v := os.Getenv(o.name); v != "" {
			*o.target = v
		}
	}

	if v, err := strconv.ParseBool(os.Getenv("MINIO_USE_SSL")); err == nil {
		c.Storage.UseSSL = v
	}
}

// Validate checks required settings and fills in defaults.
func (c *Config) Validate() (err error) {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderGroq
		if c.GroqAPIKey == "" && c.AnthropicAPIKey != "" {
			c.Provider = ProviderAnthropic
		}
	}

	switch c.Provider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			err = errors.New("groq_api_key is required (set in config or GROQ_API_KEY env var)")
			return err
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			err = errors.New("anthropic_api_key is required (set in config or ANTHROPIC_API_KEY env var)")
			return err
		}
	default:
		err = errors.Errorf("unknown provider %q: must be %s or %s", c.Provider, ProviderGroq, ProviderAnthropic)
		return err
	}

	if c.Auth.TokenTTL != "" {
		_, err = time.ParseDuration(c.Auth.TokenTTL)
		if err != nil {
			err = errors.Wrapf(err, "invalid auth.token_ttl %q", c.Auth.TokenTTL)
			return err
		}
	}

	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./portfolio"
	}

	return err
}

// TokenTTL returns the configured session lifetime, or zero for the default.
func (c *Config) TokenTTL() (ttl time.Duration) {
	// Validate has already checked the format.
	ttl, _ = time.ParseDuration(c.Auth.TokenTTL)
	return ttl
}

// StorageEnabled reports whether artifact uploads are configured.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Endpoint != "" && c.Storage.Bucket != ""
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	defaultConfig := Config{
		Name:       "your-name",
		Provider:   ProviderGroq,
		GroqAPIKey: "gsk_...",
		Redis:      RedisConfig{Addr: "localhost:6379"},
		Auth:       AuthConfig{TokenTTL: "24h"},
		Storage: store.BlobConfig{
			Endpoint: "localhost:9000",
			Bucket:   "portfolio-forge",
		},
		Logging: logging.Config{Level: "info", Format: logging.FormatPretty},
		Defaults: DefaultConfig{
			OutputDir: filepath.Join(homeDir, "Documents", "Portfolio"),
		},
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(defaultConfig)
	default:
		data, err = json.MarshalIndent(defaultConfig, "", "  ")
	}
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
