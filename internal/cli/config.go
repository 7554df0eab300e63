package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fusiongraph/pkg/auth"
	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/graphql"
	"github.com/matzehuels/fusiongraph/pkg/mfg"
	"github.com/matzehuels/fusiongraph/pkg/webhook"
)

// Environment variables that override the config file.
const (
	envClientID     = "APS_CLIENT_ID"
	envClientSecret = "APS_CLIENT_SECRET"
	envEndpoint     = "FUSIONGRAPH_ENDPOINT"
	envRedisURL     = "FUSIONGRAPH_REDIS_URL"
	envCallbackURL  = "FUSIONGRAPH_CALLBACK_URL"
	envMongoURI     = "FUSIONGRAPH_MONGO_URI"
)

// Config is the contents of config.toml.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	API         APIConfig         `toml:"api"`
	Cache       CacheConfig       `toml:"cache"`
	Defaults    DefaultsConfig    `toml:"defaults"`
	Webhook     WebhookConfig     `toml:"webhook"`
}

type CredentialsConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type APIConfig struct {
	Endpoint          string   `toml:"endpoint"`
	TokenURL          string   `toml:"token_url"`
	Scopes            []string `toml:"scopes"`
	Timeout           duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Retries           int      `toml:"retries"`
}

type CacheConfig struct {
	TTL      duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

// DefaultsConfig names the design used when no flags are given.
type DefaultsConfig struct {
	Hub       string `toml:"hub"`
	Project   string `toml:"project"`
	Component string `toml:"component"`
}

type WebhookConfig struct {
	Listen        string `toml:"listen"`
	CallbackURL   string `toml:"callback_url"`
	EventType     string `toml:"event_type"`
	Secret        string `toml:"secret"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// duration reads Go duration strings such as "30s" from TOML.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Endpoint: graphql.DefaultEndpoint,
			TokenURL: auth.DefaultTokenURL,
			Timeout:  duration{30 * time.Second},
		},
		Cache: CacheConfig{TTL: duration{mfg.DefaultCacheTTL}},
		Webhook: WebhookConfig{
			Listen:    webhook.DefaultListenAddr,
			EventType: mfg.DefaultEventType,
		},
	}
}

// loadConfig reads path on top of the defaults and applies environment
// overrides. A missing file is only an error when required is set.
func loadConfig(path string, required bool) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case os.IsNotExist(err) && !required:
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Credentials.ClientID, envClientID)
	set(&c.Credentials.ClientSecret, envClientSecret)
	set(&c.API.Endpoint, envEndpoint)
	set(&c.Cache.RedisURL, envRedisURL)
	set(&c.Webhook.CallbackURL, envCallbackURL)
	set(&c.Webhook.MongoURI, envMongoURI)
}

func (c *Config) validate() error {
	switch {
	case c.API.Retries < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "api.retries must not be negative")
	case c.API.RequestsPerSecond < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "api.requests_per_second must not be negative")
	case c.API.Timeout.Duration < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "api.timeout must not be negative")
	case c.Cache.TTL.Duration < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

func (c *Config) authConfig() auth.Config {
	return auth.Config{
		ClientID:     c.Credentials.ClientID,
		ClientSecret: c.Credentials.ClientSecret,
		TokenURL:     c.API.TokenURL,
		Scopes:       c.API.Scopes,
	}
}

// redacted returns a copy safe to print.
func (c *Config) redacted() *Config {
	out := *c
	if out.Credentials.ClientSecret != "" {
		out.Credentials.ClientSecret = "********"
	}
	if out.Webhook.Secret != "" {
		out.Webhook.Secret = "********"
	}
	return &out
}

// configDir returns the config directory using XDG standard (~/.config/fusiongraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
