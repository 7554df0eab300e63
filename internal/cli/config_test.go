package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/graphql"
	"github.com/matzehuels/fusiongraph/pkg/mfg"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{envClientID, envClientSecret, envEndpoint, envRedisURL, envCallbackURL, envMongoURI} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), false)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.API.Endpoint != graphql.DefaultEndpoint {
		t.Errorf("endpoint = %q", cfg.API.Endpoint)
	}
	if cfg.API.Timeout.Duration != 30*time.Second {
		t.Errorf("timeout = %v", cfg.API.Timeout)
	}
	if cfg.Cache.TTL.Duration != mfg.DefaultCacheTTL {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Webhook.Listen != ":3000" || cfg.Webhook.EventType != mfg.DefaultEventType {
		t.Errorf("webhook = %+v", cfg.Webhook)
	}
	if cfg.API.Retries != 0 {
		t.Errorf("retries = %d, want 0", cfg.API.Retries)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	clearConfigEnv(t)
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), true)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, `
[credentials]
client_id = "id-from-file"
client_secret = "secret-from-file"

[api]
timeout = "45s"
requests_per_second = 2.5
retries = 2
scopes = ["data:read"]

[cache]
ttl = "1h"

[defaults]
hub = "My Hub"
project = "Bike"
component = "Frame"

[webhook]
listen = ":8080"
callback_url = "https://example.ngrok.app"
`)

	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Credentials.ClientID != "id-from-file" || cfg.Credentials.ClientSecret != "secret-from-file" {
		t.Errorf("credentials = %+v", cfg.Credentials)
	}
	if cfg.API.Timeout.Duration != 45*time.Second || cfg.API.RequestsPerSecond != 2.5 || cfg.API.Retries != 2 {
		t.Errorf("api = %+v", cfg.API)
	}
	if len(cfg.API.Scopes) != 1 || cfg.API.Scopes[0] != "data:read" {
		t.Errorf("scopes = %v", cfg.API.Scopes)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Defaults.Component != "Frame" {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if cfg.Webhook.Listen != ":8080" || cfg.Webhook.EventType != mfg.DefaultEventType {
		t.Errorf("webhook = %+v", cfg.Webhook)
	}
	if cfg.API.Endpoint != graphql.DefaultEndpoint {
		t.Errorf("unset endpoint should keep default, got %q", cfg.API.Endpoint)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, `
[credentials]
client_id = "id-from-file"
`)
	t.Setenv(envClientID, "id-from-env")
	t.Setenv(envClientSecret, "secret-from-env")
	t.Setenv(envEndpoint, "http://localhost:4000/graphql")
	t.Setenv(envRedisURL, "redis://localhost:6379/0")
	t.Setenv(envCallbackURL, "https://tunnel.example")
	t.Setenv(envMongoURI, "mongodb://localhost:27017")

	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	checks := map[string][2]string{
		"client id":    {cfg.Credentials.ClientID, "id-from-env"},
		"secret":       {cfg.Credentials.ClientSecret, "secret-from-env"},
		"endpoint":     {cfg.API.Endpoint, "http://localhost:4000/graphql"},
		"redis":        {cfg.Cache.RedisURL, "redis://localhost:6379/0"},
		"callback url": {cfg.Webhook.CallbackURL, "https://tunnel.example"},
		"mongo":        {cfg.Webhook.MongoURI, "mongodb://localhost:27017"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	clearConfigEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `[api`},
		{"bad duration", "[api]\ntimeout = \"soon\""},
		{"negative retries", "[api]\nretries = -1"},
		{"negative rate", "[api]\nrequests_per_second = -3"},
		{"negative ttl", "[cache]\nttl = \"-1h\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content), true)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestConfigRedacted(t *testing.T) {
	cfg := defaultConfig()
	cfg.Credentials.ClientID = "visible"
	cfg.Credentials.ClientSecret = "hidden"
	cfg.Webhook.Secret = "hook-secret"

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg.redacted()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "hidden") || strings.Contains(out, "hook-secret") {
		t.Errorf("secrets leaked:\n%s", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, `timeout = "30s"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if cfg.Credentials.ClientSecret != "hidden" {
		t.Error("redacted must not modify the original")
	}
}

func TestLookupKey(t *testing.T) {
	cfg := defaultConfig()
	cfg.Defaults = DefaultsConfig{Hub: "Default Hub", Project: "Default Project", Component: "Default Part"}

	c := &CLI{component: "Flag Part"}
	key, err := c.lookupKey(cfg)
	if err != nil {
		t.Fatalf("lookupKey: %v", err)
	}
	want := mfg.LookupKey{Hub: "Default Hub", Project: "Default Project", Component: "Flag Part"}
	if key != want {
		t.Errorf("key = %+v, want %+v", key, want)
	}

	_, err = (&CLI{}).lookupKey(defaultConfig())
	if err == nil || !strings.Contains(err.Error(), "--hub") {
		t.Errorf("error = %v, want hint about flags", err)
	}
}

func TestSessionRequiresCredentials(t *testing.T) {
	_, err := (&CLI{}).session(defaultConfig())
	if !errors.Is(err, errors.ErrCodeMissingCredentials) {
		t.Errorf("error = %v, want MISSING_CREDENTIALS", err)
	}
}
