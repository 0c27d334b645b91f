// Package config loads process settings from .env, an optional YAML file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/jun/smartdoorlock/internal/secret"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable holding the YAML file path.
const ConfigFileEnv = "DOORLOCK_CONFIG"

// Config holds the process settings.
type Config struct {
	DevMode               bool   `yaml:"dev_mode"`
	DeviceID              string `yaml:"device_id"`
	DeviceTokensTable     string `yaml:"device_tokens_table"`
	KMSKeyID              string `yaml:"kms_key_id"`
	LogLevel              string `yaml:"log_level"`
	ListenAddr            string `yaml:"listen_addr"`
	APIGatewaySecretParam string `yaml:"api_gateway_secret_param"`

	// Credentials are served ahead of SSM and the environment. Keys are
	// parameter names ("/doorlock/api-key") or env names ("API_KEY").
	Credentials map[string]string `yaml:"credentials"`
}

func defaults() *Config {
	return &Config{
		DeviceID:              "front-door",
		DeviceTokensTable:     "DeviceTokens",
		KMSKeyID:              "alias/doorlock-token-key",
		LogLevel:              "info",
		ListenAddr:            ":8080",
		APIGatewaySecretParam: "/doorlock/api-gateway-secret",
	}
}

// Load reads .env from the working directory when present, then the YAML
// file named by DOORLOCK_CONFIG, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("DEV_MODE"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEV_MODE %q: %w", v, err)
		}
		cfg.DevMode = dev
	}
	override(&cfg.DeviceID, "DEVICE_ID")
	override(&cfg.DeviceTokensTable, "DEVICE_TOKENS_TABLE")
	override(&cfg.KMSKeyID, "KMS_KEY_ID")
	override(&cfg.LogLevel, "LOG_LEVEL")
	override(&cfg.ListenAddr, "LISTEN_ADDR")
	override(&cfg.APIGatewaySecretParam, "API_GATEWAY_SECRET_PARAM")
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func override(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Resolver builds the secret lookup chain: the static credentials from the
// config file first, then the environment in dev mode or SSM otherwise.
func (c *Config) Resolver(ssmClient secret.SSMClient) secret.Resolver {
	chain := secret.ChainResolver{}
	if len(c.Credentials) > 0 {
		chain = append(chain, secret.StaticResolver(c.Credentials))
	}
	if c.DevMode || ssmClient == nil {
		log.Info("resolving secrets from environment")
		return append(chain, secret.NewEnvResolver())
	}
	log.Info("resolving secrets from SSM Parameter Store")
	return append(chain, secret.NewSSMResolver(ssmClient))
}
