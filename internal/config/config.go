// Package config loads the service configuration from a YAML file with
// environment overrides for the values that should never live on disk.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Inventario struct {
		Listen     string       `yaml:"listen"`
		Durability string       `yaml:"durability"` // "best-effort" (default) or "strict"
		GitHub     GitHubConfig `yaml:"github"`
		Mongo      MongoConfig  `yaml:"mongo"`
		Auth       AuthConfig   `yaml:"auth"`
	} `yaml:"inventario"`
}

type GitHubConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Owner         string        `yaml:"owner"`
	Repo          string        `yaml:"repo"`
	Token         string        `yaml:"token"`
	InventoryPath string        `yaml:"inventory_path"`
	LogPath       string        `yaml:"log_path"`
	Timeout       time.Duration `yaml:"timeout"`
}

type MongoConfig struct {
	URI           string `yaml:"uri"` // empty disables the audit mirror
	DB            string `yaml:"db"`
	Collection    string `yaml:"collection"`
	RetentionDays int64  `yaml:"retention_days"`
}

type AuthConfig struct {
	Users     []UserConfig `yaml:"users"`
	LoginRate int          `yaml:"login_rate"` // attempts per IP per minute
}

type UserConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load reads the file at path when given, then applies env overrides and
// defaults. An empty path yields a pure env/default configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	inv := &c.Inventario
	inv.GitHub.Token = Getenv("GITHUB_TOKEN", inv.GitHub.Token)
	inv.GitHub.Owner = Getenv("REPO_OWNER", inv.GitHub.Owner)
	inv.GitHub.Repo = Getenv("REPO_NAME", inv.GitHub.Repo)
	inv.Mongo.URI = Getenv("MONGO_URI", inv.Mongo.URI)
	if p := os.Getenv("PORT"); p != "" {
		inv.Listen = ":" + p
	}
}

func (c *Config) applyDefaults() {
	inv := &c.Inventario
	if inv.Listen == "" {
		inv.Listen = ":8080"
	}
	if inv.Durability == "" {
		inv.Durability = "best-effort"
	}
	if inv.GitHub.InventoryPath == "" {
		inv.GitHub.InventoryPath = "inventario.json"
	}
	if inv.GitHub.LogPath == "" {
		inv.GitHub.LogPath = "logs.json"
	}
	if inv.GitHub.Timeout == 0 {
		inv.GitHub.Timeout = 15 * time.Second
	}
	if inv.Mongo.DB == "" {
		inv.Mongo.DB = "inventario"
	}
	if inv.Mongo.Collection == "" {
		inv.Mongo.Collection = "logs"
	}
	if inv.Mongo.RetentionDays == 0 {
		inv.Mongo.RetentionDays = 90
	}
	if inv.Auth.LoginRate == 0 {
		inv.Auth.LoginRate = 10
	}
}

// Users flattens the configured credentials into a lookup map.
func (c *Config) Users() map[string]string {
	m := make(map[string]string, len(c.Inventario.Auth.Users))
	for _, u := range c.Inventario.Auth.Users {
		if u.Username != "" {
			m[u.Username] = u.Password
		}
	}
	return m
}

func Getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func GetInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}
