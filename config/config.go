package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRoot      = "./DB"
	DefaultUsersFile = "users.json"
)

type StorageConfig struct {
	Root     string `yaml:"root"`
	Database string `yaml:"database"`
}

type LogConfig struct {
	Verbose bool `yaml:"verbose"`
}

type AuthConfig struct {
	UsersFile string `yaml:"users_file"`
	User      string `yaml:"user"`
}

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Auth    AuthConfig    `yaml:"auth"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	c.Storage.Root = strings.TrimSpace(c.Storage.Root)
	if c.Storage.Root == "" {
		c.Storage.Root = DefaultRoot
	}
	c.Storage.Database = strings.TrimSpace(c.Storage.Database)
	if c.Auth.UsersFile == "" {
		c.Auth.UsersFile = DefaultUsersFile
	}
}

// UsersPath returns the users file location. Relative names are resolved
// against the storage root.
func (c *Config) UsersPath() string {
	if filepath.IsAbs(c.Auth.UsersFile) {
		return c.Auth.UsersFile
	}
	return filepath.Join(c.Storage.Root, c.Auth.UsersFile)
}
