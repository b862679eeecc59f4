package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"cinelog/internal/domain"
)

// StoreType identifies the document store backend
type StoreType string

const (
	StoreTypeLocal  StoreType = "local"
	StoreTypeRemote StoreType = "remote"
)

// Config holds all application configuration
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Identity IdentityConfig `mapstructure:"identity"`
	UI       UIConfig       `mapstructure:"ui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StoreConfig holds document store configuration
type StoreConfig struct {
	Type       StoreType `mapstructure:"type"`       // "local" or "remote"
	Path       string    `mapstructure:"path"`       // local backend: database file
	URL        string    `mapstructure:"url"`        // remote backend: server URL
	Collection string    `mapstructure:"collection"` // collection name
}

// IdentityConfig holds identity provider configuration and the saved session
type IdentityConfig struct {
	URL      string `mapstructure:"url"`      // identity provider base URL
	Token    string `mapstructure:"token"`    // saved session token
	Username string `mapstructure:"username"` // display name (for the header)
}

// UIConfig holds UI configuration
type UIConfig struct {
	GridColumns int `mapstructure:"grid_columns"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Type:       "",
			Path:       defaultStorePath(),
			Collection: domain.DefaultCollection,
		},
		UI: UIConfig{
			GridColumns: 4,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultStorePath returns the default local database path for the current OS
func defaultStorePath() string {
	return filepath.Join(defaultDataPath(), "cinelog.db")
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	return filepath.Join(defaultDataPath(), "cinelog.log")
}

func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cinelog")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "cinelog")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cinelog")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "cinelog")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("CINELOG")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Store.Collection == "" {
		cfg.Store.Collection = domain.DefaultCollection
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("store.type", cfg.Store.Type)
	viper.Set("store.path", cfg.Store.Path)
	viper.Set("store.url", cfg.Store.URL)
	viper.Set("store.collection", cfg.Store.Collection)

	viper.Set("identity.url", cfg.Identity.URL)
	viper.Set("identity.token", cfg.Identity.Token)
	viper.Set("identity.username", cfg.Identity.Username)

	viper.Set("ui.grid_columns", cfg.UI.GridColumns)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	return writeConfigFile()
}

// SaveSession updates just the saved session in the configuration
func SaveSession(token, username string) error {
	viper.Set("identity.token", token)
	viper.Set("identity.username", username)
	return writeConfigFile()
}

// ClearSession removes the saved session while preserving other settings
func ClearSession() error {
	viper.Set("identity.token", "")
	viper.Set("identity.username", "")
	return writeConfigFile()
}

func writeConfigFile() error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if a store backend has been chosen
func (c *Config) IsConfigured() bool {
	return c.Store.Type != ""
}

// HasSession returns true if a session token is saved
func (c *Config) HasSession() bool {
	return c.Identity.Token != ""
}
