package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Lin-Jiong-HDU/gate/internal/core/security"
)

const (
	ConfigFileName = "config"
	ConfigFileType = "yaml"
	GateDirName    = ".gate"
	EnvPrefix      = "GATE"
)

// Config holds the application configuration
type Config struct {
	AI       AIConfig                `mapstructure:"ai"`
	Security security.SecurityPolicy `mapstructure:"security"`
	History  HistoryConfig           `mapstructure:"history"`
	Log      LogConfig               `mapstructure:"log"`
}

// AIConfig holds AI-related configuration
type AIConfig struct {
	Provider       string `mapstructure:"provider"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	BaseURL        string `mapstructure:"base_url"`
	Timeout        int    `mapstructure:"timeout"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	IncludeHistory bool   `mapstructure:"include_history"`
}

// HistoryConfig holds audit history configuration
type HistoryConfig struct {
	// File is the store location. Empty keeps history in memory only.
	File        string `mapstructure:"file"`
	Backend     string `mapstructure:"backend"`
	MaxItems    int    `mapstructure:"max_items"`
	ContextSize int    `mapstructure:"context_size"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// GetConfigDir returns the gate config directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, GateDirName), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "anthropic")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.timeout", 30)
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.include_history", true)

	// Security defaults
	v.SetDefault("security.allowed_commands", security.DefaultAllowedCommands)
	v.SetDefault("security.denied_tokens", security.DefaultDeniedTokens)
	v.SetDefault("security.forbidden_paths", security.DefaultForbiddenPaths)
	v.SetDefault("security.command_timeout", security.DefaultCommandTimeout)
	v.SetDefault("security.max_output", security.DefaultMaxOutput)
	v.SetDefault("security.policy_file", "")

	// History defaults
	v.SetDefault("history.file", "")
	v.SetDefault("history.backend", "json")
	v.SetDefault("history.max_items", 100)
	v.SetDefault("history.context_size", 5)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

// LoadConfig reads configuration from configFile, or from
// ~/.gate/config.yaml when configFile is empty. A missing default file is
// not an error. GATE_* environment variables override file values.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(ConfigFileType)
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		configDir, err := GetConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(configDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names used by earlier releases
	_ = v.BindEnv("ai.model", EnvPrefix+"_AI_MODEL", "MODEL_NAME")

	// Read config file (ignore if not exists)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = providerKey(cfg.AI.Provider)
	}

	if cfg.Security.PolicyFile != "" {
		policy, err := security.LoadPolicyFile(cfg.Security.PolicyFile, &cfg.Security)
		if err != nil {
			return nil, err
		}
		cfg.Security = *policy
	}

	return &cfg, nil
}

// providerKey returns the conventional API key variable of provider.
func providerKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

// SaveConfig saves cfg to ~/.gate/config.yaml
func SaveConfig(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	// Create config directory if not exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType(ConfigFileType)

	v.Set("ai.provider", cfg.AI.Provider)
	v.Set("ai.api_key", cfg.AI.APIKey)
	v.Set("ai.model", cfg.AI.Model)
	v.Set("ai.base_url", cfg.AI.BaseURL)
	v.Set("ai.timeout", cfg.AI.Timeout)
	v.Set("ai.max_tokens", cfg.AI.MaxTokens)
	v.Set("ai.include_history", cfg.AI.IncludeHistory)

	v.Set("security.allowed_commands", cfg.Security.AllowedCommands)
	v.Set("security.denied_tokens", cfg.Security.DeniedTokens)
	v.Set("security.forbidden_paths", cfg.Security.ForbiddenPaths)
	v.Set("security.command_timeout", cfg.Security.CommandTimeout)
	v.Set("security.max_output", cfg.Security.MaxOutput)
	v.Set("security.policy_file", cfg.Security.PolicyFile)

	v.Set("history.file", cfg.History.File)
	v.Set("history.backend", cfg.History.Backend)
	v.Set("history.max_items", cfg.History.MaxItems)
	v.Set("history.context_size", cfg.History.ContextSize)

	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)

	configPath := filepath.Join(configDir, ConfigFileName+"."+ConfigFileType)
	return v.WriteConfigAs(configPath)
}
