/*
Package config manages TOML config for the longhand tool.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/longhand/internal/utils"
	"github.com/bastiangx/longhand/pkg/expand"
)

// Config holds the entire config structure
type Config struct {
	Expand ExpandConfig `toml:"expand"`
	LLM    LLMConfig    `toml:"llm"`
	Server ServerConfig `toml:"server"`
	Learn  LearnConfig  `toml:"learn"`
}

// ExpandConfig tunes the expansion engine.
type ExpandConfig struct {
	MinConfidence         float64 `toml:"min_confidence"`
	AmbiguityMargin       float64 `toml:"ambiguity_margin"`
	ContextBonusWeight    float64 `toml:"context_bonus_weight"`
	MaxEditDistance       int     `toml:"max_edit_distance"`
	MaxWordLen            int     `toml:"max_word_len"`
	PassthroughKnownWords bool    `toml:"passthrough_known_words"`
}

// LLMConfig gates the fallback resolver.
type LLMConfig struct {
	Enabled   bool   `toml:"enabled"`
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxTextLen int `toml:"max_text_len"`
}

// LearnConfig selects the correction store.
type LearnConfig struct {
	Backend   string `toml:"backend"`
	FilePath  string `toml:"file_path"`
	RedisAddr string `toml:"redis_addr"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "longhand")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "longhand")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/longhand/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	engine := expand.DefaultConfig()
	return &Config{
		Expand: ExpandConfig{
			MinConfidence:         engine.MinConfidence,
			AmbiguityMargin:       engine.AmbiguityMargin,
			ContextBonusWeight:    engine.ContextBonusWeight,
			MaxEditDistance:       engine.MaxEditDistance,
			MaxWordLen:            engine.MaxWordLen,
			PassthroughKnownWords: engine.PassthroughKnownWords,
		},
		LLM: LLMConfig{
			Enabled:   false,
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "LONGHAND_API_KEY",
			TimeoutMs: 2000,
		},
		Server: ServerConfig{
			MaxTextLen: 10000,
		},
		Learn: LearnConfig{
			Backend:   "file",
			FilePath:  "",
			RedisAddr: "localhost:6379",
		},
	}
}

// EngineConfig maps the file config onto the engine defaults.
func (c *Config) EngineConfig() expand.Config {
	cfg := expand.DefaultConfig()
	cfg.MinConfidence = c.Expand.MinConfidence
	cfg.AmbiguityMargin = c.Expand.AmbiguityMargin
	cfg.ContextBonusWeight = c.Expand.ContextBonusWeight
	cfg.MaxEditDistance = c.Expand.MaxEditDistance
	cfg.MaxWordLen = c.Expand.MaxWordLen
	cfg.PassthroughKnownWords = c.Expand.PassthroughKnownWords
	cfg.LLMEnabled = c.LLM.Enabled
	if c.LLM.TimeoutMs > 0 {
		cfg.LLMTimeout = time.Duration(c.LLM.TimeoutMs) * time.Millisecond
	}
	return cfg
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages whatever sections of a broken TOML file
// still parse, keeping defaults for the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if expandSection, ok := utils.ExtractSection(tempConfig, "expand"); ok {
		extractExpandConfig(expandSection, &config.Expand)
	}
	if llmSection, ok := utils.ExtractSection(tempConfig, "llm"); ok {
		extractLLMConfig(llmSection, &config.LLM)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if learnSection, ok := utils.ExtractSection(tempConfig, "learn"); ok {
		extractLearnConfig(learnSection, &config.Learn)
	}
	return config, nil
}

func extractExpandConfig(data map[string]any, expand *ExpandConfig) {
	if val, ok := utils.ExtractFloat64(data, "min_confidence"); ok {
		expand.MinConfidence = val
	}
	if val, ok := utils.ExtractFloat64(data, "ambiguity_margin"); ok {
		expand.AmbiguityMargin = val
	}
	if val, ok := utils.ExtractFloat64(data, "context_bonus_weight"); ok {
		expand.ContextBonusWeight = val
	}
	if val, ok := utils.ExtractInt64(data, "max_edit_distance"); ok {
		expand.MaxEditDistance = val
	}
	if val, ok := utils.ExtractInt64(data, "max_word_len"); ok {
		expand.MaxWordLen = val
	}
	if val, ok := utils.ExtractBool(data, "passthrough_known_words"); ok {
		expand.PassthroughKnownWords = val
	}
}

func extractLLMConfig(data map[string]any, llm *LLMConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		llm.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "base_url"); ok {
		llm.BaseURL = val
	}
	if val, ok := utils.ExtractString(data, "model"); ok {
		llm.Model = val
	}
	if val, ok := utils.ExtractString(data, "api_key_env"); ok {
		llm.APIKeyEnv = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		llm.TimeoutMs = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_text_len"); ok {
		server.MaxTextLen = val
	}
}

func extractLearnConfig(data map[string]any, learn *LearnConfig) {
	if val, ok := utils.ExtractString(data, "backend"); ok {
		learn.Backend = val
	}
	if val, ok := utils.ExtractString(data, "file_path"); ok {
		learn.FilePath = val
	}
	if val, ok := utils.ExtractString(data, "redis_addr"); ok {
		learn.RedisAddr = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
