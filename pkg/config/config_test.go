package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigMatchesEngine(t *testing.T) {
	cfg := DefaultConfig()
	engine := cfg.EngineConfig()

	if err := engine.Validate(); err != nil {
		t.Fatalf("Default config should map to a valid engine config: %v", err)
	}
	if engine.MinConfidence != cfg.Expand.MinConfidence {
		t.Errorf("MinConfidence not mapped: %v", engine.MinConfidence)
	}
	if engine.LLMEnabled {
		t.Error("LLM should be off by default")
	}
	if engine.LLMTimeout != 2*time.Second {
		t.Errorf("Expected 2s timeout from timeout_ms, got %v", engine.LLMTimeout)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[expand]
min_confidence = 0.3
max_edit_distance = 1

[llm]
enabled = true
model = "local-model"
timeout_ms = 500

[learn]
backend = "redis"
redis_addr = "10.0.0.5:6379"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Expand.MinConfidence != 0.3 || cfg.Expand.MaxEditDistance != 1 {
		t.Errorf("Expand section not loaded: %+v", cfg.Expand)
	}
	if !cfg.LLM.Enabled || cfg.LLM.Model != "local-model" {
		t.Errorf("LLM section not loaded: %+v", cfg.LLM)
	}
	if cfg.Learn.Backend != "redis" || cfg.Learn.RedisAddr != "10.0.0.5:6379" {
		t.Errorf("Learn section not loaded: %+v", cfg.Learn)
	}

	// unset keys keep defaults
	if cfg.Expand.AmbiguityMargin != DefaultConfig().Expand.AmbiguityMargin {
		t.Errorf("Unset key lost its default: %v", cfg.Expand.AmbiguityMargin)
	}

	engine := cfg.EngineConfig()
	if engine.LLMTimeout != 500*time.Millisecond {
		t.Errorf("timeout_ms not mapped: %v", engine.LLMTimeout)
	}
}

// a half-broken file keeps its valid sections
func TestLoadConfigPartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[expand]
min_confidence = 0.35

[llm
enabled = maybe
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Broken file should recover, not fail: %v", err)
	}
	if cfg.LLM.Enabled {
		t.Error("Broken llm section should keep the default")
	}
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.MaxTextLen != DefaultConfig().Server.MaxTextLen {
		t.Errorf("Expected defaults, got %+v", cfg.Server)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file should have been created: %v", err)
	}

	// a second init reads the file it just wrote
	again, err := InitConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Expand.MinConfidence != cfg.Expand.MinConfidence {
		t.Errorf("Round trip through the file drifted: %+v", again.Expand)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Expand.MinConfidence = 0.42
	cfg.Learn.Backend = "off"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Expand.MinConfidence != 0.42 || loaded.Learn.Backend != "off" {
		t.Errorf("Saved values lost: %+v", loaded)
	}
}
