package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSurvival loads the survival configuration.
// Search order: customPath -> ~/.survivor/configs/survival.yaml -> ./configs/survival.yaml -> embedded default.
// Files are layered over the built-in defaults, so a file only needs the keys it changes.
func LoadSurvival(customPath string) (SurvivalConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return SurvivalConfig{}, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		cfg, err := parseSurvival(data)
		if err != nil {
			return SurvivalConfig{}, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userCfgPath := userConfigPath("survival.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseSurvival(data); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", "survival.yaml")); err == nil {
		if cfg, err := parseSurvival(data); err == nil {
			return cfg, nil
		}
	}

	cfg, err := parseSurvival(defaultSurvivalYAML)
	if err != nil {
		return DefaultSurvivalConfig(), nil // Fallback to hardcoded if embed is broken
	}
	return cfg, nil
}

func parseSurvival(data []byte) (SurvivalConfig, error) {
	cfg := DefaultSurvivalConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SurvivalConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return SurvivalConfig{}, err
	}
	if _, err := NewWaveFormulas(cfg.Waves, cfg.Enemies); err != nil {
		return SurvivalConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".survivor", "configs", filename)
}
