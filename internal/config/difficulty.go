package config

import "strings"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParseDifficulty maps a CLI value to a preset. Unknown values map to
// DifficultyNormal and ok=false.
func ParseDifficulty(s string) (preset DifficultyPreset, ok bool) {
	switch DifficultyPreset(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, true
	case DifficultyHard:
		return DifficultyHard, true
	case DifficultyNormal, "":
		return DifficultyNormal, true
	default:
		return DifficultyNormal, false
	}
}

// ApplySurvivalPreset adjusts player durability and wave pressure.
// Normal leaves the config untouched.
func ApplySurvivalPreset(cfg *SurvivalConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Player.MaxHealth = cfg.Player.MaxHealth * 3 / 2
		cfg.Waves.BaseCount = max(1, cfg.Waves.BaseCount-1)
		cfg.Waves.DelayMs = cfg.Waves.DelayMs * 3 / 2
		cfg.Enemies.BaseSpeed *= 0.8
	case DifficultyHard:
		cfg.Player.MaxHealth = max(1, cfg.Player.MaxHealth*3/4)
		cfg.Waves.BaseCount += 2
		cfg.Waves.DelayMs = cfg.Waves.DelayMs * 3 / 5
		cfg.Enemies.BaseSpeed *= 1.2
	}
}
