package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadSurvival("")
	if err != nil {
		t.Fatalf("LoadSurvival() failed: %v", err)
	}
	def := DefaultSurvivalConfig()

	if cfg.Player != def.Player {
		t.Errorf("Player = %+v, expected %+v", cfg.Player, def.Player)
	}
	if len(cfg.Weapons) != len(def.Weapons) {
		t.Fatalf("len(Weapons) = %d, expected %d", len(cfg.Weapons), len(def.Weapons))
	}
	for i := range def.Weapons {
		if cfg.Weapons[i] != def.Weapons[i] {
			t.Errorf("Weapons[%d] = %+v, expected %+v", i, cfg.Weapons[i], def.Weapons[i])
		}
	}
	if cfg.Upgrades != def.Upgrades {
		t.Errorf("Upgrades = %+v, expected %+v", cfg.Upgrades, def.Upgrades)
	}
	if cfg.Enemies != def.Enemies {
		t.Errorf("Enemies = %+v, expected %+v", cfg.Enemies, def.Enemies)
	}
	if cfg.Waves != def.Waves {
		t.Errorf("Waves = %+v, expected %+v", cfg.Waves, def.Waves)
	}
}

func TestLoadSurvivalCustomPathLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte("player:\n  name: Ash\nwaves:\n  delay_ms: 1000\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadSurvival(path)
	if err != nil {
		t.Fatalf("LoadSurvival() failed: %v", err)
	}
	if cfg.Player.Name != "Ash" {
		t.Errorf("Player.Name = %q, expected Ash", cfg.Player.Name)
	}
	if cfg.Player.MaxHealth != 100 {
		t.Errorf("Player.MaxHealth = %d, expected default 100", cfg.Player.MaxHealth)
	}
	if cfg.Waves.DelayMs != 1000 {
		t.Errorf("Waves.DelayMs = %d, expected 1000", cfg.Waves.DelayMs)
	}
	if cfg.Waves.BaseCount != 3 {
		t.Errorf("Waves.BaseCount = %d, expected default 3", cfg.Waves.BaseCount)
	}
}

func TestLoadSurvivalErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"bad yaml", "arena: [1, 2", "failed to parse"},
		{"no weapons", "weapons: []\n", "at least one weapon"},
		{"bad formula", "waves:\n  count_formula: \"wave +\"\n", "count_formula"},
		{"zero pool", "projectiles:\n  pool_size: 0\n", "pool_size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadSurvival(path)
			if err == nil {
				t.Fatal("LoadSurvival() error = nil, expected an error")
			}
			if !strings.Contains(err.Error(), tc.errPart) {
				t.Errorf("LoadSurvival() error = %q, expected it to mention %q", err, tc.errPart)
			}
		})
	}

	if _, err := LoadSurvival(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadSurvival(missing) error = nil, expected an error")
	}
}

func TestApplySurvivalPreset(t *testing.T) {
	tests := []struct {
		preset    DifficultyPreset
		health    int
		baseCount int
		delay     int64
	}{
		{DifficultyEasy, 150, 2, 7500},
		{DifficultyNormal, 100, 3, 5000},
		{DifficultyHard, 75, 5, 3000},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := DefaultSurvivalConfig()
			ApplySurvivalPreset(&cfg, tc.preset)
			if cfg.Player.MaxHealth != tc.health {
				t.Errorf("MaxHealth = %d, expected %d", cfg.Player.MaxHealth, tc.health)
			}
			if cfg.Waves.BaseCount != tc.baseCount {
				t.Errorf("BaseCount = %d, expected %d", cfg.Waves.BaseCount, tc.baseCount)
			}
			if cfg.Waves.DelayMs != tc.delay {
				t.Errorf("DelayMs = %d, expected %d", cfg.Waves.DelayMs, tc.delay)
			}
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in       string
		expected DifficultyPreset
		ok       bool
	}{
		{"easy", DifficultyEasy, true},
		{"HARD", DifficultyHard, true},
		{"", DifficultyNormal, true},
		{"nightmare", DifficultyNormal, false},
	}

	for _, tc := range tests {
		got, ok := ParseDifficulty(tc.in)
		if got != tc.expected || ok != tc.ok {
			t.Errorf("ParseDifficulty(%q) = (%q, %v), expected (%q, %v)", tc.in, got, ok, tc.expected, tc.ok)
		}
	}
}

func TestWaveFormulasBuiltIn(t *testing.T) {
	def := DefaultSurvivalConfig()
	f, err := NewWaveFormulas(def.Waves, def.Enemies)
	if err != nil {
		t.Fatalf("NewWaveFormulas() failed: %v", err)
	}

	counts := map[int]int{1: 3, 2: 5, 3: 7, 10: 21}
	for wave, expected := range counts {
		if got := f.SpawnCount(wave); got != expected {
			t.Errorf("SpawnCount(%d) = %d, expected %d", wave, got, expected)
		}
	}

	if got := f.EnemySpeed(1, 0); got != 52 {
		t.Errorf("EnemySpeed(1, 0) = %v, expected 52", got)
	}
	if got := f.EnemySpeed(3, -10); got != 46 {
		t.Errorf("EnemySpeed(3, -10) = %v, expected 46", got)
	}
}

func TestWaveFormulasExpressions(t *testing.T) {
	def := DefaultSurvivalConfig()
	waves := def.Waves
	waves.CountFormula = "base * wave"
	waves.SpeedFormula = "base + jitter + wave * 10.0"

	f, err := NewWaveFormulas(waves, def.Enemies)
	if err != nil {
		t.Fatalf("NewWaveFormulas() failed: %v", err)
	}

	if got := f.SpawnCount(4); got != 12 {
		t.Errorf("SpawnCount(4) = %d, expected 12", got)
	}
	if got := f.EnemySpeed(2, 5); got != 75 {
		t.Errorf("EnemySpeed(2, 5) = %v, expected 75", got)
	}

	waves.CountFormula = "wave - 10"
	f, err = NewWaveFormulas(waves, def.Enemies)
	if err != nil {
		t.Fatalf("NewWaveFormulas() failed: %v", err)
	}
	if got := f.SpawnCount(1); got != 1 {
		t.Errorf("SpawnCount(1) with negative formula = %d, expected clamp to 1", got)
	}
}

func TestWaveFormulasRuntimeErrorFallsBack(t *testing.T) {
	def := DefaultSurvivalConfig()
	waves := def.Waves
	waves.CountFormula = "base % (wave - 1) + 1"

	f, err := NewWaveFormulas(waves, def.Enemies)
	if err != nil {
		t.Fatalf("NewWaveFormulas() failed: %v", err)
	}
	var buf bytes.Buffer
	f.SetLogger(log.New(&buf))

	builtIn := def.Waves.BaseCount
	for i := 0; i < 3; i++ {
		if got := f.SpawnCount(1); got != builtIn {
			t.Errorf("SpawnCount(1) = %d, expected built-in %d", got, builtIn)
		}
	}
	if got := f.SpawnCount(2); got != 1 {
		t.Errorf("SpawnCount(2) = %d, expected 1", got)
	}

	out := buf.String()
	if !strings.Contains(out, "waves.count_formula") {
		t.Errorf("log output = %q, expected a waves.count_formula warning", out)
	}
	if n := strings.Count(out, "wave formula failed"); n != 1 {
		t.Errorf("logged %d failures, expected 1", n)
	}
}
