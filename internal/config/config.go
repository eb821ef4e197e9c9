// Package config provides YAML-based configuration loading and difficulty
// presets for the survival game.
package config

import (
	"errors"
	"fmt"
)

// SurvivalConfig contains all tunables for a survival run.
type SurvivalConfig struct {
	Arena       ArenaConfig      `yaml:"arena"`
	Player      PlayerConfig     `yaml:"player"`
	Weapons     []WeaponConfig   `yaml:"weapons"`
	Upgrades    UpgradeConfig    `yaml:"upgrades"`
	Projectiles ProjectileConfig `yaml:"projectiles"`
	Enemies     EnemyConfig      `yaml:"enemies"`
	Waves       WaveConfig       `yaml:"waves"`
}

// ArenaConfig defines the play field in world units.
type ArenaConfig struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	SpawnMargin float64 `yaml:"spawn_margin"` // Enemies spawn at least this far from the edges
	SafeRadius  float64 `yaml:"safe_radius"`  // No spawns inside this disk around the player
}

// PlayerConfig defines the player character.
type PlayerConfig struct {
	Name          string  `yaml:"name"`
	MaxHealth     int     `yaml:"max_health"`
	Radius        float64 `yaml:"radius"`
	ContactDamage int     `yaml:"contact_damage"` // Health lost per enemy contact
	MuzzleOffset  float64 `yaml:"muzzle_offset"`  // Distance from center where bullets appear
}

// WeaponConfig defines the base stats of one weapon.
type WeaponConfig struct {
	Name        string  `yaml:"name"`
	FireRate    float64 `yaml:"fire_rate"` // Shots per second
	MaxAmmo     int     `yaml:"max_ammo"`
	ReloadMs    float64 `yaml:"reload_ms"`
	Damage      int     `yaml:"damage"`
	BulletSpeed float64 `yaml:"bullet_speed"` // World units per second
	UpgradeCost int     `yaml:"upgrade_cost"` // Cost of the first upgrade
	Texture     string  `yaml:"texture"`
}

// UpgradeConfig defines how each purchased upgrade changes a weapon.
type UpgradeConfig struct {
	CostMultiplier     float64 `yaml:"cost_multiplier"`
	DamageBase         int     `yaml:"damage_base"`
	DamagePerLevel     int     `yaml:"damage_per_level"`
	AmmoBonus          int     `yaml:"ammo_bonus"`
	FireRateMultiplier float64 `yaml:"fire_rate_multiplier"`
	FireRateCap        float64 `yaml:"fire_rate_cap"` // Multiple of the base fire rate
	ReloadMultiplier   float64 `yaml:"reload_multiplier"`
	ReloadFloorMs      float64 `yaml:"reload_floor_ms"`
}

// ProjectileConfig defines the bullet pool.
type ProjectileConfig struct {
	PoolSize   int     `yaml:"pool_size"`
	LifespanMs int64   `yaml:"lifespan_ms"`
	Radius     float64 `yaml:"radius"`
}

// EnemyConfig defines enemy stats and the contact response.
type EnemyConfig struct {
	MaxAlive    int     `yaml:"max_alive"`
	Health      int     `yaml:"health"`
	BaseSpeed   float64 `yaml:"base_speed"`
	SpeedJitter int     `yaml:"speed_jitter"` // Uniform integer jitter in [-j, j]
	Radius      float64 `yaml:"radius"`
	Knockback   float64 `yaml:"knockback"` // Drift speed while stunned
	StunMs      int64   `yaml:"stun_ms"`
	KillScore   int     `yaml:"kill_score"`
}

// WaveConfig defines wave escalation.
type WaveConfig struct {
	BaseCount     int    `yaml:"base_count"`
	CountStep     int    `yaml:"count_step"` // Extra enemies per wave
	SpeedStep     int    `yaml:"speed_step"` // Extra speed per wave
	DelayMs       int64  `yaml:"delay_ms"`   // Pause between waves
	SpawnAttempts int    `yaml:"spawn_attempts"`
	CountFormula  string `yaml:"count_formula"` // Optional expression, see WaveFormulas
	SpeedFormula  string `yaml:"speed_formula"`
}

// Validate reports the first setting that would make the simulation misbehave.
func (c SurvivalConfig) Validate() error {
	var errs []error
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		errs = append(errs, fmt.Errorf("arena size must be positive, got %vx%v", c.Arena.Width, c.Arena.Height))
	}
	if c.Player.MaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("player.max_health must be positive, got %d", c.Player.MaxHealth))
	}
	if len(c.Weapons) == 0 {
		errs = append(errs, errors.New("at least one weapon is required"))
	}
	for i, w := range c.Weapons {
		if w.FireRate <= 0 || w.MaxAmmo <= 0 || w.ReloadMs < 0 || w.BulletSpeed <= 0 {
			errs = append(errs, fmt.Errorf("weapons[%d] %q: fire_rate, max_ammo and bullet_speed must be positive", i, w.Name))
		}
		if w.UpgradeCost < 0 {
			errs = append(errs, fmt.Errorf("weapons[%d] %q: upgrade_cost must not be negative", i, w.Name))
		}
	}
	if c.Upgrades.CostMultiplier < 1 {
		errs = append(errs, fmt.Errorf("upgrades.cost_multiplier must be >= 1, got %v", c.Upgrades.CostMultiplier))
	}
	if c.Projectiles.PoolSize <= 0 {
		errs = append(errs, fmt.Errorf("projectiles.pool_size must be positive, got %d", c.Projectiles.PoolSize))
	}
	if c.Enemies.MaxAlive <= 0 {
		errs = append(errs, fmt.Errorf("enemies.max_alive must be positive, got %d", c.Enemies.MaxAlive))
	}
	if c.Enemies.Health <= 0 {
		errs = append(errs, fmt.Errorf("enemies.health must be positive, got %d", c.Enemies.Health))
	}
	if c.Waves.BaseCount <= 0 {
		errs = append(errs, fmt.Errorf("waves.base_count must be positive, got %d", c.Waves.BaseCount))
	}
	if c.Waves.DelayMs < 0 {
		errs = append(errs, fmt.Errorf("waves.delay_ms must not be negative, got %d", c.Waves.DelayMs))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid survival config: %w", err)
	}
	return nil
}
