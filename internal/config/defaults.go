package config

import (
	_ "embed"
)

//go:embed defaults/survival.yaml
var defaultSurvivalYAML []byte

// DefaultSurvivalConfig returns the built-in survival configuration.
// It mirrors defaults/survival.yaml and backs up the embedded file.
func DefaultSurvivalConfig() SurvivalConfig {
	return SurvivalConfig{
		Arena: ArenaConfig{
			Width:       800,
			Height:      600,
			SpawnMargin: 50,
			SafeRadius:  150,
		},
		Player: PlayerConfig{
			Name:          "Player1",
			MaxHealth:     100,
			Radius:        16,
			ContactDamage: 10,
			MuzzleOffset:  19.2, // 0.6 of a 32-unit sprite
		},
		Weapons: []WeaponConfig{
			{
				Name:        "Pistol",
				FireRate:    5,
				MaxAmmo:     15,
				ReloadMs:    1500,
				Damage:      25,
				BulletSpeed: 600,
				UpgradeCost: 100,
				Texture:     "bullet_sprite",
			},
			{
				Name:        "Rifle",
				FireRate:    10,
				MaxAmmo:     30,
				ReloadMs:    2500,
				Damage:      20,
				BulletSpeed: 800,
				UpgradeCost: 150,
				Texture:     "bullet_sprite",
			},
		},
		Upgrades: UpgradeConfig{
			CostMultiplier:     1.75,
			DamageBase:         5,
			DamagePerLevel:     2,
			AmmoBonus:          5,
			FireRateMultiplier: 1.05,
			FireRateCap:        2.5,
			ReloadMultiplier:   0.95,
			ReloadFloorMs:      200,
		},
		Projectiles: ProjectileConfig{
			PoolSize:   50,
			LifespanMs: 2000,
			Radius:     4,
		},
		Enemies: EnemyConfig{
			MaxAlive:    50,
			Health:      100,
			BaseSpeed:   50,
			SpeedJitter: 10,
			Radius:      16,
			Knockback:   60,
			StunMs:      300,
			KillScore:   10,
		},
		Waves: WaveConfig{
			BaseCount:     3,
			CountStep:     2,
			SpeedStep:     2,
			DelayMs:       5000,
			SpawnAttempts: 20,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultSurvivalYAML
}
