package sim

import "fmt"

// UIState is a read-only snapshot for HUDs, spectators and run records.
type UIState struct {
	Player       string   `json:"player"`
	Health       int      `json:"health"`
	MaxHealth    int      `json:"max_health"`
	Score        int      `json:"score"`
	Kills        int      `json:"kills"`
	Wave         int      `json:"wave"`
	Remaining    int      `json:"zombies_remaining"`
	EnemiesAlive int      `json:"enemies_alive"`
	Weapon       WeaponUI `json:"weapon"`
	NextWaveInMs int64    `json:"next_wave_in_ms,omitempty"`
	GameOver     bool     `json:"game_over"`
	TimeMs       int64    `json:"time_ms"`
}

// WeaponUI describes the selected weapon.
type WeaponUI struct {
	Name        string `json:"name"`
	Ammo        int    `json:"ammo"`
	MaxAmmo     int    `json:"max_ammo"`
	Reloading   bool   `json:"reloading"`
	Level       int    `json:"level"`
	UpgradeCost int    `json:"upgrade_cost"`
	Damage      int    `json:"damage"`
}

// String renders the weapon line shown in the HUD.
func (w WeaponUI) String() string {
	s := fmt.Sprintf("Weapon: %s | Ammo: %d/%d", w.Name, w.Ammo, w.MaxAmmo)
	if w.Reloading {
		s += " | RELOADING..."
	}
	return s
}
