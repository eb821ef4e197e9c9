package sim

import "github.com/vovakirdan/tui-survivor/internal/core"

// Effect names requested from the presentation layer.
const (
	EffectShoot       = "shoot_sound"
	EffectReload      = "weapon_reload_sound"
	EffectSwitch      = "weapon_switch_sound"
	EffectUpgrade     = "weapon_upgrade"
	EffectZombieHurt  = "zombie_hurt_sound"
	EffectZombieDeath = "zombie_death_sound"
	EffectPlayerHurt  = "player_hurt_sound"
	EffectWaveStart   = "wave_start"
)

// Effects receives fire-and-forget requests to play a named effect at an
// arena position. Implementations must not block.
type Effects interface {
	Play(name string, at core.Vec2)
}

// NopEffects discards every request.
type NopEffects struct{}

// Play implements Effects.
func (NopEffects) Play(string, core.Vec2) {}
