package sim

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-survivor/internal/config"
	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/sched"
)

// Player is the controlled combatant. It owns an ordered, non-empty list of
// weapons and the run's score.
type Player struct {
	Name      string
	Pos       core.Vec2
	Rotation  float64
	Health    int
	MaxHealth int
	Score     int
	Kills     int
	Weapons   []*Weapon
	Current   int

	alive   bool
	muzzle  float64
	fx      Effects
	log     *log.Logger
	onDeath func()
}

// NewPlayer creates a player with one Weapon per weapon config.
// onDeath runs once per life, when health first reaches zero.
func NewPlayer(cfg config.SurvivalConfig, s *sched.Scheduler, fx Effects, logger *log.Logger, onDeath func()) *Player {
	p := &Player{
		Name:      cfg.Player.Name,
		MaxHealth: cfg.Player.MaxHealth,
		muzzle:    cfg.Player.MuzzleOffset,
		fx:        fx,
		log:       logger,
		onDeath:   onDeath,
	}
	for i, wc := range cfg.Weapons {
		owner := fmt.Sprintf("weapon-%d", i)
		p.Weapons = append(p.Weapons, NewWeapon(wc, cfg.Upgrades, s, owner, logger))
	}
	p.ResetState()
	return p
}

// Alive reports whether the player has health left.
func (p *Player) Alive() bool {
	return p.alive
}

// CurrentWeapon returns the selected weapon.
func (p *Player) CurrentWeapon() *Weapon {
	return p.Weapons[p.Current]
}

// Muzzle returns where a shot fired now would appear.
func (p *Player) Muzzle() core.Vec2 {
	return p.Pos.Add(core.FromAngle(p.Rotation).Scale(p.muzzle))
}

// Update turns the player toward aim and, when firing, tries to shoot the
// current weapon. A fired shot is returned for the caller to launch.
func (p *Player) Update(now int64, aim core.Vec2, hasAim, firing bool) FireResult {
	if !p.alive {
		return FireResult{}
	}
	if hasAim && aim != p.Pos {
		p.Rotation = p.Pos.AngleTo(aim)
	}

	w := p.CurrentWeapon()
	if !firing {
		return FireResult{}
	}
	if w.Reloading {
		return FireResult{Blocked: BlockedReloading}
	}
	res := w.TryFire(now)
	if res.ReloadStarted {
		p.fx.Play(EffectReload, p.Pos)
	}
	return res
}

// TakeDamage removes health, clamping at zero. It returns true only on the
// call that kills the player.
func (p *Player) TakeDamage(amount int) bool {
	if !p.alive || amount <= 0 {
		return false
	}
	p.Health = max(0, p.Health-amount)
	p.fx.Play(EffectPlayerHurt, p.Pos)
	p.log.Debug("Player hurt", "health", p.Health)
	if p.Health > 0 {
		return false
	}
	p.alive = false
	p.log.Info("Player died", "score", p.Score, "kills", p.Kills)
	if p.onDeath != nil {
		p.onDeath()
	}
	return true
}

// SwitchWeapon selects the next weapon, wrapping around. The outgoing
// weapon's reload is abandoned and an empty incoming weapon starts one.
func (p *Player) SwitchWeapon(now int64) {
	if !p.alive {
		return
	}
	p.CurrentWeapon().CancelReload()
	p.Current = (p.Current + 1) % len(p.Weapons)

	w := p.CurrentWeapon()
	p.fx.Play(EffectSwitch, p.Pos)
	p.log.Debug("Switched weapon", "weapon", w.Name)
	if w.Ammo == 0 && w.StartReload(now) {
		p.fx.Play(EffectReload, p.Pos)
	}
}

// UpgradeCurrentWeapon buys the next upgrade for the selected weapon with
// the player's score.
func (p *Player) UpgradeCurrentWeapon() UpgradeResult {
	if !p.alive {
		return UpgradeResult{NewScore: p.Score}
	}
	w := p.CurrentWeapon()
	res := w.Upgrade(p.Score)
	if !res.Success {
		p.log.Debug("Upgrade denied", "weapon", w.Name, "cost", w.UpgradeCost, "score", p.Score)
		return res
	}
	p.Score = res.NewScore
	p.fx.Play(EffectUpgrade, p.Pos)
	p.log.Info("Weapon upgraded", "weapon", w.Name, "level", w.UpgradeLevel, "damage", w.Stats.Damage)
	return res
}

// ResetState restores a fresh player: full health, no score, first weapon
// selected and every weapon back to base stats.
func (p *Player) ResetState() {
	p.Health = p.MaxHealth
	p.Score = 0
	p.Kills = 0
	p.Current = 0
	p.Rotation = 0
	p.alive = true
	for _, w := range p.Weapons {
		w.Reset()
	}
}
