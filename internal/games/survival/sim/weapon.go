package sim

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-survivor/internal/config"
	"github.com/vovakirdan/tui-survivor/internal/sched"
)

// WeaponStats are the upgradable numbers of a weapon.
type WeaponStats struct {
	FireRate    float64 // Shots per second
	MaxAmmo     int
	ReloadMs    float64
	Damage      int
	BulletSpeed float64
}

// FireBlock says why TryFire did not fire.
type FireBlock int

const (
	NotBlocked       FireBlock = iota
	BlockedReloading           // Reload in progress
	BlockedEmpty               // No ammo; a reload was started if possible
	BlockedCooldown            // Fire interval has not elapsed
)

// ShotRequest asks the world to launch one projectile.
type ShotRequest struct {
	Damage  int
	Speed   float64
	Texture string
}

// FireResult is the outcome of TryFire.
type FireResult struct {
	Fired         bool
	Blocked       FireBlock
	Shot          ShotRequest
	ReloadStarted bool
}

// UpgradeResult is the outcome of Upgrade.
type UpgradeResult struct {
	Success  bool
	NewScore int
	Cost     int // Price paid, zero on failure
}

// Weapon is the firing, reload and upgrade state of one weapon.
// Reload completion is a deferred action on the shared scheduler.
type Weapon struct {
	Name         string
	Texture      string
	Base         WeaponStats
	Stats        WeaponStats
	Ammo         int
	Reloading    bool
	UpgradeLevel int
	UpgradeCost  int

	lastFiredAt int64
	hasFired    bool
	initialCost int
	rules       config.UpgradeConfig
	sched       *sched.Scheduler
	owner       string
	reload      sched.Handle
	log         *log.Logger
}

// NewWeapon creates a fully loaded weapon. owner keys its deferred actions.
func NewWeapon(cfg config.WeaponConfig, rules config.UpgradeConfig, s *sched.Scheduler, owner string, logger *log.Logger) *Weapon {
	base := WeaponStats{
		FireRate:    cfg.FireRate,
		MaxAmmo:     cfg.MaxAmmo,
		ReloadMs:    cfg.ReloadMs,
		Damage:      cfg.Damage,
		BulletSpeed: cfg.BulletSpeed,
	}
	w := &Weapon{
		Name:        cfg.Name,
		Texture:     cfg.Texture,
		Base:        base,
		initialCost: cfg.UpgradeCost,
		rules:       rules,
		sched:       s,
		owner:       owner,
		log:         logger,
	}
	w.Reset()
	return w
}

// Interval returns the minimum time between shots in milliseconds.
func (w *Weapon) Interval() float64 {
	return 1000 / w.Stats.FireRate
}

// TryFire fires one round if the weapon is loaded, not reloading and off
// cooldown. Firing the last round, or trying to fire an empty weapon,
// starts a reload.
func (w *Weapon) TryFire(now int64) FireResult {
	if w.Reloading {
		return FireResult{Blocked: BlockedReloading}
	}
	if w.Ammo <= 0 {
		return FireResult{Blocked: BlockedEmpty, ReloadStarted: w.StartReload(now)}
	}
	if w.hasFired && float64(now-w.lastFiredAt) < w.Interval() {
		return FireResult{Blocked: BlockedCooldown}
	}

	w.Ammo--
	w.lastFiredAt = now
	w.hasFired = true

	res := FireResult{
		Fired: true,
		Shot: ShotRequest{
			Damage:  w.Stats.Damage,
			Speed:   w.Stats.BulletSpeed,
			Texture: w.Texture,
		},
	}
	if w.Ammo == 0 {
		res.ReloadStarted = w.StartReload(now)
	}
	return res
}

// StartReload schedules a reload to finish at now + reload time. It is a
// no-op while reloading or when the magazine is full.
func (w *Weapon) StartReload(now int64) bool {
	if w.Reloading || w.Ammo == w.Stats.MaxAmmo {
		return false
	}
	w.Reloading = true
	if w.reload != 0 {
		w.sched.Cancel(w.reload)
	}
	due := now + int64(math.Round(w.Stats.ReloadMs))
	w.reload = w.sched.ScheduleAt(due, w.owner, func(int64) {
		w.reload = 0
		w.FinishReload()
	})
	w.log.Debug("Reloading", "weapon", w.Name, "ms", int64(math.Round(w.Stats.ReloadMs)))
	return true
}

// FinishReload fills the magazine and clears the reloading flag.
func (w *Weapon) FinishReload() {
	if w.reload != 0 {
		w.sched.Cancel(w.reload)
		w.reload = 0
	}
	w.Ammo = w.Stats.MaxAmmo
	w.Reloading = false
	w.log.Debug("Reload complete", "weapon", w.Name, "ammo", w.Ammo)
}

// CancelReload abandons a reload in progress. Ammo is not restored.
func (w *Weapon) CancelReload() bool {
	if !w.Reloading {
		return false
	}
	if w.reload != 0 {
		w.sched.Cancel(w.reload)
		w.reload = 0
	}
	w.Reloading = false
	return true
}

// Upgrade spends score on the next upgrade level. Current ammo is kept.
func (w *Weapon) Upgrade(score int) UpgradeResult {
	if score < w.UpgradeCost {
		return UpgradeResult{NewScore: score}
	}

	cost := w.UpgradeCost
	r := w.rules
	w.UpgradeLevel++
	w.UpgradeCost = int(math.Floor(float64(cost) * r.CostMultiplier))
	w.Stats.Damage += r.DamageBase + w.UpgradeLevel*r.DamagePerLevel
	w.Stats.MaxAmmo += r.AmmoBonus
	w.Stats.FireRate = math.Min(w.Stats.FireRate*r.FireRateMultiplier, w.Base.FireRate*r.FireRateCap)
	w.Stats.ReloadMs = math.Max(w.Stats.ReloadMs*r.ReloadMultiplier, r.ReloadFloorMs)

	return UpgradeResult{Success: true, NewScore: score - cost, Cost: cost}
}

// Reset restores base stats, a full magazine and the initial upgrade cost.
func (w *Weapon) Reset() {
	w.CancelReload()
	w.Stats = w.Base
	w.Ammo = w.Base.MaxAmmo
	w.Reloading = false
	w.UpgradeLevel = 0
	w.UpgradeCost = w.initialCost
	w.lastFiredAt = 0
	w.hasFired = false
}

// UI returns the HUD view of the weapon.
func (w *Weapon) UI() WeaponUI {
	return WeaponUI{
		Name:        w.Name,
		Ammo:        w.Ammo,
		MaxAmmo:     w.Stats.MaxAmmo,
		Reloading:   w.Reloading,
		Level:       w.UpgradeLevel,
		UpgradeCost: w.UpgradeCost,
		Damage:      w.Stats.Damage,
	}
}
