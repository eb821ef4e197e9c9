package sim

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-survivor/internal/config"
	"github.com/vovakirdan/tui-survivor/internal/sched"
)

func newTestWeapon(t *testing.T, idx int) (*Weapon, *sched.Scheduler) {
	t.Helper()
	cfg := config.DefaultSurvivalConfig()
	s := sched.New()
	return NewWeapon(cfg.Weapons[idx], cfg.Upgrades, s, "weapon", log.New(io.Discard)), s
}

func TestTryFireConsumesAmmoUntilReload(t *testing.T) {
	for idx, name := range []string{"Pistol", "Rifle"} {
		t.Run(name, func(t *testing.T) {
			w, s := newTestWeapon(t, idx)
			interval := int64(w.Interval())
			maxAmmo := w.Stats.MaxAmmo

			var now int64
			for n := 1; n <= maxAmmo; n++ {
				res := w.TryFire(now)
				if !res.Fired {
					t.Fatalf("shot %d: TryFire() blocked with %v", n, res.Blocked)
				}
				if w.Ammo != maxAmmo-n {
					t.Errorf("after %d shots Ammo = %d, expected %d", n, w.Ammo, maxAmmo-n)
				}
				if (n == maxAmmo) != res.ReloadStarted {
					t.Errorf("shot %d: ReloadStarted = %v", n, res.ReloadStarted)
				}
				now += interval
			}
			if !w.Reloading {
				t.Fatal("Reloading = false after emptying the magazine")
			}

			s.Advance(now - interval + int64(w.Stats.ReloadMs) - 1)
			if !w.Reloading {
				t.Error("reload finished early")
			}
			s.Advance(now - interval + int64(w.Stats.ReloadMs))
			if w.Reloading || w.Ammo != maxAmmo {
				t.Errorf("after reload Reloading=%v Ammo=%d, expected false and %d", w.Reloading, w.Ammo, maxAmmo)
			}
		})
	}
}

func TestTryFireGuards(t *testing.T) {
	w, _ := newTestWeapon(t, 0)

	if res := w.TryFire(0); !res.Fired {
		t.Fatal("first shot at time 0 was throttled")
	}
	if res := w.TryFire(199); res.Fired || res.Blocked != BlockedCooldown {
		t.Errorf("TryFire(199) = %+v, expected BlockedCooldown", res)
	}
	if res := w.TryFire(200); !res.Fired {
		t.Errorf("TryFire(200) = %+v, expected a shot at exactly the interval", res)
	}

	w.StartReload(200)
	if res := w.TryFire(10000); res.Fired || res.Blocked != BlockedReloading {
		t.Errorf("TryFire() while reloading = %+v, expected BlockedReloading", res)
	}
}

func TestTryFireEmptyStartsReload(t *testing.T) {
	w, s := newTestWeapon(t, 0)
	w.Ammo = 0

	res := w.TryFire(0)
	if res.Fired || res.Blocked != BlockedEmpty || !res.ReloadStarted {
		t.Errorf("TryFire() on empty = %+v, expected BlockedEmpty with reload", res)
	}
	s.Advance(1500)
	if w.Ammo != w.Stats.MaxAmmo {
		t.Errorf("Ammo = %d, expected %d", w.Ammo, w.Stats.MaxAmmo)
	}
}

func TestStartReloadGuards(t *testing.T) {
	w, s := newTestWeapon(t, 0)

	if w.StartReload(0) {
		t.Error("StartReload() with a full magazine = true, expected false")
	}
	w.Ammo = 3
	if !w.StartReload(0) {
		t.Fatal("StartReload() = false, expected true")
	}
	if w.StartReload(100) {
		t.Error("StartReload() while reloading = true, expected false")
	}
	if s.Len() != 1 {
		t.Errorf("scheduled actions = %d, expected 1", s.Len())
	}
}

func TestCancelReloadKeepsAmmo(t *testing.T) {
	w, s := newTestWeapon(t, 0)
	w.Ammo = 2
	w.StartReload(0)

	if !w.CancelReload() {
		t.Fatal("CancelReload() = false, expected true")
	}
	s.Advance(10000)
	if w.Ammo != 2 || w.Reloading {
		t.Errorf("after cancel Ammo=%d Reloading=%v, expected 2 and false", w.Ammo, w.Reloading)
	}
}

func TestUpgrade(t *testing.T) {
	w, _ := newTestWeapon(t, 0)

	before := *w
	if res := w.Upgrade(99); res.Success || res.NewScore != 99 {
		t.Errorf("Upgrade(99) = %+v, expected failure keeping score", res)
	}
	if w.Stats != before.Stats || w.UpgradeCost != before.UpgradeCost || w.UpgradeLevel != 0 {
		t.Error("failed Upgrade() changed weapon state")
	}

	w.Ammo = 4
	res := w.Upgrade(130)
	if !res.Success || res.NewScore != 30 {
		t.Fatalf("Upgrade(130) = %+v, expected success with 30 left", res)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"UpgradeLevel", w.UpgradeLevel, 1},
		{"UpgradeCost", w.UpgradeCost, 175},
		{"Damage", w.Stats.Damage, 32},
		{"MaxAmmo", w.Stats.MaxAmmo, 20},
		{"FireRate", w.Stats.FireRate, 5.25},
		{"ReloadMs", w.Stats.ReloadMs, 1425.0},
		{"Ammo", w.Ammo, 4},
	}
	for _, tc := range tests {
		if tc.got != tc.expected {
			t.Errorf("%s = %v, expected %v", tc.name, tc.got, tc.expected)
		}
	}

	if res := w.Upgrade(175); !res.Success || w.UpgradeCost != 306 || w.Stats.Damage != 41 {
		t.Errorf("second upgrade: cost=%d damage=%d, expected 306 and 41", w.UpgradeCost, w.Stats.Damage)
	}
}

func TestUpgradeCapsAndMonotonicity(t *testing.T) {
	w, _ := newTestWeapon(t, 1)
	score := 1 << 40

	for i := 0; i < 60; i++ {
		cost, dmg, ammo := w.UpgradeCost, w.Stats.Damage, w.Stats.MaxAmmo
		res := w.Upgrade(score)
		if !res.Success {
			t.Fatalf("upgrade %d failed with score %d", i, score)
		}
		score = res.NewScore
		if w.UpgradeCost <= cost || w.Stats.Damage <= dmg || w.Stats.MaxAmmo <= ammo {
			t.Fatalf("upgrade %d did not strictly increase cost/damage/ammo", i)
		}
		if w.Stats.FireRate > w.Base.FireRate*2.5 {
			t.Fatalf("FireRate = %v exceeds cap %v", w.Stats.FireRate, w.Base.FireRate*2.5)
		}
		if w.Stats.ReloadMs < 200 {
			t.Fatalf("ReloadMs = %v below floor", w.Stats.ReloadMs)
		}
		if score < w.UpgradeCost {
			break
		}
	}
}

func TestWeaponReset(t *testing.T) {
	w, s := newTestWeapon(t, 0)
	w.Upgrade(1000)
	w.Ammo = 1
	w.StartReload(0)

	w.Reset()
	if w.Stats != w.Base || w.UpgradeLevel != 0 || w.UpgradeCost != 100 {
		t.Errorf("Reset() left stats=%+v level=%d cost=%d", w.Stats, w.UpgradeLevel, w.UpgradeCost)
	}
	if w.Ammo != w.Base.MaxAmmo || w.Reloading || s.Len() != 0 {
		t.Errorf("Reset() left Ammo=%d Reloading=%v pending=%d", w.Ammo, w.Reloading, s.Len())
	}
	if res := w.TryFire(5); !res.Fired {
		t.Error("first shot after Reset() was throttled")
	}
}
