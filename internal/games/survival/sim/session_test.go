package sim

import (
	"encoding/json"
	"testing"

	"github.com/vovakirdan/tui-survivor/internal/config"
	"github.com/vovakirdan/tui-survivor/internal/core"
)

type recordedEffects struct {
	names []string
}

func (r *recordedEffects) Play(name string, _ core.Vec2) {
	r.names = append(r.names, name)
}

func (r *recordedEffects) count(name string) int {
	n := 0
	for _, s := range r.names {
		if s == name {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T, mutate func(*config.SurvivalConfig), opts ...Option) *Session {
	t.Helper()
	cfg := config.DefaultSurvivalConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSession(cfg, append([]Option{WithSeed(42)}, opts...)...)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	return s
}

func killAll(s *Session) {
	for _, e := range s.Enemies() {
		e.TakeDamage(1000)
	}
}

func TestNewSessionStartsWaveOne(t *testing.T) {
	s := newTestSession(t, nil)
	ui := s.Snapshot()

	if ui.Wave != 1 || ui.Remaining != 3 || ui.EnemiesAlive != 3 {
		t.Errorf("Snapshot() wave=%d remaining=%d alive=%d, expected 1, 3, 3", ui.Wave, ui.Remaining, ui.EnemiesAlive)
	}
	if ui.Health != 100 || ui.MaxHealth != 100 || ui.Player != "Player1" {
		t.Errorf("Snapshot() player=%q health=%d/%d", ui.Player, ui.Health, ui.MaxHealth)
	}
	if ui.Weapon.Name != "Pistol" || ui.Weapon.Ammo != 15 || ui.Weapon.UpgradeCost != 100 {
		t.Errorf("Snapshot().Weapon = %+v", ui.Weapon)
	}
	center := core.V(400, 300)
	for _, e := range s.Enemies() {
		if e.Pos.Dist(center) < 150 {
			t.Errorf("enemy %d spawned at %v inside the safe radius", e.ID, e.Pos)
		}
	}
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultSurvivalConfig()
	cfg.Weapons = nil
	if _, err := NewSession(cfg); err == nil {
		t.Error("NewSession() with no weapons error = nil, expected an error")
	}
}

func TestWaveCompletionSchedulesNextWave(t *testing.T) {
	fx := &recordedEffects{}
	s := newTestSession(t, nil, WithEffects(fx))

	killAll(s)
	s.Update(16, Intent{})

	ui := s.Snapshot()
	if ui.Score != 30 || ui.Kills != 3 || ui.Remaining != 0 {
		t.Errorf("after clearing wave 1 score=%d kills=%d remaining=%d, expected 30, 3, 0", ui.Score, ui.Kills, ui.Remaining)
	}
	if ui.NextWaveInMs != 5000-16 {
		t.Errorf("NextWaveInMs = %d, expected %d", ui.NextWaveInMs, 5000-16)
	}

	s.Update(4999, Intent{})
	if s.Waves.Current != 1 {
		t.Fatalf("wave advanced before the delay: %d", s.Waves.Current)
	}
	s.Update(5000, Intent{})
	ui = s.Snapshot()
	if ui.Wave != 2 || ui.Remaining != 5 || ui.EnemiesAlive != 5 {
		t.Errorf("wave 2: wave=%d remaining=%d alive=%d, expected 2, 5, 5", ui.Wave, ui.Remaining, ui.EnemiesAlive)
	}
	if got := fx.count(EffectWaveStart); got != 2 {
		t.Errorf("wave start effects = %d, expected 2", got)
	}
}

func TestWaveThreeSpeeds(t *testing.T) {
	s := newTestSession(t, nil)
	s.Waves.StartWave(3)

	if s.Waves.Remaining != 7 {
		t.Fatalf("Remaining = %d, expected 7", s.Waves.Remaining)
	}
	wave3 := s.Enemies()[3:]
	if len(wave3) != 7 {
		t.Fatalf("wave 3 spawned %d enemies, expected 7", len(wave3))
	}
	for _, e := range wave3 {
		if e.Speed < 46 || e.Speed > 66 {
			t.Errorf("enemy %d speed = %v, expected within [46, 66]", e.ID, e.Speed)
		}
	}
}

func TestSpawnCapKeepsEnemiesPending(t *testing.T) {
	s := newTestSession(t, func(c *config.SurvivalConfig) {
		c.Enemies.MaxAlive = 2
		c.Waves.BaseCount = 5
	})

	if len(s.Enemies()) != 2 || s.Waves.Pending() != 3 || s.Waves.Remaining != 5 {
		t.Fatalf("alive=%d pending=%d remaining=%d, expected 2, 3, 5", len(s.Enemies()), s.Waves.Pending(), s.Waves.Remaining)
	}

	for i := 0; i < 5; i++ {
		killAll(s)
		s.Update(int64(i+1)*16, Intent{})
		if s.Waves.NextWaveIn() != 0 && s.Waves.Pending() > 0 {
			t.Fatal("next wave scheduled while enemies were still pending")
		}
	}
	if s.Player.Kills != 5 || s.Waves.Remaining != 0 {
		t.Errorf("kills=%d remaining=%d, expected 5 and 0", s.Player.Kills, s.Waves.Remaining)
	}
	if s.Waves.NextWaveIn() == 0 {
		t.Error("wave 2 was not scheduled after every enemy died")
	}
}

func TestPlayerFiresProjectile(t *testing.T) {
	fx := &recordedEffects{}
	s := newTestSession(t, nil, WithEffects(fx))

	s.Update(16, Intent{Aim: core.V(800, 300), HasAim: true, Firing: true})
	if s.Projectiles.Active() != 1 {
		t.Fatalf("Active() = %d, expected 1", s.Projectiles.Active())
	}
	if s.Player.CurrentWeapon().Ammo != 14 {
		t.Errorf("Ammo = %d, expected 14", s.Player.CurrentWeapon().Ammo)
	}
	if fx.count(EffectShoot) != 1 {
		t.Errorf("shoot effects = %d, expected 1", fx.count(EffectShoot))
	}
	var p *Projectile
	s.Projectiles.Each(func(x *Projectile) { p = x })
	if p.Texture != "bullet_sprite" || p.Damage != 25 {
		t.Errorf("projectile texture=%q damage=%d", p.Texture, p.Damage)
	}
	if p.Pos.X <= 400 {
		t.Errorf("projectile at %v, expected to the right of the player", p.Pos)
	}
}

func TestContactDamagesPlayerOncePerOverlap(t *testing.T) {
	s := newTestSession(t, func(c *config.SurvivalConfig) {
		c.Waves.BaseCount = 1
	})
	e := s.Enemies()[0]
	e.Pos = s.Player.Pos.Add(core.V(20, 0))

	s.Update(16, Intent{})
	if s.Player.Health != 90 {
		t.Fatalf("Health = %d after contact, expected 90", s.Player.Health)
	}
	if !e.Stunned() || e.Speed != 0 {
		t.Errorf("enemy stunned=%v speed=%v, expected stunned at 0", e.Stunned(), e.Speed)
	}

	s.Update(32, Intent{})
	if s.Player.Health != 90 {
		t.Errorf("Health = %d, a continuing overlap hurt twice", s.Player.Health)
	}
}

func TestGameOverFreezesRun(t *testing.T) {
	s := newTestSession(t, func(c *config.SurvivalConfig) {
		c.Player.MaxHealth = 10
	})
	e := s.Enemies()[0]
	e.Pos = s.Player.Pos.Add(core.V(10, 0))

	s.Update(16, Intent{})
	if !s.IsGameOver() || !s.Snapshot().GameOver {
		t.Fatal("player at 0 health but game is not over")
	}
	for _, e := range s.Enemies() {
		if !e.Frozen() || e.Stunned() {
			t.Errorf("enemy %d frozen=%v stunned=%v after game over", e.ID, e.Frozen(), e.Stunned())
		}
	}

	before := s.Snapshot()
	s.GameOver()
	killAll(s)
	s.Update(20000, Intent{Firing: true, Upgrade: true})
	after := s.Snapshot()
	if after.Score != before.Score || after.Wave != before.Wave || after.Health != 0 {
		t.Errorf("state changed after game over: %+v -> %+v", before, after)
	}
}

func TestRestartResetsEverything(t *testing.T) {
	s := newTestSession(t, nil)

	s.Player.Score = 500
	s.Player.UpgradeCurrentWeapon()
	s.Player.TakeDamage(40)
	s.Update(16, Intent{Aim: core.V(0, 0), HasAim: true, Firing: true})
	killAll(s)
	s.Update(5100, Intent{Switch: true})
	s.Player.TakeDamage(1000)
	if !s.IsGameOver() {
		t.Fatal("expected game over before restart")
	}

	s.Restart(6000)
	ui := s.Snapshot()
	if ui.Score != 0 || ui.Kills != 0 || ui.Health != ui.MaxHealth || ui.Wave != 1 || ui.GameOver {
		t.Errorf("after Restart() %+v", ui)
	}
	for _, w := range s.Player.Weapons {
		if w.Stats != w.Base || w.UpgradeLevel != 0 || w.Ammo != w.Base.MaxAmmo || w.Reloading {
			t.Errorf("weapon %s not reset: %+v", w.Name, w.UI())
		}
	}
	if s.Player.Current != 0 || s.Projectiles.Active() != 0 || len(s.Enemies()) != 3 {
		t.Errorf("current=%d projectiles=%d enemies=%d", s.Player.Current, s.Projectiles.Active(), len(s.Enemies()))
	}
	if ui.TimeMs != 0 {
		t.Errorf("TimeMs = %d, expected 0", ui.TimeMs)
	}

	// Restart is repeatable.
	s.Restart(6000)
	if got := s.Snapshot(); got.Wave != 1 || len(s.Enemies()) != 3 || s.Scheduler().Len() != 0 {
		t.Errorf("second Restart() wave=%d enemies=%d pending=%d", got.Wave, len(s.Enemies()), s.Scheduler().Len())
	}
}

func TestSessionDeterminism(t *testing.T) {
	run := func() UIState {
		s := newTestSession(t, nil)
		for tick := int64(1); tick <= 600; tick++ {
			in := Intent{Firing: true, HasAim: true}
			if es := s.Enemies(); len(es) > 0 {
				in.Aim = es[0].Pos
			}
			s.Update(tick*16, in)
		}
		return s.Snapshot()
	}

	a, b := run(), run()
	if a != b {
		t.Errorf("two seeded runs diverged:\n%+v\n%+v", a, b)
	}
}

func TestSnapshotJSON(t *testing.T) {
	s := newTestSession(t, nil)
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"zombies_remaining", "weapon", "game_over", "health"} {
		if _, ok := m[key]; !ok {
			t.Errorf("snapshot JSON missing %q: %s", key, data)
		}
	}
}
