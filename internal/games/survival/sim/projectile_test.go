package sim

import (
	"testing"

	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/sched"
)

type dummyTarget struct {
	health int
	hits   int
}

func (d *dummyTarget) Alive() bool { return d.health > 0 }

func (d *dummyTarget) TakeDamage(n int) bool {
	if d.health <= 0 {
		return false
	}
	d.hits++
	d.health -= n
	return d.health <= 0
}

func newTestPool(size int) (*ProjectilePool, *sched.Scheduler) {
	s := sched.New()
	return NewProjectilePool(size, core.Bounds{MaxX: 800, MaxY: 600}, s), s
}

func TestPoolExhaustion(t *testing.T) {
	pool, _ := newTestPool(3)

	for i := 0; i < 3; i++ {
		if _, ok := pool.Launch(core.V(100, 100), 0, 600, 25, 2000, 0); !ok {
			t.Fatalf("Launch() %d failed with free slots", i)
		}
	}
	if p, ok := pool.Launch(core.V(100, 100), 0, 600, 25, 2000, 0); ok || p != nil {
		t.Error("Launch() on an exhausted pool succeeded")
	}
	if pool.Active() != 3 {
		t.Errorf("Active() = %d, expected 3", pool.Active())
	}
}

func TestExpireIsIdempotent(t *testing.T) {
	pool, s := newTestPool(2)
	p, _ := pool.Launch(core.V(100, 100), 0, 600, 25, 2000, 0)

	if !pool.Expire(p) {
		t.Error("first Expire() = false")
	}
	if pool.Expire(p) {
		t.Error("second Expire() = true")
	}
	if pool.Active() != 0 || s.Len() != 0 {
		t.Errorf("Active()=%d pending=%d, expected 0 and 0", pool.Active(), s.Len())
	}

	// The slot returned once; two launches fit again, a third does not.
	pool.Launch(core.V(0, 0), 0, 1, 1, 10, 0)
	pool.Launch(core.V(0, 0), 0, 1, 1, 10, 0)
	if _, ok := pool.Launch(core.V(0, 0), 0, 1, 1, 10, 0); ok {
		t.Error("slot was returned to the pool twice")
	}
}

func TestLifespanExpiry(t *testing.T) {
	pool, s := newTestPool(1)
	p, _ := pool.Launch(core.V(400, 300), 0, 0.001, 25, 2000, 100)
	id := p.ID

	s.Advance(2099)
	if !p.Active() {
		t.Fatal("projectile expired early")
	}
	s.Advance(2100)
	if p.Active() {
		t.Fatal("projectile outlived its lifespan")
	}
	if _, ok := pool.Get(id); ok {
		t.Error("Get() found an expired projectile")
	}

	q, _ := pool.Launch(core.V(400, 300), 0, 0, 25, 2000, 3000)
	if q.ID.Slot != id.Slot || q.ID.Gen == id.Gen {
		t.Errorf("reused slot ID = %+v, old %+v, expected same slot and new generation", q.ID, id)
	}
}

func TestOnImpact(t *testing.T) {
	pool, s := newTestPool(1)
	p, _ := pool.Launch(core.V(100, 100), 0, 600, 25, 2000, 0)
	target := &dummyTarget{health: 40}

	if !pool.OnImpact(p, target) {
		t.Fatal("OnImpact() = false")
	}
	if target.health != 15 || p.Active() || s.Len() != 0 {
		t.Errorf("health=%d active=%v pending=%d", target.health, p.Active(), s.Len())
	}
	if pool.OnImpact(p, target) {
		t.Error("expired projectile hit again")
	}

	q, _ := pool.Launch(core.V(100, 100), 0, 600, 25, 2000, 0)
	target.health = 0
	if pool.OnImpact(q, target) || !q.Active() {
		t.Error("projectile was consumed by a dead target")
	}
}

func TestStepCullsOutOfBounds(t *testing.T) {
	pool, _ := newTestPool(2)
	left, _ := pool.Launch(core.V(10, 300), 3.14159, 600, 25, 2000, 0)
	right, _ := pool.Launch(core.V(400, 300), 0, 600, 25, 2000, 0)

	pool.Step(100)
	if left.Active() {
		t.Errorf("projectile at %v still active outside the arena", left.Pos)
	}
	if !right.Active() || right.Pos.X < 459.99 || right.Pos.X > 460.01 {
		t.Errorf("projectile at %v, expected (460, 300)", right.Pos)
	}
}

func TestPoolReset(t *testing.T) {
	pool, s := newTestPool(4)
	for i := 0; i < 4; i++ {
		pool.Launch(core.V(100, 100), 0, 600, 25, 2000, 0)
	}
	pool.Reset()
	if pool.Active() != 0 || s.Len() != 0 {
		t.Errorf("Active()=%d pending=%d after Reset()", pool.Active(), s.Len())
	}
	count := 0
	pool.Each(func(*Projectile) { count++ })
	if count != 0 {
		t.Errorf("Each() visited %d projectiles after Reset()", count)
	}
}
