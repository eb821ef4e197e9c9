package sim

import (
	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/sched"
)

const projectileOwner = "projectiles"

// ProjectileID names a pool slot in one particular use. Gen grows every
// time the slot is launched, so a stale ID never matches a reused slot.
type ProjectileID struct {
	Slot int
	Gen  uint32
}

// Projectile is one pool slot.
type Projectile struct {
	ID      ProjectileID
	Pos     core.Vec2
	Angle   float64
	Dir     core.Vec2
	Speed   float64
	Damage  int
	Texture string

	expiry sched.Handle
	active bool
}

// Active reports whether the slot is in flight.
func (p *Projectile) Active() bool {
	return p.active
}

// Damageable is anything a projectile can hit.
type Damageable interface {
	Alive() bool
	TakeDamage(amount int) bool
}

// ProjectilePool is a fixed-capacity set of projectile slots. Launching
// takes the most recently freed slot; an exhausted pool refuses silently.
type ProjectilePool struct {
	slots  []Projectile
	free   []int
	bounds core.Bounds
	sched  *sched.Scheduler
}

// NewProjectilePool allocates size slots. Projectiles leaving bounds expire.
func NewProjectilePool(size int, bounds core.Bounds, s *sched.Scheduler) *ProjectilePool {
	pool := &ProjectilePool{
		slots:  make([]Projectile, size),
		free:   make([]int, 0, size),
		bounds: bounds,
		sched:  s,
	}
	for i := range pool.slots {
		pool.slots[i].ID.Slot = i
	}
	pool.refill()
	return pool
}

func (pool *ProjectilePool) refill() {
	pool.free = pool.free[:0]
	for i := len(pool.slots) - 1; i >= 0; i-- {
		pool.free = append(pool.free, i)
	}
}

// Cap returns the pool capacity.
func (pool *ProjectilePool) Cap() int {
	return len(pool.slots)
}

// Active returns the number of projectiles in flight.
func (pool *ProjectilePool) Active() int {
	return len(pool.slots) - len(pool.free)
}

// Launch activates a slot at origin heading along angle and schedules its
// expiry after lifespanMs. It returns false when every slot is in use.
func (pool *ProjectilePool) Launch(origin core.Vec2, angle, speed float64, damage int, lifespanMs, now int64) (*Projectile, bool) {
	if len(pool.free) == 0 {
		return nil, false
	}
	slot := pool.free[len(pool.free)-1]
	pool.free = pool.free[:len(pool.free)-1]

	p := &pool.slots[slot]
	p.ID.Gen++
	p.Pos = origin
	p.Angle = angle
	p.Dir = core.FromAngle(angle)
	p.Speed = speed
	p.Damage = damage
	p.Texture = ""
	p.active = true
	p.expiry = pool.sched.ScheduleAt(now+lifespanMs, projectileOwner, func(int64) {
		p.expiry = 0
		pool.Expire(p)
	})
	return p, true
}

// Expire returns p's slot to the pool. Calling it again is a no-op.
func (pool *ProjectilePool) Expire(p *Projectile) bool {
	if p == nil || !p.active {
		return false
	}
	p.active = false
	if p.expiry != 0 {
		pool.sched.Cancel(p.expiry)
		p.expiry = 0
	}
	pool.free = append(pool.free, p.ID.Slot)
	return true
}

// OnImpact applies p's damage to target and expires p. It returns false
// when either side is already out of play.
func (pool *ProjectilePool) OnImpact(p *Projectile, target Damageable) bool {
	if p == nil || !p.active || !target.Alive() {
		return false
	}
	target.TakeDamage(p.Damage)
	pool.Expire(p)
	return true
}

// Step moves every projectile for dtMs milliseconds and expires the ones
// that left the arena.
func (pool *ProjectilePool) Step(dtMs int64) {
	if dtMs <= 0 {
		return
	}
	dt := float64(dtMs) / 1000
	for i := range pool.slots {
		p := &pool.slots[i]
		if !p.active {
			continue
		}
		p.Pos = p.Pos.Add(p.Dir.Scale(p.Speed * dt))
		if !pool.bounds.Contains(p.Pos) {
			pool.Expire(p)
		}
	}
}

// Each calls fn for every active projectile in slot order.
func (pool *ProjectilePool) Each(fn func(*Projectile)) {
	for i := range pool.slots {
		if pool.slots[i].active {
			fn(&pool.slots[i])
		}
	}
}

// Get returns the projectile for id if that launch is still in flight.
func (pool *ProjectilePool) Get(id ProjectileID) (*Projectile, bool) {
	if id.Slot < 0 || id.Slot >= len(pool.slots) {
		return nil, false
	}
	p := &pool.slots[id.Slot]
	if !p.active || p.ID.Gen != id.Gen {
		return nil, false
	}
	return p, true
}

// Reset expires every projectile. Generations are kept.
func (pool *ProjectilePool) Reset() {
	for i := range pool.slots {
		p := &pool.slots[i]
		if p.active && p.expiry != 0 {
			pool.sched.Cancel(p.expiry)
		}
		p.active = false
		p.expiry = 0
	}
	pool.sched.CancelOwner(projectileOwner)
	pool.refill()
}
