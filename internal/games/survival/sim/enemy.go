package sim

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/sched"
)

// enemyEnv is the part of the session every enemy needs.
type enemyEnv struct {
	sched     *sched.Scheduler
	fx        Effects
	bounds    core.Bounds
	baseSpeed float64
	reach     float64 // Center distance at which an enemy stops closing in
	onKilled  func(*Enemy)
}

// Enemy is a pursuing combatant.
type Enemy struct {
	ID       uint64
	Pos      core.Vec2
	Rotation float64
	Health   int
	Speed    float64

	preStunSpeed float64
	knockback    core.Vec2
	stunnedUntil int64
	stun         sched.Handle
	alive        bool
	frozen       bool
	owner        string
	env          *enemyEnv
}

func newEnemy(id uint64, pos core.Vec2, health int, speed float64, env *enemyEnv) *Enemy {
	return &Enemy{
		ID:     id,
		Pos:    pos,
		Health: health,
		Speed:  speed,
		alive:  true,
		owner:  fmt.Sprintf("enemy-%d", id),
		env:    env,
	}
}

// Alive reports whether the enemy can still act and be hit.
func (e *Enemy) Alive() bool {
	return e.alive
}

// Stunned reports whether a knockback stun is in effect.
func (e *Enemy) Stunned() bool {
	return e.stun != 0
}

// Frozen reports whether the enemy was stopped by game over.
func (e *Enemy) Frozen() bool {
	return e.frozen
}

// Update moves the enemy for dtMs milliseconds. A stunned enemy only
// drifts with its knockback; otherwise it walks toward target and faces it.
func (e *Enemy) Update(now, dtMs int64, target core.Vec2) {
	if !e.alive || e.frozen || dtMs <= 0 {
		return
	}
	dt := float64(dtMs) / 1000

	if e.Stunned() {
		e.Pos = e.env.bounds.Clamp(e.Pos.Add(e.knockback.Scale(dt)))
		return
	}

	to := target.Sub(e.Pos)
	dist := to.Len()
	if dist > 0 {
		e.Rotation = to.Angle()
	}
	gap := dist - e.env.reach
	if gap <= 0 || e.Speed <= 0 {
		return
	}
	step := math.Min(e.Speed*dt, gap)
	e.Pos = e.env.bounds.Clamp(e.Pos.Add(to.Normalize().Scale(step)))
}

// TakeDamage removes health, clamping at zero. It returns true only on the
// call that kills the enemy. Death cancels every deferred action the enemy
// owns and reports the kill.
func (e *Enemy) TakeDamage(amount int) bool {
	if !e.alive || amount <= 0 {
		return false
	}
	e.Health = max(0, e.Health-amount)
	if e.Health > 0 {
		e.env.fx.Play(EffectZombieHurt, e.Pos)
		return false
	}

	e.alive = false
	e.Speed = 0
	e.knockback = core.Vec2{}
	e.env.sched.CancelOwner(e.owner)
	e.stun = 0
	e.env.fx.Play(EffectZombieDeath, e.Pos)
	if e.env.onKilled != nil {
		e.env.onKilled(e)
	}
	return true
}

// ApplyKnockbackStun stops the enemy for durationMs while it drifts with
// impulse (units per second). A repeated stun extends from now and keeps
// the speed saved by the first one.
func (e *Enemy) ApplyKnockbackStun(now, durationMs int64, impulse core.Vec2) {
	if !e.alive || e.frozen {
		return
	}
	if e.Speed > 0 {
		e.preStunSpeed = e.Speed
	}
	e.Speed = 0
	e.knockback = impulse
	e.stunnedUntil = now + durationMs

	if e.stun != 0 {
		e.env.sched.Cancel(e.stun)
	}
	e.stun = e.env.sched.ScheduleAt(e.stunnedUntil, e.owner, func(int64) {
		e.stun = 0
		e.recover()
	})
}

func (e *Enemy) recover() {
	if !e.alive || e.frozen {
		return
	}
	e.knockback = core.Vec2{}
	if e.preStunSpeed > 0 {
		e.Speed = e.preStunSpeed
	} else {
		e.Speed = e.env.baseSpeed
	}
}

// Freeze stops the enemy for good and drops its pending stun recovery.
func (e *Enemy) Freeze() {
	if e.frozen {
		return
	}
	e.frozen = true
	e.env.sched.CancelOwner(e.owner)
	e.stun = 0
	e.knockback = core.Vec2{}
}
