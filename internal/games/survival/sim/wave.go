package sim

import (
	"math"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-survivor/internal/config"
	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/sched"
)

const waveOwner = "wave"

// Spawner places enemies in the world. SpawnEnemy returns false when the
// world is at capacity.
type Spawner interface {
	SpawnEnemy(pos core.Vec2, speed float64) bool
}

// WaveController owns wave escalation: how many enemies a wave brings, where
// they appear, how fast they move and when the next wave starts.
//
// Remaining counts enemies of the current wave not yet killed, including
// ones still waiting for a free spawn slot, so a wave never completes
// before every enemy it asked for has been spawned and killed.
type WaveController struct {
	Current   int
	Remaining int

	pending  int
	next     sched.Handle
	cfg      config.SurvivalConfig
	formulas *config.WaveFormulas
	rng      *rand.Rand
	spawner  Spawner
	player   *Player
	sched    *sched.Scheduler
	fx       Effects
	log      *log.Logger
	over     func() bool
}

// Pending returns how many enemies of the current wave are still waiting to
// be spawned.
func (w *WaveController) Pending() int {
	return w.pending
}

// StartWave begins wave n and spawns as many of its enemies as fit.
func (w *WaveController) StartWave(n int) {
	if w.over() {
		return
	}
	if w.next != 0 {
		w.sched.Cancel(w.next)
		w.next = 0
	}
	count := w.formulas.SpawnCount(n)
	w.Current = n
	w.Remaining = count
	w.pending = count

	w.fx.Play(EffectWaveStart, w.player.Pos)
	w.log.Info("Wave started", "wave", n, "zombies", count)
	w.FlushPending()
}

// FlushPending spawns waiting enemies until the spawner refuses.
func (w *WaveController) FlushPending() {
	for w.pending > 0 && !w.over() {
		pos := w.spawnPoint()
		if !w.spawner.SpawnEnemy(pos, w.enemySpeed()) {
			return
		}
		w.pending--
	}
}

// OnKilled credits a kill and schedules the next wave once the current one
// is cleared.
func (w *WaveController) OnKilled() {
	if w.over() {
		return
	}
	w.Remaining = max(0, w.Remaining-1)
	w.player.Score += w.cfg.Enemies.KillScore
	w.player.Kills++
	w.log.Debug("Zombie killed", "remaining", w.Remaining, "score", w.player.Score)

	if w.Remaining > 0 || w.pending > 0 {
		return
	}
	if w.next != 0 {
		w.sched.Cancel(w.next)
	}
	next := w.Current + 1
	w.log.Info("Wave complete", "wave", w.Current, "next_in_ms", w.cfg.Waves.DelayMs)
	w.next = w.sched.Schedule(w.cfg.Waves.DelayMs, waveOwner, func(int64) {
		w.next = 0
		w.StartWave(next)
	})
}

// NextWaveIn returns the milliseconds until the scheduled next wave, or
// zero when none is scheduled.
func (w *WaveController) NextWaveIn() int64 {
	due, ok := w.sched.DueAt(w.next)
	if !ok {
		return 0
	}
	return max(0, due-w.sched.Now())
}

// Cancel drops a scheduled wave start.
func (w *WaveController) Cancel() {
	if w.next != 0 {
		w.sched.Cancel(w.next)
		w.next = 0
	}
}

// Reset returns to the state before wave 1.
func (w *WaveController) Reset() {
	w.Cancel()
	w.Current = 1
	w.Remaining = 0
	w.pending = 0
}

func (w *WaveController) enemySpeed() float64 {
	jitter := 0
	if j := w.cfg.Enemies.SpeedJitter; j > 0 {
		jitter = w.rng.Intn(2*j+1) - j
	}
	return w.formulas.EnemySpeed(w.Current, jitter)
}

// spawnPoint draws integer positions inside the spawn margin until one is
// outside the safe radius around the player. After too many misses it
// falls back to the margin corner farthest from the player.
func (w *WaveController) spawnPoint() core.Vec2 {
	a := w.cfg.Arena
	minX, maxX := a.SpawnMargin, a.Width-a.SpawnMargin
	minY, maxY := a.SpawnMargin, a.Height-a.SpawnMargin
	if maxX < minX {
		minX, maxX = a.Width/2, a.Width/2
	}
	if maxY < minY {
		minY, maxY = a.Height/2, a.Height/2
	}

	for i := 0; i < w.cfg.Waves.SpawnAttempts; i++ {
		p := core.V(uniformInt(w.rng, minX, maxX), uniformInt(w.rng, minY, maxY))
		if p.Dist(w.player.Pos) >= a.SafeRadius {
			return p
		}
	}

	corners := []core.Vec2{core.V(minX, minY), core.V(maxX, minY), core.V(minX, maxY), core.V(maxX, maxY)}
	best := corners[0]
	for _, c := range corners[1:] {
		if c.Dist(w.player.Pos) > best.Dist(w.player.Pos) {
			best = c
		}
	}
	return best
}

// uniformInt returns an integer-valued float uniformly drawn from [lo, hi].
func uniformInt(rng *rand.Rand, lo, hi float64) float64 {
	l, h := math.Ceil(lo), math.Floor(hi)
	if h <= l {
		return lo
	}
	return l + float64(rng.Intn(int(h-l)+1))
}
