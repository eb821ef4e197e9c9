package survival

import (
	"math"

	"github.com/vovakirdan/tui-survivor/internal/games/survival/sim"
)

// Snapshot contains the game state for determinism testing.
// Uses primitive types only for stable serialization.
type Snapshot struct {
	Tick      uint64
	SimTick   uint64
	Score     int
	Kills     int
	Wave      int
	Remaining int
	Health    int
	Weapon    int // Index of the selected weapon
	Ammo      int
	Facing    int // Player rotation in whole degrees
	GameOver  bool
	Paused    bool

	// Each enemy is 4 ints: X, Y, Health, Stunned
	EnemyCount int
	EnemyData  []int

	// Each projectile is 3 ints: Slot, X, Y
	ProjectileCount int
	ProjectileData  []int
}

// Snapshot returns the current game state as a Snapshot.
func (g *Game) Snapshot() Snapshot {
	s := g.sess
	p := s.Player

	enemies := s.Enemies()
	enemyData := make([]int, 0, len(enemies)*4)
	for _, e := range enemies {
		stunned := 0
		if e.Stunned() {
			stunned = 1
		}
		enemyData = append(enemyData, int(e.Pos.X), int(e.Pos.Y), e.Health, stunned)
	}

	var projData []int
	s.Projectiles.Each(func(pr *sim.Projectile) {
		projData = append(projData, pr.ID.Slot, int(pr.Pos.X), int(pr.Pos.Y))
	})

	return Snapshot{
		Tick:      g.tick,
		SimTick:   g.simTick,
		Score:     p.Score,
		Kills:     p.Kills,
		Wave:      s.Waves.Current,
		Remaining: s.Waves.Remaining,
		Health:    p.Health,
		Weapon:    p.Current,
		Ammo:      p.CurrentWeapon().Ammo,
		Facing:    aimAngle(p.Rotation),
		GameOver:  s.IsGameOver(),
		Paused:    g.paused,

		EnemyCount:      len(enemies),
		EnemyData:       enemyData,
		ProjectileCount: s.Projectiles.Active(),
		ProjectileData:  projData,
	}
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	h = h*31 + snap.SimTick
	h = h*31 + uint64(snap.Score)           //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Kills)           //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Wave)            //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Remaining)       //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Health)          //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Weapon)          //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Ammo)            //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Facing)          //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.EnemyCount)      //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.ProjectileCount) //#nosec G115 -- hash computation
	if snap.GameOver {
		h = h*31 + 1
	}
	if snap.Paused {
		h = h*31 + 2
	}

	for _, v := range snap.EnemyData {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}

	for _, v := range snap.ProjectileData {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}

	return h
}

// aimAngle converts radians to whole degrees.
func aimAngle(rad float64) int {
	return int(math.Round(rad * 180 / math.Pi))
}
