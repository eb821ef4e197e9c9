package sim

import (
	"math"

	"github.com/vovakirdan/tui-survivor/internal/config"
	"github.com/vovakirdan/tui-survivor/internal/core"
)

// ContactKind distinguishes the two overlaps the game reacts to.
type ContactKind int

const (
	ProjectileEnemy ContactKind = iota
	PlayerEnemy
)

// Contact is one overlap reported by a SpatialQuery. Projectile is nil for
// PlayerEnemy contacts.
type Contact struct {
	Kind       ContactKind
	Projectile *Projectile
	Enemy      *Enemy
}

type contactKey struct {
	kind  ContactKind
	proj  ProjectileID
	enemy uint64
}

func keyOf(c Contact) contactKey {
	k := contactKey{kind: c.Kind, enemy: c.Enemy.ID}
	if c.Projectile != nil {
		k.proj = c.Projectile.ID
	}
	return k
}

// Resolver turns contacts into damage, knockback and expiry. A pair that
// keeps overlapping across ticks, or is reported twice in one tick, is
// resolved once.
type Resolver struct {
	pool   *ProjectilePool
	player *Player
	cfg    config.SurvivalConfig
	over   func() bool
	prev   map[contactKey]struct{}
	cur    map[contactKey]struct{}
}

// NewResolver creates a resolver acting on pool and player.
func NewResolver(cfg config.SurvivalConfig, pool *ProjectilePool, player *Player, over func() bool) *Resolver {
	return &Resolver{
		pool:   pool,
		player: player,
		cfg:    cfg,
		over:   over,
		prev:   make(map[contactKey]struct{}),
		cur:    make(map[contactKey]struct{}),
	}
}

// Resolve handles one tick's contacts in order and returns how many of them
// had an effect.
func (r *Resolver) Resolve(now int64, contacts []Contact) int {
	handled := 0
	for _, c := range contacts {
		if c.Enemy == nil {
			continue
		}
		k := keyOf(c)
		_, seenNow := r.cur[k]
		_, seenBefore := r.prev[k]
		r.cur[k] = struct{}{}
		if seenNow || seenBefore {
			continue
		}

		switch c.Kind {
		case ProjectileEnemy:
			if r.OnProjectileHitsEnemy(c.Projectile, c.Enemy) {
				handled++
			}
		case PlayerEnemy:
			if r.OnPlayerTouchesEnemy(now, c.Enemy) {
				handled++
			}
		}
	}
	r.prev, r.cur = r.cur, r.prev
	clear(r.cur)
	return handled
}

// OnProjectileHitsEnemy damages e with p and retires p.
func (r *Resolver) OnProjectileHitsEnemy(p *Projectile, e *Enemy) bool {
	if r.over() || p == nil || !p.Active() || !e.Alive() {
		return false
	}
	return r.pool.OnImpact(p, e)
}

// OnPlayerTouchesEnemy knocks e away from the player, stuns it and hurts
// the player.
func (r *Resolver) OnPlayerTouchesEnemy(now int64, e *Enemy) bool {
	pl := r.player
	if r.over() || !pl.Alive() || !e.Alive() {
		return false
	}
	away := e.Pos.Sub(pl.Pos).Normalize()
	if away.Len() == 0 {
		away = core.FromAngle(e.Rotation + math.Pi)
	}
	e.ApplyKnockbackStun(now, r.cfg.Enemies.StunMs, away.Scale(r.cfg.Enemies.Knockback))
	pl.TakeDamage(r.cfg.Player.ContactDamage)
	return true
}

// Reset forgets every overlap seen so far.
func (r *Resolver) Reset() {
	clear(r.prev)
	clear(r.cur)
}
