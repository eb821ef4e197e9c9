// Package sim is the combat and progression core of the survival game:
// weapons, combatants, projectiles, waves and contact resolution, all driven
// by Session.Update on a single tick goroutine.
//
// Time is an int64 millisecond clock supplied by the caller. Every delayed
// state change (reload completion, stun recovery, projectile expiry, the
// next wave) is a cancellable action on one sched.Scheduler owned by the
// session, so Restart can drop all of them at once.
package sim

import (
	"fmt"
	"io"
	"math/rand"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-survivor/internal/config"
	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/sched"
)

// View is the read-only world a SpatialQuery inspects.
type View struct {
	Player           *Player
	PlayerRadius     float64
	Enemies          []*Enemy
	EnemyRadius      float64
	Projectiles      *ProjectilePool
	ProjectileRadius float64
	Bounds           core.Bounds
}

// SpatialQuery reports the overlaps in a view. Contacts must come back in a
// deterministic order.
type SpatialQuery interface {
	Contacts(v View) []Contact
}

// BruteForce is a SpatialQuery that tests every pair.
type BruteForce struct{}

// Contacts implements SpatialQuery. Projectile contacts come first, in slot
// then enemy order, followed by player contacts in enemy order.
func (BruteForce) Contacts(v View) []Contact {
	var out []Contact
	hit := v.ProjectileRadius + v.EnemyRadius
	v.Projectiles.Each(func(p *Projectile) {
		for _, e := range v.Enemies {
			if e.Alive() && p.Pos.Dist(e.Pos) <= hit {
				out = append(out, Contact{Kind: ProjectileEnemy, Projectile: p, Enemy: e})
			}
		}
	})
	if v.Player.Alive() {
		touch := v.PlayerRadius + v.EnemyRadius
		for _, e := range v.Enemies {
			if e.Alive() && v.Player.Pos.Dist(e.Pos) <= touch {
				out = append(out, Contact{Kind: PlayerEnemy, Enemy: e})
			}
		}
	}
	return out
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Sessions log nothing by default.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithEffects sets the effects collaborator.
func WithEffects(fx Effects) Option {
	return func(s *Session) { s.fx = fx }
}

// WithSpatialQuery replaces the brute-force contact finder.
func WithSpatialQuery(q SpatialQuery) Option {
	return func(s *Session) { s.query = q }
}

// WithSeed seeds spawn positions and speed jitter.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.seed = seed }
}

// Session is one survival run: the player, the enemy set, the projectile
// pool, the wave controller and the contact resolver. It is not safe for
// concurrent use.
type Session struct {
	Player      *Player
	Projectiles *ProjectilePool
	Waves       *WaveController
	Resolver    *Resolver

	cfg       config.SurvivalConfig
	sched     *sched.Scheduler
	enemies   []*Enemy
	env       *enemyEnv
	nextEnemy uint64
	query     SpatialQuery
	fx        Effects
	log       *log.Logger
	seed      int64
	bounds    core.Bounds

	gameOver  bool
	now       int64
	last      int64
	startedAt int64
	tick      uint64
}

// NewSession validates cfg and starts wave 1 at time zero.
func NewSession(cfg config.SurvivalConfig, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	formulas, err := config.NewWaveFormulas(cfg.Waves, cfg.Enemies)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	s := &Session{
		cfg:    cfg,
		sched:  sched.New(),
		query:  BruteForce{},
		fx:     NopEffects{},
		log:    log.New(io.Discard),
		bounds: core.Bounds{MaxX: cfg.Arena.Width, MaxY: cfg.Arena.Height},
	}
	for _, opt := range opts {
		opt(s)
	}

	formulas.SetLogger(s.log)
	s.Player = NewPlayer(cfg, s.sched, s.fx, s.log, s.GameOver)
	s.Projectiles = NewProjectilePool(cfg.Projectiles.PoolSize, s.bounds, s.sched)
	s.env = &enemyEnv{
		sched:     s.sched,
		fx:        s.fx,
		bounds:    s.bounds,
		baseSpeed: cfg.Enemies.BaseSpeed,
		reach:     max(0, cfg.Player.Radius+cfg.Enemies.Radius-1),
		onKilled:  func(*Enemy) { s.Waves.OnKilled() },
	}
	s.Waves = &WaveController{
		cfg:      cfg,
		formulas: formulas,
		rng:      rand.New(rand.NewSource(s.seed)),
		spawner:  s,
		player:   s.Player,
		sched:    s.sched,
		fx:       s.fx,
		log:      s.log,
		over:     s.IsGameOver,
	}
	s.Resolver = NewResolver(cfg, s.Projectiles, s.Player, s.IsGameOver)

	s.Restart(0)
	return s, nil
}

// Config returns the configuration the session was built with.
func (s *Session) Config() config.SurvivalConfig {
	return s.cfg
}

// Bounds returns the arena rectangle.
func (s *Session) Bounds() core.Bounds {
	return s.bounds
}

// Now returns the clock value of the last Update or Restart.
func (s *Session) Now() int64 {
	return s.now
}

// Tick returns the number of Update calls since creation.
func (s *Session) Tick() uint64 {
	return s.tick
}

// IsGameOver reports whether the run has ended.
func (s *Session) IsGameOver() bool {
	return s.gameOver
}

// Enemies returns the live enemies in spawn order. The slice is owned by
// the session.
func (s *Session) Enemies() []*Enemy {
	return s.enemies
}

// Scheduler exposes the deferred-action queue, mainly for tests.
func (s *Session) Scheduler() *sched.Scheduler {
	return s.sched
}

// Query returns the collaborator that reports contacts.
func (s *Session) Query() SpatialQuery {
	return s.query
}

// View returns the world as seen by a SpatialQuery.
func (s *Session) View() View {
	return View{
		Player:           s.Player,
		PlayerRadius:     s.cfg.Player.Radius,
		Enemies:          s.enemies,
		EnemyRadius:      s.cfg.Enemies.Radius,
		Projectiles:      s.Projectiles,
		ProjectileRadius: s.cfg.Projectiles.Radius,
		Bounds:           s.bounds,
	}
}

// Update advances the run to now. Due deferred actions fire first, then
// pending spawns, one-shot intents, the player, enemies, projectiles and
// finally contact resolution.
func (s *Session) Update(now int64, in Intent) {
	s.tick++
	if now < s.now {
		now = s.now
	}
	s.now = now
	s.sched.Advance(now)

	dt := now - s.last
	s.last = now
	if s.gameOver {
		return
	}

	s.Waves.FlushPending()

	if in.Switch {
		s.Player.SwitchWeapon(now)
	}
	if in.Upgrade {
		s.Player.UpgradeCurrentWeapon()
	}

	res := s.Player.Update(now, in.Aim, in.HasAim, in.Firing)
	if res.Fired {
		s.launch(now, res.Shot)
	}

	for _, e := range s.enemies {
		e.Update(now, dt, s.Player.Pos)
	}
	s.Projectiles.Step(dt)

	s.Resolver.Resolve(now, s.query.Contacts(s.View()))
	s.reap()
}

func (s *Session) launch(now int64, shot ShotRequest) {
	origin := s.Player.Muzzle()
	p, ok := s.Projectiles.Launch(origin, s.Player.Rotation, shot.Speed, shot.Damage, s.cfg.Projectiles.LifespanMs, now)
	if !ok {
		s.log.Debug("Projectile pool exhausted")
		return
	}
	p.Texture = shot.Texture
	s.fx.Play(EffectShoot, origin)
}

func (s *Session) reap() {
	s.enemies = slices.DeleteFunc(s.enemies, func(e *Enemy) bool { return !e.Alive() })
}

// SpawnEnemy adds an enemy unless max_alive enemies are already in play.
func (s *Session) SpawnEnemy(pos core.Vec2, speed float64) bool {
	if s.gameOver || len(s.enemies) >= s.cfg.Enemies.MaxAlive {
		return false
	}
	s.nextEnemy++
	e := newEnemy(s.nextEnemy, s.bounds.Clamp(pos), s.cfg.Enemies.Health, speed, s.env)
	e.Rotation = e.Pos.AngleTo(s.Player.Pos)
	s.enemies = append(s.enemies, e)
	return true
}

// GameOver ends the run: the next wave is cancelled and every enemy is
// frozen in place. Later calls do nothing.
func (s *Session) GameOver() {
	if s.gameOver {
		return
	}
	s.gameOver = true
	s.Waves.Cancel()
	for _, e := range s.enemies {
		e.Freeze()
	}
	s.log.Info("Game over", "wave", s.Waves.Current, "score", s.Player.Score, "kills", s.Player.Kills)
}

// Restart begins a fresh run at now. Every deferred action is dropped.
func (s *Session) Restart(now int64) {
	s.sched.Reset()
	s.sched.Advance(now)
	s.Projectiles.Reset()
	s.enemies = nil
	s.Player.ResetState()
	s.Player.Pos = core.V(s.cfg.Arena.Width/2, s.cfg.Arena.Height/2)
	s.gameOver = false
	s.Resolver.Reset()
	s.Waves.Reset()

	s.now = now
	s.last = now
	s.startedAt = now
	s.log.Info("Run started", "player", s.Player.Name)
	s.Waves.StartWave(1)
}

// Snapshot returns the HUD view of the run.
func (s *Session) Snapshot() UIState {
	return UIState{
		Player:       s.Player.Name,
		Health:       s.Player.Health,
		MaxHealth:    s.Player.MaxHealth,
		Score:        s.Player.Score,
		Kills:        s.Player.Kills,
		Wave:         s.Waves.Current,
		Remaining:    s.Waves.Remaining,
		EnemiesAlive: len(s.enemies),
		Weapon:       s.Player.CurrentWeapon().UI(),
		NextWaveInMs: s.Waves.NextWaveIn(),
		GameOver:     s.gameOver,
		TimeMs:       s.now - s.startedAt,
	}
}
