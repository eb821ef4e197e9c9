// Package survival adapts the survival simulation to the platform's
// registry.Game interface: key and mouse input become sim intents, the tick
// counter becomes the simulation clock, and the arena is drawn into a
// character screen.
package survival

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-survivor/internal/config"
	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/games/survival/arena"
	"github.com/vovakirdan/tui-survivor/internal/games/survival/sim"
	"github.com/vovakirdan/tui-survivor/internal/registry"
)

// GameID is the registry key of the survival game.
const GameID = "survival"

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// logger receives simulation events. Silent unless SetLogger is called.
var logger = log.New(io.Discard)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names select normal.
func SetDifficultyPreset(preset string) {
	difficultyPreset, _ = config.ParseDifficulty(preset)
}

// SetLogger routes simulation logs to l.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// Layout constants in screen cells.
const (
	hudRows     = 2 // Status lines above the arena
	minScreenW  = 40
	minScreenH  = 16
	aimDistance = 100 // Arena units between the player and a key-aim target
)

// flash is a short-lived glyph drawn where an effect was requested.
type flash struct {
	glyph rune
	color core.Color
	at    core.Vec2
	until uint64
}

// Game implements registry.Game for the survival shooter.
type Game struct {
	runtime core.RuntimeConfig
	cfg     config.SurvivalConfig
	sess    *sim.Session

	tick     uint64 // Frames stepped, paused or not
	simTick  uint64 // Frames the simulation advanced
	tickRate int
	loading  int // Frames left on the loading banner

	paused      bool
	autoFire    bool
	aimDir      core.Vec2
	aimByKeys   bool
	pointer     core.Vec2
	lastPointer [2]int
	hasPointer  bool

	flashes    []flash
	banner     string
	bannerTill uint64

	screenTooSmall bool
	playerName     string
}

// New creates a survival game. Call Reset before stepping it.
func New() *Game {
	return &Game{}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return GameID
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Survival"
}

// Reset loads the configuration and starts a new run.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.tickRate = runtime.TickRate
	if g.tickRate <= 0 {
		g.tickRate = core.DefaultConfig().TickRate
	}

	cfg, err := config.LoadSurvival(configPath)
	if err != nil {
		logger.Warn("Using default survival config", "err", err)
		cfg = config.DefaultSurvivalConfig()
	}
	if difficultyPreset != "" {
		config.ApplySurvivalPreset(&cfg, difficultyPreset)
	}
	if g.playerName != "" {
		cfg.Player.Name = g.playerName
	}
	g.sess = nil
	g.startSession(cfg, runtime.Seed)

	g.tick = 0
	g.simTick = 0
	g.loading = g.tickRate
	g.paused = false
	g.autoFire = false
	g.aimDir = core.V(1, 0)
	g.aimByKeys = true
	g.hasPointer = false
	g.flashes = g.flashes[:0]
	g.banner = ""
	g.screenTooSmall = runtime.ScreenW < minScreenW || runtime.ScreenH < minScreenH
}

// startSession builds the run's session from cfg, falling back to the
// default config when cfg is rejected.
func (g *Game) startSession(cfg config.SurvivalConfig, seed int64) {
	g.cfg = cfg
	sess, err := g.newSession(cfg, seed)
	if err != nil {
		logger.Error("Survival config rejected, using defaults", "err", err)
		g.cfg = config.DefaultSurvivalConfig()
		if cfg.Player.Name != "" {
			g.cfg.Player.Name = cfg.Player.Name
		}
		if sess, err = g.newSession(g.cfg, seed); err != nil {
			logger.Error("Default survival config rejected", "err", err)
			panic(fmt.Sprintf("survival: default config rejected: %v", err))
		}
	}
	g.sess = sess
}

func (g *Game) newSession(cfg config.SurvivalConfig, seed int64) (*sim.Session, error) {
	return sim.NewSession(cfg,
		sim.WithSeed(seed),
		sim.WithLogger(logger),
		sim.WithEffects(g),
		sim.WithSpatialQuery(arena.NewDetector(arena.DefaultCellSize)),
	)
}

// SetPlayerName overrides the configured player name from the next Reset on.
func (g *Game) SetPlayerName(name string) {
	g.playerName = name
}

// Resize adapts the layout to a new terminal size without restarting the
// run. The arena keeps its logical size and is rescaled to the new field.
func (g *Game) Resize(w, h int) {
	g.runtime.ScreenW = w
	g.runtime.ScreenH = h
	g.screenTooSmall = w < minScreenW || h < minScreenH
	g.hasPointer = false
}

// Session exposes the running simulation.
func (g *Game) Session() *sim.Session {
	return g.sess
}

// UIState returns the HUD snapshot of the run.
func (g *Game) UIState() sim.UIState {
	return g.sess.Snapshot()
}

// Step advances the game by one frame.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if in.Has(core.ActionPause) && !g.sess.IsGameOver() {
		g.paused = !g.paused
	}
	if g.paused || g.screenTooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionRestart) && g.sess.IsGameOver() {
		g.sess.Restart(g.now())
		g.autoFire = false
		g.flashes = g.flashes[:0]
		return core.StepResult{State: g.State()}
	}

	if g.loading > 0 {
		g.loading--
		return core.StepResult{State: g.State()}
	}

	g.simTick++
	g.sess.Update(g.now(), g.intent(in))
	g.expireFlashes()

	return core.StepResult{State: g.State()}
}

// now converts simulated frames into the millisecond clock.
func (g *Game) now() int64 {
	return int64(g.simTick) * 1000 / int64(g.tickRate) //#nosec G115 -- tick count fits in int64
}

// intent maps one frame of input onto the player's intent.
func (g *Game) intent(in core.InputFrame) sim.Intent {
	var keyDir core.Vec2
	if in.Has(core.ActionAimUp) {
		keyDir.Y--
	}
	if in.Has(core.ActionAimDown) {
		keyDir.Y++
	}
	if in.Has(core.ActionAimLeft) {
		keyDir.X--
	}
	if in.Has(core.ActionAimRight) {
		keyDir.X++
	}
	if keyDir != (core.Vec2{}) {
		g.aimDir = keyDir.Normalize()
		g.aimByKeys = true
	}

	if in.HasPointer {
		cell := [2]int{in.PointerX, in.PointerY}
		if !g.hasPointer || cell != g.lastPointer {
			g.pointer = g.cellToArena(in.PointerX, in.PointerY)
			g.aimByKeys = false
		}
		g.lastPointer = cell
		g.hasPointer = true
	}

	if in.Has(core.ActionFire) {
		g.autoFire = !g.autoFire
	}

	player := g.sess.Player
	aim := g.pointer
	if g.aimByKeys {
		aim = player.Pos.Add(g.aimDir.Scale(aimDistance))
	}
	return sim.Intent{
		Aim:     aim,
		HasAim:  true,
		Firing:  g.autoFire || in.Held,
		Switch:  in.Has(core.ActionSwitch),
		Upgrade: in.Has(core.ActionUpgrade),
	}
}

// Play implements sim.Effects by turning effect requests into glyph
// flashes and banners.
func (g *Game) Play(name string, at core.Vec2) {
	ttl := uint64(max(1, g.tickRate/6)) //#nosec G115 -- tick rate is positive
	switch name {
	case sim.EffectZombieHurt:
		g.flashes = append(g.flashes, flash{glyph: '*', color: core.ColorYellow, at: at, until: g.tick + ttl})
	case sim.EffectZombieDeath:
		g.flashes = append(g.flashes, flash{glyph: 'x', color: core.ColorBrightRed, at: at, until: g.tick + 2*ttl})
	case sim.EffectPlayerHurt:
		g.flashes = append(g.flashes, flash{glyph: '!', color: core.ColorBrightRed, at: at.Add(core.V(0, -g.cfg.Player.Radius*2)), until: g.tick + 2*ttl})
	case sim.EffectWaveStart:
		if g.sess != nil {
			g.showBanner(waveBanner(g.sess.Waves.Current))
		}
	case sim.EffectUpgrade:
		g.showBanner("WEAPON UPGRADED")
	case sim.EffectSwitch:
		if g.sess != nil {
			g.showBanner(g.sess.Player.CurrentWeapon().Name)
		}
	}
}

func (g *Game) showBanner(text string) {
	g.banner = text
	g.bannerTill = g.tick + uint64(g.tickRate) //#nosec G115 -- tick rate is positive
}

func (g *Game) expireFlashes() {
	kept := g.flashes[:0]
	for _, f := range g.flashes {
		if f.until > g.tick {
			kept = append(kept, f)
		}
	}
	g.flashes = kept
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	ui := g.sess.Snapshot()
	return core.GameState{
		Score:    ui.Score,
		Wave:     ui.Wave,
		Kills:    ui.Kills,
		GameOver: ui.GameOver,
		Paused:   g.paused,
	}
}

// Register the game with the registry
func init() {
	registry.Register(GameID, func() registry.Game {
		return New()
	})
}
