package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/games/survival/sim"
	"github.com/vovakirdan/tui-survivor/internal/platform/spectate"
	"github.com/vovakirdan/tui-survivor/internal/registry"
	"github.com/vovakirdan/tui-survivor/internal/storage"
)

// publishEvery is the number of ticks between spectator frames.
const publishEvery = 6

// RunGame is a registry game that exposes its HUD state.
type RunGame interface {
	registry.Game
	UIState() sim.UIState
}

// resizer is implemented by games that can change layout mid-run.
type resizer interface {
	Resize(w, h int)
}

// Publisher receives live frames of a run.
type Publisher interface {
	Publish(f spectate.Frame)
	End(session string)
}

// RunSaver persists finished runs.
type RunSaver interface {
	SaveRun(r storage.Run) (string, error)
}

// Options configures a Model beyond its game and runtime config.
type Options struct {
	Store     RunSaver
	Publisher Publisher
	Logger    *log.Logger
	SessionID string
}

// Model is the Bubble Tea model for a survival run.
type Model struct {
	game       RunGame
	screen     *core.Screen
	opts       Options
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keys       KeyMap
	help       help.Model
	runID      string
	ticks      uint64
	quitting   bool
	runSaved   bool // Whether the current run has been recorded
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game RunGame, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}

	h := help.New()
	h.Width = cfg.ScreenW

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, gameHeight(cfg.ScreenH)),
		opts:       opts,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keys:       DefaultKeyMap(),
		help:       h,
		runID:      uuid.NewString(),
	}
}

// gameHeight leaves the bottom row for the help bar.
func gameHeight(h int) int {
	return max(0, h-1)
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	cfg := m.config
	cfg.ScreenH = gameHeight(cfg.ScreenH)
	m.game.Reset(cfg)
	m.opts.Logger.Info("run started", "session", m.opts.SessionID, "run", m.runID, "seed", cfg.Seed)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		MapMouse(msg, &m.inputFrame)
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		m.endRun()
		return m, tea.Quit
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, gameHeight(msg.Height))
	m.help.Width = msg.Width

	if r, ok := m.game.(resizer); ok {
		r.Resize(msg.Width, gameHeight(msg.Height))
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	wasOver := m.gameState.GameOver

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.ticks++

	// A restart turns a finished run into a fresh one.
	if wasOver && !m.gameState.GameOver {
		m.runID = uuid.NewString()
		m.runSaved = false
		m.opts.Logger.Info("run restarted", "session", m.opts.SessionID, "run", m.runID)
	}

	if m.gameState.GameOver && !m.runSaved {
		m.saveRun()
		m.runSaved = true
	}

	if m.opts.Publisher != nil && (m.ticks%publishEvery == 0 || m.gameState.GameOver != wasOver) {
		m.opts.Publisher.Publish(spectate.Frame{
			Session: m.opts.SessionID,
			Tick:    m.ticks,
			State:   m.game.UIState(),
		})
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// saveRun records the finished run. Empty runs are not recorded.
func (m *Model) saveRun() {
	ui := m.game.UIState()
	m.opts.Logger.Info("run over", "session", m.opts.SessionID, "run", m.runID,
		"score", ui.Score, "wave", ui.Wave, "kills", ui.Kills)
	if m.opts.Store == nil || ui.Score <= 0 {
		return
	}
	_, err := m.opts.Store.SaveRun(storage.Run{
		RunID:      m.runID,
		GameID:     m.game.ID(),
		Player:     ui.Player,
		Score:      ui.Score,
		Wave:       ui.Wave,
		Kills:      ui.Kills,
		DurationMs: ui.TimeMs,
	})
	if err != nil {
		m.opts.Logger.Warn("could not save run", "run", m.runID, "err", err)
	}
}

// endRun tells spectators the session is gone.
func (m *Model) endRun() {
	if m.opts.Publisher != nil {
		m.opts.Publisher.End(m.opts.SessionID)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".survivor", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// RunID returns the ID of the current run.
func (m Model) RunID() string {
	return m.runID
}

// Run starts the Bubble Tea program with the given game.
func Run(game RunGame, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(game, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)

	_, err := p.Run()
	return err
}
