package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/games/survival"
	"github.com/vovakirdan/tui-survivor/internal/logging"
	"github.com/vovakirdan/tui-survivor/internal/platform/spectate"
	"github.com/vovakirdan/tui-survivor/internal/platform/tui"
	"github.com/vovakirdan/tui-survivor/internal/storage"
)

var (
	flagName     string
	flagSpectate string
	flagNoMenu   bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a run",
	Long: `Start a survival run in this terminal.

Controls:
  Mouse        - Aim; hold left button to fire
  Right click  - Switch weapon
  WASD/Arrows  - Aim in a direction
  Space/F      - Toggle continuous fire
  Q/Tab        - Switch weapon
  U            - Upgrade the current weapon
  P            - Pause
  R            - Restart (after game over)
  Esc/Ctrl+C   - Quit

Without --difficulty a menu asks for one (skip it with --no-menu).

Difficulty options:
  easy   - More health, smaller waves, longer breaks
  normal - Configured values
  hard   - Less health, bigger waves, shorter breaks

Examples:
  survivor play
  survivor play --difficulty hard
  survivor play --name alice --seed 42
  survivor play --config ./my-survival.yaml
  survivor play --spectate :8080 --log-file ~/.survivor/play.log`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom survival config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	playCmd.Flags().StringVar(&flagName, "name", "", "Player name shown in the HUD and run records")
	playCmd.Flags().BoolVar(&flagNoMenu, "no-menu", false, "Skip the difficulty menu")
	playCmd.Flags().StringVar(&flagSpectate, "spectate", "", "Serve a live spectator feed on this address (e.g. :8080)")
}

func runPlay(_ *cobra.Command, _ []string) error {
	// The TUI owns the terminal, so logs only go to a file.
	logger := logging.Discard()
	if flagLogFile != "" {
		var err error
		if logger, err = newLogger("survivor"); err != nil {
			return err
		}
	}
	applyGameFlags(logger)

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	opts := tui.Options{Logger: logger}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		// Continue without storage - game still works
	} else {
		defer store.Close()
		opts.Store = store
	}

	if flagDifficulty == "" && !flagNoMenu {
		var scores tui.HighScorer
		if store != nil {
			scores = store
		}
		choice, menuErr := tui.RunMenu(scores, survival.GameID, "Survival", cfg)
		if menuErr != nil {
			return fmt.Errorf("error running menu: %w", menuErr)
		}
		if choice == nil {
			return nil
		}
		survival.SetDifficultyPreset(string(choice.Preset))
	}

	game := survival.New()
	if flagName != "" {
		game.SetPlayerName(flagName)
	}

	if flagSpectate != "" {
		stop := startSpectator(logger, flagSpectate)
		defer stop()
		opts.Publisher = spectatorHub
	}

	if err := tui.Run(game, cfg, opts); err != nil {
		return fmt.Errorf("error running game: %w", err)
	}
	return nil
}

// spectatorHub is the process-wide spectator feed, set by startSpectator.
var spectatorHub *spectate.Hub

// startSpectator serves the spectator feed in the background and returns a
// function that stops it.
func startSpectator(logger *log.Logger, addr string) func() {
	spectatorHub = spectate.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := spectatorHub.ListenAndServe(ctx, addr); err != nil {
			logger.Error("spectator feed stopped", "err", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
