// survivor is a terminal top-down survival shooter.
//
// Usage:
//
//	survivor play            - Play a run in this terminal
//	survivor sim             - Run the autopilot headless and print the result
//	survivor scores          - Show the best recorded runs
//	survivor list            - List available games
//	survivor serve           - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible runs
//	--db <path>         - Set database path (default: ~/.survivor/runs.db)
//	--log-file <path>   - Write logs to a rotating file
//	--log-level <level> - debug, info, warn or error (default: info)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-survivor/internal/games/survival"
	"github.com/vovakirdan/tui-survivor/internal/logging"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogFile  string
	flagLogLevel string

	// Shared by play, sim and serve
	flagConfig     string
	flagDifficulty string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "survivor",
	Short: "Survivor - hold out against zombie waves in your terminal",
	Long: `Survivor is a top-down survival shooter for the terminal.
Aim with the mouse or WASD, shoot the zombies, upgrade your weapons
with the score you earn and see how many waves you last.

Available commands:
  play     - Play a run in this terminal
  sim      - Run the autopilot headless and print the final state
  scores   - View the best recorded runs
  list     - Show all available games
  serve    - Start SSH server for remote play

Examples:
  survivor play
  survivor play --difficulty hard --name alice
  survivor sim --duration 120 --seed 42
  survivor serve --ssh :2222 --spectate :8080
  survivor scores`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.survivor/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file (rotated)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// newLogger builds the process logger from the global flags.
func newLogger(prefix string) (*log.Logger, error) {
	return logging.New(flagLogFile, flagLogLevel, prefix)
}

// applyGameFlags configures the survival game before instances are created.
func applyGameFlags(logger *log.Logger) {
	survival.SetConfigPath(flagConfig)
	survival.SetDifficultyPreset(flagDifficulty)
	survival.SetLogger(logger)
}
