package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-survivor/internal/games/survival"
	"github.com/vovakirdan/tui-survivor/internal/platform/tui"
	"github.com/vovakirdan/tui-survivor/internal/registry"
	"github.com/vovakirdan/tui-survivor/internal/storage"
)

var (
	flagLimit       int
	flagInteractive bool
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show the best recorded runs",
	Long: `Display the best runs recorded for a game (survival by default),
ranked by score and then by the wave reached.

Examples:
  survivor scores
  survivor scores --limit 25
  survivor scores -i        # interactive table
  survivor scores --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse runs in an interactive table")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all recorded runs for the game")
}

func runScores(cmd *cobra.Command, args []string) error {
	gameID := survival.GameID
	if len(args) == 1 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown game %q; run 'survivor list' to see available games", gameID)
	}
	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}
	title := game.Title()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("error opening runs database: %w", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(gameID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared all runs for %s.\n", title)
		return nil
	}

	if flagInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunScoreboard(store, gameID, title, width, height)
	}

	return printRuns(cmd, store, gameID, title)
}

// printRuns writes the best runs as a plain text table.
func printRuns(cmd *cobra.Command, store *storage.Store, gameID, title string) error {
	out := cmd.OutOrStdout()

	runs, err := store.TopRuns(gameID, flagLimit)
	if err != nil {
		return fmt.Errorf("error retrieving runs: %w", err)
	}

	fmt.Fprintf(out, "Best Runs - %s\n", title)
	fmt.Fprintln(out)

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Play 'survivor play' to set the first record!")
		return nil
	}

	fmt.Fprintf(out, "  %-4s  %-16s  %-8s  %-5s  %-6s  %-6s  %s\n", "Rank", "Player", "Score", "Wave", "Kills", "Time", "Date")
	fmt.Fprintf(out, "  %-4s  %-16s  %-8s  %-5s  %-6s  %-6s  %s\n", "----", "------", "-----", "----", "-----", "----", "----")
	for i, r := range runs {
		secs := r.DurationMs / 1000
		fmt.Fprintf(out, "  %-4d  %-16s  %-8d  %-5d  %-6d  %-6s  %s\n",
			i+1, r.Player, r.Score, r.Wave, r.Kills,
			fmt.Sprintf("%d:%02d", secs/60, secs%60),
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats(gameID)
	if err == nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Best: %d  Best wave: %d  Runs: %d  Total kills: %d\n",
			stats.HighScore, stats.BestWave, stats.RunsCount, stats.TotalKills)
	}
	return nil
}
