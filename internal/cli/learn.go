package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenAgentsInc/openagents-sub011/internal/db"
	"github.com/OpenAgentsInc/openagents-sub011/internal/learner"
)

var learnFlags struct {
	window int
	prompt bool
}

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Summarize recent failure episodes into reflections",
	Long: `Learn scans the most recent episodes, groups failures by category, and
prints reflections ordered by frequency. With --prompt it prints the exact
markdown block the loop injects into the agent's next attempt.`,
	RunE: runLearn,
}

func init() {
	rootCmd.AddCommand(learnCmd)
	learnCmd.Flags().IntVar(&learnFlags.window, "window", 0, "episodes to consider (default from config)")
	learnCmd.Flags().BoolVar(&learnFlags.prompt, "prompt", false, "print the prompt block instead of the summary")
}

func runLearn(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	window := cfg.Loop.LearningWindow
	if learnFlags.window > 0 {
		window = learnFlags.window
	}

	database, err := db.Open(db.Config{
		Path:          cfg.DatabasePath(),
		MaxOpenConns:  cfg.Database.MaxConnections,
		BusyTimeoutMs: cfg.Database.BusyTimeoutMs,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	summarizer := learner.New(db.NewEpisodeRepository(database))
	summary, err := summarizer.Summarize(cmd.Context(), window)
	if err != nil {
		return err
	}

	if learnFlags.prompt {
		block := learner.FormatForPrompt(summary)
		if block == "" {
			fmt.Println("no reflections available")
			return nil
		}
		fmt.Print(block)
		return nil
	}

	if IsJSONOutput() {
		return WriteOutput(os.Stdout, summary)
	}

	if len(summary.Reflections) == 0 {
		fmt.Printf("no failing episodes in the last %d\n", summary.EpisodesScanned)
		return nil
	}
	fmt.Printf("reflections from %d episodes (%d skipped):\n", summary.EpisodesScanned, summary.SkippedEpisodes)
	for _, reflection := range summary.Reflections {
		fmt.Printf("  %-14s x%-3d (confidence %.1f) %s\n",
			reflection.Category, reflection.Occurrences, reflection.Confidence, reflection.CorrectiveAction)
	}
	return nil
}
