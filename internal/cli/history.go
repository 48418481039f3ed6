package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenAgentsInc/openagents-sub011/internal/db"
)

var historyFlags struct {
	limit    int
	episodes bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent run records",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "number of runs to show")
	historyCmd.Flags().BoolVar(&historyFlags.episodes, "episodes", false, "include per-task episodes for each run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

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

	runRepo := db.NewRunRecordRepository(database)
	records, err := runRepo.ListRecent(cmd.Context(), historyFlags.limit)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return WriteOutput(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	episodeRepo := db.NewEpisodeRepository(database)
	for _, record := range records {
		fmt.Printf("%s  iter %-3d %-30s %d/%d passed (%.0f%%)  %s\n",
			record.StartedAt.Format("2006-01-02 15:04"),
			record.Iteration,
			record.SuitePath,
			record.Passed, record.TaskCount,
			record.PassRate()*100,
			record.ID)

		if !historyFlags.episodes {
			continue
		}
		episodes, err := episodeRepo.ListByRun(cmd.Context(), record.ID)
		if err != nil {
			return err
		}
		for _, episode := range episodes {
			status := "pass"
			if !episode.Passed {
				status = string(episode.Category)
			}
			fmt.Printf("    %-20s %s\n", episode.TaskID, status)
		}
	}
	return nil
}
