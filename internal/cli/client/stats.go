package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CorpusStatsResponse represents the corpus stats API response.
type CorpusStatsResponse struct {
	TotalChunks    int64 `json:"total_chunks"`
	EmbeddedChunks int64 `json:"embedded_chunks"`
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Long:  "Shows chunk and embedding coverage across the whole corpus.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStats(cmd, outputJSON)
		},
	}

	return cmd
}

func runStats(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/stats")
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	var stats CorpusStatsResponse
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		return fmt.Errorf("failed to parse stats: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Chunks:   %d\n", stats.TotalChunks)
	fmt.Printf("Embedded: %d\n", stats.EmbeddedChunks)
	if stats.TotalChunks > 0 {
		fmt.Printf("Coverage: %.1f%%\n", float64(stats.EmbeddedChunks)/float64(stats.TotalChunks)*100)
	}

	return nil
}
