package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Results []ChunkInfo `json:"results"`
	Total   int         `json:"total"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the corpus",
		Long:  "Searches all document chunks by semantic similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/search", SearchRequest{Query: query, Limit: limit})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", searchResp.Total)
	for i, result := range searchResp.Results {
		content := result.Content
		if len(content) > 200 {
			content = content[:197] + "..."
		}
		fmt.Printf("%d. %s\n", i+1, content)
		fmt.Printf("   Document: %s (chunk %d)\n", result.DocumentID, result.ChunkIndex)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
