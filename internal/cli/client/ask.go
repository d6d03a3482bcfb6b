package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AskRequest represents the ask API request.
type AskRequest struct {
	Question string `json:"question"`
	Limit    int    `json:"limit,omitempty"`
}

// AskResponse represents the ask API response.
type AskResponse struct {
	Answer  string      `json:"answer"`
	Sources []ChunkInfo `json:"sources"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question over the corpus",
		Long:  "Answers a question using the most relevant chunks as context.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of context chunks (server default when 0)")

	return cmd
}

func runAsk(cmd *cobra.Command, question string, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/ask", AskRequest{Question: question, Limit: limit})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var askResp AskResponse
	if err := json.Unmarshal(resp.Data, &askResp); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(askResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(askResp.Answer)
	if len(askResp.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for _, source := range askResp.Sources {
			fmt.Printf("  %s (chunk %d)\n", source.DocumentID, source.ChunkIndex)
		}
	}

	return nil
}
