package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ChunkInfo represents a chunk in API responses.
type ChunkInfo struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id"`
	ChunkIndex   int    `json:"chunk_index"`
	Content      string `json:"content"`
	StartPos     int    `json:"start_pos"`
	EndPos       int    `json:"end_pos"`
	HasEmbedding bool   `json:"has_embedding"`
}

// ChunkListResponse represents the chunk listing API response.
type ChunkListResponse struct {
	Items []ChunkInfo `json:"items"`
	Total int         `json:"total"`
}

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	var chunks bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a document by ID",
		Long:  "Fetches a document's metadata, optionally with its chunks.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(cmd, args[0], chunks, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&chunks, "chunks", false, "Also list the document's chunks")

	return cmd
}

func runGet(cmd *cobra.Command, id string, chunks, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/documents/" + id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	var doc DocumentInfo
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	if outputJSON && !chunks {
		output, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if !outputJSON {
		fmt.Printf("%s (%s)\n", doc.Filename, doc.ID)
		fmt.Printf("  Type:     %s\n", doc.ContentType)
		fmt.Printf("  Size:     %d bytes\n", doc.SizeBytes)
		fmt.Printf("  Status:   %s\n", doc.Status)
		fmt.Printf("  Uploaded: %s\n", doc.UploadedAt)
		if doc.Summary != "" {
			fmt.Printf("  Summary:  %s\n", doc.Summary)
		}
	}

	if !chunks {
		return nil
	}

	chunksResp, err := api.Get("/documents/" + id + "/chunks")
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	var chunkList ChunkListResponse
	if err := json.Unmarshal(chunksResp.Data, &chunkList); err != nil {
		return fmt.Errorf("failed to parse chunks: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(map[string]interface{}{
			"document": doc,
			"chunks":   chunkList.Items,
		}, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("\nChunks (%d):\n", chunkList.Total)
	for _, chunk := range chunkList.Items {
		embedded := " "
		if chunk.HasEmbedding {
			embedded = "*"
		}
		preview := chunk.Content
		if len(preview) > 60 {
			preview = preview[:57] + "..."
		}
		fmt.Printf("  [%s] %3d  %s\n", embedded, chunk.ChunkIndex, preview)
	}

	return nil
}
