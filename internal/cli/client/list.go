package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// DocumentListResponse represents the document listing API response.
type DocumentListResponse struct {
	Items   []DocumentInfo `json:"items"`
	Cursor  string         `json:"cursor,omitempty"`
	HasMore bool           `json:"has_more"`
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Long:  "Lists documents newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runList(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	resp, err := api.Get("/documents?" + query.Encode())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var listResp DocumentListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse document list: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	fmt.Println("Documents:")
	for _, doc := range listResp.Items {
		fmt.Printf("  %s  %-12s %s\n", doc.ID, doc.Status, doc.Filename)
	}
	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}
