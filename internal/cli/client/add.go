package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// DocumentInfo represents a document in API responses.
type DocumentInfo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Summary     string `json:"summary,omitempty"`
	Status      string `json:"status"`
	UploadedAt  string `json:"uploaded_at"`
	UpdatedAt   string `json:"updated_at"`
}

// AddCmd creates the add command.
func AddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Upload a document",
		Long:  "Uploads a file and runs it through the processing pipeline.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAdd(cmd, args[0], name, outputJSON)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Filename to report to the server (defaults to the file's basename)")

	return cmd
}

func runAdd(cmd *cobra.Command, path, name string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if name == "" {
		name = filepath.Base(path)
	}

	resp, err := api.PostFile("/documents", "file", name, data)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var doc DocumentInfo
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse upload response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Uploaded %s (%s)\n", doc.Filename, doc.ID)
		fmt.Printf("  Status: %s\n", doc.Status)
		if doc.Summary != "" {
			fmt.Printf("  Summary: %s\n", doc.Summary)
		}
	}

	return nil
}
