package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Long:  "Deletes a document, its chunks and any archived original bytes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0])
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, id string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Delete("/documents/" + id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	fmt.Printf("Deleted %s\n", id)
	return nil
}
