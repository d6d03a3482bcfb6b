package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexgraph/lexgraph/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lexgraph",
		Short: "Lexgraph CLI - document search and question answering",
		Long: `Lexgraph CLI uploads documents and queries them over the API.

Environment variables:
  LEXGRAPH_TOKEN     Access token (or run 'lexgraph login')
  LEXGRAPH_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("token", "", "Access token (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")

	rootCmd.AddCommand(client.RegisterCmd())
	rootCmd.AddCommand(client.LoginCmd())
	rootCmd.AddCommand(client.LogoutCmd())
	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.StatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
