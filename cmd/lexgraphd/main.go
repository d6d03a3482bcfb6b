package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexgraph/lexgraph/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lexgraphd",
		Short: "Lexgraph daemon and CLI",
		Long:  "Lexgraph daemon for running the API server and managing accounts",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.UserCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
