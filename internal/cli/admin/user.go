package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexgraph/lexgraph/internal/config"
	"github.com/lexgraph/lexgraph/internal/database"
	"github.com/lexgraph/lexgraph/internal/repository"
	"github.com/lexgraph/lexgraph/internal/service"
)

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API accounts",
		Long:  "Create API accounts directly in the database",
	}

	cmd.AddCommand(UserCreateCmd())

	return cmd
}

func UserCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <email> <password>",
		Short: "Create a new account",
		Long:  "Create a new account with the specified email and password",
		Args:  cobra.ExactArgs(2),
		RunE:  runUserCreate,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	email, password := args[0], args[1]
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)

	user, err := authSvc.Register(ctx, email, password)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         user.ID,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Account created: %s (%s)\n", user.Email, user.ID)
	}

	return nil
}
