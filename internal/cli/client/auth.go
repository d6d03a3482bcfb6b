package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// LoginRequest represents the login API request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo represents an account in API responses.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse represents the login API response.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// LoginCmd creates the login command.
func LoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and save the access token",
		Long:  "Logs in with email and password and saves the returned token to the global config.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL, _ := cmd.Flags().GetString("api-url")
			return runLogin(args[0], args[1], apiURL)
		},
	}

	return cmd
}

func runLogin(email, password, apiURL string) error {
	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	// no token yet, login is the unauthenticated call that gets one
	api := NewAPIClientWithConfig("", apiURL)

	resp, err := api.Post("/auth/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(resp.Data, &loginResp); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}

	if err := SaveGlobalConfig(&GlobalConfig{Token: loginResp.Token, APIURL: apiURL}); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", loginResp.User.Email)
	return nil
}

// RegisterCmd creates the register command.
func RegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <email> <password>",
		Short: "Create a new account",
		Long:  "Creates a new account on the server. Run 'lexgraph login' afterwards to get a token.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL, _ := cmd.Flags().GetString("api-url")
			return runRegister(args[0], args[1], apiURL)
		},
	}

	return cmd
}

func runRegister(email, password, apiURL string) error {
	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	api := NewAPIClientWithConfig("", apiURL)

	resp, err := api.Post("/auth/register", LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	var user UserInfo
	if err := json.Unmarshal(resp.Data, &user); err != nil {
		return fmt.Errorf("failed to parse registration response: %w", err)
	}

	fmt.Printf("Account created: %s (%s)\n", user.Email, user.ID)
	return nil
}

// LogoutCmd creates the logout command.
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
