package auth

import (
	"fmt"
	"os"

	"github.com/crucial707/dtl-policy/cmd/cli/config"
	"github.com/crucial707/dtl-policy/internal/client"
	"github.com/spf13/cobra"
)

// InitAuth registers auth-related CLI commands (login, logout) on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd())
}

// loginCmd exchanges the shared API token for a JWT and stores it locally.
func loginCmd() *cobra.Command {
	var apiToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the lab management API",
		Long: `Exchange the API token for a JWT and store it for subsequent CLI commands.
The token can also be supplied with the DTL_API_TOKEN environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiToken == "" {
				apiToken = os.Getenv("DTL_API_TOKEN")
			}
			if apiToken == "" {
				return fmt.Errorf("api token is required (--api-token or DTL_API_TOKEN)")
			}

			settings, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}

			resp, err := client.New(settings.APIURL).IssueToken(cmd.Context(), apiToken)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}

			if err := config.SaveToken(resp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Login successful. Token stored locally (expires %s).\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&apiToken, "api-token", "", "API token issued by the server operator")

	return cmd
}

// logoutCmd removes the locally stored JWT.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.RemoveToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}
