package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Command-line client for the training-content portal",
	Long: `portalctl is a command-line client for the training-content portal.
It manages your login session and provides authorized access to the portal
API for browsing learning tracks, videos and documents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "portal API base URL (default $PORTAL_API_URL or http://localhost:3001)")
	rootCmd.PersistentFlags().String("state-dir", "", "directory for client state (default ~/.portalctl)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}
