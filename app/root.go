// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/house-aratus/membership-api/internal/config"
)

var (
	cfg        config.Config
	configPath string // Path to the configuration directory
)

var rootCmd = &cobra.Command{
	Use:   "membership-api",
	Short: "membership-api is the House Aratus membership service",
	Long: `membership-api is the backend of the House Aratus membership system.
It authenticates members against the LDAP directory, links EVE Online
characters through the EVE SSO and issues access tokens for the frontend.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration directory")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
