package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harun/phobos/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI and host versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hostVersion := config.DefaultHostVersion
		if cfg, err := loadConfig(cmd); err == nil && cfg.HostVersion != "" {
			hostVersion = cfg.HostVersion
		}
		fmt.Fprintf(cmd.OutOrStdout(), "phobos %s (host %s)\n", version, hostVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
