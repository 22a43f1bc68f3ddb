package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codearch/internal/logutil"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(cleanupCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the analysis service is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logutil.LoggerFromViper()
		if err != nil {
			return err
		}
		client := newClient(logger)
		status, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check %s: %w", client.BaseURL(), err)
		}
		fmt.Printf("%s: %s (%s)\n", client.BaseURL(), status.Status, status.Message)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Ask the analysis service to delete its cloned repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logutil.LoggerFromViper()
		if err != nil {
			return err
		}
		client := newClient(logger)
		msg, err := client.Cleanup(cmd.Context())
		if err != nil {
			return fmt.Errorf("cleanup %s: %w", client.BaseURL(), err)
		}
		fmt.Println(msg)
		return nil
	},
}
