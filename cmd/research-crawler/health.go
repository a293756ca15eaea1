package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the award lookup service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		client := a.client()
		status, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("award service at %s: %w", client.BaseURL(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", client.BaseURL(), status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
