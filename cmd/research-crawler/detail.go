// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-crawler/internal/awards"
	"github.com/pdiddy/research-crawler/internal/display"
)

var detailCmd = &cobra.Command{
	Use:   "detail PROJECT_NO",
	Short: "Print the full impact statement of one project",
	Long: `Detail fetches the impact statement of the project numbered PROJECT_NO
(e.g. 113WFA2110082) from the award lookup service. Search results carry
only a short summary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}

		impact, err := a.client().ImpactDetail(cmd.Context(), args[0])
		if err != nil {
			a.logger.Debug("impact detail failed", "project_no", args[0], "error", err)
			return errors.New(awards.UserMessage(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), display.NormalizeString(impact))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detailCmd)
}
