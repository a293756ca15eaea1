// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-crawler/internal/session"
	"github.com/pdiddy/research-crawler/internal/view"
)

var searchCmd = &cobra.Command{
	Use:   "search NAME",
	Short: "Look up the awards of one principal investigator",
	Long: `Search submits NAME to the award lookup service, waits for the result,
and prints the awards grouped by year together with the award count, total
funding, most recent year, and a representative project number.

Multiple arguments are joined with spaces, so quoting is optional.`,
	Example: `  research-crawler search 李文廷
  research-crawler search Chen Yu --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("format", "text", "output format: text, json, or yaml")
	searchCmd.Flags().Int("width", view.DefaultWidth, "text layout width in columns")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := view.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	width, _ := cmd.Flags().GetInt("width")

	a, err := loadApp()
	if err != nil {
		return err
	}

	ctrl := session.NewController(a.client(), a.cfg.Session, a.logger)
	defer ctrl.Close()

	// A rejected term still renders: the page shows the validation message.
	if _, err := ctrl.Submit(cmd.Context(), strings.Join(args, " ")); err != nil && !errors.Is(err, session.ErrEmptyTerm) {
		return err
	}
	ctrl.Wait()

	state := ctrl.State()
	if err := view.Render(cmd.OutOrStdout(), view.Build(state, a.window), format, width); err != nil {
		return err
	}
	if state.Status == session.Error {
		return errors.New(state.ErrorMessage())
	}
	return nil
}
