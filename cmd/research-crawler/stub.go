// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-crawler/internal/stubapi"
)

var stubCmd = &cobra.Command{
	Use:   "stub-server",
	Short: "Serve sample award records on the lookup service endpoints",
	Long: `Stub-server runs a local stand-in for the award lookup service. It loads
award records from a YAML fixture file (a list of records with the same
fields as the service returns), or built-in samples when none is given,
and answers /api/awards, /api/awards/detail/{project_no}, and /api/health
until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runStub,
}

func init() {
	f := stubCmd.Flags()
	f.String("addr", "", "listen address (default 127.0.0.1:8000)")
	f.String("fixtures", "", "YAML file of award records (default: built-in samples)")
	f.Duration("delay", 0, "delay before every award response")

	bindFlag("stub.addr", f.Lookup("addr"))
	bindFlag("stub.fixtures", f.Lookup("fixtures"))
	bindFlag("stub.delay", f.Lookup("delay"))

	rootCmd.AddCommand(stubCmd)
}

func runStub(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	records, err := stubapi.ReadFixtures(a.cfg.Stub.Fixtures)
	if err != nil {
		return err
	}

	index, err := stubapi.OpenIndex()
	if err != nil {
		return err
	}
	defer index.Close()

	if _, err := index.Load(cmd.Context(), records); err != nil {
		return err
	}
	n, err := index.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded %d award record(s)\n", n)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return stubapi.NewServer(index, a.cfg.Stub, a.logger).ListenAndServe(ctx, a.cfg.Stub.Addr)
}
