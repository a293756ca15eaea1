// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-crawler CLI.
// Commands: search, interactive, detail, health, stub-server, version.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-crawler/internal/aggregate"
	"github.com/pdiddy/research-crawler/internal/awards"
	"github.com/pdiddy/research-crawler/internal/config"
	"github.com/pdiddy/research-crawler/internal/logging"
	"github.com/pdiddy/research-crawler/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the research-crawler CLI.
var rootCmd = &cobra.Command{
	Use:   "research-crawler",
	Short: "Search NSTC research awards by principal investigator",
	Long: `research-crawler looks up the publicly funded research awards of a
principal investigator through the award lookup service and shows them
grouped by award year, newest first, with summary statistics.

The service root comes from --base-url, RESEARCH_CRAWLER_LOOKUP_BASE_URL,
or lookup.base_url in the config file, and defaults to http://localhost:8000.
Run "research-crawler stub-server" for a local stand-in service.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-crawler.yaml or ~/.config/research-crawler/research-crawler.yaml)")
	pf.String("base-url", "", "award lookup service root URL")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Int("window-start", 0, "newest award year shown (ROC calendar)")
	pf.Int("window-size", 0, "number of award years shown")

	bindFlag("lookup.base_url", pf.Lookup("base-url"))
	bindFlag("log.level", pf.Lookup("log-level"))
	bindFlag("window.start", pf.Lookup("window-start"))
	bindFlag("window.size", pf.Lookup("window-size"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-crawler")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-crawler"))
		}
	}

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// app is the configuration shared by every command.
type app struct {
	cfg    types.AppConfig
	logger *slog.Logger
	window aggregate.Window
}

// loadApp validates the configuration and builds the logger and window.
func loadApp() (*app, error) {
	now := time.Now()
	cfg, err := config.Load(viper.GetViper(), now)
	if err != nil {
		return nil, err
	}
	window, err := aggregate.ResolveWindow(cfg.Window, now)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: logging.New(cfg.Log, os.Stderr),
		window: window,
	}, nil
}

func (a *app) client() *awards.Client {
	return awards.NewClient(a.cfg.Lookup, a.logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
