package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-rhythm/config"
	"go-rhythm/debug"
)

var version = "0.1.0"

var (
	debugFlag  bool
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "go-rhythm",
	Short: "Three-voice generative rhythm sequencer",
	Long: `go-rhythm turns a handful of performance controls into anchor,
shimmer and aux trigger patterns, one bar at a time, and plays them
as MIDI notes or built-in clicks against an internal or external clock.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugFlag {
			if err := debug.Enable(); err != nil {
				return err
			}
			debug.Log("main", "%s %s", cmd.Name(), version)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write a debug log to "+debug.Path())
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/go-rhythm/config.json)")

	rootCmd.AddCommand(runCmd, patternCmd, sweepCmd, renderCmd, serveCmd, portsCmd)
}

// loadConfig reads --config or the default location
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}
