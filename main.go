package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"leadgen/config"
	"leadgen/utils"
)

var rootCmd = &cobra.Command{
	Use:           "leadgen",
	Short:         "Turn business references into scored, deduplicated leads",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd, classifyCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and builds the logger every command uses.
func loadConfig() (*config.Config, *utils.Logger, error) {
	cfg := config.Load()
	logger, err := utils.NewLoggerWithOptions(utils.LoggerOptions{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
