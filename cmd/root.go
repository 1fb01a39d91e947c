package cmd

import (
	"fmt"
	"os"

	"didp/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "didp",
	Short: "Data import, matching and processing service",
	Long: `didp imports spreadsheets into generic tables, matches rows between tables,
runs ad-hoc SQL and scripts over them and exports the results as workbooks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the selected command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		report(err)
		os.Exit(1)
	}
}

// report prints err through a console logger, falling back to stdout.
func report(err error) {
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Println(err)
		return
	}
	l.Error("command failed", zap.Error(err))
	_ = l.Sync()
}
