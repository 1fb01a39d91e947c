package cmd

import (
	"fmt"
	"os"

	"didp/feature/exports"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportOut         string
	exportNoMatched   bool
	exportNoUnmatched bool
	exportArchive     bool
)

// exportCmd is the parent command for workbook exports.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write exports to local files",
}

var exportMatchResultCmd = &cobra.Command{
	Use:   "match-result [result-id]",
	Short: "Export a stored match result as an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportMatchResult,
}

func init() {
	exportMatchResultCmd.Flags().StringVar(&exportOut, "out", "", "Output file (defaults to the generated name)")
	exportMatchResultCmd.Flags().BoolVar(&exportNoMatched, "no-matched", false, "Leave out the matched pairs sheet")
	exportMatchResultCmd.Flags().BoolVar(&exportNoUnmatched, "no-unmatched", false, "Leave out both unmatched sheets")
	exportMatchResultCmd.Flags().BoolVar(&exportArchive, "archive", false, "Also store the workbook in the archive")

	exportCmd.AddCommand(exportMatchResultCmd)
	RootCmd.AddCommand(exportCmd)
}

func runExportMatchResult(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "match result")
	if err != nil {
		return err
	}
	a, err := bootstrap()
	if err != nil {
		return err
	}

	f, err := a.exports.Service().MatchResult(cmd.Context(), id, exports.MatchResultOptions{
		IncludeMatched:   !exportNoMatched,
		IncludeUnmatched: !exportNoUnmatched,
		Archive:          exportArchive,
	})
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = f.Name
	}
	if err := os.WriteFile(out, f.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	a.logger.Info("Workbook written",
		zap.String("file", out),
		zap.Int("bytes", len(f.Data)),
		zap.String("archive_key", f.ObjectKey))
	return nil
}
