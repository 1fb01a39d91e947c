package cmd

import (
	"fmt"
	"strconv"

	"didp/feature/matching"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resultsConfigID uint
	resultsLimit    int
)

// matchCmd is the parent command for match operations.
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run saved match configurations and inspect their results",
}

var matchRunCmd = &cobra.Command{
	Use:   "run [config-id]",
	Short: "Execute a match configuration and store the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

var matchResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored results, newest first",
	Long: `Lists stored match results newest first.

Examples:
  # Ten most recent results
  didp match results

  # Results of one configuration
  didp match results --config 3 --limit 50`,
	RunE: runMatchResults,
}

func init() {
	matchResultsCmd.Flags().UintVar(&resultsConfigID, "config", 0, "Only results of this configuration")
	matchResultsCmd.Flags().IntVar(&resultsLimit, "limit", matching.DefaultResultLimit, "Number of results (1-100)")

	matchCmd.AddCommand(matchRunCmd)
	matchCmd.AddCommand(matchResultsCmd)
	RootCmd.AddCommand(matchCmd)
}

func parseID(arg, what string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return uint(id), nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "config")
	if err != nil {
		return err
	}
	a, err := bootstrap()
	if err != nil {
		return err
	}

	res, err := a.matching.Service().Execute(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}
	printResult(res)
	return nil
}

func runMatchResults(cmd *cobra.Command, args []string) error {
	if resultsLimit < 1 || resultsLimit > matching.MaxResultLimit {
		return fmt.Errorf("limit must be between 1 and %d", matching.MaxResultLimit)
	}
	a, err := bootstrap()
	if err != nil {
		return err
	}

	results, err := a.matching.Service().ListResults(cmd.Context(), resultsConfigID, resultsLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		a.logger.Info("No results found", zap.Uint("config_id", resultsConfigID))
		return nil
	}

	fmt.Printf("%-6s %-6s %-24s %8s %8s %8s  %s\n", "ID", "CONFIG", "NAME", "MATCHED", "SRC", "TGT", "CREATED")
	for _, r := range results {
		fmt.Printf("%-6d %-6d %-24s %8d %8d %8d  %s\n",
			r.ID, r.ConfigID, r.ConfigName,
			r.MatchedCount, r.UnmatchedSourceCount, r.UnmatchedTargetCount,
			r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func printResult(r *matching.ResultView) {
	fmt.Println("\n--- Match Result ---")
	fmt.Printf("Result ID:         %d\n", r.ID)
	fmt.Printf("Config:            %d (%s)\n", r.ConfigID, r.ConfigName)
	fmt.Printf("Source -> Target:  %s -> %s\n", r.SourceTableKey, r.TargetTableKey)
	fmt.Println("--------------------")
	fmt.Printf("Matched:           %d\n", r.MatchedCount)
	fmt.Printf("Unmatched Source:  %d\n", r.UnmatchedSourceCount)
	fmt.Printf("Unmatched Target:  %d\n", r.UnmatchedTargetCount)
	fmt.Println("--------------------")
}
