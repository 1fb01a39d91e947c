package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		// bootstrap migrates before wiring the features
		a, err := bootstrap()
		if err != nil {
			return err
		}
		a.logger.Info("Schema up to date",
			zap.String("driver", a.cfg.Database.Driver),
			zap.Int("models", len(models())))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
