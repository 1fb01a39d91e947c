package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"didp/core/middleware/auth"
	"didp/core/server"

	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "didp/docs/swagger"
)

// @title DIDP API
// @version 1.0
// @description Import, match, query and export tabular data.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	Long:  `Starts the HTTP server and mounts every enabled feature under the API prefix.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		app := server.New(a.cfg.Server, logg)

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		api := app.Group(a.cfg.Server.Prefix(), auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))
		if err := a.features().LoadAll(api); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server",
				zap.String("port", a.cfg.Server.Port),
				zap.String("prefix", a.cfg.Server.Prefix()),
				zap.String("driver", a.cfg.Database.Driver))
			if err := app.Listen(":" + a.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
