package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/cashier-report-converter/internal/api"
	"github.com/insightdelivered/cashier-report-converter/internal/pipeline"
)

var (
	serveAddr    string
	serveProfile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile(serveProfile)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(appConfig.OutputDir, 0o755); err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = ":" + appConfig.Port
		}

		srv := api.NewServer(appConfig, pipeline.New(profile, logger), logger)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Listen(addr) }()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-sig:
		}

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to :$PORT)")
	serveCmd.Flags().StringVar(&serveProfile, "profile", "", "Report profile YAML (defaults to REPORT_PROFILE or the built-in profile)")
	rootCmd.AddCommand(serveCmd)
}
