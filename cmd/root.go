// Package cmd holds the command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
)

var (
	logLevel  string
	logFormat string
	appConfig *config.App
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cashier-report-converter",
	Short: "Cashier transaction report PDF to CSV converter",
	Long: `Cashier Transaction Report Converter
by Insight Delivered (QEA AutoLens)

Rebuilds the transaction table of a parking cashier report
("Relatório de Transações") from the PDF text layer and writes one
row per transaction:

  Caixa;Transação;T. Fiscais;Sessão;Data;Tarifa;V. Estadia;Abono;V. Abonado;V. Lançado;Ticket;Forma PGTO

Examples:
  # Convert a report next to the input (movimento_extraido.csv)
  cashier-report-converter convert movimento.pdf

  # Excel output with a custom report profile
  cashier-report-converter convert --format=xlsx --profile=profile.yaml movimento.pdf

  # Show the raw page text the parser sees
  cashier-report-converter preview --pages=2 movimento.pdf

  # Run the HTTP API
  cashier-report-converter serve --addr=:8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appConfig = config.LoadApp()
		level := appConfig.Level()
		if cmd.Flags().Changed("log-level") {
			level = config.ParseLevel(logLevel)
		}
		logger = newLogger(logFormat, level)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

func newLogger(format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// loadProfile reads the report profile from path, falling back to
// REPORT_PROFILE and then the built-in profile.
func loadProfile(path string) (*config.Profile, error) {
	if path == "" && appConfig != nil {
		path = appConfig.ProfilePath
	}
	return config.LoadProfile(path)
}

// backendOrDefault returns the flag value or PDF_BACKEND.
func backendOrDefault(flag string) string {
	if flag != "" || appConfig == nil {
		return flag
	}
	return appConfig.PDFBackend
}
