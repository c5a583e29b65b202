package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/cashier-report-converter/internal/api"
)

// Version and BuildDate are set at build time:
//
//	go build -ldflags "-X 'github.com/insightdelivered/cashier-report-converter/cmd.Version=2.0.1'"
var (
	Version   = api.Version
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cashier-report-converter v%s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
