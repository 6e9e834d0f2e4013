package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vantage",
	Short: "Vantage - 팩터 기반 주식 랭킹 엔진",
	Long: `Vantage Unified CLI

Value / Quality / Momentum / Volatility 팩터로 유니버스 전 종목을
정규화, 집계, 합산하여 순위와 분위(percentile bucket)를 매깁니다.

Usage:
  go run ./cmd/vantage [command]

Examples:
  go run ./cmd/vantage rank --top 20
  go run ./cmd/vantage rank --sector "Information Technology"
  go run ./cmd/vantage issuer AAPL
  go run ./cmd/vantage api
  go run ./cmd/vantage config show`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_CONFIG or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
