package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "유니버스 조회",
	Long: `유니버스 공급자(UNIVERSE_TICKERS, S&P 500 구성 종목 표, 또는 DB)에서
종목 목록을 가져와 출력합니다. 시장 데이터는 수집하지 않습니다.

Example:
  go run ./cmd/vantage universe
  UNIVERSE_TICKERS=AAPL,MSFT go run ./cmd/vantage universe`,
	RunE: runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	universe, err := a.universe.Universe(ctx)
	if err != nil {
		return fmt.Errorf("universe: %w", err)
	}

	w := cmd.OutOrStdout()
	PrintHeader(w, fmt.Sprintf("Universe: %s (%d issuers)", universe.Source, universe.Count()))

	widths := []int{7, 36, 28}
	PrintTableHeader(w, []string{"Ticker", "Name", "Sector"}, widths)
	for _, is := range universe.Issuers {
		PrintTableRow(w, []string{is.Ticker, is.Name, is.Sector}, widths)
	}
	return nil
}
