package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vantage/backend/internal/brain"
	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/internal/selection"
)

// issuerCmd represents the issuer command
var issuerCmd = &cobra.Command{
	Use:   "issuer [ticker]",
	Short: "종목 상세 (팩터 점수, 지표, 설명)",
	Long: `랭킹을 실행한 뒤 한 종목의 순위, 팩터별 점수·순위, 원시 지표와
회사 설명을 출력합니다. 순위는 전체 배치 기준입니다.

Example:
  go run ./cmd/vantage issuer AAPL
  go run ./cmd/vantage issuer brk.b`,
	Args: cobra.ExactArgs(1),
	RunE: runIssuer,
}

func init() {
	rootCmd.AddCommand(issuerCmd)
}

func runIssuer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ticker := strings.ToUpper(strings.ReplaceAll(args[0], ".", "-"))

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	snap, err := a.orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("ranking run: %w", err)
	}

	row, ok := selection.Find(snap.Result.Rows, ticker)
	if !ok {
		return fmt.Errorf("issuer %s is not in the universe", ticker)
	}

	printIssuer(cmd.OutOrStdout(), snap, row)
	return nil
}

func printIssuer(w io.Writer, snap *brain.Snapshot, row *contracts.RankedRow) {
	raw := snap.Raw[row.Issuer.Ticker]
	ranked := len(snap.Result.Rows)

	PrintHeader(w, fmt.Sprintf("%s  %s", row.Issuer.Ticker, row.Issuer.Name))
	PrintKeyValue(w, "Sector", row.Issuer.Sector, 12)
	if raw != nil && raw.Profile.Industry != "" {
		PrintKeyValue(w, "Industry", raw.Profile.Industry, 12)
	}
	if raw != nil {
		PrintKeyValue(w, "Market cap", formatValue(raw.Profile.MarketCap, 0), 12)
	}
	PrintKeyValue(w, "Rank", fmt.Sprintf("%s / %d", formatRank(row.Rank, row.IsRanked()), ranked), 12)
	PrintKeyValue(w, "Score", formatValue(row.Composite, 4), 12)
	PrintKeyValue(w, "Percentile", formatPercent(row.Percentile), 12)
	PrintKeyValue(w, "Bucket", row.Bucket, 12)
	PrintKeyValue(w, "As of", snap.RunAt.Format(time.RFC3339), 12)
	PrintSeparator(w)

	widths := []int{11, 7, 6}
	PrintTableHeader(w, []string{"Factor", "Score", "Rank"}, widths)
	for _, f := range contracts.AllFactors {
		score := row.Factors.Get(f)
		PrintTableRow(w, []string{string(f), formatValue(score, 3), formatRank(row.FactorRanks.Get(f), score.Valid)}, widths)
	}
	fmt.Fprintln(w)

	widths = []int{15, 12, 10}
	PrintTableHeader(w, []string{"Metric", "Raw", "Normalized"}, widths)
	for _, m := range contracts.AllMetrics {
		var rawValue contracts.Value
		if raw != nil {
			rawValue = raw.Get(m)
		}
		PrintTableRow(w, []string{string(m), formatValue(rawValue, 4), formatValue(row.Normalized.Get(m), 3)}, widths)
	}

	if row.Issuer.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, row.Issuer.Description)
	}
}
