package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vantage/backend/internal/brain"
	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/internal/selection"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "유니버스 랭킹 실행 및 출력",
	Long: `유니버스 전체를 한 번 수집·랭킹하고 결과 표를 출력합니다.

순위는 항상 전체 배치 기준이며, --sector 필터는 표시만 제한합니다.

Example:
  go run ./cmd/vantage rank
  go run ./cmd/vantage rank --top 25 --sort rank
  go run ./cmd/vantage rank --sector Energy
  go run ./cmd/vantage rank --json > ranking.json`,
	RunE: runRank,
}

var (
	rankSector   string
	rankSort     string
	rankTop      int
	rankJSON     bool
	rankWarnings bool
)

func init() {
	rootCmd.AddCommand(rankCmd)

	// Flags
	rankCmd.Flags().StringVar(&rankSector, "sector", selection.AllSectors, "섹터 필터 (정확히 일치)")
	rankCmd.Flags().StringVar(&rankSort, "sort", "rank", "정렬 (rank|ticker)")
	rankCmd.Flags().IntVar(&rankTop, "top", 0, "상위 N개만 출력 (0 = 전체)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "JSON 출력")
	rankCmd.Flags().BoolVar(&rankWarnings, "warnings", false, "경고 전체 출력")
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	snap, err := a.orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("ranking run: %w", err)
	}

	rows, err := viewRows(snap.Result.Rows, rankSector, rankSort, rankTop)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rankJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"run_at":      snap.RunAt,
			"config_hash": snap.ConfigHash,
			"sector":      rankSector,
			"count":       len(rows),
			"rows":        rows,
			"warnings":    snap.Result.Warnings,
		})
	}

	printRankTable(out, snap, rows)
	printWarningSummary(out, snap.Result.Warnings, rankWarnings)
	return nil
}

// viewRows applies the presentation filter, order and limit
func viewRows(rows []contracts.RankedRow, sector, order string, top int) ([]contracts.RankedRow, error) {
	filtered := selection.FilterBySector(rows, sector)

	switch order {
	case "", "rank":
		filtered = selection.SortByRank(filtered)
	case "ticker":
		filtered = selection.SortByTicker(filtered)
	default:
		return nil, fmt.Errorf("invalid --sort %q (valid: rank, ticker)", order)
	}

	if top > 0 && len(filtered) > top {
		filtered = filtered[:top]
	}
	return filtered, nil
}

func printRankTable(w io.Writer, snap *brain.Snapshot, rows []contracts.RankedRow) {
	PrintHeader(w, "Vantage Ranking")
	PrintKeyValue(w, "Run", snap.RunAt.Format(time.RFC3339), 10)
	PrintKeyValue(w, "Universe", fmt.Sprintf("%s (%d issuers, %d ranked)", snap.UniverseSource, len(snap.Result.Rows), snap.Result.RankedCount()), 10)
	PrintKeyValue(w, "Fetch", fmt.Sprintf("%d ok / %d failed", snap.Fetch.Succeeded, snap.Fetch.Failed), 10)
	PrintKeyValue(w, "Strategy", snap.ConfigHash[:12], 10)
	PrintSeparator(w)
	fmt.Fprintln(w)

	// each factor gets a score column and its rank within the batch
	columns := []string{"Rank", "Ticker", "Name", "Sector", "Value", "V#", "Quality", "Q#", "Momentum", "M#", "Volat.", "Vol#", "Score", "Bucket"}
	widths := []int{5, 7, 24, 22, 6, 4, 7, 4, 8, 4, 6, 4, 6, 11}
	PrintTableHeader(w, columns, widths)

	for _, row := range rows {
		cells := []string{
			formatRank(row.Rank, row.IsRanked()),
			row.Issuer.Ticker,
			row.Issuer.Name,
			row.Issuer.Sector,
		}
		for _, f := range contracts.AllFactors {
			score := row.Factors.Get(f)
			cells = append(cells, formatValue(score, 3), formatRank(row.FactorRanks.Get(f), score.Valid))
		}
		cells = append(cells, formatValue(row.Composite, 3), row.Bucket)
		PrintTableRow(w, cells, widths)
	}
	fmt.Fprintln(w)
}

// printWarningSummary prints counts per code; all warnings when full is set
func printWarningSummary(w io.Writer, warnings []contracts.MissingDataWarning, full bool) {
	if len(warnings) == 0 {
		return
	}

	counts := make(map[string]int)
	for _, warn := range warnings {
		counts[warn.Code]++
	}
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		PrintWarning(w, fmt.Sprintf("%s × %d", code, counts[code]))
	}
	if full {
		for _, warn := range warnings {
			fmt.Fprintf(w, "   • %s\n", warn.String())
		}
	}
}
