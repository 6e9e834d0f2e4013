package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/vantage/backend/internal/selection"
	"github.com/wonny/vantage/backend/internal/strategyconfig"
	"github.com/wonny/vantage/backend/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "랭킹 전략 설정 조회/검증",
	Long: `랭킹 전략(YAML)을 출력하거나 검증합니다.

Subcommands:
  show      - 현재 전략과 해시 출력
  validate  - 전략 파일 검증 (권장 위반은 경고)

Example:
  go run ./cmd/vantage config show
  go run ./cmd/vantage config validate configs/strategy/source_compat.yaml`,
}

var (
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "현재 전략 출력",
		RunE:  runConfigShow,
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "전략 파일 검증",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigValidate,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := strategyFile
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.StrategyConfig
	}

	strategy, hash, err := loadStrategy(path)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	source := path
	if source == "" {
		source = "(built-in default)"
	}
	PrintHeader(w, "Strategy: "+strategy.Meta.StrategyID)
	PrintKeyValue(w, "Source", source, 6)
	PrintKeyValue(w, "Hash", hash, 6)
	PrintSeparator(w)

	return printStrategy(w, strategy)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	strategy, _, err := strategyconfig.Load(args[0])
	if err != nil {
		return fmt.Errorf("invalid strategy %s: %w", args[0], err)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return err
	}

	for _, warn := range strategyconfig.Warn(strategy) {
		PrintWarning(w, fmt.Sprintf("[%s] %s", warn.Code, warn.Message))
	}

	sel, err := strategy.ToSelectionConfig()
	if err != nil {
		return err
	}
	labels := selection.BucketLabels(sel.Buckets)

	PrintSuccess(w, fmt.Sprintf("%s is valid (strategy %s, hash %s)", args[0], strategy.Meta.StrategyID, hash[:12]))
	PrintKeyValue(w, "Buckets", strings.Join(labels, ", "), 7)
	return nil
}

func printStrategy(w io.Writer, strategy *strategyconfig.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(strategy); err != nil {
		return fmt.Errorf("encode strategy: %w", err)
	}
	return enc.Close()
}
