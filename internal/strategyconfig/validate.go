package strategyconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/vantage/backend/internal/selection"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Ranking + Factors ===
	sel, err := cfg.ToSelectionConfig()
	if err != nil {
		return err
	}
	if err := sel.Validate(); err != nil {
		var ce *selection.ConfigError
		if errors.As(err, &ce) {
			return ValidationError{yamlField(ce.Field), ce.Message}
		}
		return err
	}

	return nil
}

// Warn returns non-fatal recommendations
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	w := cfg.Ranking.Weights
	for _, fw := range []struct {
		name   string
		weight float64
	}{
		{"value", w.Value},
		{"quality", w.Quality},
		{"momentum", w.Momentum},
		{"volatility", w.Volatility},
	} {
		if fw.weight == 0 {
			warnings = append(warnings, Warning{
				Code:    "ZERO_WEIGHT",
				Message: fmt.Sprintf("%s weight is 0: 점수에 반영되지 않음", fw.name),
			})
		}
	}

	if cfg.Ranking.Buckets == 1 {
		warnings = append(warnings, Warning{
			Code:    "SINGLE_BUCKET",
			Message: "buckets = 1: 모든 종목이 같은 구간",
		})
	}

	return warnings
}

// yamlField maps engine field paths onto the YAML layout
func yamlField(field string) string {
	switch {
	case field == "membership":
		return "factors"
	case strings.HasPrefix(field, "membership."):
		return "factors." + strings.TrimPrefix(field, "membership.")
	default:
		return "ranking." + field
	}
}
