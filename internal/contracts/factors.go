package contracts

// Factor is a named dimension of comparison
type Factor string

const (
	FactorValue      Factor = "value"
	FactorQuality    Factor = "quality"
	FactorMomentum   Factor = "momentum"
	FactorVolatility Factor = "volatility"
)

// AllFactors in canonical order
var AllFactors = []Factor{FactorValue, FactorQuality, FactorMomentum, FactorVolatility}

// FactorScores holds the four factor scores of one issuer
type FactorScores struct {
	Value      Value `json:"value"`
	Quality    Value `json:"quality"`
	Momentum   Value `json:"momentum"`
	Volatility Value `json:"volatility"`
}

// Get returns the score of a factor
func (f FactorScores) Get(factor Factor) Value {
	switch factor {
	case FactorValue:
		return f.Value
	case FactorQuality:
		return f.Quality
	case FactorMomentum:
		return f.Momentum
	case FactorVolatility:
		return f.Volatility
	default:
		return Absent()
	}
}

// With returns a copy with one factor replaced
func (f FactorScores) With(factor Factor, v Value) FactorScores {
	switch factor {
	case FactorValue:
		f.Value = v
	case FactorQuality:
		f.Quality = v
	case FactorMomentum:
		f.Momentum = v
	case FactorVolatility:
		f.Volatility = v
	}
	return f
}

// PresentCount returns the number of available factor scores
func (f FactorScores) PresentCount() int {
	n := 0
	for _, factor := range AllFactors {
		if f.Get(factor).Valid {
			n++
		}
	}
	return n
}
