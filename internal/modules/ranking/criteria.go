package ranking

// Criteria holds the weights of the composite ranking. They are
// normalized to sum to one before use, so callers can pass any positive
// proportions.
type Criteria struct {
	ValueCreation float64 `json:"value_creation"` // EVA%
	FutureValue   float64 `json:"future_value"`   // EFV%
	Upside        float64 `json:"upside"`
	Profitability float64 `json:"profitability"` // ROIC
	Liquidity     float64 `json:"liquidity"`
}

// DefaultCriteria mirrors the built-in weighting used when no custom
// criteria are configured.
func DefaultCriteria() Criteria {
	return Criteria{
		ValueCreation: 0.3,
		FutureValue:   0.3,
		Upside:        0.2,
		Profitability: 0.1,
		Liquidity:     0.1,
	}
}

// Normalized returns a copy with weights scaled to sum to one. A zero
// total falls back to the defaults.
func (c Criteria) Normalized() Criteria {
	total := c.ValueCreation + c.FutureValue + c.Upside + c.Profitability + c.Liquidity
	if total <= 0 {
		return DefaultCriteria()
	}
	return Criteria{
		ValueCreation: c.ValueCreation / total,
		FutureValue:   c.FutureValue / total,
		Upside:        c.Upside / total,
		Profitability: c.Profitability / total,
		Liquidity:     c.Liquidity / total,
	}
}

// minMaxScaler scales a metric column to [0, 1]. It must be fit on the
// full company collection: per-company scaling would erase the ordering
// the composite score depends on.
type minMaxScaler struct {
	min    float64
	max    float64
	fitted bool
}

func fitScaler(values []float64) minMaxScaler {
	if len(values) == 0 {
		return minMaxScaler{}
	}
	s := minMaxScaler{min: values[0], max: values[0], fitted: true}
	for _, v := range values[1:] {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	return s
}

// scale maps v into [0, 1]. A degenerate column (all values equal, or no
// fit data) scales to the 0.5 midpoint so it cannot dominate the score.
func (s minMaxScaler) scale(v float64) float64 {
	if !s.fitted || s.max == s.min {
		return 0.5
	}
	return (v - s.min) / (s.max - s.min)
}
