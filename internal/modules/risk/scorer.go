// Package risk scores credit risk from working-capital structure using the
// Prado discriminant model.
package risk

import (
	"math"

	"github.com/brvalue/fleuriet/internal/modules/fleuriet"
	"github.com/brvalue/fleuriet/internal/modules/reclassification"
)

// Class is an ordered credit risk class, from minimal to elevated risk.
type Class string

const (
	ClassA Class = "A" // minimal risk
	ClassB Class = "B"
	ClassC Class = "C"
	ClassD Class = "D" // attention
	ClassE Class = "E" // elevated risk
)

// Description returns the risk level the class stands for.
func (c Class) Description() string {
	switch c {
	case ClassA:
		return "minimal risk"
	case ClassB:
		return "low risk"
	case ClassC:
		return "moderate risk"
	case ClassD:
		return "attention"
	case ClassE:
		return "elevated risk"
	default:
		return "unknown"
	}
}

// Score is the result of the discriminant evaluation for one period.
// When the inputs cannot support the ratios (zero total assets, revenue or
// working-capital need), InsufficientData is set and Z and Class carry no
// meaning.
type Score struct {
	Z                float64 `json:"z"`
	Class            Class   `json:"class"`
	InsufficientData bool    `json:"insufficient_data"`

	// The five discriminant inputs, kept for transparency in reports.
	X1 float64 `json:"x1"` // CDG / total assets
	X2 float64 `json:"x2"` // NCG / revenue
	X3 float64 `json:"x3"` // structure type ordinal
	X4 float64 `json:"x4"` // T / |NCG|
	X5 float64 `json:"x5"` // short-term debt / total assets
}

// Discriminant coefficients estimated on Brazilian listed companies.
const (
	coefIntercept = 1.887
	coefX1        = 0.899
	coefX2        = 0.971
	coefX3        = -0.444
	coefX4        = 0.055
	coefX5        = -0.980
)

// Classify evaluates the discriminant for one period. The structure-type
// ordinal enters the formula directly: riskier structures carry higher
// ordinals and the negative coefficient pulls Z down.
func Classify(period reclassification.ReclassifiedPeriod, ind fleuriet.Indicators) Score {
	if period.TotalAssets == 0 || period.Revenue == 0 || ind.NCG == 0 {
		return Score{InsufficientData: true}
	}

	x1 := ind.CDG / period.TotalAssets
	x2 := ind.NCG / period.Revenue
	x3 := float64(ind.Structure)
	x4 := ind.T / math.Abs(ind.NCG)
	x5 := period.TreasuryLiabilities / period.TotalAssets

	z := coefIntercept + coefX1*x1 + coefX2*x2 + coefX3*x3 + coefX4*x4 + coefX5*x5

	return Score{
		Z:     z,
		Class: classForZ(z),
		X1:    x1,
		X2:    x2,
		X3:    x3,
		X4:    x4,
		X5:    x5,
	}
}

// classForZ maps the discriminant value to a risk class.
func classForZ(z float64) Class {
	switch {
	case z > 2.675:
		return ClassA
	case z > 2.0:
		return ClassB
	case z > 1.5:
		return ClassC
	case z > 1.0:
		return ClassD
	default:
		return ClassE
	}
}
