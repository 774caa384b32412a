// Package fleuriet computes the working-capital indicators of the Fleuriet
// model and classifies companies into its six financial structure types.
package fleuriet

import (
	"time"

	"github.com/brvalue/fleuriet/internal/domain"
)

// StructureType identifies one of the six Fleuriet financial structures.
type StructureType int

const (
	StructureUnclassified StructureType = 0
	StructureMaximumRisk  StructureType = 1
	StructureOptimal      StructureType = 2
	StructureHighRisk     StructureType = 3
	StructureSolid        StructureType = 4
	StructureWorst        StructureType = 5
	StructureElevatedRisk StructureType = 6
)

// Label returns the human-readable name of the structure type.
func (s StructureType) Label() string {
	switch s {
	case StructureMaximumRisk:
		return "maximum risk"
	case StructureOptimal:
		return "optimal"
	case StructureHighRisk:
		return "high risk"
	case StructureSolid:
		return "solid"
	case StructureWorst:
		return "worst"
	case StructureElevatedRisk:
		return "elevated risk"
	default:
		return "unclassified"
	}
}

// Indicators holds the Fleuriet working-capital indicators for one period.
// T equals CDG minus NCG by construction.
type Indicators struct {
	ReferenceDate time.Time     `json:"reference_date"`
	NCG           float64       `json:"ncg"`
	CDG           float64       `json:"cdg"`
	T             float64       `json:"t"`
	Structure     StructureType `json:"structure"`

	// Liquidity and cycle indicators. Undefined when a denominator is
	// zero (no revenue, no cost of goods sold).
	ILD            domain.Value `json:"ild"`
	ReceivableDays domain.Value `json:"receivable_days"`
	InventoryDays  domain.Value `json:"inventory_days"`
	PayableDays    domain.Value `json:"payable_days"`
	FinancialCycle domain.Value `json:"financial_cycle"`

	// Period return on invested capital at the statutory tax rate.
	// Undefined when the period's capital employed is not positive.
	ROIC domain.Value `json:"roic"`
}
