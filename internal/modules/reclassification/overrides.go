package reclassification

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// validCategories guards override files against typos: an override may
// only point at a category the models actually consume.
var validCategories = map[Category]bool{
	CategoryTotalAssets:              true,
	CategoryTreasuryAssets:           true,
	CategoryReceivables:              true,
	CategoryInventory:                true,
	CategoryOtherCyclicalAssets:      true,
	CategoryNonCurrentAssets:         true,
	CategoryOtherCyclicalLiabilities: true,
	CategoryPayables:                 true,
	CategoryTreasuryLiabilities:      true,
	CategoryNonCurrentLiabilities:    true,
	CategoryEquity:                   true,
	CategoryRevenue:                  true,
	CategoryCOGS:                     true,
	CategoryEBIT:                     true,
	CategoryFinancialExpenses:        true,
	CategoryPretaxIncome:             true,
	CategoryIncomeTax:                true,
	CategoryNetIncome:                true,
	CategoryOther:                    true,
}

// LoadOverrides reads a JSON file of account code to category names and
// merges it over the built-in mapping table, so chart-of-accounts changes
// do not require a rebuild. Called once at startup, before any
// classification runs.
//
// File format:
//
//	{"1.01.05": "receivables", "2.01.06": "other_cyclical_liabilities"}
func LoadOverrides(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read account mapping overrides: %w", err)
	}

	var overrides map[string]string
	if err := json.Unmarshal(content, &overrides); err != nil {
		return fmt.Errorf("invalid account mapping overrides %s: %w", path, err)
	}

	return MergeOverrides(overrides)
}

// MergeOverrides applies account code to category overrides on top of the
// built-in table. Mapping a code to "other" removes a built-in entry.
// All entries are validated before any is applied.
func MergeOverrides(overrides map[string]string) error {
	cleaned := make(map[string]Category, len(overrides))
	for code, name := range overrides {
		code = strings.TrimSpace(code)
		category := Category(strings.TrimSpace(name))
		if code == "" {
			return fmt.Errorf("account mapping override with empty code")
		}
		if !validCategories[category] {
			return fmt.Errorf("unknown category %q for account code %s", name, code)
		}
		cleaned[code] = category
	}

	for code, category := range cleaned {
		if category == CategoryOther {
			delete(accountMapping, code)
			continue
		}
		accountMapping[code] = category
	}
	return nil
}
