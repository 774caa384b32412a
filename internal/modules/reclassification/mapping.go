// Package reclassification maps raw CVM statement rows into the account
// categories used by the working-capital and valuation models.
package reclassification

import "strings"

// Category identifies a reclassified account bucket.
type Category string

const (
	CategoryTotalAssets              Category = "total_assets"
	CategoryTreasuryAssets           Category = "treasury_assets"
	CategoryReceivables              Category = "receivables"
	CategoryInventory                Category = "inventory"
	CategoryOtherCyclicalAssets      Category = "other_cyclical_assets"
	CategoryNonCurrentAssets         Category = "non_current_assets"
	CategoryOtherCyclicalLiabilities Category = "other_cyclical_liabilities"
	CategoryPayables                 Category = "payables"
	CategoryTreasuryLiabilities      Category = "treasury_liabilities"
	CategoryNonCurrentLiabilities    Category = "non_current_liabilities"
	CategoryEquity                   Category = "equity"
	CategoryRevenue                  Category = "revenue"
	CategoryCOGS                     Category = "cogs"
	CategoryEBIT                     Category = "ebit"
	CategoryFinancialExpenses        Category = "financial_expenses"
	CategoryPretaxIncome             Category = "pretax_income"
	CategoryIncomeTax                Category = "income_tax"
	CategoryNetIncome                Category = "net_income"
	CategoryOther                    Category = "other"
)

// accountMapping maps CVM account codes to categories.
//
// Codes follow the standardized CVM chart: 1.x are assets, 2.x liabilities
// and equity, 3.x the income statement. The table pins one level per
// category: detail rows below a mapped code carry redundant subtotal
// information and fall into the "other" bucket, which prevents double
// counting. Long-term debt (2.02.01) is not mapped separately: it stays
// inside non-current liabilities (2.02) so that the working-capital
// sources include all long-term funding.
var accountMapping = map[string]Category{
	"1":       CategoryTotalAssets,
	"1.01.01": CategoryTreasuryAssets, // cash and equivalents
	"1.01.02": CategoryTreasuryAssets, // short-term financial investments
	"1.01.03": CategoryReceivables,
	"1.01.04": CategoryInventory,
	"1.01.06": CategoryOtherCyclicalAssets, // recoverable taxes
	"1.01.07": CategoryOtherCyclicalAssets, // prepaid expenses
	"1.01.08": CategoryOtherCyclicalAssets, // other current assets
	"1.02":    CategoryNonCurrentAssets,
	"2.01.01": CategoryOtherCyclicalLiabilities, // social and labor obligations
	"2.01.02": CategoryPayables,
	"2.01.03": CategoryOtherCyclicalLiabilities, // tax obligations
	"2.01.04": CategoryTreasuryLiabilities,      // short-term loans and financing
	"2.01.05": CategoryOtherCyclicalLiabilities, // other current liabilities
	"2.02":    CategoryNonCurrentLiabilities,
	"2.03":    CategoryEquity,
	"3.01":    CategoryRevenue,
	"3.02":    CategoryCOGS,
	"3.05":    CategoryEBIT,
	"3.07":    CategoryFinancialExpenses,
	"3.09":    CategoryPretaxIncome,
	"3.10":    CategoryIncomeTax,
	"3.11":    CategoryNetIncome,
}

// Classify resolves an account code to its category by exact match against
// the mapping table. Unmapped codes fall into CategoryOther.
func Classify(accountCode string) Category {
	code := strings.TrimSpace(accountCode)
	if category, ok := accountMapping[code]; ok {
		return category
	}
	return CategoryOther
}
