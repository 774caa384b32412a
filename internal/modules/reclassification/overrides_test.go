package reclassification

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restoreMapping snapshots the mapping table so override tests do not
// leak into the classification tests.
func restoreMapping(t *testing.T) {
	t.Helper()
	snapshot := make(map[string]Category, len(accountMapping))
	for code, category := range accountMapping {
		snapshot[code] = category
	}
	t.Cleanup(func() { accountMapping = snapshot })
}

func TestMergeOverridesAddsAndReplaces(t *testing.T) {
	restoreMapping(t)

	err := MergeOverrides(map[string]string{
		"1.01.05": "receivables",          // new code
		"2.01.02": "treasury_liabilities", // replaces a built-in entry
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryReceivables, Classify("1.01.05"))
	assert.Equal(t, CategoryTreasuryLiabilities, Classify("2.01.02"))
}

func TestMergeOverridesOtherRemovesEntry(t *testing.T) {
	restoreMapping(t)

	require.NoError(t, MergeOverrides(map[string]string{"3.05": "other"}))
	assert.Equal(t, CategoryOther, Classify("3.05"))
}

func TestMergeOverridesRejectsUnknownCategory(t *testing.T) {
	restoreMapping(t)

	err := MergeOverrides(map[string]string{"1.01.03": "accounts_receivable"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")

	// The built-in entry survives the rejected override
	assert.Equal(t, CategoryReceivables, Classify("1.01.03"))
}

func TestLoadOverridesFromFile(t *testing.T) {
	restoreMapping(t)

	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1.01.09": "other_cyclical_assets"}`), 0o644))

	require.NoError(t, LoadOverrides(path))
	assert.Equal(t, CategoryOtherCyclicalAssets, Classify("1.01.09"))
}

func TestLoadOverridesMissingFile(t *testing.T) {
	err := LoadOverrides(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
