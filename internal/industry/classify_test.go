package industry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	rs := DefaultRuleSet()

	tests := []struct {
		name       string
		filename   string
		columns    []string
		industry   string
		confidence float64
		features   []string
	}{
		{
			name:       "healthcare",
			filename:   "visits.csv",
			columns:    []string{"patient_id", "diagnosis", "treatment"},
			industry:   "Healthcare",
			confidence: 1,
			features:   []string{"patient", "diagnosis", "treatment"},
		},
		{
			name:       "no matches",
			filename:   "data.csv",
			columns:    []string{"foo", "bar"},
			industry:   GeneralLabel,
			confidence: 0,
			features:   []string{},
		},
		{
			name:       "shared keyword splits confidence",
			filename:   "data.csv",
			columns:    []string{"Product", "inventory_level"},
			industry:   "Retail/E-commerce",
			confidence: 0.67,
			features:   []string{"product", "inventory"},
		},
		{
			name:       "tie goes to first declared",
			filename:   "data.csv",
			columns:    []string{"sku", "loan"},
			industry:   "Retail/E-commerce",
			confidence: 0.5,
			features:   []string{"sku"},
		},
		{
			name:       "features are capped",
			filename:   "shop.csv",
			columns:    []string{"product", "customer", "order", "sku", "price", "sales"},
			industry:   "Retail/E-commerce",
			confidence: 1,
			features:   []string{"product", "customer", "order", "sku", "price"},
		},
		{
			name:       "filename boost",
			filename:   "Escuela_2024.xlsx",
			columns:    []string{"foo"},
			industry:   "Education",
			confidence: 1,
			features:   []string{},
		},
		{
			name:       "course columns boost",
			filename:   "data.csv",
			columns:    []string{"alumno", "nota", "asignatura", "price"},
			industry:   "Education",
			confidence: 0.67,
			features:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rs.Classify(tt.filename, tt.columns)
			assert.Equal(t, tt.industry, got.Industry)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.features, got.Features)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestSuggestions(t *testing.T) {
	rs := DefaultRuleSet()

	tags, desc := rs.Suggestions(rs.Classify("", []string{"account_no", "balance"}))
	assert.Equal(t, []string{"validate_accounts", "detect_fraud_patterns", "standardize_transactions"}, tags)
	assert.Contains(t, desc, "account validation")

	tags, desc = rs.Suggestions(rs.Classify("", []string{"x"}))
	assert.Empty(t, tags)
	assert.Equal(t, GeneralDescription, desc)
}

func TestMerge(t *testing.T) {
	got := Merge([]string{"remove_duplicates", "handle_missing"}, []string{"handle_missing", "anonymize_data"})
	assert.Equal(t, []string{"remove_duplicates", "handle_missing", "anonymize_data"}, got)
	assert.Equal(t, []string{}, Merge())
}

func TestParseRuleSet(t *testing.T) {
	rs, err := ParseRuleSet([]byte(`
categories:
  - key: logistics
    label: Logistics
    keywords: [shipment, carrier, route]
    weight: 2
    suggestions: [standardize_addresses]
    description: Shipping data.
  - key: energy
    label: Energy
    keywords: [meter, kwh]
boosts:
  - category: energy
    points: 5
    filename_contains: [grid]
`))
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Categories[1].Weight, "weight defaults to one")

	got := rs.Classify("routes.csv", []string{"shipment_id", "carrier", "meter"})
	assert.Equal(t, "Logistics", got.Industry)
	assert.Equal(t, 4, got.Scores["logistics"])
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)

	got = rs.Classify("grid_load.csv", []string{"meter"})
	assert.Equal(t, "Energy", got.Industry)
	assert.Equal(t, 6, got.Scores["energy"])
}

func TestParseRuleSet_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":          `categories: []`,
		"missing label":  "categories:\n  - key: a\n",
		"duplicate keys": "categories:\n  - {key: a, label: A}\n  - {key: a, label: B}\n",
		"unknown boost":  "categories:\n  - {key: a, label: A}\nboosts:\n  - {category: b, points: 1}\n",
		"bad yaml":       "categories: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRuleSet([]byte(doc))
			assert.Error(t, err)
		})
	}
}
