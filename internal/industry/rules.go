package industry

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// GeneralLabel is reported when no category matches
const GeneralLabel = "General"

// GeneralDescription accompanies the General label
const GeneralDescription = "General data cleaning suggestions based on detected data quality issues."

// Category is one industry with the column keywords that identify it
type Category struct {
	Key         string   `yaml:"key"`
	Label       string   `yaml:"label"`
	Keywords    []string `yaml:"keywords"`
	Weight      int      `yaml:"weight"`
	Suggestions []string `yaml:"suggestions"`
	Description string   `yaml:"description"`
}

// Boost adds points to a category when the filename or the column set
// looks like it belongs there
type Boost struct {
	Category         string   `yaml:"category"`
	Points           int      `yaml:"points"`
	FilenameContains []string `yaml:"filename_contains"`
	ColumnKeywords   []string `yaml:"column_keywords"`
	MinColumnMatches int      `yaml:"min_column_matches"`
}

// RuleSet is the ordered category table. Earlier categories win ties.
type RuleSet struct {
	Categories []Category `yaml:"categories"`
	Boosts     []Boost    `yaml:"boosts"`
}

// DefaultRuleSet returns the built-in categories
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Categories: []Category{
			{
				Key:         "retail_ecommerce",
				Label:       "Retail/E-commerce",
				Keywords:    []string{"product", "customer", "order", "sku", "price", "sales", "purchase", "cart", "inventory"},
				Weight:      1,
				Suggestions: []string{"deduplicate_customers", "standardize_addresses", "normalize_phone_numbers"},
				Description: "Retail data often contains duplicate customer records, inconsistent addresses, and varied phone number formats.",
			},
			{
				Key:         "finance_banking",
				Label:       "Finance/Banking",
				Keywords:    []string{"account", "transaction", "balance", "credit", "debit", "loan", "interest", "currency"},
				Weight:      1,
				Suggestions: []string{"validate_accounts", "detect_fraud_patterns", "standardize_transactions"},
				Description: "Financial data requires account validation, fraud pattern detection, and transaction standardization.",
			},
			{
				Key:         "healthcare",
				Label:       "Healthcare",
				Keywords:    []string{"patient", "doctor", "diagnosis", "treatment", "medical", "hospital", "clinic", "insurance", "claim"},
				Weight:      1,
				Suggestions: []string{"anonymize_data", "standardize_medical_codes", "validate_demographics"},
				Description: "Healthcare data needs anonymization for HIPAA compliance, medical code standardization, and demographic validation.",
			},
			{
				Key:         "manufacturing",
				Label:       "Manufacturing",
				Keywords:    []string{"production", "machine", "sensor", "equipment", "maintenance", "quality", "defect"},
				Weight:      1,
				Suggestions: []string{"smooth_sensor_data", "standardize_units", "interpolate_downtime"},
				Description: "Manufacturing data often has sensor noise, unit inconsistencies, and equipment downtime gaps.",
			},
			{
				Key:         "demand_planning",
				Label:       "Demand Planning/Business Forecasting",
				Keywords:    []string{"demand", "forecast", "planning", "inventory", "supply", "chain", "stock", "reorder"},
				Weight:      1,
				Suggestions: []string{"fill_time_gaps", "adjust_seasonality", "normalize_promotions"},
				Description: "Demand planning data requires time series gap filling, seasonal adjustments, and promotion impact normalization.",
			},
			{
				Key:         "education",
				Label:       "Education",
				Keywords:    []string{"student", "course", "grade", "teacher", "school", "enrollment", "semester", "subject", "exam", "attendance"},
				Weight:      1,
				Suggestions: []string{"anonymize_data", "deduplicate_customers"},
				Description: "Education data holds student personal information that should be anonymized, and student records are often repeated across enrollments.",
			},
		},
		Boosts: []Boost{
			{
				Category:         "education",
				Points:           3,
				FilenameContains: []string{"edu", "school", "course", "student", "university", "college", "curso", "escuela", "alumno"},
			},
			{
				Category: "education",
				Points:   2,
				ColumnKeywords: []string{
					"course", "curso", "grade", "nota", "student", "alumno", "teacher", "profesor",
					"semester", "semestre", "credit", "credito", "asignatura", "subject",
				},
				MinColumnMatches: 3,
			},
		},
	}
}

// LoadRuleSet reads a rule set from a YAML file
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	return ParseRuleSet(data)
}

// ParseRuleSet decodes and validates a YAML rule set
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}
	for i := range rs.Categories {
		if rs.Categories[i].Weight == 0 {
			rs.Categories[i].Weight = 1
		}
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks that categories are named and boosts point at them
func (rs *RuleSet) Validate() error {
	if len(rs.Categories) == 0 {
		return errors.New("rule set has no categories")
	}
	keys := make(map[string]bool, len(rs.Categories))
	for _, c := range rs.Categories {
		if c.Key == "" || c.Label == "" {
			return fmt.Errorf("category %q: key and label are required", c.Key)
		}
		if keys[c.Key] {
			return fmt.Errorf("duplicate category key %q", c.Key)
		}
		if c.Weight < 0 {
			return fmt.Errorf("category %q: weight must not be negative", c.Key)
		}
		keys[c.Key] = true
	}
	for _, b := range rs.Boosts {
		if !keys[b.Category] {
			return fmt.Errorf("boost references unknown category %q", b.Category)
		}
	}
	return nil
}

// Category looks a category up by key
func (rs *RuleSet) Category(key string) (Category, bool) {
	for _, c := range rs.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
