package cleaning

import "fmt"

// MissingStrategy selects how null cells are handled
type MissingStrategy string

const (
	MissingNone     MissingStrategy = "none"
	MissingDrop     MissingStrategy = "drop"
	MissingFillMean MissingStrategy = "fill_mean"
	MissingFillZero MissingStrategy = "fill_zero"
)

// Valid reports whether s is a known strategy. Empty means none.
func (s MissingStrategy) Valid() bool {
	switch s {
	case "", MissingNone, MissingDrop, MissingFillMean, MissingFillZero:
		return true
	}
	return false
}

// Options are the cleaning switches of one clean request
type Options struct {
	RemoveDuplicates bool
	HarmonizeColumns bool
	HandleMissing    MissingStrategy
	TrimWhitespace   bool
	StandardizeDates bool
	ReorderColumns   bool

	// retail
	DeduplicateCustomers  bool
	StandardizeAddresses  bool
	NormalizePhoneNumbers bool

	// finance
	ValidateAccounts        bool
	DetectFraudPatterns     bool
	StandardizeTransactions bool

	// healthcare
	AnonymizeData           bool
	StandardizeMedicalCodes bool
	ValidateDemographics    bool

	// manufacturing
	SmoothSensorData    bool
	StandardizeUnits    bool
	InterpolateDowntime bool

	// demand planning
	FillTimeGaps        bool
	AdjustSeasonality   bool
	NormalizePromotions bool
}

// Validate rejects unknown missing-value strategies
func (o Options) Validate() error {
	if !o.HandleMissing.Valid() {
		return fmt.Errorf("unknown handle_missing strategy %q", o.HandleMissing)
	}
	return nil
}

// FromTags enables the steps named by suggestion tags. Unknown tags are
// ignored; handle_missing maps to fill_mean.
func FromTags(tags []string) Options {
	var o Options
	for _, tag := range tags {
		if tag == StepHandleMissing {
			o.HandleMissing = MissingFillMean
			continue
		}
		for _, s := range pipeline {
			if s.name == tag && s.flag != nil {
				*s.flag(&o) = true
			}
		}
	}
	return o
}
