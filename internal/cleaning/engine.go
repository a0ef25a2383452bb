package cleaning

import (
	"context"
	"fmt"
	"log/slog"

	"datacleanr/internal/table"
)

// Step names, also the request switch names
const (
	StepRemoveDuplicates = "remove_duplicates"
	StepHarmonizeColumns = "harmonize_columns"
	StepHandleMissing    = "handle_missing"
	StepTrimWhitespace   = "trim_whitespace"
	StepStandardizeDates = "standardize_dates"
	StepReorderColumns   = "reorder_columns"

	StepDeduplicateCustomers    = "deduplicate_customers"
	StepStandardizeAddresses    = "standardize_addresses"
	StepNormalizePhoneNumbers   = "normalize_phone_numbers"
	StepValidateAccounts        = "validate_accounts"
	StepDetectFraudPatterns     = "detect_fraud_patterns"
	StepStandardizeTransactions = "standardize_transactions"
	StepAnonymizeData           = "anonymize_data"
	StepStandardizeMedicalCodes = "standardize_medical_codes"
	StepValidateDemographics    = "validate_demographics"
	StepSmoothSensorData        = "smooth_sensor_data"
	StepStandardizeUnits        = "standardize_units"
	StepInterpolateDowntime     = "interpolate_downtime"
	StepFillTimeGaps            = "fill_time_gaps"
	StepAdjustSeasonality       = "adjust_seasonality"
	StepNormalizePromotions     = "normalize_promotions"
)

// outcome is what a step reports back besides the table
type outcome struct {
	columns []string
	message string
	skipped bool
}

func skip(format string, args ...any) outcome {
	return outcome{skipped: true, message: fmt.Sprintf(format, args...)}
}

func done(columns []string, format string, args ...any) outcome {
	return outcome{columns: columns, message: fmt.Sprintf(format, args...)}
}

type stepFunc func(t *table.Table, o Options) (*table.Table, outcome, error)

type step struct {
	name string
	flag func(*Options) *bool
	run  stepFunc
}

// pipeline is the fixed execution order
var pipeline = []step{
	{StepRemoveDuplicates, func(o *Options) *bool { return &o.RemoveDuplicates }, removeDuplicates},
	{StepHarmonizeColumns, func(o *Options) *bool { return &o.HarmonizeColumns }, harmonizeColumns},
	{StepHandleMissing, nil, handleMissing},
	{StepTrimWhitespace, func(o *Options) *bool { return &o.TrimWhitespace }, trimWhitespace},
	{StepStandardizeDates, func(o *Options) *bool { return &o.StandardizeDates }, standardizeDates},
	{StepReorderColumns, func(o *Options) *bool { return &o.ReorderColumns }, reorderColumns},

	{StepDeduplicateCustomers, func(o *Options) *bool { return &o.DeduplicateCustomers }, deduplicateCustomers},
	{StepStandardizeAddresses, func(o *Options) *bool { return &o.StandardizeAddresses }, standardizeAddresses},
	{StepNormalizePhoneNumbers, func(o *Options) *bool { return &o.NormalizePhoneNumbers }, normalizePhoneNumbers},
	{StepValidateAccounts, func(o *Options) *bool { return &o.ValidateAccounts }, validateAccounts},
	{StepDetectFraudPatterns, func(o *Options) *bool { return &o.DetectFraudPatterns }, notImplemented},
	{StepStandardizeTransactions, func(o *Options) *bool { return &o.StandardizeTransactions }, standardizeTransactions},
	{StepAnonymizeData, func(o *Options) *bool { return &o.AnonymizeData }, anonymizeData},
	{StepStandardizeMedicalCodes, func(o *Options) *bool { return &o.StandardizeMedicalCodes }, standardizeMedicalCodes},
	{StepValidateDemographics, func(o *Options) *bool { return &o.ValidateDemographics }, validateDemographics},
	{StepSmoothSensorData, func(o *Options) *bool { return &o.SmoothSensorData }, smoothSensorData},
	{StepStandardizeUnits, func(o *Options) *bool { return &o.StandardizeUnits }, standardizeUnits},
	{StepInterpolateDowntime, func(o *Options) *bool { return &o.InterpolateDowntime }, interpolateDowntime},
	{StepFillTimeGaps, func(o *Options) *bool { return &o.FillTimeGaps }, fillTimeGaps},
	{StepAdjustSeasonality, func(o *Options) *bool { return &o.AdjustSeasonality }, notImplemented},
	{StepNormalizePromotions, func(o *Options) *bool { return &o.NormalizePromotions }, notImplemented},
}

// Steps returns every step name in execution order
func Steps() []string {
	names := make([]string, len(pipeline))
	for i, s := range pipeline {
		names[i] = s.name
	}
	return names
}

func (s step) requested(o Options) bool {
	if s.flag == nil {
		return o.HandleMissing != "" && o.HandleMissing != MissingNone
	}
	return *s.flag(&o)
}

// Engine runs the cleaning pipeline
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a cleaning engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "cleaning_engine"))}
}

// Clean applies the requested steps in pipeline order and returns the
// cleaned copy. The input table is not modified. A step that fails leaves
// the table as it was before the step.
func (e *Engine) Clean(ctx context.Context, t *table.Table, opts Options) (*table.Table, Report) {
	current := t.Clone()
	report := Report{}

	for _, s := range pipeline {
		if !s.requested(opts) {
			continue
		}

		result := StepResult{Step: s.name, RowsBefore: current.NumRows()}
		if err := ctx.Err(); err != nil {
			result.Status = StatusFailed
			result.Message = err.Error()
			result.RowsAfter = result.RowsBefore
			report = append(report, result)
			continue
		}

		next, out, err := e.runStep(s, current, opts)
		switch {
		case err != nil:
			result.Status = StatusFailed
			result.Message = err.Error()
			e.logger.WarnContext(ctx, "cleaning step failed",
				slog.String("step", s.name),
				slog.String("error", err.Error()))
		case out.skipped:
			result.Status = StatusSkipped
			result.Message = out.message
		default:
			current = next
			result.Status = StatusSuccess
			result.Columns = out.columns
			result.Message = out.message
		}
		result.RowsAfter = current.NumRows()
		report = append(report, result)

		e.logger.DebugContext(ctx, "cleaning step finished",
			slog.String("step", s.name),
			slog.String("status", string(result.Status)),
			slog.Int("rows_before", result.RowsBefore),
			slog.Int("rows_after", result.RowsAfter))
	}

	return current, report
}

// runStep works on a copy so a failed step leaves no partial changes
func (e *Engine) runStep(s step, t *table.Table, opts Options) (next *table.Table, out outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, out, err = nil, outcome{}, fmt.Errorf("step %s panicked: %v", s.name, r)
		}
	}()
	return s.run(t.Clone(), opts)
}

func notImplemented(t *table.Table, _ Options) (*table.Table, outcome, error) {
	return t, skip("no transformation is defined for this operation"), nil
}
