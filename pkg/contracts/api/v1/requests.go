// Package api contains the HTTP contracts of the DataCleanr API.
// Version v1 represents the current stable API version.
//
// Every request can be sent as JSON or as form fields, so the same structs
// carry both json and form tags.
package api

import (
	"net/http"
	"strings"
)

// FileRequest addresses one uploaded file
type FileRequest struct {
	FileID string `json:"file_id" form:"file_id" validate:"required,fileid"`
}

// Bind normalizes the request after decoding
func (req *FileRequest) Bind(r *http.Request) error {
	req.FileID = strings.TrimSpace(req.FileID)
	return nil
}

// CleanRequest selects the cleaning steps to run on a file
type CleanRequest struct {
	FileID string `json:"file_id" form:"file_id" validate:"required,fileid"`

	RemoveDuplicates bool   `json:"remove_duplicates" form:"remove_duplicates"`
	HarmonizeColumns bool   `json:"harmonize_columns" form:"harmonize_columns"`
	HandleMissing    string `json:"handle_missing" form:"handle_missing" validate:"omitempty,oneof=none drop fill_mean fill_zero"`
	TrimWhitespace   bool   `json:"trim_whitespace" form:"trim_whitespace"`
	StandardizeDates bool   `json:"standardize_dates" form:"standardize_dates"`
	ReorderColumns   bool   `json:"reorder_columns" form:"reorder_columns"`

	// Retail
	DeduplicateCustomers  bool `json:"deduplicate_customers" form:"deduplicate_customers"`
	StandardizeAddresses  bool `json:"standardize_addresses" form:"standardize_addresses"`
	NormalizePhoneNumbers bool `json:"normalize_phone_numbers" form:"normalize_phone_numbers"`

	// Finance
	ValidateAccounts        bool `json:"validate_accounts" form:"validate_accounts"`
	DetectFraudPatterns     bool `json:"detect_fraud_patterns" form:"detect_fraud_patterns"`
	StandardizeTransactions bool `json:"standardize_transactions" form:"standardize_transactions"`

	// Healthcare
	AnonymizeData           bool `json:"anonymize_data" form:"anonymize_data"`
	StandardizeMedicalCodes bool `json:"standardize_medical_codes" form:"standardize_medical_codes"`
	ValidateDemographics    bool `json:"validate_demographics" form:"validate_demographics"`

	// Manufacturing
	SmoothSensorData    bool `json:"smooth_sensor_data" form:"smooth_sensor_data"`
	StandardizeUnits    bool `json:"standardize_units" form:"standardize_units"`
	InterpolateDowntime bool `json:"interpolate_downtime" form:"interpolate_downtime"`

	// Demand planning
	FillTimeGaps        bool `json:"fill_time_gaps" form:"fill_time_gaps"`
	AdjustSeasonality   bool `json:"adjust_seasonality" form:"adjust_seasonality"`
	NormalizePromotions bool `json:"normalize_promotions" form:"normalize_promotions"`
}

// Bind normalizes the request after decoding
func (req *CleanRequest) Bind(r *http.Request) error {
	req.FileID = strings.TrimSpace(req.FileID)
	req.HandleMissing = strings.ToLower(strings.TrimSpace(req.HandleMissing))
	if req.HandleMissing == "" {
		req.HandleMissing = "none"
	}
	return nil
}

// CleanIssuesRequest asks for the automatic fix of analyzed issues. IssueIDs
// are the ids from the last analysis; "issue-<n>" picks the n-th issue of
// the report. AnalysisReport, when sent, replaces the stored report.
type CleanIssuesRequest struct {
	FileID         string   `json:"file_id" form:"file_id" validate:"required,fileid"`
	IssueIDs       []string `json:"issue_ids" form:"issue_ids" validate:"required,min=1,dive,required"`
	AnalysisReport []Issue  `json:"analysis_report,omitempty" form:"-"`
}

// Bind normalizes the request after decoding
func (req *CleanIssuesRequest) Bind(r *http.Request) error {
	req.FileID = strings.TrimSpace(req.FileID)
	ids := make([]string, 0, len(req.IssueIDs))
	for _, id := range req.IssueIDs {
		for _, part := range strings.Split(id, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
	}
	req.IssueIDs = ids
	return nil
}

// DownloadRequest selects a cleaned file. Format is csv or xlsx, checked
// after the session is found.
type DownloadRequest struct {
	FileID string `json:"file_id" validate:"required,fileid"`
	Format string `json:"format"`
}
