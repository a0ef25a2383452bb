package api

// MessageResponse is a plain status message
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse describes a freshly uploaded file
type UploadResponse struct {
	FileID   string           `json:"file_id"`
	Filename string           `json:"filename"`
	Preview  []map[string]any `json:"preview"`
	Columns  []string         `json:"columns"`
	Rows     int              `json:"rows"`
}

// SuggestResponse lists suggested cleaning steps
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// IndustryResponse is the outcome of industry detection
type IndustryResponse struct {
	Industry   string   `json:"industry"`
	Confidence float64  `json:"confidence"`
	Features   []string `json:"features"`
}

// IndustrySuggestionsResponse combines generic and industry steps
type IndustrySuggestionsResponse struct {
	Industry    string   `json:"industry"`
	Suggestions []string `json:"suggestions"`
	Description string   `json:"description"`
}

// DownloadURLs point at the exported files of a session
type DownloadURLs struct {
	CSV  string `json:"csv"`
	XLSX string `json:"xlsx"`
}

// OperationResult reports one cleaning step
type OperationResult struct {
	Step       string   `json:"step"`
	Status     string   `json:"status"`
	Columns    []string `json:"columns,omitempty"`
	Message    string   `json:"message,omitempty"`
	RowsBefore int      `json:"rows_before"`
	RowsAfter  int      `json:"rows_after"`
}

// FixResult reports one selected issue
type FixResult struct {
	IssueID string `json:"issue_id"`
	Type    string `json:"type,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CleanResponse is returned by clean and clean-issues. Fixes is only set by
// clean-issues.
type CleanResponse struct {
	Preview      []map[string]any  `json:"preview"`
	DownloadURLs DownloadURLs      `json:"download_urls"`
	Rows         int               `json:"rows"`
	Columns      []string          `json:"columns"`
	Operations   []OperationResult `json:"operations"`
	Fixes        []FixResult       `json:"fixes,omitempty"`
	ExportErrors map[string]string `json:"export_errors,omitempty"`
}

// Issue is one entry of an analysis report
type Issue struct {
	ID             string `json:"id,omitempty"`
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Column         string `json:"column,omitempty"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// AnalyzeResponse is the data quality report of a file
type AnalyzeResponse struct {
	FileID         string  `json:"file_id"`
	IsCleaned      bool    `json:"is_cleaned"`
	TotalRows      int     `json:"total_rows"`
	TotalColumns   int     `json:"total_columns"`
	IssuesFound    int     `json:"issues_found"`
	AnalysisReport []Issue `json:"analysis_report"`
}
