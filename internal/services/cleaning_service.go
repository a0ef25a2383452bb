package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"datacleanr/internal/cleaning"
	"datacleanr/internal/exporter"
	"datacleanr/internal/industry"
	"datacleanr/internal/infrastructure"
	"datacleanr/internal/quality"
	"datacleanr/internal/session"
	"datacleanr/internal/suggest"
	"datacleanr/internal/table"
	api "datacleanr/pkg/contracts/api/v1"
	"datacleanr/pkg/contracts/events"
)

// CleaningService runs every file operation of the API against the
// session store
type CleaningService struct {
	store     session.Store
	engine    *cleaning.Engine
	analyzer  *quality.Analyzer
	fixer     *quality.Fixer
	rules     *industry.RuleSet
	exporter  *exporter.Exporter
	publisher EventPublisher
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewCleaningService creates the service. A nil rule set uses the default
// rules, a nil publisher drops events and nil metrics record nothing.
func NewCleaningService(store session.Store, exp *exporter.Exporter, rules *industry.RuleSet, publisher EventPublisher, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *CleaningService {
	if logger == nil {
		logger = slog.Default()
	}
	if rules == nil {
		rules = industry.DefaultRuleSet()
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}

	logger = logger.With(slog.String("component", "cleaning_service"))
	logger.Info("CleaningService initialized",
		slog.String("scratch_dir", exp.Dir()),
		slog.Int("industries", len(rules.Categories)))

	return &CleaningService{
		store:     store,
		engine:    cleaning.NewEngine(logger),
		analyzer:  quality.NewAnalyzer(),
		fixer:     quality.NewFixer(logger),
		rules:     rules,
		exporter:  exp,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Upload parses a file and opens a session for it
func (s *CleaningService) Upload(ctx context.Context, filename string, data []byte) (*api.UploadResponse, error) {
	ctx, span := infrastructure.StartSpan(ctx, "CleaningService.Upload",
		attribute.String("filename", filename),
		attribute.Int("size_bytes", len(data)))
	defer span.End()

	if strings.TrimSpace(filename) == "" {
		return nil, ErrNoFilename
	}

	t, err := table.Load(filename, data)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "upload rejected",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return nil, err
	}

	sess := session.New(filename, t)
	ctx = infrastructure.WithFileID(ctx, sess.ID)
	if err := s.store.Put(ctx, sess); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	format, _ := table.DetectFormat(filename)
	s.metrics.RecordUpload(ctx, string(format))
	s.publisher.Publish(ctx, events.NewEvent(events.MessageTypeSessionUploaded, sess.ID, events.UploadedData{
		Filename: filename,
		Rows:     t.NumRows(),
		Columns:  t.NumCols(),
	}))

	s.logger.InfoContext(ctx, "file uploaded",
		slog.String("file_id", sess.ID),
		slog.String("filename", filename),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))

	return &api.UploadResponse{
		FileID:   sess.ID,
		Filename: filename,
		Preview:  table.Preview(t, table.PreviewRows),
		Columns:  t.Names(),
		Rows:     t.NumRows(),
	}, nil
}

// Suggest lists the generic cleaning steps worth running on the upload
func (s *CleaningService) Suggest(ctx context.Context, fileID string) (*api.SuggestResponse, error) {
	sess, err := s.get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return &api.SuggestResponse{Suggestions: suggest.Suggest(sess.Original)}, nil
}

// DetectIndustry classifies the upload by its column names and filename
func (s *CleaningService) DetectIndustry(ctx context.Context, fileID string) (*api.IndustryResponse, error) {
	sess, err := s.get(ctx, fileID)
	if err != nil {
		return nil, err
	}

	c := s.rules.Classify(sess.Filename, sess.Original.Names())
	s.logger.DebugContext(ctx, "industry detected",
		slog.String("file_id", fileID),
		slog.String("industry", c.Industry),
		slog.Float64("confidence", c.Confidence))

	features := c.Features
	if features == nil {
		features = []string{}
	}
	return &api.IndustryResponse{
		Industry:   c.Industry,
		Confidence: c.Confidence,
		Features:   features,
	}, nil
}

// IndustrySuggestions merges the generic suggestions with the steps of the
// detected industry
func (s *CleaningService) IndustrySuggestions(ctx context.Context, fileID string) (*api.IndustrySuggestionsResponse, error) {
	sess, err := s.get(ctx, fileID)
	if err != nil {
		return nil, err
	}

	c := s.rules.Classify(sess.Filename, sess.Original.Names())
	tags, description := s.rules.Suggestions(c)

	return &api.IndustrySuggestionsResponse{
		Industry:    c.Industry,
		Suggestions: industry.Merge(suggest.Suggest(sess.Original), tags),
		Description: description,
	}, nil
}

// CleanOptions maps a clean request onto engine options
func CleanOptions(req *api.CleanRequest) cleaning.Options {
	return cleaning.Options{
		RemoveDuplicates: req.RemoveDuplicates,
		HarmonizeColumns: req.HarmonizeColumns,
		HandleMissing:    cleaning.MissingStrategy(req.HandleMissing),
		TrimWhitespace:   req.TrimWhitespace,
		StandardizeDates: req.StandardizeDates,
		ReorderColumns:   req.ReorderColumns,

		DeduplicateCustomers:  req.DeduplicateCustomers,
		StandardizeAddresses:  req.StandardizeAddresses,
		NormalizePhoneNumbers: req.NormalizePhoneNumbers,

		ValidateAccounts:        req.ValidateAccounts,
		DetectFraudPatterns:     req.DetectFraudPatterns,
		StandardizeTransactions: req.StandardizeTransactions,

		AnonymizeData:           req.AnonymizeData,
		StandardizeMedicalCodes: req.StandardizeMedicalCodes,
		ValidateDemographics:    req.ValidateDemographics,

		SmoothSensorData:    req.SmoothSensorData,
		StandardizeUnits:    req.StandardizeUnits,
		InterpolateDowntime: req.InterpolateDowntime,

		FillTimeGaps:        req.FillTimeGaps,
		AdjustSeasonality:   req.AdjustSeasonality,
		NormalizePromotions: req.NormalizePromotions,
	}
}

// Clean runs the requested steps on the original upload, stores the result
// as the session's cleaned table and exports it
func (s *CleaningService) Clean(ctx context.Context, req *api.CleanRequest) (*api.CleanResponse, error) {
	ctx, span := infrastructure.StartSpan(ctx, "CleaningService.Clean", attribute.String("file_id", req.FileID))
	defer span.End()

	opts := CleanOptions(req)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	sess, err := s.get(ctx, req.FileID)
	if err != nil {
		return nil, err
	}

	cleaned, report := s.engine.Clean(ctx, sess.Original, opts)
	for _, step := range report {
		s.metrics.RecordOperation(ctx, step.Step, string(step.Status))
	}

	sess.Cleaned = cleaned
	// the stored report described the previous working table
	sess.LastReport = nil
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(ctx, sess); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to store cleaned table: %w", err)
	}

	resp := s.cleanResponse(ctx, sess.ID, cleaned)
	resp.Operations = operationResults(report)

	s.publisher.Publish(ctx, events.NewEvent(events.MessageTypeSessionCleaned, sess.ID, events.CleanedData{
		Rows:      cleaned.NumRows(),
		Columns:   cleaned.NumCols(),
		Succeeded: report.Count(cleaning.StatusSuccess),
		Skipped:   report.Count(cleaning.StatusSkipped),
		Failed:    report.Count(cleaning.StatusFailed),
	}))

	s.logger.InfoContext(ctx, "file cleaned",
		slog.String("file_id", sess.ID),
		slog.Int("steps", len(report)),
		slog.Int("failed_steps", report.Count(cleaning.StatusFailed)),
		slog.Int("rows_before", sess.Original.NumRows()),
		slog.Int("rows_after", cleaned.NumRows()))

	return resp, nil
}

// Analyze runs the quality checks on the working table and remembers the
// report for CleanIssues
func (s *CleaningService) Analyze(ctx context.Context, fileID string) (*api.AnalyzeResponse, error) {
	ctx, span := infrastructure.StartSpan(ctx, "CleaningService.Analyze", attribute.String("file_id", fileID))
	defer span.End()

	sess, err := s.get(ctx, fileID)
	if err != nil {
		return nil, err
	}

	t := sess.Working()
	issues := s.analyzer.Analyze(t)

	sess.LastReport = issues
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(ctx, sess); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to store analysis report: %w", err)
	}

	bySeverity := make(map[string]int)
	for sev, n := range quality.CountBySeverity(issues) {
		bySeverity[string(sev)] = n
	}
	s.metrics.RecordIssues(ctx, bySeverity)
	s.publisher.Publish(ctx, events.NewEvent(events.MessageTypeSessionAnalyzed, sess.ID, events.AnalyzedData{
		IsCleaned:   sess.IsCleaned(),
		IssuesFound: len(issues),
		BySeverity:  bySeverity,
	}))

	s.logger.InfoContext(ctx, "file analyzed",
		slog.String("file_id", sess.ID),
		slog.Bool("is_cleaned", sess.IsCleaned()),
		slog.Int("issues", len(issues)))

	return &api.AnalyzeResponse{
		FileID:         sess.ID,
		IsCleaned:      sess.IsCleaned(),
		TotalRows:      t.NumRows(),
		TotalColumns:   t.NumCols(),
		IssuesFound:    len(issues),
		AnalysisReport: issuesToContract(issues),
	}, nil
}

// CleanIssues applies the automatic fix of every selected issue to the
// working table. Issues are looked up in the echoed report when one is
// sent, else in the report of the last analysis, which is then discarded
// like after Clean.
func (s *CleaningService) CleanIssues(ctx context.Context, req *api.CleanIssuesRequest) (*api.CleanResponse, error) {
	ctx, span := infrastructure.StartSpan(ctx, "CleaningService.CleanIssues",
		attribute.String("file_id", req.FileID),
		attribute.Int("selected", len(req.IssueIDs)))
	defer span.End()

	if len(req.IssueIDs) == 0 {
		return nil, ErrNoIssuesSelected
	}

	sess, err := s.get(ctx, req.FileID)
	if err != nil {
		return nil, err
	}

	issues := sess.LastReport
	if len(req.AnalysisReport) > 0 {
		issues = issuesFromContract(req.AnalysisReport)
	}

	fixed, fixes := s.fixer.Fix(ctx, sess.Working(), issues, req.IssueIDs)
	for _, fx := range fixes {
		s.metrics.RecordOperation(ctx, "fix_"+fixType(fx), string(fx.Status))
	}

	sess.Cleaned = fixed
	// the stored report described the previous working table
	sess.LastReport = nil
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(ctx, sess); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to store cleaned table: %w", err)
	}

	resp := s.cleanResponse(ctx, sess.ID, fixed)
	resp.Operations = []api.OperationResult{}
	resp.Fixes = fixResults(fixes)

	succeeded, skipped, failed := 0, 0, 0
	for _, fx := range fixes {
		switch fx.Status {
		case cleaning.StatusSuccess:
			succeeded++
		case cleaning.StatusSkipped:
			skipped++
		default:
			failed++
		}
	}
	s.publisher.Publish(ctx, events.NewEvent(events.MessageTypeSessionCleaned, sess.ID, events.CleanedData{
		Rows:      fixed.NumRows(),
		Columns:   fixed.NumCols(),
		Succeeded: succeeded,
		Skipped:   skipped,
		Failed:    failed,
	}))

	s.logger.InfoContext(ctx, "issues cleaned",
		slog.String("file_id", sess.ID),
		slog.Int("selected", len(req.IssueIDs)),
		slog.Int("fixed", succeeded),
		slog.Int("failed", failed))

	return resp, nil
}

// DownloadPath resolves the exported file of a session. It returns the
// path on disk and the attachment name shown to the client.
func (s *CleaningService) DownloadPath(ctx context.Context, fileID, format string) (string, string, error) {
	sess, err := s.get(ctx, fileID)
	if err != nil {
		return "", "", err
	}

	f, err := exporter.ParseFormat(strings.ToLower(format))
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	path, err := s.exporter.Path(sess.ID, f)
	if errors.Is(err, exporter.ErrNotExported) {
		return "", "", ErrExportNotFound
	}
	if err != nil {
		return "", "", err
	}
	return path, DownloadName(sess.Filename, f), nil
}

// DownloadName is the attachment name of an export: the upload's name
// without its extension, prefixed with "cleaned_"
func DownloadName(filename string, f exporter.Format) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return fmt.Sprintf("cleaned_%s.%s", base, f)
}

// DeleteSession drops a session and its exports
func (s *CleaningService) DeleteSession(ctx context.Context, fileID string) error {
	if err := s.store.Delete(ctx, fileID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.removeExports(ctx, fileID)
	s.metrics.RecordSessionsRemoved(ctx, 1, false)
	s.publisher.Publish(ctx, events.NewEvent(events.MessageTypeSessionDeleted, fileID, nil))

	s.logger.InfoContext(ctx, "session deleted", slog.String("file_id", fileID))
	return nil
}

// ExpireSession cleans up after the sweeper evicted a session. It has the
// shape of session.ExpiryHook.
func (s *CleaningService) ExpireSession(ctx context.Context, fileID string) {
	s.removeExports(ctx, fileID)
	s.metrics.RecordSessionsRemoved(ctx, 1, true)
	s.publisher.Publish(ctx, events.NewEvent(events.MessageTypeSessionExpired, fileID, nil))
}

// ActiveSessions counts stored sessions
func (s *CleaningService) ActiveSessions(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func (s *CleaningService) removeExports(ctx context.Context, fileID string) {
	if err := s.exporter.Remove(fileID); err != nil {
		s.logger.WarnContext(ctx, "failed to remove exports",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()))
	}
}

func (s *CleaningService) get(ctx context.Context, fileID string) (*session.Session, error) {
	sess, err := s.store.Get(ctx, fileID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

// cleanResponse exports t and builds the shared part of clean responses.
// Export failures are reported, not returned.
func (s *CleaningService) cleanResponse(ctx context.Context, fileID string, t *table.Table) *api.CleanResponse {
	result := s.exporter.Export(ctx, fileID, t)

	resp := &api.CleanResponse{
		Preview: table.Preview(t, table.PreviewRows),
		DownloadURLs: api.DownloadURLs{
			CSV:  DownloadURL(fileID, exporter.FormatCSV),
			XLSX: DownloadURL(fileID, exporter.FormatXLSX),
		},
		Rows:    t.NumRows(),
		Columns: t.Names(),
	}
	if result.HasErrors() {
		resp.ExportErrors = result.Errors()
	}
	return resp
}

// DownloadURL is the API path serving an export
func DownloadURL(fileID string, f exporter.Format) string {
	return fmt.Sprintf("/api/download/%s?format=%s", fileID, f)
}

func fixType(fx quality.FixResult) string {
	if fx.Type == "" {
		return "unknown"
	}
	return fx.Type
}

func operationResults(report cleaning.Report) []api.OperationResult {
	out := make([]api.OperationResult, len(report))
	for i, r := range report {
		out[i] = api.OperationResult{
			Step:       r.Step,
			Status:     string(r.Status),
			Columns:    r.Columns,
			Message:    r.Message,
			RowsBefore: r.RowsBefore,
			RowsAfter:  r.RowsAfter,
		}
	}
	return out
}

func fixResults(fixes []quality.FixResult) []api.FixResult {
	out := make([]api.FixResult, len(fixes))
	for i, fx := range fixes {
		out[i] = api.FixResult{
			IssueID: fx.IssueID,
			Type:    fx.Type,
			Status:  string(fx.Status),
			Message: fx.Message,
		}
	}
	return out
}

func issuesToContract(issues []quality.Issue) []api.Issue {
	out := make([]api.Issue, len(issues))
	for i, is := range issues {
		out[i] = api.Issue{
			ID:             is.ID,
			Type:           is.Type,
			Severity:       string(is.Severity),
			Column:         is.Column,
			Description:    is.Description,
			Recommendation: is.Recommendation,
		}
	}
	return out
}

// describedColumn finds the column named in an issue description, for
// echoed reports written before issues carried a column field
var describedColumn = regexp.MustCompile(`Column '(.+?)'`)

func issuesFromContract(issues []api.Issue) []quality.Issue {
	out := make([]quality.Issue, len(issues))
	for i, is := range issues {
		column := is.Column
		if column == "" {
			if m := describedColumn.FindStringSubmatch(is.Description); m != nil {
				column = m[1]
			}
		}
		out[i] = quality.Issue{
			ID:             is.ID,
			Type:           is.Type,
			Severity:       quality.Severity(is.Severity),
			Column:         column,
			Description:    is.Description,
			Recommendation: is.Recommendation,
		}
	}
	return out
}
