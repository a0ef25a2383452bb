package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"datacleanr/internal/exporter"
	"datacleanr/internal/industry"
	"datacleanr/internal/infrastructure"
	"datacleanr/internal/quality"
	"datacleanr/internal/session"
	"datacleanr/internal/shared/testutil"
	"datacleanr/internal/table"
	api "datacleanr/pkg/contracts/api/v1"
	"datacleanr/pkg/contracts/events"
)

type serviceFixture struct {
	svc       *CleaningService
	store     *session.MemoryStore
	exporter  *exporter.Exporter
	publisher *MockEventPublisher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	exp, err := exporter.New(t.TempDir(), logger)
	require.NoError(t, err)

	pub := &MockEventPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return()

	store := session.NewMemoryStore()
	svc := NewCleaningService(store, exp, industry.DefaultRuleSet(), pub, infrastructure.NoopBusinessMetrics(), logger)
	return &serviceFixture{svc: svc, store: store, exporter: exp, publisher: pub}
}

func (f *serviceFixture) upload(t *testing.T) string {
	t.Helper()
	resp, err := f.svc.Upload(context.Background(), "orders.csv", []byte(testutil.MessyCSV))
	require.NoError(t, err)
	return resp.FileID
}

func (f *serviceFixture) eventTypes() []events.MessageType {
	var types []events.MessageType
	for _, call := range f.publisher.Calls {
		types = append(types, call.Arguments.Get(1).(events.Event).Type)
	}
	return types
}

func TestCleaningService_Upload(t *testing.T) {
	f := newServiceFixture(t)

	resp, err := f.svc.Upload(context.Background(), "orders.csv", []byte(testutil.MessyCSV))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.FileID)
	assert.Equal(t, "orders.csv", resp.Filename)
	assert.Equal(t, 4, resp.Rows)
	assert.Equal(t, []string{"Customer Name", "Age", "Order Date", "Amount"}, resp.Columns)
	require.Len(t, resp.Preview, 4)
	assert.Equal(t, " Alice ", resp.Preview[0]["Customer Name"])
	assert.Nil(t, resp.Preview[1]["Age"])

	n, err := f.svc.ActiveSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []events.MessageType{events.MessageTypeSessionUploaded}, f.eventTypes())
}

func TestCleaningService_UploadErrors(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "notes.txt", []byte("a,b\n1,2\n"))
	assert.True(t, errors.Is(err, table.ErrUnsupportedFormat))

	_, err = f.svc.Upload(ctx, "empty.csv", nil)
	var dfe *table.DataFormatError
	assert.True(t, errors.As(err, &dfe))

	_, err = f.svc.Upload(ctx, " ", []byte("a\n1\n"))
	assert.ErrorIs(t, err, ErrNoFilename)

	n, _ := f.svc.ActiveSessions(ctx)
	assert.Zero(t, n, "failed uploads open no session")
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCleaningService_UnknownSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Suggest(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.DetectIndustry(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Analyze(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Clean(ctx, &api.CleanRequest{FileID: "missing", HandleMissing: "none"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = f.svc.DownloadPath(ctx, "missing", "csv")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.DeleteSession(ctx, "missing"), ErrSessionNotFound)
}

func TestCleaningService_SuggestAndIndustry(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.upload(t)

	sug, err := f.svc.Suggest(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"remove_duplicates", "harmonize_columns", "handle_missing", "trim_whitespace", "standardize_dates",
	}, sug.Suggestions)

	ind, err := f.svc.DetectIndustry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Retail/E-commerce", ind.Industry)
	assert.Equal(t, 1.0, ind.Confidence)
	assert.Equal(t, []string{"customer", "order"}, ind.Features)

	combined, err := f.svc.IndustrySuggestions(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Retail/E-commerce", combined.Industry)
	assert.Equal(t, []string{
		"remove_duplicates", "harmonize_columns", "handle_missing", "trim_whitespace", "standardize_dates",
		"deduplicate_customers", "standardize_addresses", "normalize_phone_numbers",
	}, combined.Suggestions)
	assert.NotEmpty(t, combined.Description)
}

func TestCleaningService_DetectIndustry_General(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Upload(ctx, "data.csv", []byte("alpha,beta\n1,2\n"))
	require.NoError(t, err)

	ind, err := f.svc.DetectIndustry(ctx, resp.FileID)
	require.NoError(t, err)
	assert.Equal(t, industry.GeneralLabel, ind.Industry)
	assert.Zero(t, ind.Confidence)
	assert.NotNil(t, ind.Features)
	assert.Empty(t, ind.Features)
}

func TestCleaningService_Clean(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.upload(t)

	resp, err := f.svc.Clean(ctx, &api.CleanRequest{
		FileID:            id,
		RemoveDuplicates:  true,
		HandleMissing:     "none",
		TrimWhitespace:    true,
		AdjustSeasonality: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Rows)
	assert.Len(t, resp.Preview, 3)
	assert.Equal(t, "Alice", resp.Preview[0]["Customer Name"])
	assert.Equal(t, "/api/download/"+id+"?format=csv", resp.DownloadURLs.CSV)
	assert.Equal(t, "/api/download/"+id+"?format=xlsx", resp.DownloadURLs.XLSX)
	assert.Empty(t, resp.ExportErrors)

	require.Len(t, resp.Operations, 3)
	assert.Equal(t, "remove_duplicates", resp.Operations[0].Step)
	assert.Equal(t, "success", resp.Operations[0].Status)
	assert.Equal(t, 4, resp.Operations[0].RowsBefore)
	assert.Equal(t, 3, resp.Operations[0].RowsAfter)
	assert.Equal(t, "adjust_seasonality", resp.Operations[2].Step)
	assert.Equal(t, "skipped", resp.Operations[2].Status)

	sess, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, sess.IsCleaned())
	assert.Equal(t, 4, sess.Original.NumRows(), "the upload is kept as it was")

	path, name, err := f.svc.DownloadPath(ctx, id, "xlsx")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, "cleaned_orders.xlsx", name)

	assert.Contains(t, f.eventTypes(), events.MessageTypeSessionCleaned)
}

func TestCleaningService_CleanAlwaysStartsFromUpload(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.upload(t)

	_, err := f.svc.Clean(ctx, &api.CleanRequest{FileID: id, RemoveDuplicates: true, HandleMissing: "none"})
	require.NoError(t, err)

	resp, err := f.svc.Clean(ctx, &api.CleanRequest{FileID: id, HandleMissing: "none"})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Rows)
	assert.Empty(t, resp.Operations)
}

func TestCleaningService_CleanRejectsUnknownStrategy(t *testing.T) {
	f := newServiceFixture(t)
	id := f.upload(t)

	_, err := f.svc.Clean(context.Background(), &api.CleanRequest{FileID: id, HandleMissing: "median"})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestCleaningService_AnalyzeAndCleanIssues(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.upload(t)

	report, err := f.svc.Analyze(ctx, id)
	require.NoError(t, err)
	assert.False(t, report.IsCleaned)
	assert.Equal(t, 4, report.TotalRows)
	assert.Equal(t, 4, report.TotalColumns)
	assert.Equal(t, len(report.AnalysisReport), report.IssuesFound)

	var dupID string
	seen := map[string]bool{}
	for _, is := range report.AnalysisReport {
		assert.NotEmpty(t, is.ID)
		assert.False(t, seen[is.ID], "issue ids are unique")
		seen[is.ID] = true
		if is.Type == quality.TypeDuplicateRows {
			dupID = is.ID
		}
	}
	require.NotEmpty(t, dupID)

	resp, err := f.svc.CleanIssues(ctx, &api.CleanIssuesRequest{FileID: id, IssueIDs: []string{dupID, "no-such-issue"}})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Rows)
	assert.NotNil(t, resp.Operations)
	require.Len(t, resp.Fixes, 2)
	assert.Equal(t, "success", resp.Fixes[0].Status)
	assert.Equal(t, quality.TypeDuplicateRows, resp.Fixes[0].Type)
	assert.Equal(t, "skipped", resp.Fixes[1].Status)

	again, err := f.svc.Analyze(ctx, id)
	require.NoError(t, err)
	assert.True(t, again.IsCleaned)
	assert.Equal(t, 3, again.TotalRows)

	_, _, err = f.svc.DownloadPath(ctx, id, "csv")
	assert.NoError(t, err)
}

func TestCleaningService_CleanIssues_EchoedReport(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.upload(t)

	// records without ids or columns, as older clients send them
	echoed := []api.Issue{
		{Type: quality.TypeWhitespaceIssues, Severity: "low", Description: "Column 'Customer Name' contains leading/trailing whitespace"},
	}
	resp, err := f.svc.CleanIssues(ctx, &api.CleanIssuesRequest{FileID: id, IssueIDs: []string{"issue-0"}, AnalysisReport: echoed})
	require.NoError(t, err)

	require.Len(t, resp.Fixes, 1)
	assert.Equal(t, "success", resp.Fixes[0].Status)
	assert.Equal(t, "Alice", resp.Preview[0]["Customer Name"])
}

func TestCleaningService_CleanIssues_DiscardsStoredReport(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.upload(t)

	report, err := f.svc.Analyze(ctx, id)
	require.NoError(t, err)
	selector := ""
	for i, is := range report.AnalysisReport {
		if is.Type == quality.TypeDuplicateRows {
			selector = fmt.Sprintf("issue-%d", i)
		}
	}
	require.NotEmpty(t, selector)

	first, err := f.svc.CleanIssues(ctx, &api.CleanIssuesRequest{FileID: id, IssueIDs: []string{selector}})
	require.NoError(t, err)
	require.Len(t, first.Fixes, 1)
	assert.Equal(t, "success", first.Fixes[0].Status)

	sess, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, sess.LastReport)

	// selectors no longer resolve against the report of the replaced table
	second, err := f.svc.CleanIssues(ctx, &api.CleanIssuesRequest{FileID: id, IssueIDs: []string{selector}})
	require.NoError(t, err)
	require.Len(t, second.Fixes, 1)
	assert.Equal(t, "skipped", second.Fixes[0].Status)
	assert.Equal(t, 3, second.Rows)
}

func TestCleaningService_CleanIssues_NoSelection(t *testing.T) {
	f := newServiceFixture(t)
	id := f.upload(t)

	_, err := f.svc.CleanIssues(context.Background(), &api.CleanIssuesRequest{FileID: id})
	assert.ErrorIs(t, err, ErrNoIssuesSelected)
}

func TestCleaningService_DownloadPath(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.upload(t)

	_, _, err := f.svc.DownloadPath(ctx, id, "csv")
	assert.ErrorIs(t, err, ErrExportNotFound, "nothing exported before a clean")

	_, err = f.svc.Clean(ctx, &api.CleanRequest{FileID: id, HandleMissing: "none"})
	require.NoError(t, err)

	path, name, err := f.svc.DownloadPath(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, "cleaned_orders.csv", name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Customer Name,Age,Order Date,Amount")

	_, _, err = f.svc.DownloadPath(ctx, id, "pdf")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestCleaningService_DeleteAndExpire(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.upload(t)

	_, err := f.svc.Clean(ctx, &api.CleanRequest{FileID: id, HandleMissing: "none"})
	require.NoError(t, err)
	csvPath, err := f.exporter.Path(id, exporter.FormatCSV)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSession(ctx, id))
	assert.NoFileExists(t, csvPath)
	_, err = f.svc.Suggest(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	other := f.upload(t)
	_, err = f.svc.Clean(ctx, &api.CleanRequest{FileID: other, HandleMissing: "none"})
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(ctx, other))

	f.svc.ExpireSession(ctx, other)
	_, err = f.exporter.Path(other, exporter.FormatXLSX)
	assert.ErrorIs(t, err, exporter.ErrNotExported)

	types := f.eventTypes()
	assert.Contains(t, types, events.MessageTypeSessionDeleted)
	assert.Equal(t, events.MessageTypeSessionExpired, types[len(types)-1])
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "cleaned_sales.csv", DownloadName("sales.csv", exporter.FormatCSV))
	assert.Equal(t, "cleaned_report.v2.xlsx", DownloadName("report.v2.xlsx", exporter.FormatXLSX))
	assert.Equal(t, "cleaned_data.csv", DownloadName("data", exporter.FormatCSV))
}
