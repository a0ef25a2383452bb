package http

import (
	"context"

	api "datacleanr/pkg/contracts/api/v1"
)

// CleaningServiceInterface defines the file operations behind the API
type CleaningServiceInterface interface {
	Upload(ctx context.Context, filename string, data []byte) (*api.UploadResponse, error)
	Suggest(ctx context.Context, fileID string) (*api.SuggestResponse, error)
	DetectIndustry(ctx context.Context, fileID string) (*api.IndustryResponse, error)
	IndustrySuggestions(ctx context.Context, fileID string) (*api.IndustrySuggestionsResponse, error)
	Clean(ctx context.Context, req *api.CleanRequest) (*api.CleanResponse, error)
	Analyze(ctx context.Context, fileID string) (*api.AnalyzeResponse, error)
	CleanIssues(ctx context.Context, req *api.CleanIssuesRequest) (*api.CleanResponse, error)
	DownloadPath(ctx context.Context, fileID, format string) (path, name string, err error)
	DeleteSession(ctx context.Context, fileID string) error
}
