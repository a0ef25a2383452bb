package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "datacleanr/internal/errors"
	"datacleanr/internal/infrastructure"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	var seen, trace string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetReqID(r.Context())
		trace = infrastructure.GetTraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, trace)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "caller-id", seen)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, testLogger(), apierrors.NewErrorHandler(testLogger(), false))
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	request := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/upload", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:5000").Code)

	second := request("10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, second.Code, "same host, different port shares a bucket")
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, float64(429), body["status"])
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["error_code"])

	assert.Equal(t, http.StatusOK, request("10.0.0.2:5000").Code, "other clients keep their own budget")
	assert.Equal(t, 2, rl.Clients())
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1, testLogger(), apierrors.NewErrorHandler(testLogger(), false))
	rl.idleTTL = time.Minute

	start := time.Now()
	assert.True(t, rl.allow("a", start))
	assert.True(t, rl.allow("b", start.Add(30*time.Second)))
	assert.Equal(t, 2, rl.Clients())

	assert.True(t, rl.allow("c", start.Add(2*time.Minute)))
	assert.Equal(t, 1, rl.Clients(), "idle buckets are dropped")
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	wildcard := CORS(CORSConfig{AllowedOrigins: []string{"*"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec = httptest.NewRecorder()
	wildcard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMaxBodySize(t *testing.T) {
	var readErr error
	h := MaxBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	var tooLarge *http.MaxBytesError
	assert.True(t, errors.As(readErr, &tooLarge))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.NoError(t, readErr)
}

func TestValidator(t *testing.T) {
	type request struct {
		FileID   string `json:"file_id" validate:"required,fileid"`
		Strategy string `json:"handle_missing" validate:"omitempty,oneof=none drop fill_mean fill_zero"`
	}
	v := NewValidator()

	assert.NoError(t, v.ValidateStruct(request{FileID: "0f8fad5b-d9cb-469f-a165-70867728950e"}))

	err := v.ValidateStruct(request{FileID: "../etc/passwd", Strategy: "guess"})
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	details, ok := apiErr.Details.(apierrors.ValidationErrors)
	require.True(t, ok)
	require.Len(t, details.Errors, 2)
	assert.Equal(t, "file_id", details.Errors[0].Field)
	assert.Equal(t, "handle_missing", details.Errors[1].Field)
	assert.Contains(t, details.Errors[1].Message, "none, drop")
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator("application/json", "multipart/form-data")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		method      string
		contentType string
		want        int
	}{
		{http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{http.MethodPost, "multipart/form-data; boundary=x", http.StatusOK},
		{http.MethodPost, "", http.StatusBadRequest},
		{http.MethodPost, "text/plain", http.StatusUnsupportedMediaType},
		{http.MethodDelete, "", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/", nil)
		if tt.contentType != "" {
			req.Header.Set("Content-Type", tt.contentType)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "%s %q", tt.method, tt.contentType)
	}
}

func TestOTelMiddleware_RecordsRoute(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{ServiceName: "test"}, testLogger())
	require.NoError(t, err)

	mw := NewOTelMiddleware(providers, infrastructure.NoopBusinessMetrics())

	r := chi.NewRouter()
	r.Use(mw.Handler)
	r.Get("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/7", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
