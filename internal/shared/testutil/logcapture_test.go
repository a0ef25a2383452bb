package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture(t *testing.T) {
	logger, capture := NewTestLogger(t)

	logger.With(slog.String("component", "svc")).Info("uploaded file", slog.Int("rows", 3))
	logger.Warn("slow export")

	rec, ok := capture.Find("uploaded")
	require.True(t, ok)
	assert.Equal(t, "svc", rec.Attrs["component"])
	assert.Equal(t, int64(3), rec.Attrs["rows"])

	assert.Equal(t, 1, capture.CountAtLevel(slog.LevelWarn))
	assert.Len(t, capture.Records(), 2)

	_, ok = capture.Find("missing")
	assert.False(t, ok)
}

func TestLoadCSV(t *testing.T) {
	tbl := LoadCSV(t, MessyCSV)
	assert.Equal(t, 4, tbl.NumRows())
	assert.Equal(t, []string{"Customer Name", "Age", "Order Date", "Amount"}, tbl.Names())
}
