package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacleanr/internal/session"
	"datacleanr/internal/shared/testutil"
)

type fixedClients int

func (c fixedClients) ClientCount() int { return int(c) }

func TestHealthService_Readiness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	store := session.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), session.New("a.csv", testutil.LoadCSV(t, "x\n1\n"))))

	hs := NewHealthService("1.2.3", "", "", store, t.TempDir(), fixedClients(2), logger)

	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "1.2.3", ready.Version)
	assert.Contains(t, ready.Services, "storage")
	assert.Contains(t, ready.Services, "scratch")
	assert.Equal(t, "1 active sessions", ready.Services["storage"].(ServiceHealth).Message)

	stats, err := hs.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, 2, stats.WebSocketClients)
	assert.Zero(t, stats.ExportFiles)
}

func TestHealthService_NotReadyWithoutScratchDir(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	missing := filepath.Join(t.TempDir(), "gone")

	hs := NewHealthService("dev", "", "", session.NewMemoryStore(), missing, nil, logger)

	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, "not_ready", ready.Services["scratch"].(ServiceHealth).Status)
	_, found := logs.Find("ReadinessCheck: service not ready")
	assert.True(t, found)
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.0.0", "2024-01-01", "abc123", session.NewMemoryStore(), t.TempDir(), nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	info := hs.Version()
	assert.Equal(t, "1.0.0", info["version"])
	assert.Equal(t, "2024-01-01", info["build_time"])
	assert.Equal(t, "abc123", info["build_id"])

	assert.Equal(t, "ok", hs.HealthCheck(context.Background()).Status)
}
