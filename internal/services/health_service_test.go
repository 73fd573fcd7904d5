package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermetrics/internal/infrastructure"
	"ordermetrics/internal/shared/testutil"
	"ordermetrics/internal/storage"
	"ordermetrics/pkg/contracts"
)

type stubRuntime struct{}

func (stubRuntime) Snapshot() infrastructure.SystemStats {
	return infrastructure.SystemStats{GoRoutines: 7, CPUCount: 2}
}

type stubClients int

func (c stubClients) ClientCount() int { return int(c) }

func TestHealthService_Checks(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	store := storage.NewMemoryStore(2)
	require.NoError(t, store.Put(&storage.Entry{ID: "abcdefghij01"}))

	hs := NewHealthService(store, stubRuntime{}, stubClients(3), logger)
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, contracts.Version, health.Version)

	ready := hs.ReadinessCheck(ctx)
	assert.Equal(t, "ready", ready.Status)
	assert.Contains(t, ready.Services, "store")
	assert.Contains(t, ready.Services, "websocket")

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	stats := hs.SystemStats(ctx)
	assert.Equal(t, 1, stats.StoredUploads)
	assert.Equal(t, 3, stats.WebSocketClients)
	require.NotNil(t, stats.Runtime)
	assert.Equal(t, int64(7), stats.Runtime.GoRoutines)

	assert.True(t, logs.ContainsMessage("HealthService initialized"))
}

func TestHealthService_NotReadyWithoutStore(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	hs := NewHealthService(nil, nil, nil, logger)

	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", ready.Status)
	assert.True(t, logs.ContainsMessage("readiness check failed"))

	stats := hs.SystemStats(context.Background())
	assert.Zero(t, stats.StoredUploads)
	assert.Nil(t, stats.Runtime)
}

func TestHealthService_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService(storage.NewMemoryStore(1), nil, nil, logger)

	v := hs.Version()
	assert.Equal(t, contracts.Version, v["version"])
	assert.Equal(t, contracts.APIVersion, v["api_version"])
	assert.Contains(t, v, "uptime")

	detailed := hs.GetDetailedHealth(context.Background())
	assert.Len(t, detailed, 4)
}
