package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	rscache "github.com/dfeen87/respirosync/internal/cache"
	"github.com/dfeen87/respirosync/internal/engine"
)

type fakeSnapshotStore struct {
	snapshots map[string]engine.Metrics
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{snapshots: map[string]engine.Metrics{}}
}

func (f *fakeSnapshotStore) SaveSnapshot(_ context.Context, sessionID string, m engine.Metrics, _ time.Duration) error {
	f.snapshots[sessionID] = m
	return nil
}

func (f *fakeSnapshotStore) LoadSnapshot(_ context.Context, sessionID string) (engine.Metrics, error) {
	m, ok := f.snapshots[sessionID]
	if !ok {
		return engine.Metrics{}, rscache.ErrMiss
	}
	return m, nil
}

func TestSnapshotCachePublishWritesSnapshot(t *testing.T) {
	store := newFakeSnapshotStore()
	c := rscache.NewSnapshotCache(store, 10*time.Second, zap.NewNop())

	m := engine.Metrics{BreathingRateBPM: 14.5, CurrentStage: engine.StageLight}
	require.NoError(t, c.Publish(context.Background(), "sess-1", m))

	require.Equal(t, m, store.snapshots["sess-1"])
}

func TestSnapshotCacheLatestRoundTrips(t *testing.T) {
	store := newFakeSnapshotStore()
	c := rscache.NewSnapshotCache(store, 10*time.Second, zap.NewNop())

	m := engine.Metrics{BreathCyclesDetected: 3, SignalQuality: engine.QualityGood}
	require.NoError(t, c.Publish(context.Background(), "sess-2", m))

	got, err := c.Latest(context.Background(), "sess-2")
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestSnapshotCacheLatestMissReturnsErrMiss(t *testing.T) {
	store := newFakeSnapshotStore()
	c := rscache.NewSnapshotCache(store, 10*time.Second, zap.NewNop())

	_, err := c.Latest(context.Background(), "unknown")
	require.ErrorIs(t, err, rscache.ErrMiss)
}
