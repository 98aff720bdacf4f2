package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dfeen87/respirosync/internal/engine"
	"github.com/dfeen87/respirosync/internal/session"
)

func TestManagerOpenAndFeed(t *testing.T) {
	m := session.NewManager(zap.NewNop())
	s := m.Open("sess-1", 0)

	for ts := uint64(0); ts < 1000; ts += 20 {
		s.FeedAccel(0, 0, 9.81, ts)
	}

	metrics := s.QueryMetrics(1000)
	require.Equal(t, engine.StageUnknown, metrics.CurrentStage)

	got, ok := m.Get("sess-1")
	require.True(t, ok)
	require.Equal(t, "sess-1", got.ID())
}

func TestManagerOpenReplacesExistingSession(t *testing.T) {
	m := session.NewManager(zap.NewNop())
	first := m.Open("dup", 0)
	first.FeedAccel(0, 0, 9.81, 0)

	second := m.Open("dup", 100)
	metrics := second.QueryMetrics(100)
	require.Equal(t, int32(0), metrics.BreathCyclesDetected)
}

func TestManagerCloseRemovesSession(t *testing.T) {
	m := session.NewManager(zap.NewNop())
	m.Open("to-close", 0)
	m.Close("to-close")

	_, ok := m.Get("to-close")
	require.False(t, ok)
}

func TestSessionPublishToInvokesPublisher(t *testing.T) {
	m := session.NewManager(zap.NewNop())
	s := m.Open("pub", 0)

	var gotSession string
	var gotMetrics engine.Metrics
	publish := func(_ context.Context, sessionID string, metrics engine.Metrics) error {
		gotSession = sessionID
		gotMetrics = metrics
		return nil
	}

	require.NoError(t, s.PublishTo(context.Background(), 0, publish))
	require.Equal(t, "pub", gotSession)
	require.Equal(t, engine.StageUnknown, gotMetrics.CurrentStage)
}
