// Package session serializes access to per-session *engine.Engine
// instances behind a request channel and a dedicated goroutine, since
// engine.Engine is explicitly not internally synchronized (spec §5) and
// the HTTP/MQTT ambient layers are otherwise concurrent.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dfeen87/respirosync/internal/engine"
)

type request struct {
	run  func(*engine.Engine)
	done chan struct{}
}

// Session owns exactly one *engine.Engine and a goroutine that drains a
// request queue, guaranteeing all engine operations for this session run
// on a single goroutine without external locking.
type Session struct {
	id      string
	eng     *engine.Engine
	reqs    chan request
	closeCh chan struct{}
	logger  *zap.Logger
}

// Manager tracks live Sessions keyed by session ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewManager builds an empty session Manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{sessions: make(map[string]*Session), logger: logger}
}

// Open creates and starts a new Session, replacing any prior session
// registered under the same ID.
func (m *Manager) Open(id string, startTsMs uint64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.sessions[id]; ok {
		old.stop()
	}

	s := &Session{
		id:      id,
		eng:     engine.Open(),
		reqs:    make(chan request, 64),
		closeCh: make(chan struct{}),
		logger:  m.logger.With(zap.String("session_id", id)),
	}
	go s.loop()
	s.Do(func(e *engine.Engine) { e.StartSession(startTsMs) })

	m.sessions[id] = s
	return s
}

// Count returns the number of currently registered sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Get returns the Session registered under id, if any.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close stops and forgets the Session registered under id.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.stop()
		delete(m.sessions, id)
	}
}

func (s *Session) loop() {
	defer engine.Close(s.eng)
	for {
		select {
		case r := <-s.reqs:
			r.run(s.eng)
			close(r.done)
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) stop() {
	close(s.closeCh)
}

// Do runs fn against this session's engine on its owning goroutine and
// blocks until it completes.
func (s *Session) Do(fn func(*engine.Engine)) {
	done := make(chan struct{})
	s.reqs <- request{run: fn, done: done}
	<-done
}

// FeedAccel enqueues an accelerometer sample.
func (s *Session) FeedAccel(x, y, z float32, tsMs uint64) {
	s.Do(func(e *engine.Engine) { e.FeedAccel(x, y, z, tsMs) })
}

// FeedGyro enqueues a gyroscope sample.
func (s *Session) FeedGyro(x, y, z float32, tsMs uint64) {
	s.Do(func(e *engine.Engine) { e.FeedGyro(x, y, z, tsMs) })
}

// QueryMetrics fetches a fresh metrics snapshot.
func (s *Session) QueryMetrics(tsMs uint64) engine.Metrics {
	var m engine.Metrics
	s.Do(func(e *engine.Engine) { m = e.QueryMetrics(tsMs) })
	return m
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// PublishTo pushes the session's current metrics into a snapshot
// publisher, e.g. internal/cache.SnapshotCache.
func (s *Session) PublishTo(ctx context.Context, tsMs uint64, publish func(context.Context, string, engine.Metrics) error) error {
	m := s.QueryMetrics(tsMs)
	if err := publish(ctx, s.id, m); err != nil {
		return fmt.Errorf("publish snapshot for session %s: %w", s.id, err)
	}
	return nil
}
