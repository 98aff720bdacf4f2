// Package httpapi exposes the reproducibility HTTP surface: session
// status, cached metrics, a synthetic-waveform replay, and a push feed
// over WebSocket. It mirrors original_source/server/app.py and reuses
// the teacher's bare net/http path-switch dispatch (no router library).
package httpapi

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dfeen87/respirosync/internal/cache"
	"github.com/dfeen87/respirosync/internal/engine"
	"github.com/dfeen87/respirosync/internal/session"
)

// Handler implements http.Handler with a manual path switch, matching
// the teacher's AuthHandler shape.
type Handler struct {
	manager   *session.Manager
	snapshots *cache.SnapshotCache
	apiToken  string
	startedAt time.Time
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// New builds a Handler. apiToken empty means the server runs
// unauthenticated, matching the teacher's own documented fallback.
func New(manager *session.Manager, snapshots *cache.SnapshotCache, apiToken string, logger *zap.Logger) *Handler {
	return &Handler{
		manager:   manager,
		snapshots: snapshots,
		apiToken:  apiToken,
		startedAt: time.Now(),
		logger:    logger,
		upgrader:  websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/api/status":
		h.status(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/metrics/"):
		h.metrics(w, r, strings.TrimPrefix(r.URL.Path, "/api/metrics/"))
	case r.URL.Path == "/api/run":
		h.run(w, r)
	case strings.HasPrefix(r.URL.Path, "/ws/metrics/"):
		h.streamMetrics(w, r, strings.TrimPrefix(r.URL.Path, "/ws/metrics/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// authorized checks the bearer token when one is configured; an unset
// APIToken runs the server open, matching server/app.py's fallback.
func (h *Handler) authorized(r *http.Request) bool {
	if h.apiToken == "" {
		return true
	}
	got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return got == h.apiToken
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":       engine.Version(),
		"uptime_s":      time.Since(h.startedAt).Seconds(),
		"session_count": h.manager.Count(),
	})
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request, sessionID string) {
	if sessionID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m, err := h.snapshots.Latest(r.Context(), sessionID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// runRequest configures a synthetic-waveform replay for /api/run.
type runRequest struct {
	SessionID  string  `json:"session_id"`
	DurationS  float64 `json:"duration_s"`
	BreathHz   float64 `json:"breath_hz"`
	SampleHz   float64 `json:"sample_hz"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.DurationS <= 0 || req.SampleHz <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.BreathHz <= 0 {
		req.BreathHz = 0.25
	}

	sess := h.manager.Open(req.SessionID, 0)

	dtMs := uint64(1000 / req.SampleHz)
	n := int(req.DurationS * req.SampleHz)
	var ts uint64
	for i := 0; i < n; i++ {
		accel := 9.81 + 0.1*math.Sin(2*math.Pi*req.BreathHz*float64(i)/req.SampleHz)
		sess.FeedAccel(0, 0, float32(accel), ts)
		ts += dtMs
	}

	m := sess.QueryMetrics(ts)
	if err := h.snapshots.Publish(r.Context(), req.SessionID, m); err != nil {
		h.logger.Warn("failed to publish run snapshot", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, m)
}

// streamMetrics upgrades the connection and pushes the cached snapshot
// for sessionID on a fixed tick until the client disconnects.
func (h *Handler) streamMetrics(w http.ResponseWriter, r *http.Request, sessionID string) {
	if sessionID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m, err := h.snapshots.Latest(ctx, sessionID)
			if err != nil {
				continue
			}
			if err := conn.WriteJSON(m); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
