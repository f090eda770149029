package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
)

// StreamManager fans lifecycle events out to SSE subscribers, keyed by user.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for userID. Call the returned
// function to unsubscribe; it closes the channel.
func (sm *StreamManager) Subscribe(userID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[userID]; !ok {
		sm.subscribers[userID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[userID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[userID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, userID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of userID. Slow subscribers drop messages.
func (sm *StreamManager) Broadcast(userID, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[userID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("sse client buffer full, dropping message", "user_id", userID)
		}
	}
}

// Hooks returns lifecycle hooks that broadcast each event as JSON to its user.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart:    func(_ context.Context, e *domain.StartEvent) { sm.publish(e.UserID, e) },
		OnDecision: func(_ context.Context, e *domain.DecisionEvent) { sm.publish(e.UserID, e) },
		OnOutcome:  func(_ context.Context, e *domain.OutcomeEvent) { sm.publish(e.UserID, e) },
		OnConflict: func(_ context.Context, e *domain.ConflictEvent) { sm.publish(e.UserID, e) },
	}
}

func (sm *StreamManager) publish(userID string, event any) {
	b, err := json.Marshal(event)
	if err != nil {
		sm.logger.Error("sse event encode failed", "err", err)
		return
	}
	sm.Broadcast(userID, string(b))
}

// SubscribeEvents handles GET /events, streaming the caller's lifecycle events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	user := userID(r)
	ch, cancel := s.Streams.Subscribe(user)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
