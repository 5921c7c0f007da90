package app

import (
	"sync"

	"quizhub-service/internal/domain"
)

// Hub fans leaderboard snapshots out to websocket subscribers, keyed by
// quiz. Slow subscribers never block a broadcast: the stale snapshot is
// dropped and replaced with the newest one.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan []domain.LeaderboardEntry]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan []domain.LeaderboardEntry]struct{})}
}

// Subscribe registers a channel for a quiz's leaderboard updates. The
// caller must invoke the returned cancel function to avoid leaks.
func (h *Hub) Subscribe(quizID string) (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	h.mu.Lock()
	if h.subscribers[quizID] == nil {
		h.subscribers[quizID] = make(map[chan []domain.LeaderboardEntry]struct{})
	}
	h.subscribers[quizID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[quizID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.subscribers, quizID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast pushes a fresh snapshot to every subscriber of the quiz.
func (h *Hub) Broadcast(quizID string, entries []domain.LeaderboardEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[quizID] {
		select {
		case ch <- entries:
		default:
			// Drop the stale snapshot so the newest one always lands.
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}
