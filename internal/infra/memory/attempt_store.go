package memory

import (
	"context"
	"sync"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// AttemptStore is an in-memory append-only attempt history. Appends are
// atomic under the lock, so concurrent readers never see a partial record,
// and listings preserve submission order.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts []domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

func (s *AttemptStore) AppendAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *AttemptStore) ListAttempts(_ context.Context, filter app.AttemptFilter) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]domain.Attempt, 0, len(s.attempts))
	for _, attempt := range s.attempts {
		if filter.QuizID != "" && attempt.QuizID != filter.QuizID {
			continue
		}
		if filter.UserID != "" && attempt.UserID != filter.UserID {
			continue
		}
		matched = append(matched, attempt)
	}
	return matched, nil
}
