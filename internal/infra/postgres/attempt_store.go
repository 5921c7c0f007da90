package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// AttemptStore is the append-only attempt history. Each attempt is one
// atomic INSERT, so readers never observe a partial record; rows are never
// updated after creation.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) AppendAttempt(ctx context.Context, attempt domain.Attempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	userID := any(nil)
	if attempt.UserID != "" {
		userID = attempt.UserID
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO attempts (id, quiz_id, user_id, data, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)`,
		attempt.ID, attempt.QuizID, userID, raw, attempt.AttemptDate)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// ListAttempts returns attempts in submission order, which the stable
// leaderboard sort relies on.
func (s *AttemptStore) ListAttempts(ctx context.Context, filter app.AttemptFilter) ([]domain.Attempt, error) {
	query := `SELECT data FROM attempts`
	args := []any{}
	where := ""
	if filter.QuizID != "" {
		args = append(args, filter.QuizID)
		where = fmt.Sprintf(" WHERE quiz_id=$%d", len(args))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		clause := fmt.Sprintf("user_id=$%d", len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}
	rows, err := s.pool.Query(ctx, query+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var attempt domain.Attempt
		if err := json.Unmarshal(raw, &attempt); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
