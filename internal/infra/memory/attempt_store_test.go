package memory

import (
	"context"
	"testing"
	"time"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

func TestAttemptStoreAppendAndFilter(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	records := []domain.Attempt{
		{ID: "a1", QuizID: "quiz-1", UserID: "u1", Score: 80, AttemptDate: time.Now()},
		{ID: "a2", QuizID: "quiz-2", UserID: "u1", Score: 60, AttemptDate: time.Now()},
		{ID: "a3", QuizID: "quiz-1", Score: 40, AttemptDate: time.Now()},
	}
	for _, attempt := range records {
		if err := store.AppendAttempt(ctx, attempt); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := store.ListAttempts(ctx, app.AttemptFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}
	// Submission order preserved.
	if all[0].ID != "a1" || all[2].ID != "a3" {
		t.Fatalf("order not preserved: %+v", all)
	}

	byQuiz, err := store.ListAttempts(ctx, app.AttemptFilter{QuizID: "quiz-1"})
	if err != nil {
		t.Fatalf("list by quiz: %v", err)
	}
	if len(byQuiz) != 2 {
		t.Fatalf("quiz filter: got %d, want 2", len(byQuiz))
	}

	byUser, err := store.ListAttempts(ctx, app.AttemptFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("user filter: got %d, want 2", len(byUser))
	}
}

func TestQuizStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	quiz := sampleQuiz()
	if err := store.SaveQuiz(ctx, quiz); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Title != quiz.Title {
		t.Fatalf("got %q, want %q", loaded.Title, quiz.Title)
	}

	if err := store.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetQuiz(ctx, quiz.ID); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if err := store.DeleteQuiz(ctx, quiz.ID); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound on double delete, got %v", err)
	}
}
