package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"quizhub-service/internal/domain"
)

func seconds(v int) *int { return &v }

func rankedAttempt(id, quizID string, score int, timeTaken *int) domain.Attempt {
	return domain.Attempt{
		ID:          id,
		QuizID:      quizID,
		Score:       score,
		TimeTaken:   timeTaken,
		AttemptDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRankOrdering(t *testing.T) {
	attempts := []domain.Attempt{
		rankedAttempt("a1", "quiz-1", 80, seconds(120)),
		rankedAttempt("a2", "quiz-1", 95, seconds(300)),
		rankedAttempt("a3", "quiz-1", 95, seconds(90)),
		rankedAttempt("a4", "quiz-1", 95, nil),
		rankedAttempt("a5", "quiz-1", 40, seconds(30)),
	}
	entries := Rank(attempts, "", nil)

	want := []string{"a3", "a2", "a4", "a1", "a5"}
	for i, id := range want {
		if entries[i].AttemptID != id {
			t.Fatalf("position %d: got %s, want %s (order %+v)", i, entries[i].AttemptID, id, entries)
		}
	}

	// Pairwise invariant: score strictly decreasing, or tied with
	// non-decreasing time (missing treated as infinite).
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Score < cur.Score {
			t.Fatalf("score order violated at %d", i)
		}
		if prev.Score == cur.Score && prev.TimeTaken == nil && cur.TimeTaken != nil {
			t.Fatalf("missing time must sort last within a score tie")
		}
	}
}

func TestRankIsStable(t *testing.T) {
	// Same score, same time: submission order must be preserved.
	attempts := []domain.Attempt{
		rankedAttempt("first", "quiz-1", 70, seconds(60)),
		rankedAttempt("second", "quiz-1", 70, seconds(60)),
		rankedAttempt("third", "quiz-1", 70, nil),
		rankedAttempt("fourth", "quiz-1", 70, nil),
	}
	entries := Rank(attempts, "", nil)
	want := []string{"first", "second", "third", "fourth"}
	for i, id := range want {
		if entries[i].AttemptID != id {
			t.Fatalf("stability violated at %d: got %s, want %s", i, entries[i].AttemptID, id)
		}
	}
}

func TestRankQuizFilterAndTitles(t *testing.T) {
	attempts := []domain.Attempt{
		rankedAttempt("a1", "quiz-1", 90, nil),
		rankedAttempt("a2", "quiz-2", 95, nil),
	}
	titles := map[string]string{"quiz-1": "Web Development Basics"}

	entries := Rank(attempts, "quiz-1", titles)
	if len(entries) != 1 || entries[0].AttemptID != "a1" {
		t.Fatalf("filter failed: %+v", entries)
	}
	if entries[0].QuizTitle != "Web Development Basics" {
		t.Fatalf("title not resolved: %q", entries[0].QuizTitle)
	}
	if entries[0].DisplayName != domain.AnonymousName {
		t.Fatalf("expected anonymous placeholder, got %q", entries[0].DisplayName)
	}
}

func TestRankCapsAtMaxEntries(t *testing.T) {
	attempts := make([]domain.Attempt, 0, 150)
	for i := 0; i < 150; i++ {
		attempts = append(attempts, rankedAttempt(fmt.Sprintf("a%d", i), "quiz-1", i%100, nil))
	}
	entries := Rank(attempts, "", nil)
	if len(entries) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(entries))
	}
	if entries[0].Score != 99 {
		t.Fatalf("top entry score=%d, want 99", entries[0].Score)
	}
}
