// Package leaderboard ranks persisted attempts into an ordered scoreboard.
package leaderboard

import (
	"sort"

	"quizhub-service/internal/domain"
)

// MaxEntries caps the ranked output.
const MaxEntries = 100

// Rank orders attempts by score descending, breaking ties by elapsed time
// ascending. Attempts without a recorded time sort after those with one.
// The sort is stable, so equal-key attempts keep their submission-order
// position. quizID filters to a single quiz when non-empty.
func Rank(attempts []domain.Attempt, quizID string, titles map[string]string) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(attempts))
	for _, attempt := range attempts {
		if quizID != "" && attempt.QuizID != quizID {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			AttemptID:   attempt.ID,
			UserID:      attempt.UserID,
			DisplayName: domain.AnonymousName,
			QuizID:      attempt.QuizID,
			QuizTitle:   titles[attempt.QuizID],
			Score:       attempt.Score,
			Passed:      attempt.Passed,
			TimeTaken:   attempt.TimeTaken,
			AttemptDate: attempt.AttemptDate,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return lessTime(entries[i].TimeTaken, entries[j].TimeTaken)
	})

	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries
}

// lessTime compares elapsed times with a missing time treated as infinite.
func lessTime(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}
