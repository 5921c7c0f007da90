package scoring

import (
	"math"

	"quizhub-service/internal/domain"
)

// Score runs Match over every question in the quiz's stored order and
// aggregates a percentage score. Questions are keyed by ID, never by
// position, so presentation-layer shuffling cannot change the result.
// Scoring the same (quiz, answers) pair always yields the identical result.
//
// Returns domain.ErrInvalidQuizState when the quiz carries no point weight
// at all (no questions).
func Score(quiz domain.Quiz, answers domain.AnswerMap) (domain.ScoreResult, error) {
	totalPoints := 0
	earnedPoints := 0
	perQuestion := make(map[string]domain.QuestionResult, len(quiz.Questions))

	for _, question := range quiz.Questions {
		points := question.Weight()
		totalPoints += points

		correct := Match(question, answers[question.ID])
		awarded := 0
		if correct {
			earnedPoints += points
			awarded = points
		}
		perQuestion[question.ID] = domain.QuestionResult{
			Correct:       correct,
			PointsAwarded: awarded,
		}
	}

	if totalPoints == 0 {
		return domain.ScoreResult{}, domain.ErrInvalidQuizState
	}

	totalScore := RoundPercent(earnedPoints, totalPoints)
	return domain.ScoreResult{
		TotalScore:  totalScore,
		Passed:      totalScore >= quiz.PassingScore,
		PerQuestion: perQuestion,
	}, nil
}

// RoundPercent computes round(100 * part / whole) with half-up rounding.
// whole must be positive.
func RoundPercent(part, whole int) int {
	return int(math.Round(100 * float64(part) / float64(whole)))
}
