// Package analytics computes read-only summary statistics over a quiz's
// persisted attempt history. Everything here is a pure function of the
// already-fetched attempts and an explicit clock value.
package analytics

import (
	"fmt"
	"math"
	"time"

	"quizhub-service/internal/domain"
	"quizhub-service/internal/scoring"
)

const (
	easyThreshold   = 70
	mediumThreshold = 40
	maxQuestionText = 50
)

// Aggregate filters attempts to the calendar window ending at now and
// produces the full analytics summary. Returns domain.ErrNoAttemptsInRange
// when the filtered set is empty so callers can render an empty state
// instead of a zero-filled chart.
func Aggregate(quiz domain.Quiz, attempts []domain.Attempt, now time.Time, dateRange domain.DateRange) (domain.AnalyticsSummary, error) {
	filtered := filterByWindow(attempts, now, dateRange)
	if len(filtered) == 0 {
		return domain.AnalyticsSummary{}, domain.ErrNoAttemptsInRange
	}

	total := len(filtered)
	scoreSum := 0
	passCount := 0
	timeSum := 0
	timeCount := 0
	for _, attempt := range filtered {
		scoreSum += attempt.Score
		if attempt.Passed {
			passCount++
		}
		if attempt.TimeTaken != nil {
			timeSum += *attempt.TimeTaken
			timeCount++
		}
	}

	averageTime := 0
	if timeCount > 0 {
		averageTime = roundMean(timeSum, timeCount)
	}

	return domain.AnalyticsSummary{
		TotalAttempts:       total,
		AverageScore:        roundMean(scoreSum, total),
		PassRate:            scoring.RoundPercent(passCount, total),
		PassCount:           passCount,
		FailCount:           total - passCount,
		AverageTime:         averageTime,
		AttemptsOverTime:    timeSeries(filtered, now, dateRange),
		ScoreDistribution:   scoreDistribution(filtered),
		QuestionPerformance: questionPerformance(quiz, filtered),
		QuestionAnalysis:    questionAnalysis(quiz, filtered),
	}, nil
}

// windowStart computes the inclusive lower bound of the date range using
// calendar arithmetic, not fixed-length windows.
func windowStart(now time.Time, dateRange domain.DateRange) time.Time {
	switch dateRange {
	case domain.RangeWeek:
		return now.AddDate(0, 0, -7)
	case domain.RangeMonth:
		return now.AddDate(0, -1, 0)
	case domain.RangeYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Unix(0, 0).UTC()
	}
}

func filterByWindow(attempts []domain.Attempt, now time.Time, dateRange domain.DateRange) []domain.Attempt {
	start := windowStart(now, dateRange)
	filtered := make([]domain.Attempt, 0, len(attempts))
	for _, attempt := range attempts {
		if attempt.AttemptDate.Before(start) || attempt.AttemptDate.After(now) {
			continue
		}
		filtered = append(filtered, attempt)
	}
	return filtered
}

// timeSeries partitions the window into equal buckets labeled by their
// start date: 7 daily buckets for a week, 30 daily for a month, and 12
// thirty-day buckets for year/all. Attempts falling outside every bucket
// (boundary rounding) are dropped.
func timeSeries(attempts []domain.Attempt, now time.Time, dateRange domain.DateRange) []domain.TimeBucket {
	dataPoints, intervalDays := 7, 1
	switch dateRange {
	case domain.RangeWeek:
		dataPoints, intervalDays = 7, 1
	case domain.RangeMonth:
		dataPoints, intervalDays = 30, 1
	case domain.RangeYear, domain.RangeAll:
		dataPoints, intervalDays = 12, 30
	}

	buckets := make([]domain.TimeBucket, dataPoints)
	for i := range buckets {
		start := now.AddDate(0, 0, -(dataPoints-1-i)*intervalDays)
		buckets[i] = domain.TimeBucket{
			Label: bucketLabel(start, dateRange),
			Start: start,
		}
	}

	for _, attempt := range attempts {
		for i := range buckets {
			end := buckets[i].Start.AddDate(0, 0, intervalDays)
			if !attempt.AttemptDate.Before(buckets[i].Start) && attempt.AttemptDate.Before(end) {
				buckets[i].Attempts++
				break
			}
		}
	}
	return buckets
}

func bucketLabel(start time.Time, dateRange domain.DateRange) string {
	switch dateRange {
	case domain.RangeYear:
		return start.Format("Jan")
	case domain.RangeAll:
		return start.Format("Jan '06")
	default:
		return start.Format("01/02")
	}
}

// scoreDistribution partitions scores into five fixed bands with inclusive
// upper bounds; every score in [0,100] lands in exactly one band.
func scoreDistribution(attempts []domain.Attempt) []domain.ScoreBucket {
	buckets := []domain.ScoreBucket{
		{Range: "0-20%"},
		{Range: "21-40%"},
		{Range: "41-60%"},
		{Range: "61-80%"},
		{Range: "81-100%"},
	}
	for _, attempt := range attempts {
		switch {
		case attempt.Score <= 20:
			buckets[0].Count++
		case attempt.Score <= 40:
			buckets[1].Count++
		case attempt.Score <= 60:
			buckets[2].Count++
		case attempt.Score <= 80:
			buckets[3].Count++
		default:
			buckets[4].Count++
		}
	}
	return buckets
}

// correctCount re-runs the answer matcher over every filtered attempt's
// stored answer for the question. Attempts that never answered the
// question are skipped, but the success-rate denominator stays the full
// attempt count.
func correctCount(question domain.Question, attempts []domain.Attempt) int {
	count := 0
	for _, attempt := range attempts {
		value, ok := attempt.Answers[question.ID]
		if !ok || value.Empty() {
			continue
		}
		if scoring.Match(question, value) {
			count++
		}
	}
	return count
}

func questionPerformance(quiz domain.Quiz, attempts []domain.Attempt) []domain.QuestionPerformance {
	rows := make([]domain.QuestionPerformance, 0, len(quiz.Questions))
	for i, question := range quiz.Questions {
		rows = append(rows, domain.QuestionPerformance{
			QuestionNumber:    fmt.Sprintf("Q%d", i+1),
			CorrectPercentage: scoring.RoundPercent(correctCount(question, attempts), len(attempts)),
		})
	}
	return rows
}

func questionAnalysis(quiz domain.Quiz, attempts []domain.Attempt) []domain.QuestionAnalysis {
	rows := make([]domain.QuestionAnalysis, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		correct := correctCount(question, attempts)
		rate := scoring.RoundPercent(correct, len(attempts))
		rows = append(rows, domain.QuestionAnalysis{
			QuestionID:   question.ID,
			Text:         truncate(question.Text, maxQuestionText),
			Type:         question.Type,
			Attempts:     len(attempts),
			CorrectCount: correct,
			SuccessRate:  rate,
			Difficulty:   difficulty(rate),
		})
	}
	return rows
}

func difficulty(successRate int) domain.Difficulty {
	switch {
	case successRate > easyThreshold:
		return domain.DifficultyEasy
	case successRate > mediumThreshold:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyHard
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func roundMean(sum, count int) int {
	return int(math.Round(float64(sum) / float64(count)))
}
