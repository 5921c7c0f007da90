package domain

import (
	"encoding/json"
	"time"
)

// QuestionType distinguishes how a question's answer is matched.
type QuestionType string

const (
	// SingleChoice questions accept exactly one option text.
	SingleChoice QuestionType = "single-choice"
	// MultiChoice questions accept a set of option texts that must equal the correct set.
	MultiChoice QuestionType = "multi-choice"
	// TrueFalse is a single-choice variant with exactly two fixed options.
	TrueFalse QuestionType = "true-false"
)

// Multi reports whether submissions for this type carry a set of selections.
func (t QuestionType) Multi() bool {
	return t == MultiChoice
}

// Option represents a possible answer for a question. Submitted answers
// reference options by Text, not by ID.
type Option struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models a quiz question. Points defaults to 1 when zero or negative.
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Text     string       `json:"text"`
	Points   int          `json:"points"`
	Required bool         `json:"required"`
	Options  []Option     `json:"options"`
}

// Weight returns the question's point weight, defaulting to 1.
func (q Question) Weight() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// Quiz is the aggregate root owning an ordered sequence of questions.
// The stored question order is authoritative for scoring even when
// RandomizeQuestions shuffles the presentation order.
type Quiz struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	TimeLimit          int        `json:"timeLimit"` // minutes, 0 = unlimited
	RandomizeQuestions bool       `json:"randomizeQuestions"`
	IsPublic           bool       `json:"isPublic"`
	PassingScore       int        `json:"passingScore"` // percentage [0,100]
	CreatedBy          string     `json:"createdBy,omitempty"`
	Questions          []Question `json:"questions"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// AnswerValue is one submitted answer: a single option text for
// single-choice/true-false questions, or a set of option texts for
// multi-choice. A malformed or missing value decodes to the zero value,
// which every consumer treats as unanswered.
type AnswerValue struct {
	Text  string
	Texts []string
}

// SingleAnswer builds a single-choice answer value.
func SingleAnswer(text string) AnswerValue {
	return AnswerValue{Text: text}
}

// MultiAnswer builds a multi-choice answer value.
func MultiAnswer(texts ...string) AnswerValue {
	if texts == nil {
		texts = []string{}
	}
	return AnswerValue{Texts: texts}
}

// IsMulti reports whether the value carries a selection set.
func (v AnswerValue) IsMulti() bool {
	return v.Texts != nil
}

// Empty reports whether nothing was submitted.
func (v AnswerValue) Empty() bool {
	return v.Text == "" && v.Texts == nil
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
// Anything else (numbers, objects, null) decodes as unanswered rather
// than failing, so a buggy client payload never breaks scoring.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = AnswerValue{Text: s}
		return nil
	}
	var set []string
	if err := json.Unmarshal(data, &set); err == nil {
		if set == nil {
			set = []string{}
		}
		*v = AnswerValue{Texts: set}
		return nil
	}
	*v = AnswerValue{}
	return nil
}

// MarshalJSON mirrors the submitted shape: array for multi, string otherwise.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.Texts != nil {
		return json.Marshal(v.Texts)
	}
	return json.Marshal(v.Text)
}

// AnswerMap maps question IDs to submitted values.
type AnswerMap map[string]AnswerValue

// Attempt is one taker's completed submission. Created once at submission
// time and never mutated afterwards.
type Attempt struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quizId"`
	UserID      string    `json:"userId,omitempty"` // empty = anonymous
	Answers     AnswerMap `json:"answers"`
	Score       int       `json:"score"` // percentage [0,100]
	Passed      bool      `json:"passed"`
	TimeTaken   *int      `json:"timeTaken,omitempty"` // seconds; nil = not recorded
	AttemptDate time.Time `json:"attemptDate"`
}

// QuestionResult is the per-question outcome of scoring one attempt.
type QuestionResult struct {
	Correct       bool `json:"correct"`
	PointsAwarded int  `json:"points"`
}

// ScoreResult is the outcome of scoring a submission against a quiz.
type ScoreResult struct {
	TotalScore  int                       `json:"score"` // percentage [0,100]
	Passed      bool                      `json:"passed"`
	PerQuestion map[string]QuestionResult `json:"questionResults"`
}

// LeaderboardEntry is one ranked row. DisplayName resolution happens
// outside the ranker; anonymous attempts carry a fixed placeholder.
type LeaderboardEntry struct {
	AttemptID   string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	DisplayName string    `json:"userName"`
	QuizID      string    `json:"quizId"`
	QuizTitle   string    `json:"quizTitle,omitempty"`
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	TimeTaken   *int      `json:"timeTaken,omitempty"`
	AttemptDate time.Time `json:"attemptDate"`
}

// DateRange selects the calendar window for analytics.
type DateRange string

const (
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeYear  DateRange = "year"
	RangeAll   DateRange = "all"
)

// TimeBucket is one point in the attempts-over-time series, labeled by
// its start date.
type TimeBucket struct {
	Label    string    `json:"date"`
	Start    time.Time `json:"-"`
	Attempts int       `json:"attempts"`
}

// ScoreBucket is one band of the fixed five-band score distribution.
type ScoreBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Difficulty labels a question by its observed success rate.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"   // success rate > 70
	DifficultyMedium Difficulty = "Medium" // success rate > 40
	DifficultyHard   Difficulty = "Hard"
)

// QuestionPerformance is the chart-oriented per-question series.
type QuestionPerformance struct {
	QuestionNumber    string `json:"questionNumber"`
	CorrectPercentage int    `json:"correctPercentage"`
}

// QuestionAnalysis is the detailed per-question breakdown.
type QuestionAnalysis struct {
	QuestionID   string       `json:"id"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	Attempts     int          `json:"attempts"`
	CorrectCount int          `json:"correctCount"`
	SuccessRate  int          `json:"successRate"`
	Difficulty   Difficulty   `json:"difficulty"`
}

// AnalyticsSummary aggregates a quiz's attempt history over a date range.
type AnalyticsSummary struct {
	TotalAttempts       int                   `json:"totalAttempts"`
	AverageScore        int                   `json:"averageScore"`
	PassRate            int                   `json:"passRate"`
	PassCount           int                   `json:"passCount"`
	FailCount           int                   `json:"failCount"`
	AverageTime         int                   `json:"averageTime"` // seconds
	AttemptsOverTime    []TimeBucket          `json:"attemptsOverTime"`
	ScoreDistribution   []ScoreBucket         `json:"scoreDistribution"`
	QuestionPerformance []QuestionPerformance `json:"questionPerformance"`
	QuestionAnalysis    []QuestionAnalysis    `json:"questionAnalysis"`
}
