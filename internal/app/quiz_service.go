package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizhub-service/internal/analytics"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/leaderboard"
	"quizhub-service/internal/scoring"
)

// QuizRepository abstracts how quizzes are stored (in-memory, Postgres,
// optionally behind a Redis cache).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error
}

// AttemptFilter narrows an attempt listing. Zero values match everything.
type AttemptFilter struct {
	QuizID string
	UserID string
}

// AttemptRepository is the append-only attempt history. Append must write
// the record atomically so concurrent analytics/leaderboard reads never
// observe a half-written attempt.
type AttemptRepository interface {
	AppendAttempt(ctx context.Context, attempt domain.Attempt) error
	ListAttempts(ctx context.Context, filter AttemptFilter) ([]domain.Attempt, error)
}

// NameResolver maps user IDs to display names. Resolution is a
// collaborator concern; the built-in default shows a generic label.
type NameResolver interface {
	DisplayName(ctx context.Context, userID string) string
}

// LeaderboardCache holds computed leaderboards between submissions.
type LeaderboardCache interface {
	Get(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, bool)
	Set(ctx context.Context, quizID string, entries []domain.LeaderboardEntry)
	Invalidate(ctx context.Context, quizID string)
}

// Submission is one taker's completed answer sheet for a quiz.
type Submission struct {
	QuizID    string
	UserID    string // empty = anonymous
	Answers   domain.AnswerMap
	TimeTaken *int // seconds
}

// SubmissionResult is returned to the taker after scoring and persistence.
type SubmissionResult struct {
	AttemptID      string                           `json:"attemptId"`
	Score          int                              `json:"score"`
	Passed         bool                             `json:"passed"`
	CorrectAnswers int                              `json:"correctAnswers"`
	TotalQuestions int                              `json:"totalQuestions"`
	PerQuestion    map[string]domain.QuestionResult `json:"questionResults"`
	TimeTaken      *int                             `json:"timeTaken,omitempty"`
}

// QuizSummary is a quiz with its attempt count, for owner dashboards.
type QuizSummary struct {
	domain.Quiz
	Attempts int `json:"attempts"`
}

// QuizService contains the quiz authoring, taking, and reporting use cases.
type QuizService struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	names    NameResolver
	lbCache  LeaderboardCache
	hub      *Hub
	now      func() time.Time
	newID    func() string
}

func NewQuizService(quizzes QuizRepository, attempts AttemptRepository) *QuizService {
	return &QuizService{
		quizzes:  quizzes,
		attempts: attempts,
		names:    defaultNames{},
		hub:      NewHub(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps and IDs.
func NewQuizServiceWithClock(quizzes QuizRepository, attempts AttemptRepository, now func() time.Time, newID func() string) *QuizService {
	s := NewQuizService(quizzes, attempts)
	s.now = now
	s.newID = newID
	return s
}

// UseNameResolver swaps the display-name collaborator.
func (s *QuizService) UseNameResolver(r NameResolver) {
	if r != nil {
		s.names = r
	}
}

// UseLeaderboardCache enables leaderboard caching (e.g. Redis-backed).
func (s *QuizService) UseLeaderboardCache(c LeaderboardCache) {
	s.lbCache = c
}

// CreateQuiz assigns an ID and timestamps and stores the quiz.
func (s *QuizService) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	now := s.now()
	quiz.ID = s.newID()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// UpdateQuiz replaces a stored quiz. Only the creator may update it.
func (s *QuizService) UpdateQuiz(ctx context.Context, quizID, callerID string, quiz domain.Quiz) (domain.Quiz, error) {
	existing, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if existing.CreatedBy != "" && existing.CreatedBy != callerID {
		return domain.Quiz{}, domain.ErrNotOwner
	}
	quiz.ID = existing.ID
	quiz.CreatedBy = existing.CreatedBy
	quiz.CreatedAt = existing.CreatedAt
	quiz.UpdatedAt = s.now()
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// DeleteQuiz removes a quiz. Past attempts stay in the history.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID string) error {
	return s.quizzes.DeleteQuiz(ctx, quizID)
}

// DuplicateQuiz copies a quiz under a new ID with a " (Copy)" title suffix.
func (s *QuizService) DuplicateQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	original, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	now := s.now()
	copied := original
	copied.ID = s.newID()
	copied.Title = original.Title + " (Copy)"
	copied.CreatedAt = now
	copied.UpdatedAt = now
	if err := s.quizzes.SaveQuiz(ctx, copied); err != nil {
		return domain.Quiz{}, err
	}
	return copied, nil
}

// GetQuiz loads one quiz by ID.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// ListPublicQuizzes returns quizzes visible to takers.
func (s *QuizService) ListPublicQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	public := make([]domain.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if quiz.IsPublic {
			public = append(public, quiz)
		}
	}
	return public, nil
}

// ListQuizzesByOwner returns a creator's quizzes with attempt counts.
func (s *QuizService) ListQuizzesByOwner(ctx context.Context, ownerID string) ([]QuizSummary, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListAttempts(ctx, AttemptFilter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, attempt := range attempts {
		counts[attempt.QuizID]++
	}

	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		if quiz.CreatedBy != ownerID {
			continue
		}
		summaries = append(summaries, QuizSummary{Quiz: quiz, Attempts: counts[quiz.ID]})
	}
	return summaries, nil
}

// SubmitAttempt scores a submission, persists the attempt record, and
// broadcasts the refreshed leaderboard to subscribers.
func (s *QuizService) SubmitAttempt(ctx context.Context, submission Submission) (SubmissionResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, submission.QuizID)
	if err != nil {
		return SubmissionResult{}, err
	}

	result, err := scoring.Score(quiz, submission.Answers)
	if err != nil {
		return SubmissionResult{}, err
	}

	attempt := domain.Attempt{
		ID:          s.newID(),
		QuizID:      quiz.ID,
		UserID:      submission.UserID,
		Answers:     submission.Answers,
		Score:       result.TotalScore,
		Passed:      result.Passed,
		TimeTaken:   submission.TimeTaken,
		AttemptDate: s.now(),
	}
	if err := s.attempts.AppendAttempt(ctx, attempt); err != nil {
		return SubmissionResult{}, err
	}
	if s.lbCache != nil {
		s.lbCache.Invalidate(ctx, quiz.ID)
	}
	s.broadcastLeaderboard(ctx, quiz.ID)

	correct := 0
	for _, qr := range result.PerQuestion {
		if qr.Correct {
			correct++
		}
	}
	return SubmissionResult{
		AttemptID:      attempt.ID,
		Score:          result.TotalScore,
		Passed:         result.Passed,
		CorrectAnswers: correct,
		TotalQuestions: len(quiz.Questions),
		PerQuestion:    result.PerQuestion,
		TimeTaken:      submission.TimeTaken,
	}, nil
}

// ListAttempts returns the stored attempt history matching the filter.
func (s *QuizService) ListAttempts(ctx context.Context, filter AttemptFilter) ([]domain.Attempt, error) {
	return s.attempts.ListAttempts(ctx, filter)
}

// Leaderboard ranks attempts, optionally for a single quiz, and resolves
// display names for non-anonymous entries.
func (s *QuizService) Leaderboard(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	if s.lbCache != nil {
		if entries, ok := s.lbCache.Get(ctx, quizID); ok {
			return entries, nil
		}
	}

	attempts, err := s.attempts.ListAttempts(ctx, AttemptFilter{QuizID: quizID})
	if err != nil {
		return nil, err
	}
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(quizzes))
	for _, quiz := range quizzes {
		titles[quiz.ID] = quiz.Title
	}

	entries := leaderboard.Rank(attempts, quizID, titles)
	for i := range entries {
		if entries[i].UserID != "" {
			entries[i].DisplayName = s.names.DisplayName(ctx, entries[i].UserID)
		}
	}

	if s.lbCache != nil {
		s.lbCache.Set(ctx, quizID, entries)
	}
	return entries, nil
}

// QuizAnalytics aggregates a quiz's attempt history over a date range.
func (s *QuizService) QuizAnalytics(ctx context.Context, quizID string, dateRange domain.DateRange) (domain.AnalyticsSummary, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AnalyticsSummary{}, err
	}
	attempts, err := s.attempts.ListAttempts(ctx, AttemptFilter{QuizID: quizID})
	if err != nil {
		return domain.AnalyticsSummary{}, err
	}
	return analytics.Aggregate(quiz, attempts, s.now(), dateRange)
}

// SubscribeLeaderboard returns a channel receiving leaderboard snapshots
// for a quiz, seeded with the current standings. The caller must invoke
// the cancel function.
func (s *QuizService) SubscribeLeaderboard(ctx context.Context, quizID string) (<-chan []domain.LeaderboardEntry, func(), error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(quizID)

	entries, err := s.Leaderboard(ctx, quizID)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	s.hub.Broadcast(quizID, entries)
	return ch, cancel, nil
}

func (s *QuizService) broadcastLeaderboard(ctx context.Context, quizID string) {
	entries, err := s.Leaderboard(ctx, quizID)
	if err != nil {
		return
	}
	s.hub.Broadcast(quizID, entries)
}

// defaultNames labels known users generically; real resolution belongs to
// an external user service.
type defaultNames struct{}

func (defaultNames) DisplayName(_ context.Context, userID string) string {
	short := userID
	if len(short) > 5 {
		short = short[:5]
	}
	return "User " + strings.ToUpper(short)
}
