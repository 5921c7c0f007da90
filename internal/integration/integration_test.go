package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	pgstore "quizhub-service/internal/infra/postgres"
	pgmigrations "quizhub-service/internal/infra/postgres/migrations"
	redisinfra "quizhub-service/internal/infra/redis"
)

func TestSubmitAndReportEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuiz(t, ctx, pgURL, sampleQuiz())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	quizRepo := redisinfra.NewQuizCache(redisClient, pgstore.NewQuizStore(pool), 5*time.Minute)
	attemptRepo := pgstore.NewAttemptStore(pool)
	service := app.NewQuizService(quizRepo, attemptRepo)
	service.UseLeaderboardCache(redisinfra.NewLeaderboardCache(redisClient, time.Minute))

	timeTaken := 80
	first, err := service.SubmitAttempt(ctx, app.Submission{
		QuizID: "quiz-1",
		UserID: "u1",
		Answers: domain.AnswerMap{
			"q1": domain.SingleAnswer("4"),
			"q2": domain.MultiAnswer("2", "4"),
		},
		TimeTaken: &timeTaken,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.Score != 100 || !first.Passed {
		t.Fatalf("expected a perfect pass, got %+v", first)
	}

	slower := 200
	second, err := service.SubmitAttempt(ctx, app.Submission{
		QuizID:    "quiz-1",
		Answers:   domain.AnswerMap{"q1": domain.SingleAnswer("4")},
		TimeTaken: &slower,
	})
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if second.Score != 33 {
		t.Fatalf("expected 33, got %+v", second)
	}

	entries, err := service.Leaderboard(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].Score != 100 || entries[1].Score != 33 {
		t.Fatalf("leaderboard order: %+v", entries)
	}

	// Second read should come from the Redis snapshot and match.
	cached, err := service.Leaderboard(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("leaderboard cached: %v", err)
	}
	if len(cached) != len(entries) || cached[0].AttemptID != entries[0].AttemptID {
		t.Fatalf("cached board diverged: %+v vs %+v", cached, entries)
	}

	summary, err := service.QuizAnalytics(ctx, "quiz-1", domain.RangeWeek)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if summary.TotalAttempts != 2 || summary.PassCount != 1 || summary.FailCount != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	if summary.AverageTime != 140 {
		t.Fatalf("averageTime=%d, want 140", summary.AverageTime)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuiz(t *testing.T, ctx context.Context, dsn string, quiz domain.Quiz) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO quizzes (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, quiz.ID, string(data)); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:           "quiz-1",
		Title:        "Arithmetic",
		IsPublic:     true,
		PassingScore: 70,
		CreatedAt:    time.Now().UTC(),
		Questions: []domain.Question{
			{
				ID:   "q1",
				Type: domain.SingleChoice,
				Text: "What is 2 + 2?",
				Options: []domain.Option{
					{Text: "3"},
					{Text: "4", IsCorrect: true},
					{Text: "5"},
				},
			},
			{
				ID:     "q2",
				Type:   domain.MultiChoice,
				Points: 2,
				Text:   "Which of these are even?",
				Options: []domain.Option{
					{Text: "2", IsCorrect: true},
					{Text: "3"},
					{Text: "4", IsCorrect: true},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
