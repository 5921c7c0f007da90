package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quizhub-service/internal/config"
	"quizhub-service/internal/domain"
)

// NewSeedCmd loads the sample quizzes into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample quizzes into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	for _, quiz := range SampleQuizzes() {
		data, err := json.Marshal(quiz)
		if err != nil {
			return fmt.Errorf("marshal quiz %s: %w", quiz.ID, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO quizzes (id, data) VALUES (?, ?::jsonb)
			 ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
			quiz.ID, string(data)); err != nil {
			return fmt.Errorf("seed quiz %s: %w", quiz.ID, err)
		}
		log.Printf("seeded quiz %q (%s)", quiz.Title, quiz.ID)
	}
	return nil
}

// SampleQuizzes provides demo content for seeding and the in-memory dev mode.
func SampleQuizzes() []domain.Quiz {
	created := time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC)
	return []domain.Quiz{
		{
			ID:                 "quiz-webdev",
			Title:              "Web Development Basics",
			Description:        "Test your knowledge of web development fundamentals including HTML, CSS, and JavaScript",
			TimeLimit:          15,
			RandomizeQuestions: true,
			IsPublic:           true,
			PassingScore:       70,
			CreatedBy:          "admin",
			CreatedAt:          created,
			UpdatedAt:          created,
			Questions: []domain.Question{
				{
					ID:       "q1",
					Type:     domain.SingleChoice,
					Text:     "What does HTML stand for?",
					Points:   1,
					Required: true,
					Options: []domain.Option{
						{Text: "Hyper Text Markup Language", IsCorrect: true},
						{Text: "Hyper Transfer Markup Language"},
						{Text: "Hyper Text Makeup Language"},
						{Text: "High Tech Markup Language"},
					},
				},
				{
					ID:       "q2",
					Type:     domain.SingleChoice,
					Text:     "Which CSS property is used to change the text color?",
					Points:   1,
					Required: true,
					Options: []domain.Option{
						{Text: "color", IsCorrect: true},
						{Text: "text-color"},
						{Text: "font-color"},
						{Text: "text-style"},
					},
				},
				{
					ID:       "q3",
					Type:     domain.MultiChoice,
					Text:     "Which of the following are JavaScript frameworks/libraries?",
					Points:   2,
					Required: true,
					Options: []domain.Option{
						{Text: "React", IsCorrect: true},
						{Text: "Vue", IsCorrect: true},
						{Text: "Laravel"},
						{Text: "Django"},
					},
				},
				{
					ID:       "q4",
					Type:     domain.TrueFalse,
					Text:     "CSS stands for Cascading Style Sheets.",
					Points:   1,
					Required: true,
					Options: []domain.Option{
						{Text: "True", IsCorrect: true},
						{Text: "False"},
					},
				},
			},
		},
		{
			ID:           "quiz-go",
			Title:        "Go Fundamentals",
			Description:  "Core language concepts: types, slices, goroutines",
			TimeLimit:    10,
			IsPublic:     true,
			PassingScore: 60,
			CreatedBy:    "admin",
			CreatedAt:    created,
			UpdatedAt:    created,
			Questions: []domain.Question{
				{
					ID:       "g1",
					Type:     domain.SingleChoice,
					Text:     "Which keyword starts a new goroutine?",
					Points:   1,
					Required: true,
					Options: []domain.Option{
						{Text: "go", IsCorrect: true},
						{Text: "async"},
						{Text: "spawn"},
					},
				},
				{
					ID:       "g2",
					Type:     domain.TrueFalse,
					Text:     "A nil slice has length zero.",
					Points:   1,
					Required: true,
					Options: []domain.Option{
						{Text: "True", IsCorrect: true},
						{Text: "False"},
					},
				},
			},
		},
	}
}
