package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/database"
	"github.com/rareminds/testportal/internal/logger"
	"github.com/rareminds/testportal/internal/questionset"
	"github.com/rareminds/testportal/internal/repository"
)

func main() {
	var (
		path   string
		dryRun bool
	)
	flag.StringVar(&path, "file", "", "Path to the .xlsx question workbook")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the workbook without writing")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if path == "" {
		fmt.Println("Usage: import-questions -file questions.xlsx [-dry-run]")
		os.Exit(2)
	}

	// ─── Parse Workbook ────────────────────────────────────────────────
	file, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open workbook")
	}
	questions, rejected, err := questionset.ParseWorkbook(file)
	file.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse workbook")
	}
	for _, r := range rejected {
		log.Warn().Int("row", r.Row).Str("column", r.Column).Msg(r.Reason)
	}
	log.Info().Int("valid", len(questions)).Int("rejected", len(rejected)).Msg("Workbook parsed")
	if len(rejected) > 0 {
		log.Fatal().Msg("Fix the rejected rows and run again")
	}
	if dryRun || len(questions) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// ─── Connect ───────────────────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	courseRepo := repository.NewCourseRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	courses, err := courseRepo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list courses")
	}
	slugByCode := make(map[string]string, len(courses))
	for _, c := range courses {
		slugByCode[c.Code] = c.ID
	}
	touched := make(map[string]int)
	for _, q := range questions {
		slug, ok := slugByCode[q.CourseCode]
		if !ok {
			log.Fatal().Str("course_code", q.CourseCode).Int("question_id", q.ID).Msg("Unknown course code")
		}
		touched[slug]++
	}

	// ─── Write ─────────────────────────────────────────────────────────
	if err := questionRepo.Upsert(ctx, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to store questions")
	}

	// Running servers keep their in-memory sets until restart; the shared
	// cache is dropped so new instances read the fresh rows.
	cache := questionset.NewRedisStore(rdb, nil, cfg.QuestionCacheTTL, log)
	for slug, n := range touched {
		if err := cache.Invalidate(ctx, slug); err != nil {
			log.Warn().Err(err).Str("course_id", slug).Msg("Failed to drop cached question set")
		}
		log.Info().Str("course_id", slug).Int("questions", n).Msg("Questions imported")
	}
}
