package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/database"
	"github.com/rareminds/testportal/internal/logger"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/rareminds/testportal/internal/roster"
)

func main() {
	var (
		path   string
		dryRun bool
	)
	flag.StringVar(&path, "file", "", "Path to the .xlsx roster workbook")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the workbook without writing")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if path == "" {
		fmt.Println("Usage: import-roster -file roster.xlsx [-dry-run]")
		os.Exit(2)
	}

	// ─── Parse Workbook ────────────────────────────────────────────────
	file, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open workbook")
	}
	entries, rejected, err := roster.ParseWorkbook(file)
	file.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse workbook")
	}
	for _, r := range rejected {
		log.Warn().Int("row", r.Row).Str("column", r.Column).Msg(r.Reason)
	}
	log.Info().Int("valid", len(entries)).Int("rejected", len(rejected)).Msg("Workbook parsed")
	if len(rejected) > 0 {
		log.Fatal().Msg("Fix the rejected rows and run again")
	}
	if dryRun || len(entries) == 0 {
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

	courseRepo := repository.NewCourseRepository(pool)
	rosterRepo := repository.NewRosterRepository(pool)

	courses, err := courseRepo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list courses")
	}
	// The course column may hold either the slug or the course code.
	slugs := make(map[string]string, 2*len(courses))
	for _, c := range courses {
		slugs[c.ID] = c.ID
		slugs[strings.ToLower(c.Code)] = c.ID
	}
	for i := range entries {
		if entries[i].CourseID == nil {
			continue
		}
		slug, ok := slugs[*entries[i].CourseID]
		if !ok {
			log.Fatal().Str("course_id", *entries[i].CourseID).Str("roll_no", entries[i].RollNo).Msg("Unknown course")
		}
		entries[i].CourseID = &slug
	}

	// ─── Write ─────────────────────────────────────────────────────────
	if err := rosterRepo.Upsert(ctx, entries); err != nil {
		log.Fatal().Err(err).Msg("Failed to store roster")
	}
	log.Info().Int("students", len(entries)).Msg("Roster imported")
}
