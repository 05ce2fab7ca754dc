package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/database"
	"github.com/rareminds/testportal/internal/logger"
	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/rareminds/testportal/internal/validator"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		v, _ := reader.ReadString('\n')
		return strings.TrimSpace(v)
	}

	fmt.Println("=== Create New Student ===")

	req := model.CreateStudentRequest{
		NMID:     prompt("Enter NM ID: "),
		Email:    prompt("Enter Email: "),
		Username: prompt("Enter Name: "),
		Semester: prompt("Enter Semester: "),
		CourseID: prompt("Enter Course ID (blank for none): "),
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	req.Password = string(bytePassword)
	fmt.Println() // Newline after password input

	if fields := validator.Struct(req); fields != nil {
		printFields(fields)
		os.Exit(1)
	}

	if req.CourseID != "" {
		if _, err := courseRepo.GetByID(ctx, req.CourseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				fmt.Printf("Error: course %q does not exist\n", req.CourseID)
				os.Exit(1)
			}
			log.Fatal().Err(err).Msg("Failed to look up course")
		}
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	student := &model.Student{
		ExternalID:   uuid.NewString(),
		NMID:         req.NMID,
		Email:        strings.ToLower(req.Email),
		Username:     req.Username,
		Semester:     req.Semester,
		PasswordHash: string(hashedPassword),
	}
	if req.CourseID != "" {
		student.CourseID = &req.CourseID
	}

	if err := studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateStudent) {
			fmt.Println("Error: a student with this NM ID or email already exists")
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to create student")
	}

	fmt.Printf("\nSuccess! Student '%s' (%s) created with ID: %s\n", student.Username, student.Email, student.ExternalID)
}

func printFields(fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("Error:")
	for _, k := range keys {
		fmt.Printf("  %s: %s\n", k, fields[k])
	}
}
